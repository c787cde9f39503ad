package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminIDKey contextKey = "admin_id"

// Middleware returns the admin guard for protected routes. Identity
// management itself lives in an external service; this only verifies the
// token it issued. With an OIDC issuer configured, tokens are verified
// against the provider; otherwise they are HMAC tokens signed with the
// shared secret and must carry role=admin.
func Middleware(oidcIssuer, secretKey string) func(http.Handler) http.Handler {
	if oidcIssuer != "" {
		return oidcMiddleware(oidcIssuer)
	}
	if secretKey == "" {
		panic("neither OIDC_ISSUER nor SECRET_KEY is set")
	}
	return hmacMiddleware(secretKey)
}

func oidcMiddleware(issuer string) func(http.Handler) http.Handler {
	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OIDC provider: %v", err))
	}

	verifier := provider.Verifier(&oidc.Config{
		SkipClientIDCheck: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			idToken, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			var claims struct {
				Sub string `json:"sub"`
			}
			if err := idToken.Claims(&claims); err != nil {
				http.Error(w, "failed to parse claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hmacMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			adminID, err := VerifyAdminToken(rawToken, secretKey)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractTokenFromRequest extracts a bearer token from the Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// VerifyAdminToken validates an HMAC-signed token and checks the admin role
// claim. Returns the subject on success.
func VerifyAdminToken(tokenString, secretKey string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	role, _ := claims["role"].(string)
	if role != "admin" {
		return "", fmt.Errorf("admin role required")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		if id, ok := claims["id"].(string); ok {
			sub = id
		}
	}
	if sub == "" {
		return "", fmt.Errorf("subject claim not found in token")
	}

	return sub, nil
}

// AdminID extracts the authenticated admin id in handlers.
func AdminID(ctx context.Context) string {
	if id, ok := ctx.Value(adminIDKey).(string); ok {
		return id
	}
	return ""
}
