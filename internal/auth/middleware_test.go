package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tur-booking/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerifyAdminToken(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	sub, err := auth.VerifyAdminToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", sub)
}

func TestVerifyAdminTokenWrongRole(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":  "user-1",
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, err := auth.VerifyAdminToken(signed, testSecret)
	assert.Error(t, err)
}

func TestVerifyAdminTokenWrongSecret(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, err := auth.VerifyAdminToken(signed, "other-secret")
	assert.Error(t, err)
}

func TestVerifyAdminTokenExpired(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	_, err := auth.VerifyAdminToken(signed, testSecret)
	assert.Error(t, err)
}

func TestMiddlewareGuardsRoutes(t *testing.T) {
	mw := auth.Middleware("", testSecret)

	var seenAdmin string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAdmin = auth.AdminID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Missing header
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "not-a-bearer-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid admin token
	signed := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", seenAdmin)

	// Non-admin token
	signed = signToken(t, jwt.MapClaims{
		"sub":  "user-1",
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
