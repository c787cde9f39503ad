package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"tur-booking/internal/booking"
	"tur-booking/internal/booking/api"
	bookingdb "tur-booking/internal/booking/db"
	rediswrap "tur-booking/internal/booking/redis"
	"tur-booking/internal/models"
	tourdb "tur-booking/internal/tour/db"
	"tur-booking/internal/utils"
)

type testEnv struct {
	router *chi.Mux
	bunDB  *bun.DB
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(),
		(*models.Tour)(nil), (*models.Booking)(nil), (*models.HistoryRecord)(nil)))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	service := booking.NewBookingService(
		&bookingdb.DB{Bun: bunDB},
		&tourdb.DB{Bun: bunDB},
		rediswrap.NewRedis(client, 5*time.Second),
		nil,
		nil,
	)
	handler := &api.Handler{BookingService: service}

	r := chi.NewRouter()
	r.Route("/api/v1/bookings", func(r chi.Router) {
		r.Post("/", handler.CreateBooking)
		r.Get("/", handler.ListBookings)
		r.Get("/history", handler.ListHistory)
		r.Get("/history/{historyId}", handler.GetHistoryRecord)
		r.Get("/{bookingId}", handler.GetBooking)
		r.Delete("/{bookingId}", handler.DeleteBooking)
	})

	cleanup := func() {
		client.Close()
		mr.Close()
		bunDB.Close()
	}
	return &testEnv{router: r, bunDB: bunDB}, cleanup
}

func (e *testEnv) seedTour(t *testing.T, maxSeats int) string {
	tour := models.Tour{ID: uuid.NewString(), MaxSeats: maxSeats, CreatedAt: time.Now().UTC()}
	_, err := e.bunDB.NewInsert().Model(&tour).Exec(context.Background())
	require.NoError(t, err)
	return tour.ID
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateBookingEndpoint(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	tourID := env.seedTour(t, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID:      tourID,
		FullName:    "Aziz Karimov",
		PhoneNumber: "+998901234567",
		SeatsBooked: 4,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
}

func TestCreateBookingEndpointInvalid(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	tourID := env.seedTour(t, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID:      tourID,
		FullName:    "Aziz Karimov",
		PhoneNumber: "+998901234567",
		SeatsBooked: 0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestCreateBookingEndpointUnknownTour(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID:      "no-such-tour",
		FullName:    "Aziz Karimov",
		PhoneNumber: "+998901234567",
		SeatsBooked: 2,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookingEndpointCapacityExceeded(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	tourID := env.seedTour(t, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID: tourID, FullName: "A", PhoneNumber: "1", SeatsBooked: 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID: tourID, FullName: "B", PhoneNumber: "2", SeatsBooked: 4,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error, "3 seats remaining")
}

func TestDeleteBookingEndpoint(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	tourID := env.seedTour(t, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID: tourID, FullName: "Aziz Karimov", PhoneNumber: "+998901234567", SeatsBooked: 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodDelete, "/api/v1/bookings/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The booking is no longer active
	rec = env.do(t, http.MethodGet, "/api/v1/bookings/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting it again fails
	rec = env.do(t, http.MethodDelete, "/api/v1/bookings/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	tourID := env.seedTour(t, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID: tourID, FullName: "Aziz Karimov", PhoneNumber: "+998901234567", SeatsBooked: 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodDelete, "/api/v1/bookings/"+created.Data.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var archived struct {
		Data models.HistoryRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archived))

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/history/"+archived.Data.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var record struct {
		Data models.HistoryRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "Aziz Karimov", record.Data.FullName)
	assert.NotEqual(t, created.Data.ID, archived.Data.ID, "history records carry their own ids")
}

func TestGetBookingEndpointNotFound(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	rec := env.do(t, http.MethodGet, "/api/v1/bookings/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/history/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBookingsEndpoint(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	tourID := env.seedTour(t, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", models.BookingRequest{
		TourID: tourID, FullName: "A", PhoneNumber: "1", SeatsBooked: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data []models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
}
