package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/rental-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/rental-booking-backend/internal/db"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/storage"
	propertyHttp "github.com/nekogravitycat/rental-booking-backend/internal/property/http"
	userHttp "github.com/nekogravitycat/rental-booking-backend/internal/user/http"
)

type testApp struct {
	router *gin.Engine
	pool   *pgxpool.Pool
}

// newTestApp builds the full container against TEST_DB_DSN, or skips.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 10)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.users CASCADE")
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	c := NewContainer(Config{
		Log:                log,
		DBPool:             pool,
		JWTSecret:          "test-secret",
		JWTTTL:             30 * time.Minute,
		RefreshTTL:         time.Hour,
		BcryptCost:         4, // Lower cost for testing purposes
		Storage:            store,
		MaxUploadBytes:     1 << 20,
		AuthRateLimitRPS:   1000,
		AuthRateLimitBurst: 1000,
	})
	return &testApp{router: c.Router, pool: pool}
}

func (a *testApp) executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, username string) userHttp.AuthResponse {
	t.Helper()
	w := a.executeRequest("POST", "/v1/auth/register", userHttp.RegisterRequest{Username: username, Password: "password123"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp userHttp.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRentalFlow(t *testing.T) {
	a := newTestApp(t)

	host := a.register(t, "host")
	guest := a.register(t, "guest")
	other := a.register(t, "other")

	w := a.executeRequest("GET", "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// ==== Host lists a property ====
	w = a.executeRequest("POST", "/v1/properties", gin.H{
		"title": "Sea View", "description": "Balcony", "price_per_night": 100, "bedrooms": 2, "location": "Lisbon",
	}, host.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var prop propertyHttp.PropertyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prop))
	assert.Equal(t, host.User.ID, prop.HostID)

	// ==== Bookings ====
	var first bookingHttp.BookingResponse
	t.Run("Create and conflict", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/bookings", gin.H{
			"property_id": prop.ID, "check_in": "2024-06-01", "check_out": "2024-06-05",
		}, guest.AccessToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
		assert.Equal(t, "400.00", first.TotalPrice.String())
		assert.Equal(t, guest.User.ID, first.GuestID)

		w = a.executeRequest("POST", "/v1/bookings", gin.H{
			"property_id": prop.ID, "check_in": "2024-06-03", "check_out": "2024-06-06",
		}, other.AccessToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.executeRequest("POST", "/v1/bookings", gin.H{
			"property_id": prop.ID, "check_in": "2024-06-05", "check_out": "2024-06-07",
		}, other.AccessToken)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = a.executeRequest("POST", "/v1/bookings", gin.H{
			"property_id": prop.ID, "check_in": "2024-07-01", "check_out": "2024-07-02",
		}, host.AccessToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Scoped views", func(t *testing.T) {
		var page response.PageResponse[bookingHttp.BookingResponse]

		w := a.executeRequest("GET", "/v1/my-bookings", nil, guest.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)

		w = a.executeRequest("GET", "/v1/host-bookings", nil, host.AccessToken)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 2, page.Total)

		w = a.executeRequest("GET", "/v1/bookings/"+first.ID, nil, other.AccessToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Logout revokes the access token", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/auth/logout", gin.H{"refresh_token": other.RefreshToken}, other.AccessToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = a.executeRequest("GET", "/v1/auth/verify", nil, other.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Deleting the property removes its bookings", func(t *testing.T) {
		w := a.executeRequest("DELETE", "/v1/properties/"+prop.ID, nil, host.AccessToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		var count int
		require.NoError(t, a.pool.QueryRow(context.Background(), "SELECT count(*) FROM public.bookings").Scan(&count))
		assert.Zero(t, count)
	})
}
