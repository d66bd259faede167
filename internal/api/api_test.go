package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]*user.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func TestRequireActiveUser(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Minute)
	users := fakeUsers{
		"active":   {ID: "active", IsActive: true},
		"disabled": {ID: "disabled", IsActive: false},
	}
	v := RequireActiveUser(auth.NewAuthenticator(jwt, auth.NewMemoryRevoker()), users)

	verify := func(userID string) error {
		tok, err := jwt.GenerateAccessToken(userID, userID)
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), tok)
		return err
	}

	assert.NoError(t, verify("active"))
	assert.ErrorIs(t, verify("disabled"), user.ErrInactiveUser)
	assert.ErrorIs(t, verify("deleted"), auth.ErrInvalidToken)

	_, err := v.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		name string
		err  error
		code int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthz", Health(pingFunc(func(context.Context) error { return tc.err })))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
