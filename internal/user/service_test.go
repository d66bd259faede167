package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu       sync.Mutex
	byID     map[string]*User
	seq      int
	loginErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]*User)}
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loginErr != nil {
		return r.loginErr
	}
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func newTestService(repo Repository) (Service, *auth.Authenticator) {
	jwt := auth.NewJWTManager("secret", time.Minute)
	revoker := auth.NewMemoryRevoker()
	issuer := auth.NewIssuer(jwt, auth.NewMemoryRefreshStore(), revoker, time.Hour)
	log, _ := test.NewNullLogger()
	return NewService(repo, auth.NewBcryptPasswordHasher(4), issuer, log), auth.NewAuthenticator(jwt, revoker)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, authn := newTestService(newFakeRepo())

	u, pair, err := svc.Register(ctx, "  Alice ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "password123", u.PasswordHash)

	id, err := authn.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newFakeRepo())

	_, _, err := svc.Register(ctx, "", "password123")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, _, err = svc.Register(ctx, "bad name", "password123")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, _, err = svc.Register(ctx, "bob", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, _, err = svc.Register(ctx, "bob", strings.Repeat("x", 80))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)

	_, _, err = svc.Register(ctx, "carol", strings.Repeat("x", 72))
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "bob", "password123")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "BOB", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, _, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	u, pair, err := svc.Login(ctx, "ALICE", "password123")
	require.NoError(t, err)
	assert.NotNil(t, u.LastLoginAt)
	assert.NotEmpty(t, pair.AccessToken)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Inactive(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	u, _, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	repo.byID[u.ID].IsActive = false

	_, _, err = svc.Login(ctx, "alice", "password123")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestLogin_LastLoginFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()

	jwt := auth.NewJWTManager("secret", time.Minute)
	issuer := auth.NewIssuer(jwt, auth.NewMemoryRefreshStore(), auth.NewMemoryRevoker(), time.Hour)
	log, hook := test.NewNullLogger()
	svc := NewService(repo, auth.NewBcryptPasswordHasher(4), issuer, log)

	_, _, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	repo.loginErr = assert.AnError

	_, _, err = svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, authn := newTestService(repo)

	_, pair, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// old token replayed
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenReplay)

	// the replay killed the family
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	_, pair, err = svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	id, err := authn.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, id, pair.RefreshToken))
	_, err = authn.Verify(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefresh_InactiveUser(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	u, pair, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	repo.byID[u.ID].IsActive = false

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInactiveUser)
}
