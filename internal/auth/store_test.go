package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshStores(t *testing.T) map[string]RefreshStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]RefreshStore{
		"memory": NewMemoryRefreshStore(),
		"redis":  NewRedisRefreshStore(client),
	}
}

func TestRefreshStore_RotateAndRevoke(t *testing.T) {
	ctx := context.Background()
	for name, s := range refreshStores(t) {
		t.Run(name, func(t *testing.T) {
			token, err := s.Issue(ctx, "user-1", time.Minute)
			require.NoError(t, err)

			userID, next, err := s.Rotate(ctx, token, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, "user-1", userID)
			assert.NotEqual(t, token, next)

			require.NoError(t, s.Revoke(ctx, next))
			_, _, err = s.Rotate(ctx, next, time.Minute)
			assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		})
	}
}

func TestRefreshStore_ReplayRevokesFamily(t *testing.T) {
	ctx := context.Background()
	for name, s := range refreshStores(t) {
		t.Run(name, func(t *testing.T) {
			token, err := s.Issue(ctx, "user-2", time.Minute)
			require.NoError(t, err)
			_, next, err := s.Rotate(ctx, token, time.Minute)
			require.NoError(t, err)

			_, _, err = s.Rotate(ctx, token, time.Minute)
			assert.ErrorIs(t, err, ErrRefreshTokenReplay)

			_, _, err = s.Rotate(ctx, next, time.Minute)
			assert.ErrorIs(t, err, ErrInvalidRefreshToken)
		})
	}
}

func TestRefreshStore_UnknownToken(t *testing.T) {
	ctx := context.Background()
	for name, s := range refreshStores(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Rotate(ctx, "nope", time.Minute)
			assert.ErrorIs(t, err, ErrInvalidRefreshToken)
			assert.NoError(t, s.Revoke(ctx, "nope"))
		})
	}
}

func TestRefreshStore_ConcurrentRotateSingleWinner(t *testing.T) {
	ctx := context.Background()
	for name, s := range refreshStores(t) {
		t.Run(name, func(t *testing.T) {
			token, err := s.Issue(ctx, "user-3", time.Minute)
			require.NoError(t, err)

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, _, err := s.Rotate(ctx, token, time.Minute); err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, wins)
		})
	}
}

func TestMemoryRefreshStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	token, err := s.Issue(ctx, "user-4", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, _, err = s.Rotate(ctx, token, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRevokers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	for name, r := range map[string]Revoker{
		"memory": NewMemoryRevoker(),
		"redis":  NewRedisRevoker(client),
	} {
		t.Run(name, func(t *testing.T) {
			revoked, err := r.IsRevoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
			revoked, err = r.IsRevoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.True(t, revoked)

			// non-positive ttl is a no-op
			require.NoError(t, r.Revoke(ctx, "jti-2", 0))
			revoked, err = r.IsRevoked(ctx, "jti-2")
			require.NoError(t, err)
			assert.False(t, revoked)
		})
	}
}

func TestRedisRevoker_Expires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	r := NewRedisRevoker(client)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
