package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers revoked access token ids until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker keeps revoked ids in-memory (single instance only).
type MemoryRevoker struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{ids: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	r.ids[tokenID] = r.now().Add(ttl)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.ids[tokenID]
	if !ok {
		return false, nil
	}
	if r.now().After(expiry) {
		delete(r.ids, tokenID)
		return false, nil
	}
	return true, nil
}

// RedisRevoker stores revoked ids as expiring keys.
type RedisRevoker struct {
	client redis.UniversalClient
}

func NewRedisRevoker(client redis.UniversalClient) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}
