package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidRefreshToken = apperror.Unauthorized("invalid refresh token")
	// ErrRefreshTokenReplay is returned when an already rotated token is presented again.
	// The whole family is revoked at that point.
	ErrRefreshTokenReplay = apperror.Unauthorized("refresh token reuse detected")
)

// RefreshStore issues opaque refresh tokens grouped in rotation families.
// Only token hashes are stored.
type RefreshStore interface {
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Rotate(ctx context.Context, token string, ttl time.Duration) (userID, next string, err error)
	Revoke(ctx context.Context, token string) error
}

type family struct {
	userID  string
	current string
	hashes  []string
	expiry  time.Time
}

// MemoryRefreshStore keeps families in memory (single instance only).
type MemoryRefreshStore struct {
	mu       sync.Mutex
	families map[string]*family // family id -> family
	byHash   map[string]string  // token hash -> family id
	now      func() time.Time
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{
		families: make(map[string]*family),
		byHash:   make(map[string]string),
		now:      time.Now,
	}
}

func (s *MemoryRefreshStore) Issue(_ context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := randomHex(32)
	if err != nil {
		return "", err
	}
	familyID, err := randomHex(16)
	if err != nil {
		return "", err
	}
	h := hashToken(token)

	s.mu.Lock()
	s.families[familyID] = &family{userID: userID, current: h, hashes: []string{h}, expiry: s.now().Add(ttl)}
	s.byHash[h] = familyID
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryRefreshStore) Rotate(_ context.Context, token string, ttl time.Duration) (string, string, error) {
	h := hashToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	familyID, ok := s.byHash[h]
	if !ok {
		return "", "", ErrInvalidRefreshToken
	}
	f := s.families[familyID]
	if f == nil || s.now().After(f.expiry) {
		s.dropLocked(familyID)
		return "", "", ErrInvalidRefreshToken
	}
	if f.current != h {
		s.dropLocked(familyID)
		return "", "", ErrRefreshTokenReplay
	}

	next, err := randomHex(32)
	if err != nil {
		return "", "", err
	}
	nh := hashToken(next)
	f.current = nh
	f.hashes = append(f.hashes, nh)
	f.expiry = s.now().Add(ttl)
	s.byHash[nh] = familyID
	return f.userID, next, nil
}

func (s *MemoryRefreshStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if familyID, ok := s.byHash[hashToken(token)]; ok {
		s.dropLocked(familyID)
	}
	return nil
}

func (s *MemoryRefreshStore) dropLocked(familyID string) {
	if f := s.families[familyID]; f != nil {
		for _, h := range f.hashes {
			delete(s.byHash, h)
		}
	}
	delete(s.families, familyID)
}

// RedisRefreshStore keeps families in Redis so that rotation works across instances.
type RedisRefreshStore struct {
	client redis.UniversalClient
}

func NewRedisRefreshStore(client redis.UniversalClient) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := randomHex(32)
	if err != nil {
		return "", err
	}
	familyID, err := randomHex(16)
	if err != nil {
		return "", err
	}
	h := hashToken(token)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, refreshTokenKey(h), familyID, ttl)
	pipe.HSet(ctx, refreshFamilyKey(familyID), "user_id", userID, "current", h)
	pipe.Expire(ctx, refreshFamilyKey(familyID), ttl)
	pipe.SAdd(ctx, refreshHashesKey(familyID), h)
	pipe.Expire(ctx, refreshHashesKey(familyID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return token, nil
}

func (s *RedisRefreshStore) Rotate(ctx context.Context, token string, ttl time.Duration) (string, string, error) {
	h := hashToken(token)

	for {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		familyID, err := s.client.Get(ctx, refreshTokenKey(h)).Result()
		if errors.Is(err, redis.Nil) {
			return "", "", ErrInvalidRefreshToken
		}
		if err != nil {
			return "", "", fmt.Errorf("lookup refresh token: %w", err)
		}

		famKey := refreshFamilyKey(familyID)
		var userID, next string

		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			fields, err := tx.HGetAll(ctx, famKey).Result()
			if err != nil {
				return err
			}
			userID = fields["user_id"]
			if userID == "" || fields["current"] == "" {
				return ErrInvalidRefreshToken
			}
			if fields["current"] != h {
				return ErrRefreshTokenReplay
			}

			next, err = randomHex(32)
			if err != nil {
				return err
			}
			nh := hashToken(next)

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, refreshTokenKey(nh), familyID, ttl)
				pipe.HSet(ctx, famKey, "current", nh)
				pipe.Expire(ctx, famKey, ttl)
				pipe.SAdd(ctx, refreshHashesKey(familyID), nh)
				pipe.Expire(ctx, refreshHashesKey(familyID), ttl)
				return nil
			})
			return err
		}, famKey)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrRefreshTokenReplay):
			if dropErr := s.dropFamily(ctx, familyID); dropErr != nil {
				return "", "", fmt.Errorf("revoke refresh family: %w", dropErr)
			}
			return "", "", err
		case err != nil:
			return "", "", fmt.Errorf("rotate refresh token: %w", err)
		}
		return userID, next, nil
	}
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	familyID, err := s.client.Get(ctx, refreshTokenKey(hashToken(token))).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup refresh token: %w", err)
	}
	return s.dropFamily(ctx, familyID)
}

func (s *RedisRefreshStore) dropFamily(ctx context.Context, familyID string) error {
	hashes, err := s.client.SMembers(ctx, refreshHashesKey(familyID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(hashes)+2)
	for _, h := range hashes {
		keys = append(keys, refreshTokenKey(h))
	}
	keys = append(keys, refreshHashesKey(familyID), refreshFamilyKey(familyID))
	return s.client.Del(ctx, keys...).Err()
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func refreshTokenKey(hash string) string      { return "auth:refresh:token:" + hash }
func refreshFamilyKey(familyID string) string { return "auth:refresh:family:" + familyID }
func refreshHashesKey(familyID string) string { return "auth:refresh:hashes:" + familyID }
