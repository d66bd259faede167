package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/sirupsen/logrus"
)

const (
	minPasswordLength = 8
	// bcrypt refuses longer inputs.
	maxPasswordBytes  = 72
	maxUsernameLength = 150
)

// Service defines business logic related to users and their sessions.
type Service interface {
	Register(ctx context.Context, username, password string) (*User, *auth.TokenPair, error)
	Login(ctx context.Context, username, password string) (*User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, id *auth.Identity, refreshToken string) error
	GetByID(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens *auth.Issuer
	log    logrus.FieldLogger
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, tokens *auth.Issuer, log logrus.FieldLogger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

func (s *service) Register(ctx context.Context, username, password string) (*User, *auth.TokenPair, error) {
	clean := normalizeUsername(username)
	if !validUsername(clean) {
		return nil, nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, nil, ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return nil, nil, ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Username:     clean,
		PasswordHash: hash,
		IsActive:     true,
	}
	// The unique index decides races between concurrent registrations.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(ctx, u.ID, u.Username)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*User, *auth.TokenPair, error) {
	clean := normalizeUsername(username)
	if clean == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, clean)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, nil, ErrInactiveUser
	}

	// Best effort; a failed timestamp update does not fail the login.
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to update last login")
	} else {
		u.LastLoginAt = &now
	}

	pair, err := s.tokens.Issue(ctx, u.ID, u.Username)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken, func(ctx context.Context, userID string) (string, error) {
		u, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", auth.ErrInvalidRefreshToken
			}
			return "", err
		}
		if !u.IsActive {
			return "", ErrInactiveUser
		}
		return u.Username, nil
	})
}

func (s *service) Logout(ctx context.Context, id *auth.Identity, refreshToken string) error {
	return s.tokens.Revoke(ctx, id, refreshToken)
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// normalizeUsername trims spaces and lowercases the username.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validUsername(u string) bool {
	if u == "" || len(u) > maxUsernameLength {
		return false
	}
	for _, r := range u {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case strings.ContainsRune("@.+-_", r):
		default:
			return false
		}
	}
	return true
}
