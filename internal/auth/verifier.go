package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
)

var (
	ErrMissingToken = apperror.Unauthorized("missing Authorization header")
	ErrBadHeader    = apperror.Unauthorized("invalid Authorization header format")
	ErrInvalidToken = apperror.Unauthorized("invalid or expired token")
)

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID    string
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Verifier resolves an access token to the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Authenticator verifies JWT access tokens and honours logout revocations.
type Authenticator struct {
	jwt     *JWTManager
	revoker Revoker
}

func NewAuthenticator(jwt *JWTManager, revoker Revoker) *Authenticator {
	return &Authenticator{jwt: jwt, revoker: revoker}
}

func (a *Authenticator) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.jwt.ParseAndValidate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	id := &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
