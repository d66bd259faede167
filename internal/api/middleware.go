package api

import (
	"context"
	"errors"

	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/user"
)

// UserReader looks up the account behind a token.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// activeUserVerifier rejects valid tokens whose account was removed or deactivated.
type activeUserVerifier struct {
	next  auth.Verifier
	users UserReader
}

// RequireActiveUser wraps v so that authenticated routes only admit active accounts.
func RequireActiveUser(v auth.Verifier, users UserReader) auth.Verifier {
	return &activeUserVerifier{next: v, users: users}
}

func (a *activeUserVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	id, err := a.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := a.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrInactiveUser
	}
	return id, nil
}
