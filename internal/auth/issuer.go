package auth

import (
	"context"
	"fmt"
	"time"
)

// TokenPair is what register, login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Issuer mints access/refresh token pairs and revokes them on logout.
type Issuer struct {
	jwt        *JWTManager
	refresh    RefreshStore
	revoker    Revoker
	refreshTTL time.Duration
}

func NewIssuer(jwt *JWTManager, refresh RefreshStore, revoker Revoker, refreshTTL time.Duration) *Issuer {
	return &Issuer{jwt: jwt, refresh: refresh, revoker: revoker, refreshTTL: refreshTTL}
}

// Issue starts a new refresh family for the user.
func (i *Issuer) Issue(ctx context.Context, userID, username string) (*TokenPair, error) {
	access, err := i.jwt.GenerateAccessToken(userID, username)
	if err != nil {
		return nil, err
	}
	refresh, err := i.refresh.Issue(ctx, userID, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: i.jwt.TTL()}, nil
}

// Rotate exchanges a refresh token for its successor. resolve maps the owning user id
// to the username embedded in the new access token and may reject the user.
func (i *Issuer) Rotate(ctx context.Context, refreshToken string, resolve func(ctx context.Context, userID string) (string, error)) (*TokenPair, error) {
	userID, next, err := i.refresh.Rotate(ctx, refreshToken, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	username, err := resolve(ctx, userID)
	if err != nil {
		_ = i.refresh.Revoke(ctx, next)
		return nil, err
	}

	access, err := i.jwt.GenerateAccessToken(userID, username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: next, ExpiresIn: i.jwt.TTL()}, nil
}

// Revoke ends the refresh family (when a token is given) and blocks the current access token.
func (i *Issuer) Revoke(ctx context.Context, id *Identity, refreshToken string) error {
	if refreshToken != "" {
		if err := i.refresh.Revoke(ctx, refreshToken); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}
	if id == nil {
		return nil
	}
	if ttl := time.Until(id.ExpiresAt); ttl > 0 {
		if err := i.revoker.Revoke(ctx, id.TokenID, ttl); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}
	return nil
}
