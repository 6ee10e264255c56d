package auth

import (
	"time"

	"github.com/remasterhq/remaster/pkg/jwt"
)

// Claims is the payload of both access and refresh tokens. Both kinds
// carry the token version: bumping a user's version invalidates every
// outstanding token without a blacklist.
type Claims struct {
	jwt.RegisteredClaims
	UserID       int64 `json:"user_id"`
	TokenVersion int   `json:"token_version"`
}

// TokenIssuer mints and verifies access and refresh tokens. The two
// kinds are signed with distinct secrets so compromise of one cannot
// forge the other.
type TokenIssuer struct {
	access     *jwt.Service
	refresh    *jwt.Service
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds an issuer from the configured secrets. An empty
// secret is a configuration fault surfaced at startup.
func NewTokenIssuer(cfg Config) (*TokenIssuer, error) {
	access, err := jwt.New(cfg.AccessTokenSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.New(cfg.RefreshTokenSecret)
	if err != nil {
		return nil, err
	}
	return &TokenIssuer{
		access:     access,
		refresh:    refresh,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// AccessToken signs a short-lived token for the user.
func (i *TokenIssuer) AccessToken(u *User) (string, error) {
	return i.access.Generate(i.claims(u, i.accessTTL))
}

// RefreshToken signs a long-lived token for the user.
func (i *TokenIssuer) RefreshToken(u *User) (string, error) {
	return i.refresh.Generate(i.claims(u, i.refreshTTL))
}

// ParseAccessToken verifies signature and expiry against the access
// secret. The token-version check against the live user happens at the
// call site that loads the user.
func (i *TokenIssuer) ParseAccessToken(token string) (Claims, error) {
	var claims Claims
	if err := i.access.Parse(token, &claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// ParseRefreshToken verifies signature and expiry against the refresh
// secret.
func (i *TokenIssuer) ParseRefreshToken(token string) (Claims, error) {
	var claims Claims
	if err := i.refresh.Parse(token, &claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// ExpiresIn reports the access-token lifetime in whole seconds, the
// value clients receive alongside every token bundle.
func (i *TokenIssuer) ExpiresIn() int {
	return int(i.accessTTL / time.Second)
}

func (i *TokenIssuer) claims(u *User, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID:       u.ID,
		TokenVersion: u.TokenVersion,
	}
}
