package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("not logged in")

// Claims is what the client can read out of its own token. The signature is
// not checked; only the server can do that.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the payload of a JWT without verifying it. Opaque
// (non-JWT) tokens yield an error.
func ParseClaims(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	var claims Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return &claims, nil
}

// Claims decodes the current token.
func (s *TokenStore) Claims() (*Claims, error) {
	token, ok := s.Get()
	if !ok {
		return nil, ErrNoSession
	}
	return ParseClaims(token)
}
