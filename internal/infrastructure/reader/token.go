package reader

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Minute

// TokenSource mints short-lived HS256 service tokens for the backend.
type TokenSource struct {
	secret  []byte
	subject string
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenSource returns nil when secret is empty so callers can pass the
// result straight into Config.Tokens.
func NewTokenSource(secret, subject string, ttl time.Duration) *TokenSource {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenSource{secret: []byte(secret), subject: subject, ttl: ttl, now: time.Now}
}

// Token signs a fresh token.
func (s *TokenSource) Token() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}
