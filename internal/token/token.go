// Package token issues and verifies the bearer tokens that identify a user
// on every authenticated request.
package token

import (
	"fmt"
	"time"

	"github.com/ErlanBelekov/travel-ease/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 72 * time.Hour

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func NewService(key []byte, opts ...Option) *Service {
	s := &Service{key: key, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for userID that expires TTL after now.
func (s *Service) Issue(userID string) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(s.ttl))),
		},
		UserID: userID,
	})
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// ceilSecond rounds t up to a whole second. exp is encoded in whole seconds,
// so truncating would end the token before its full TTL.
func ceilSecond(t time.Time) time.Time {
	if down := t.Truncate(time.Second); down.Before(t) {
		return down.Add(time.Second)
	}
	return t
}

// Verify checks the signature and expiry of raw and returns the embedded user ID.
// A token is accepted up to and including its expiry instant.
func (s *Service) Verify(raw string) (string, error) {
	var c claims
	// Expiry is checked below against the injected clock, with an inclusive bound.
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}

	if c.UserID == "" || c.ExpiresAt == nil {
		return "", domain.ErrTokenInvalid
	}
	if s.now().After(c.ExpiresAt.Time) {
		return "", domain.ErrTokenExpired
	}
	return c.UserID, nil
}

