// Package auth issues and verifies unlock tokens: short-lived HS256 JWTs
// that bind a paid checkout session to the purchased product.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
)

var (
	ErrTokenExpired      = errors.New("Token expired")
	ErrTokenInvalid      = errors.New("Invalid token")
	ErrTokenVerification = errors.New("Token verification failed")
	ErrMissingSessionID  = errors.New("missing session id")
	ErrMissingProduct    = errors.New("missing product")
)

// UnlockClaims is the unlock token payload
type UnlockClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Product   string `json:"product"`
}

// IssuedAtTime returns the iat claim, or the zero time
func (c *UnlockClaims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns the exp claim, or the zero time
func (c *UnlockClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// UnlockTokenService signs and verifies unlock tokens. It holds no state
// beyond the secret, so a token stays valid until it expires.
type UnlockTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an UnlockTokenService
type Option func(*UnlockTokenService)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *UnlockTokenService) {
		s.now = now
	}
}

// NewUnlockTokenService creates a service from config
func NewUnlockTokenService(cfg config.UnlockConfig, opts ...Option) *UnlockTokenService {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	s := &UnlockTokenService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the token lifetime
func (s *UnlockTokenService) TTL() time.Duration {
	return s.ttl
}

// Sign issues a token for a paid session. iat is stamped from the clock and
// exp is iat plus the TTL.
func (s *UnlockTokenService) Sign(sessionID, product string) (string, error) {
	if sessionID == "" {
		return "", ErrMissingSessionID
	}
	if product == "" {
		return "", ErrMissingProduct
	}

	now := s.now()
	claims := &UnlockClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SessionID: sessionID,
		Product:   product,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the claims.
// Product matching is left to the caller.
func (s *UnlockTokenService) Verify(tokenString string) (*UnlockClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UnlockClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, ErrTokenInvalid):
			return nil, ErrTokenInvalid
		default:
			return nil, ErrTokenVerification
		}
	}

	claims, ok := token.Claims.(*UnlockClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.SessionID == "" || claims.Product == "" {
		return nil, ErrTokenVerification
	}

	return claims, nil
}

// IsValid reports whether Verify succeeds
func (s *UnlockTokenService) IsValid(tokenString string) bool {
	_, err := s.Verify(tokenString)
	return err == nil
}
