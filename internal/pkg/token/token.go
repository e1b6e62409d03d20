// Package token issues and verifies the bearer tokens handed out at
// registration and login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "notekeeper"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrEmptySecret  = errors.New("token signing secret is empty")
)

// Claims only identify the caller. Anything fresher than the id must be
// re-read from the user store.
type Claims struct {
	UserId string `json:"user_id"`
	jwt.RegisteredClaims
}

// ClaimsCache memoises successfully verified tokens.
type ClaimsCache interface {
	Get(token string) (*Claims, bool)
	Save(token string, claims *Claims)
}

type Issuer interface {
	Issue(userId uuid.UUID) (string, error)
}

type Verifier interface {
	Verify(tokenString string) (uuid.UUID, error)
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	cache  ClaimsCache
	now    func() time.Time
}

// NewManager builds an HS256 manager. cache may be nil.
func NewManager(secret string, ttl time.Duration, cache ClaimsCache) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		cache:  cache,
		now:    time.Now,
	}, nil
}

func (m *Manager) Issue(userId uuid.UUID) (string, error) {
	now := m.now()
	claims := Claims{
		UserId: userId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   userId.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Verify(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrInvalidToken
	}

	if m.cache != nil {
		if cached, ok := m.cache.Get(tokenString); ok && cached.ExpiresAt != nil && m.now().Before(cached.ExpiresAt.Time) {
			return uuid.Parse(cached.UserId)
		}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userId, err := uuid.Parse(claims.UserId)
	if err != nil || claims.Subject != claims.UserId {
		return uuid.Nil, ErrInvalidToken
	}

	if m.cache != nil {
		m.cache.Save(tokenString, claims)
	}
	return userId, nil
}
