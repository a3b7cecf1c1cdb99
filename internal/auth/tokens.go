package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	UserID   string
	IssuedAt time.Time
}

// TokenCodec signs and verifies session tokens. The signing secret is fixed
// at construction and read-only afterwards.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return &TokenCodec{secret: secretCopy, ttl: ttl}
}

func (c *TokenCodec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Issue signs a token binding userID with the configured validity window.
func (c *TokenCodec) Issue(userID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry. Callers must not surface the
// expired/invalid distinction to end clients.
func (c *TokenCodec) Verify(tokenString string) (TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return TokenClaims{}, ErrTokenInvalid
	}
	return TokenClaims{UserID: claims.Subject, IssuedAt: claims.IssuedAt.Time}, nil
}
