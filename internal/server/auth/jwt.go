// Package auth holds the stateless pieces of authentication: the JWT token
// codec, the bcrypt password hasher and the admin gate.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used when neither the caller nor the configuration
// gives a token lifetime.
const DefaultTokenTTL = 30 * time.Minute

// Claims is the token payload: sub, exp and iat from the registered set
// plus the admin flag captured at issuance.
//
// IsAdmin is a pointer so a token without the claim can be told apart from
// one that says false.
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin *bool `json:"is_admin,omitempty"`
}

// Admin reports the is_admin claim; a missing claim reads as false.
func (c *Claims) Admin() bool {
	return c.IsAdmin != nil && *c.IsAdmin
}

// TokenCodec signs and verifies HS256 access tokens with a shared secret.
// It is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec using secret and defaultTTL
// (DefaultTokenTTL when defaultTTL <= 0).
func NewTokenCodec(secret []byte, defaultTTL time.Duration) *TokenCodec {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	return &TokenCodec{secret: secret, ttl: defaultTTL, now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// TTL is the lifetime used when Encode gets ttl <= 0.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Encode issues a token for subject valid for ttl (the codec default when
// ttl <= 0).
func (c *TokenCodec) Encode(subject string, isAdmin bool, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		IsAdmin: &isAdmin,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Decode verifies signature and expiry and returns the claims.
//
// The token is rejected when the signature does not match, the algorithm is
// not HS256, it is malformed, exp is missing or now >= exp (no leeway), or
// sub or is_admin is absent. Expired tokens give common.ErrTokenExpired,
// everything else common.ErrInvalidToken.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Subject == "" || claims.IsAdmin == nil {
		return nil, fmt.Errorf("%w: missing required claims", common.ErrInvalidToken)
	}

	return claims, nil
}
