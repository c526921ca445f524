// Package token issues and verifies the bearer tokens that carry a user's
// identity between requests. Tokens are HS256-signed JWTs holding only the
// registered claims {sub, iat, exp}; nothing is persisted server-side, so a
// token stays valid until its expiry and cannot be revoked earlier.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhive/task-api/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Issuer signs and verifies tokens with a process-wide symmetric secret.
// The secret is read-only after construction; safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer. A non-positive ttl falls back to 24h.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue creates a signed token whose subject is the given user id, valid
// from now until now+ttl.
func (i *Issuer) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses raw, checks the HS256 signature and the expiry, and returns
// the embedded subject. Every failure mode collapses into the single
// domain.ErrInvalidToken so callers cannot tell a forged signature from an
// expired or truncated token.
func (i *Issuer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
