// Package security implements credential hashing for the auth service.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-api/internal/core/domain"
)

// PasswordHasher wraps bcrypt with a fixed cost. Hashing embeds a fresh
// random salt on every call, so two hashes of the same plaintext never
// compare equal; verification stays deterministic for a given pair.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost.
// Costs outside bcrypt's supported range fall back to the default.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Hash derives a salted one-way hash of plain.
func (h PasswordHasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether plain matches the stored hash. A mismatch is not an
// error; only a structurally broken stored hash is, surfaced as
// domain.ErrCorruptCredential.
func (h PasswordHasher) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, domain.ErrCorruptCredential
	}
}
