package auth

import (
	"fmt"

	"github.com/dmitrijs2005/keygate/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// PasswordHasher hashes and checks passwords with bcrypt. The hash string
// embeds cost and salt, so verification needs no other state.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher for cost, falling back to
// bcrypt.DefaultCost when cost is out of range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain. Two calls with the same input
// give different strings.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, maxPasswordBytes)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed hash is a
// mismatch, and so is any plain longer than Hash accepts: bcrypt only
// reads the first 72 bytes.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if len(plain) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
