package service

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes credentials with bcrypt. The cost makes each call
// deliberately expensive; the per-hash random salt makes outputs
// nondeterministic.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches hash. A malformed hash is treated
// the same as a mismatch.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
