package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinWorkFactor and MaxWorkFactor bound the configurable bcrypt cost.
const (
	MinWorkFactor = bcrypt.MinCost // 4
	MaxWorkFactor = bcrypt.MaxCost // 31
)

// PasswordHasher produces and verifies adaptive password verifiers.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher validates the work factor and returns a hasher.
func NewPasswordHasher(workFactor int) (*PasswordHasher, error) {
	if workFactor < MinWorkFactor || workFactor > MaxWorkFactor {
		return nil, fmt.Errorf("password work factor %d outside valid range [%d, %d]", workFactor, MinWorkFactor, MaxWorkFactor)
	}
	return &PasswordHasher{cost: workFactor}, nil
}

// Hash returns a new verifier for password. Two calls on the same password
// produce different outputs because bcrypt salts internally.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches verifier.
func (h *PasswordHasher) Verify(password, verifier string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(password)) == nil
}
