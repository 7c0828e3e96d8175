// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"devroots/config"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	policy := config.DefaultPasswordStrength()
	if cfg.PasswordStrength != nil {
		policy = cfg.PasswordStrength
	}

	clamped := *policy
	if clamped.MaxLength <= 0 || clamped.MaxLength > maxPasswordBytes {
		clamped.MaxLength = maxPasswordBytes
	}

	return &bcryptHasher{cost: cost, policy: clamped}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	return string(bytes), nil
}

// Verify compares a plaintext password with a bcrypt hash.
// A hash produced with a lower cost than configured still matches but asks for a rehash.
func (h *bcryptHasher) Verify(hash, password string) service.VerifyResult {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return service.VerifyMismatch
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost < h.cost {
		return service.VerifyMatchRehashNeeded
	}

	return service.VerifyMatch
}

// ValidatePasswordStrength checks the password against the configured policy
// and reports every unmet rule at once.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	var problems []string

	length := len([]rune(password))
	if h.policy.MinLength > 0 && length < h.policy.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters long", h.policy.MinLength))
	}
	if len(password) > h.policy.MaxLength {
		problems = append(problems, fmt.Sprintf("must be at most %d bytes long", h.policy.MaxLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if h.policy.RequireUppercase && !hasUpper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if h.policy.RequireLowercase && !hasLower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if h.policy.RequireNumbers && !hasDigit {
		problems = append(problems, "must contain a digit")
	}
	if h.policy.RequireSpecial && !hasSpecial {
		problems = append(problems, "must contain a special character")
	}

	if len(problems) > 0 {
		return domainerrors.ErrPasswordStrength.WithDetails("password " + strings.Join(problems, "; "))
	}

	return nil
}
