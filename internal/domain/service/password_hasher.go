// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// VerifyResult is the outcome of checking a password against a stored hash.
type VerifyResult int

const (
	// VerifyMismatch means the password does not match, or the hash is unreadable.
	VerifyMismatch VerifyResult = iota
	// VerifyMatch means the password matches.
	VerifyMatch
	// VerifyMatchRehashNeeded means the password matches but the hash uses outdated parameters.
	VerifyMatchRehashNeeded
)

// Matched reports whether the result is any kind of match.
func (r VerifyResult) Matched() bool {
	return r == VerifyMatch || r == VerifyMatchRehashNeeded
}

// String returns a readable form for logs.
func (r VerifyResult) String() string {
	switch r {
	case VerifyMatch:
		return "match"
	case VerifyMatchRehashNeeded:
		return "match_rehash_needed"
	default:
		return "mismatch"
	}
}

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a hash in constant time.
	Verify(hash, password string) VerifyResult

	// ValidatePasswordStrength checks the configured password policy.
	ValidatePasswordStrength(password string) error
}
