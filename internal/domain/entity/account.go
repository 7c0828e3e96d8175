// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultProfilePictureURL is assigned to every newly registered account.
const DefaultProfilePictureURL = "https://www.gravatar.com/avatar/"

// Account is the root of every authorization decision: one person able to log in and own content.
type Account struct {
	ID                 uuid.UUID // The Global Unique Identifier (GUID) for the account.
	Username           string    // Display login name, unique case-insensitively.
	NormalizedUsername string    // Upper-cased username used for lookups and the unique index.
	Email              string    // Contact email, unique case-insensitively, also usable for login.
	NormalizedEmail    string    // Upper-cased email used for lookups and the unique index.
	PasswordHash       string    // Algorithm-versioned bcrypt hash; never leaves the service layer.
	ProfilePictureURL  string    // Avatar location.
	Roles              Roles     // Role memberships resolved from the role store.
	Version            int64     // Optimistic concurrency token, bumped on each update.
	CreatedAt          time.Time // Timestamp of when this account was created.
	UpdatedAt          time.Time // Timestamp of the last modification to this account.
}

// NormalizeName returns the lookup form of a username, email or role name.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SetUsername assigns the username and its normalized form together.
func (a *Account) SetUsername(username string) {
	a.Username = username
	a.NormalizedUsername = NormalizeName(username)
}

// SetEmail assigns the email and its normalized form together.
func (a *Account) SetEmail(email string) {
	a.Email = email
	a.NormalizedEmail = NormalizeName(email)
}

// IsAdmin reports whether the account carries the Admin role.
func (a *Account) IsAdmin() bool {
	return a.Roles.Contains(RoleAdmin)
}
