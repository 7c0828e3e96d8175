// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the name of a role an account can hold.
type Role string

const (
	// RoleUser is assigned to every account at registration.
	RoleUser Role = "User"
	// RoleAdmin may mutate any account or content.
	RoleAdmin Role = "Admin"
	// RoleBlogger marks content authors.
	RoleBlogger Role = "Blogger"
)

// RoleRecord is the stored form of a role: a stable id plus normalized name.
type RoleRecord struct {
	ID             string
	Name           Role
	NormalizedName string
}

// SeedRoles is the fixed role set created once at system initialization.
func SeedRoles() []RoleRecord {
	return []RoleRecord{
		{ID: "1", Name: RoleUser, NormalizedName: NormalizeName(string(RoleUser))},
		{ID: "2", Name: RoleAdmin, NormalizedName: NormalizeName(string(RoleAdmin))},
		{ID: "3", Name: RoleBlogger, NormalizedName: NormalizeName(string(RoleBlogger))},
	}
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is one of the seeded values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleBlogger:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings converts Roles to []string for JWT compatibility.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles, filtering out invalid role strings.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		role := Role(s)
		if role.IsValid() {
			result = append(result, role)
		}
	}

	return result
}
