package service

import (
	"strings"

	"devroots/internal/domain/entity"
)

// Identity is the verified requester: who they are and which roles they hold.
type Identity struct {
	Username string
	Email    string
	Roles    entity.Roles
}

// IsAdmin reports whether the identity carries the Admin role.
func (i Identity) IsAdmin() bool {
	return i.Roles.Contains(entity.RoleAdmin)
}

// Decision is the outcome of an authorization check.
type Decision bool

const (
	// Denied forbids the mutation.
	Denied Decision = false
	// Allowed permits the mutation.
	Allowed Decision = true
)

// CanMutate applies the ownership rule: a requester may mutate a resource owned by
// targetUsername only when it is their own, or when they hold the Admin role.
func CanMutate(requester Identity, targetUsername string) Decision {
	if requester.IsAdmin() {
		return Allowed
	}
	if requester.Username != "" && strings.EqualFold(requester.Username, targetUsername) {
		return Allowed
	}

	return Denied
}
