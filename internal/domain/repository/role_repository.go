package repository

import (
	"context"
	"errors"

	"devroots/internal/domain/entity"
)

// ErrRoleNotFound is returned when a role name is not seeded.
var ErrRoleNotFound = errors.New("role not found")

// RoleRepository reads the seeded role set.
type RoleRepository interface {
	// FindByName retrieves a role by its name, compared in normalized form.
	FindByName(ctx context.Context, name entity.Role) (*entity.RoleRecord, error)

	// List returns every seeded role.
	List(ctx context.Context) ([]*entity.RoleRecord, error)
}
