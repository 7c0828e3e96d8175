package memory

import (
	"context"
	"slices"
	"strings"

	"devroots/internal/domain/entity"
	"devroots/internal/domain/repository"
	"devroots/internal/errors"
)

type roleRepository struct {
	store *Store
}

// NewRoleRepository creates a RoleRepository over the store.
func NewRoleRepository(store *Store) repository.RoleRepository {
	return &roleRepository{store: store}
}

func (r *roleRepository) FindByName(_ context.Context, name entity.Role) (*entity.RoleRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	normalized := entity.NormalizeName(string(name))
	for _, role := range r.store.roles {
		if role.NormalizedName == normalized {
			found := *role

			return &found, nil
		}
	}

	return nil, errors.WithStack(repository.ErrRoleNotFound)
}

func (r *roleRepository) List(_ context.Context) ([]*entity.RoleRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	roles := make([]*entity.RoleRecord, 0, len(r.store.roles))
	for _, role := range r.store.roles {
		found := *role
		roles = append(roles, &found)
	}
	slices.SortFunc(roles, func(a, b *entity.RoleRecord) int {
		return strings.Compare(a.ID, b.ID)
	})

	return roles, nil
}
