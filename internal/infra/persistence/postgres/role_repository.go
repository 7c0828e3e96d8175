package postgres

import (
	"context"

	"gorm.io/gorm"

	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/errors"
	"devroots/internal/infra/persistence/model"
)

// roleRepository implements repository.RoleRepository using GORM.
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository is the constructor for roleRepository.
func NewRoleRepository(db *gorm.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

func (repo *roleRepository) FindByName(ctx context.Context, name entity.Role) (*entity.RoleRecord, error) {
	var roleM model.RoleModel
	err := repo.db.WithContext(ctx).
		Where("normalized_name = ?", entity.NormalizeName(string(name))).
		First(&roleM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrRoleNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find role")
	}

	return toRoleDomain(&roleM), nil
}

func (repo *roleRepository) List(ctx context.Context) ([]*entity.RoleRecord, error) {
	var roleMs []model.RoleModel
	if err := repo.db.WithContext(ctx).Order("id").Find(&roleMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list roles")
	}

	roles := make([]*entity.RoleRecord, 0, len(roleMs))
	for i := range roleMs {
		roles = append(roles, toRoleDomain(&roleMs[i]))
	}

	return roles, nil
}

func toRoleDomain(m *model.RoleModel) *entity.RoleRecord {
	return &entity.RoleRecord{
		ID:             m.ID,
		Name:           entity.Role(m.Name),
		NormalizedName: m.NormalizedName,
	}
}
