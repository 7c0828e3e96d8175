package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/errors"
	"devroots/internal/infra/persistence/model"
)

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return repo.findOne(ctx, "normalized_username = ?", entity.NormalizeName(username))
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return repo.findOne(ctx, "normalized_email = ?", entity.NormalizeName(email))
}

func (repo *accountRepository) findOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Preload("Roles").
		Where(query, arg).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(repository.ErrAccountNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account")
	}

	return toAccountDomain(&accountM), nil
}

func (repo *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return repo.exists(ctx, "normalized_username = ?", entity.NormalizeName(username))
}

func (repo *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return repo.exists(ctx, "normalized_email = ?", entity.NormalizeName(email))
}

func (repo *accountRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.AccountModel{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check account existence")
	}

	return count > 0, nil
}

func (repo *accountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	var accountMs []model.AccountModel
	if err := repo.db.WithContext(ctx).Preload("Roles").Order("normalized_username").Find(&accountMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list accounts")
	}

	accounts := make([]*entity.Account, 0, len(accountMs))
	for i := range accountMs {
		accounts = append(accounts, toAccountDomain(&accountMs[i]))
	}

	return accounts, nil
}

func (repo *accountRepository) HasRoleMember(ctx context.Context, role entity.Role) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.AccountRoleModel{}).
		Joins("JOIN roles ON roles.id = account_roles.role_id").
		Where("roles.normalized_name = ?", entity.NormalizeName(string(role))).
		Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check role membership")
	}

	return count > 0, nil
}

func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	accountM := fromAccountDomain(account)
	accountM.Version = 1

	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(accountM).Error; err != nil {
		return translateAccountWriteError(err, "failed to create account")
	}
	account.Version = accountM.Version

	return nil
}

func (repo *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]any{
			"username":            account.Username,
			"normalized_username": account.NormalizedUsername,
			"email":               account.Email,
			"normalized_email":    account.NormalizedEmail,
			"password_hash":       account.PasswordHash,
			"profile_picture_url": account.ProfilePictureURL,
			"updated_at":          account.UpdatedAt,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return translateAccountWriteError(result.Error, "failed to update account")
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(repository.ErrStaleWrite)
	}
	account.Version++

	return nil
}

func (repo *accountRepository) AssignRole(ctx context.Context, accountID uuid.UUID, role entity.Role) error {
	roleRecord, err := NewRoleRepository(repo.db).FindByName(ctx, role)
	if err != nil {
		return err
	}

	err = repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.AccountRoleModel{AccountID: accountID, RoleID: roleRecord.ID}).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.WithStack(repository.ErrAccountNotFound)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to assign role")
	}

	return nil
}

// translateAccountWriteError maps unique violations to the conflict the client can act on.
func translateAccountWriteError(err error, details string) error {
	if constraint, ok := uniqueViolationConstraint(err); ok {
		switch constraint {
		case constraintAccountsNormalizedEmail:
			return errors.WithStack(domainerrors.ErrEmailTaken)
		default:
			return errors.WithStack(domainerrors.ErrUsernameTaken)
		}
	}
	if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WithDetails(details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func toAccountDomain(m *model.AccountModel) *entity.Account {
	roles := make(entity.Roles, 0, len(m.Roles))
	for _, roleM := range m.Roles {
		roles = append(roles, entity.Role(roleM.Name))
	}

	return &entity.Account{
		ID:                 m.ID,
		Username:           m.Username,
		NormalizedUsername: m.NormalizedUsername,
		Email:              m.Email,
		NormalizedEmail:    m.NormalizedEmail,
		PasswordHash:       m.PasswordHash,
		ProfilePictureURL:  m.ProfilePictureURL,
		Roles:              roles,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func fromAccountDomain(a *entity.Account) *model.AccountModel {
	return &model.AccountModel{
		ID:                 a.ID,
		Username:           a.Username,
		NormalizedUsername: a.NormalizedUsername,
		Email:              a.Email,
		NormalizedEmail:    a.NormalizedEmail,
		PasswordHash:       a.PasswordHash,
		ProfilePictureURL:  a.ProfilePictureURL,
		Version:            a.Version,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
