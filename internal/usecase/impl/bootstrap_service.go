package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"devroots/config"
	"devroots/internal/domain/entity"
	"devroots/internal/domain/repository"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
	"devroots/internal/usecase"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@devroots.local"
)

type bootstrapService struct {
	cfg         *config.Config
	logger      *slog.Logger
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	hasher      service.PasswordHasher
	now         func() time.Time
}

// BootstrapServiceParams holds dependencies for BootstrapService, injected by Fx.
type BootstrapServiceParams struct {
	fx.In

	Config      *config.Config
	Logger      *slog.Logger
	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	Hasher      service.PasswordHasher
}

// NewBootstrapService is the constructor for bootstrapService.
func NewBootstrapService(params BootstrapServiceParams) usecase.BootstrapUsecase {
	return &bootstrapService{
		cfg:         params.Config,
		logger:      params.Logger,
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		hasher:      params.Hasher,
		now:         time.Now,
	}
}

// EnsureAdmin creates or promotes the configured administrator when no Admin exists.
// It is a no-op on every start after the first successful one.
func (srv *bootstrapService) EnsureAdmin(ctx context.Context) error {
	if srv.cfg.Auth == nil || srv.cfg.Auth.BootstrapAdmin == nil || !srv.cfg.Auth.BootstrapAdmin.Enabled {
		return nil
	}
	adminCfg := srv.cfg.Auth.BootstrapAdmin

	hasAdmin, err := srv.accountRepo.HasRoleMember(ctx, entity.RoleAdmin)
	if err != nil {
		return errors.Wrap(err, "failed to look up administrators")
	}
	if hasAdmin {
		srv.logger.Debug("Administrator already present, skipping bootstrap")

		return nil
	}

	username := strings.TrimSpace(adminCfg.Username)
	if username == "" {
		username = defaultAdminUsername
	}
	email := strings.TrimSpace(adminCfg.Email)
	if email == "" {
		email = defaultAdminEmail
	}

	existing, err := srv.accountRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return srv.promote(ctx, existing)
	case !errors.Is(err, repository.ErrAccountNotFound):
		return errors.Wrap(err, "failed to look up bootstrap account")
	}

	password := adminCfg.Password
	generated := password == ""
	if generated {
		password = generatePassword()
	}
	if err := srv.hasher.ValidatePasswordStrength(password); err != nil {
		return errors.Wrap(err, "bootstrap admin password rejected")
	}
	hash, err := srv.hasher.Hash(password)
	if err != nil {
		return err
	}

	now := srv.now()
	account := &entity.Account{
		ID:                uuid.New(),
		PasswordHash:      hash,
		ProfilePictureURL: entity.DefaultProfilePictureURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	account.SetUsername(username)
	account.SetEmail(email)

	err = srv.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		accountRepo := txRepoFactory.AccountRepo()
		if err := accountRepo.Create(ctx, account); err != nil {
			return err
		}
		for _, role := range []entity.Role{entity.RoleUser, entity.RoleAdmin} {
			if err := accountRepo.AssignRole(ctx, account.ID, role); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to create bootstrap admin")
	}

	if generated {
		srv.logger.Warn("Bootstrap administrator created with a generated password, change it after first login",
			slog.String("username", username),
			slog.String("password", password))
	} else {
		srv.logger.Info("Bootstrap administrator created", slog.String("username", username))
	}

	return nil
}

func (srv *bootstrapService) promote(ctx context.Context, account *entity.Account) error {
	if err := srv.accountRepo.AssignRole(ctx, account.ID, entity.RoleAdmin); err != nil {
		return errors.Wrap(err, "failed to promote bootstrap admin")
	}

	srv.logger.Info("Existing account promoted to administrator", slog.String("username", account.Username))

	return nil
}

// generatePassword derives a random password that satisfies the default strength policy.
func generatePassword() string {
	return uuid.NewString() + "-Dr1!"
}
