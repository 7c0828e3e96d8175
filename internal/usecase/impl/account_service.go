package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	deliverycontext "devroots/internal/delivery/context"
	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
	"devroots/internal/usecase"
)

// eventPublishTimeout bounds a publish after the write it reports has committed.
const eventPublishTimeout = 5 * time.Second

// dummyPassword is verified on unknown logins so both failure paths pay for one bcrypt comparison.
const dummyPassword = "devroots-login-timing-equalizer"

// accountService implements the AccountUsecase interface.
type accountService struct {
	logger       *slog.Logger
	txManager    repository.TransactionManager
	accountRepo  repository.AccountRepository
	blogRepo     repository.BlogRepository
	commentRepo  repository.CommentRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	publisher    service.EventPublisher
	now          func() time.Time

	dummyHashOnce sync.Once
	dummyHash     string
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	Logger       *slog.Logger
	TxManager    repository.TransactionManager
	AccountRepo  repository.AccountRepository
	BlogRepo     repository.BlogRepository
	CommentRepo  repository.CommentRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Publisher    service.EventPublisher
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		logger:       params.Logger,
		txManager:    params.TxManager,
		accountRepo:  params.AccountRepo,
		blogRepo:     params.BlogRepo,
		commentRepo:  params.CommentRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		now:          time.Now,
	}
}

// log returns the request-scoped logger if available, otherwise falls back to the service logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an account holding the User role.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AccountOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	emailTaken, err := srv.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check email")
	}
	if emailTaken {
		return nil, domainerrors.ErrEmailTaken.WithDetails(fmt.Sprintf("The email: %s is already in use", email))
	}

	usernameTaken, err := srv.accountRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check username")
	}
	if usernameTaken {
		return nil, domainerrors.ErrUsernameTaken.WithDetails(fmt.Sprintf("The username: %s is already in use", username))
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
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
		if err := accountRepo.AssignRole(ctx, account.ID, entity.RoleUser); err != nil {
			return errors.Wrap(domainerrors.ErrRoleAssignmentFailed, err.Error())
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to register account")
	}
	account.Roles = entity.Roles{entity.RoleUser}

	srv.log(ctx).Info("Account registered",
		slog.String("account_id", account.ID.String()),
		slog.String("username", account.Username))
	srv.publish(ctx, service.EventAccountRegistered, account)

	return toAccountOutput(account, nil, nil), nil
}

// Login verifies the credentials and issues a bearer token carrying the account's roles.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	account, err := srv.findByEmailOrUsername(ctx, strings.TrimSpace(input.EmailUsername))
	if errors.Is(err, repository.ErrAccountNotFound) {
		srv.hasher.Verify(srv.loadDummyHash(), input.Password)
		srv.log(ctx).Info("Login rejected", slog.String("reason", "unknown account"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "account not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	result := srv.hasher.Verify(account.PasswordHash, input.Password)
	if !result.Matched() {
		srv.log(ctx).Info("Login rejected",
			slog.String("reason", "password mismatch"),
			slog.String("username", account.Username))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}
	if result == service.VerifyMatchRehashNeeded {
		srv.rehash(ctx, account, input.Password)
	}

	issued, err := srv.tokenService.IssueToken(service.Identity{
		Username: account.Username,
		Email:    account.Email,
		Roles:    account.Roles,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	return &usecase.LoginOutput{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		Username:  account.Username,
		Email:     account.Email,
		Roles:     account.Roles.ToStrings(),
	}, nil
}

// GetAccount returns one account with the content it owns.
func (srv *accountService) GetAccount(ctx context.Context, username string) (*usecase.AccountOutput, error) {
	account, err := srv.findAccount(ctx, username)
	if err != nil {
		return nil, err
	}

	blogs, err := srv.blogRepo.ListByUsername(ctx, account.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blogs")
	}
	comments, err := srv.commentRepo.ListByUsername(ctx, account.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list comments")
	}

	return toAccountOutput(account, blogs, comments), nil
}

// ListAccounts returns every account with the content it owns.
func (srv *accountService) ListAccounts(ctx context.Context) ([]*usecase.AccountOutput, error) {
	accounts, err := srv.accountRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	blogs, err := srv.blogRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blogs")
	}
	comments, err := srv.commentRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list comments")
	}

	blogsByOwner := make(map[string][]*entity.Blog)
	for _, blog := range blogs {
		key := entity.NormalizeName(blog.Username)
		blogsByOwner[key] = append(blogsByOwner[key], blog)
	}
	commentsByOwner := make(map[string][]*entity.Comment)
	for _, comment := range comments {
		key := entity.NormalizeName(comment.Username)
		commentsByOwner[key] = append(commentsByOwner[key], comment)
	}

	outputs := make([]*usecase.AccountOutput, 0, len(accounts))
	for _, account := range accounts {
		ownedBlogs := blogsByOwner[account.NormalizedUsername]
		if ownedBlogs == nil {
			ownedBlogs = []*entity.Blog{}
		}
		ownedComments := commentsByOwner[account.NormalizedUsername]
		if ownedComments == nil {
			ownedComments = []*entity.Comment{}
		}
		outputs = append(outputs, toAccountOutput(account, ownedBlogs, ownedComments))
	}

	return outputs, nil
}

// UpdateProfile changes the username, email and profile picture of an account.
func (srv *accountService) UpdateProfile(
	ctx context.Context,
	requester service.Identity,
	username string,
	input *usecase.UpdateProfileInput,
) (*usecase.AccountOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := srv.authorize(ctx, requester, username); err != nil {
		return nil, err
	}

	account, err := srv.findAccount(ctx, username)
	if err != nil {
		return nil, err
	}

	newUsername := strings.TrimSpace(input.Username)
	if entity.NormalizeName(newUsername) != account.NormalizedUsername {
		taken, err := srv.accountRepo.ExistsByUsername(ctx, newUsername)
		if err != nil {
			return nil, errors.Wrap(err, "failed to check username")
		}
		if taken {
			return nil, domainerrors.ErrUsernameTaken.WithDetails(fmt.Sprintf("The username: %s is already in use", newUsername))
		}
	}

	newEmail := strings.TrimSpace(input.Email)
	if entity.NormalizeName(newEmail) != account.NormalizedEmail {
		taken, err := srv.accountRepo.ExistsByEmail(ctx, newEmail)
		if err != nil {
			return nil, errors.Wrap(err, "failed to check email")
		}
		if taken {
			return nil, domainerrors.ErrEmailTaken.WithDetails(fmt.Sprintf("The email: %s is already in use", newEmail))
		}
	}

	account.SetUsername(newUsername)
	account.SetEmail(newEmail)
	account.ProfilePictureURL = input.ProfilePicture
	if account.ProfilePictureURL == "" {
		account.ProfilePictureURL = entity.DefaultProfilePictureURL
	}
	account.UpdatedAt = srv.now()

	if err := srv.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	srv.publish(ctx, service.EventAccountProfileUpdated, account)

	return srv.GetAccount(ctx, account.Username)
}

// UpdatePassword replaces the password of an account.
func (srv *accountService) UpdatePassword(
	ctx context.Context,
	requester service.Identity,
	username string,
	input *usecase.UpdatePasswordInput,
) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if err := srv.authorize(ctx, requester, username); err != nil {
		return err
	}

	account, err := srv.findAccount(ctx, username)
	if err != nil {
		return err
	}

	if input.Password != input.RepeatedPassword {
		return errors.Wrap(domainerrors.ErrPasswordMismatch, "repeated password differs")
	}
	if srv.hasher.Verify(account.PasswordHash, input.Password).Matched() {
		return errors.Wrap(domainerrors.ErrSamePassword, "new password equals the current one")
	}
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return err
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	account.UpdatedAt = srv.now()

	if err := srv.saveAccount(ctx, account); err != nil {
		return err
	}

	srv.log(ctx).Info("Password changed", slog.String("username", account.Username))
	srv.publish(ctx, service.EventAccountPasswordChanged, account)

	return nil
}

func (srv *accountService) authorize(ctx context.Context, requester service.Identity, username string) error {
	if err := guardMutation(requester, username); err != nil {
		srv.log(ctx).Warn("Account mutation denied",
			slog.String("requester", requester.Username),
			slog.String("target", username))

		return err
	}

	return nil
}

func (srv *accountService) findAccount(ctx context.Context, username string) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrAccountNotFound.WithDetails(fmt.Sprintf("The user: %s has not been found", username))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	return account, nil
}

func (srv *accountService) findByEmailOrUsername(ctx context.Context, emailOrUsername string) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByEmail(ctx, emailOrUsername)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return srv.accountRepo.FindByUsername(ctx, emailOrUsername)
	}

	return account, err
}

// saveAccount persists an account and maps a lost optimistic race.
func (srv *accountService) saveAccount(ctx context.Context, account *entity.Account) error {
	err := srv.accountRepo.Update(ctx, account)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrStaleWrite) {
		return errors.Wrap(err, "failed to update account")
	}

	_, findErr := srv.accountRepo.FindByID(ctx, account.ID)
	if errors.Is(findErr, repository.ErrAccountNotFound) {
		return domainerrors.ErrAccountNotFound.WithDetails(fmt.Sprintf("The user: %s has not been found", account.Username))
	}

	return errors.Wrap(domainerrors.ErrConcurrentUpdate, "account changed since it was read")
}

// rehash upgrades a hash produced with an outdated cost. Failures only cost the upgrade.
func (srv *accountService) rehash(ctx context.Context, account *entity.Account, password string) {
	hash, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Warn("Failed to rehash password", slog.Any("error", err))

		return
	}

	account.PasswordHash = hash
	if err := srv.accountRepo.Update(ctx, account); err != nil {
		srv.log(ctx).Warn("Failed to persist rehashed password",
			slog.String("username", account.Username),
			slog.Any("error", err))
	}
}

func (srv *accountService) loadDummyHash() string {
	srv.dummyHashOnce.Do(func() {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.logger.Warn("Failed to prepare login timing hash", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	return srv.dummyHash
}

func (srv *accountService) publish(ctx context.Context, eventType string, account *entity.Account) {
	event := &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		AccountID:  account.ID.String(),
		Username:   account.Username,
		Email:      account.Email,
		OccurredAt: srv.now(),
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := srv.publisher.PublishAccountEvent(publishCtx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("event_type", eventType),
			slog.String("event_id", event.EventID),
			slog.Any("error", err))
	}
}
