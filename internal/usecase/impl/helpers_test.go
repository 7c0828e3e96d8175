package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devroots/config"
	"devroots/internal/domain/entity"
	"devroots/internal/domain/repository"
	"devroots/internal/domain/service"
	"devroots/internal/infra/auth"
	"devroots/internal/infra/persistence/memory"
	"devroots/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(bcryptCost int) *config.Config {
	cfg := &config.Config{
		JWT: config.JWTConfig{Key: "test-signing-key-0123456789abcdef"},
		Auth: &config.AuthConfig{
			BcryptCost: bcryptCost,
		},
	}
	cfg.ApplyDefaults()

	return cfg
}

// mockEventPublisher records published account events.
type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *mockEventPublisher) Close() error {
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	types := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		if call.Method == "PublishAccountEvent" {
			types = append(types, call.Arguments.Get(1).(*service.AccountEvent).Type)
		}
	}

	return types
}

type testFixtures struct {
	cfg          *config.Config
	store        *memory.Store
	accountRepo  repository.AccountRepository
	categoryRepo repository.CategoryRepository
	blogRepo     repository.BlogRepository
	commentRepo  repository.CommentRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	publisher    *mockEventPublisher
	guard        usecase.IntegrityGuard

	accounts   usecase.AccountUsecase
	categories usecase.CategoryUsecase
	blogs      usecase.BlogUsecase
	comments   usecase.CommentUsecase
	bootstrap  usecase.BootstrapUsecase
}

func newTestFixtures(t *testing.T, configure ...func(*config.Config)) *testFixtures {
	t.Helper()

	cfg := newTestConfig(bcrypt.MinCost)
	for _, fn := range configure {
		fn(cfg)
	}

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	store := memory.NewStore()
	f := &testFixtures{
		cfg:          cfg,
		store:        store,
		accountRepo:  memory.NewAccountRepository(store),
		categoryRepo: memory.NewCategoryRepository(store),
		blogRepo:     memory.NewBlogRepository(store),
		commentRepo:  memory.NewCommentRepository(store),
		hasher:       auth.NewBcryptHasher(cfg),
		tokenService: tokenService,
		publisher:    new(mockEventPublisher),
	}
	f.publisher.On("PublishAccountEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	logger := newDiscardLogger()
	txManager := memory.NewTransactionManager(store)
	f.guard = NewIntegrityGuard(IntegrityGuardParams{
		AccountRepo:  f.accountRepo,
		CategoryRepo: f.categoryRepo,
		BlogRepo:     f.blogRepo,
		CommentRepo:  f.commentRepo,
	})
	f.accounts = NewAccountService(AccountServiceParams{
		Logger:       logger,
		TxManager:    txManager,
		AccountRepo:  f.accountRepo,
		BlogRepo:     f.blogRepo,
		CommentRepo:  f.commentRepo,
		Hasher:       f.hasher,
		TokenService: f.tokenService,
		Publisher:    f.publisher,
	})
	f.categories = NewCategoryService(CategoryServiceParams{
		Logger:       logger,
		CategoryRepo: f.categoryRepo,
	})
	f.blogs = NewBlogService(BlogServiceParams{
		Logger:      logger,
		AccountRepo: f.accountRepo,
		BlogRepo:    f.blogRepo,
		CommentRepo: f.commentRepo,
		Guard:       f.guard,
	})
	f.comments = NewCommentService(CommentServiceParams{
		Logger:      logger,
		AccountRepo: f.accountRepo,
		BlogRepo:    f.blogRepo,
		CommentRepo: f.commentRepo,
		Guard:       f.guard,
	})
	f.bootstrap = NewBootstrapService(BootstrapServiceParams{
		Config:      cfg,
		Logger:      logger,
		TxManager:   txManager,
		AccountRepo: f.accountRepo,
		Hasher:      f.hasher,
	})

	return f
}

// register creates an account through the service and returns the identity a token for it would carry.
func (f *testFixtures) register(t *testing.T, username, email, password string) service.Identity {
	t.Helper()

	out, err := f.accounts.Register(context.Background(), &usecase.RegisterInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)

	account, err := f.accountRepo.FindByUsername(context.Background(), out.Username)
	require.NoError(t, err)

	return service.Identity{Username: account.Username, Email: account.Email, Roles: account.Roles}
}

func adminIdentity() service.Identity {
	return service.Identity{Username: "root", Roles: []entity.Role{entity.RoleUser, entity.RoleAdmin}}
}
