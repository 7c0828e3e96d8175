package impl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devroots/config"
	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
	"devroots/internal/infra/persistence/memory"
	"devroots/internal/usecase"
)

func TestAccountService_Register(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()

	out, err := f.accounts.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Pw1!",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, "alice@example.com", out.Email)
	assert.Equal(t, entity.DefaultProfilePictureURL, out.ProfilePicture)
	assert.Equal(t, []string{"User"}, out.Roles)
	assert.Equal(t, out.CreatedAt, out.UpdatedAt)

	stored, err := f.accountRepo.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Roles)
	assert.NotEqual(t, "Pw1!", stored.PasswordHash)
	assert.Equal(t, service.VerifyMatch, f.hasher.Verify(stored.PasswordHash, "Pw1!"))

	assert.Equal(t, []string{service.EventAccountRegistered}, f.publisher.eventTypes())
}

func TestAccountService_Register_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   *usecase.RegisterInput
		wantErr error
	}{
		{
			name:    "nil input",
			input:   nil,
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "invalid email",
			input:   &usecase.RegisterInput{Email: "not-an-email", Username: "carol", Password: "Pw1!"},
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "username too short",
			input:   &usecase.RegisterInput{Email: "c@example.com", Username: "ca", Password: "Pw1!"},
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "weak password",
			input:   &usecase.RegisterInput{Email: "c@example.com", Username: "carol", Password: "password"},
			wantErr: domainerrors.ErrPasswordStrength,
		},
		{
			name:    "duplicate email",
			input:   &usecase.RegisterInput{Email: "A@X.com", Username: "someone", Password: "Pw1!"},
			wantErr: domainerrors.ErrEmailTaken,
		},
		{
			name:    "duplicate username differs only in case",
			input:   &usecase.RegisterInput{Email: "other@x.com", Username: "ALICE", Password: "Pw1!"},
			wantErr: domainerrors.ErrUsernameTaken,
		},
		{
			name:    "email checked before username",
			input:   &usecase.RegisterInput{Email: "a@x.com", Username: "alice", Password: "Pw1!"},
			wantErr: domainerrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixtures(t)
			ctx := context.Background()
			f.register(t, "alice", "a@x.com", "Pw1!")

			_, err := f.accounts.Register(ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			accounts, err := f.accountRepo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, accounts, 1)
		})
	}
}

func TestAccountService_Register_PublishFailureDoesNotFail(t *testing.T) {
	f := newTestFixtures(t)
	f.publisher.ExpectedCalls = nil
	f.publisher.On("PublishAccountEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	out, err := f.accounts.Register(context.Background(), &usecase.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Pw1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Username)
	f.publisher.AssertNumberOfCalls(t, "PublishAccountEvent", 1)
}

func TestAccountService_Login(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com", "Pw1!")

	for _, identifier := range []string{"a@x.com", "alice", "ALICE", " A@X.COM "} {
		t.Run(identifier, func(t *testing.T) {
			out, err := f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: identifier, Password: "Pw1!"})
			require.NoError(t, err)
			assert.Equal(t, "alice", out.Username)
			assert.Equal(t, "a@x.com", out.Email)

			claims, err := f.tokenService.ValidateToken(out.Token)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, "alice", claims.Subject)
			assert.NotEmpty(t, claims.ID)
			assert.Equal(t, out.Roles, claims.Roles)
			assert.WithinDuration(t, time.Now().Add(service.TokenTTL), out.ExpiresAt, time.Minute)
		})
	}
}

func TestAccountService_Login_TokenRolesMatchAccountRoles(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()
	identity := f.register(t, "alice", "a@x.com", "Pw1!")
	require.NoError(t, f.accountRepo.AssignRole(ctx, mustAccountID(t, f, identity.Username), entity.RoleBlogger))

	out, err := f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "alice", Password: "Pw1!"})
	require.NoError(t, err)

	account, err := f.accountRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	claims, err := f.tokenService.ValidateToken(out.Token)
	require.NoError(t, err)
	assert.ElementsMatch(t, account.Roles.ToStrings(), claims.Roles)
	assert.Len(t, claims.Roles, 2)
}

func TestAccountService_Login_InvalidCredentials(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com", "Pw1!")

	_, err := f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "nobody", Password: "Pw1!"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "", Password: "Pw1!"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAccountService_Login_RehashesOutdatedCost(t *testing.T) {
	f := newTestFixtures(t, func(cfg *config.Config) {
		cfg.Auth.BcryptCost = bcrypt.MinCost + 1
	})
	ctx := context.Background()

	legacyHash, err := bcrypt.GenerateFromPassword([]byte("Pw1!"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &entity.Account{ID: uuid.New(), PasswordHash: string(legacyHash), CreatedAt: time.Now(), UpdatedAt: time.Now()}
	account.SetUsername("legacy")
	account.SetEmail("legacy@x.com")
	require.NoError(t, f.accountRepo.Create(ctx, account))
	require.NoError(t, f.accountRepo.AssignRole(ctx, account.ID, entity.RoleUser))

	_, err = f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "legacy", Password: "Pw1!"})
	require.NoError(t, err)

	stored, err := f.accountRepo.FindByUsername(ctx, "legacy")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
	assert.Equal(t, service.VerifyMatch, f.hasher.Verify(stored.PasswordHash, "Pw1!"))
}

func TestAccountService_UpdatePassword_Rejections(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "a@x.com", "Pw1!")
	bob := f.register(t, "bob", "b@x.com", "Pw1!")

	tests := []struct {
		name      string
		requester service.Identity
		username  string
		input     *usecase.UpdatePasswordInput
		wantErr   error
	}{
		{
			name:      "other user",
			requester: bob,
			username:  "alice",
			input:     &usecase.UpdatePasswordInput{Password: "Pw2!", RepeatedPassword: "Pw2!"},
			wantErr:   domainerrors.ErrUnauthorizedMutation,
		},
		{
			name:      "guard runs before lookup",
			requester: bob,
			username:  "ghost",
			input:     &usecase.UpdatePasswordInput{Password: "Pw2!", RepeatedPassword: "Pw2!"},
			wantErr:   domainerrors.ErrUnauthorizedMutation,
		},
		{
			name:      "unknown account",
			requester: adminIdentity(),
			username:  "ghost",
			input:     &usecase.UpdatePasswordInput{Password: "Pw2!", RepeatedPassword: "Pw2!"},
			wantErr:   domainerrors.ErrAccountNotFound,
		},
		{
			name:      "repeated password differs",
			requester: alice,
			username:  "alice",
			input:     &usecase.UpdatePasswordInput{Password: "Pw2!", RepeatedPassword: "Pw3!"},
			wantErr:   domainerrors.ErrPasswordMismatch,
		},
		{
			name:      "same as current",
			requester: alice,
			username:  "alice",
			input:     &usecase.UpdatePasswordInput{Password: "Pw1!", RepeatedPassword: "Pw1!"},
			wantErr:   domainerrors.ErrSamePassword,
		},
		{
			name:      "weak password",
			requester: alice,
			username:  "alice",
			input:     &usecase.UpdatePasswordInput{Password: "weakpass", RepeatedPassword: "weakpass"},
			wantErr:   domainerrors.ErrPasswordStrength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.accounts.UpdatePassword(ctx, tt.requester, tt.username, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "alice", Password: "Pw1!"})
	assert.NoError(t, err, "rejected changes must leave the password untouched")
}

func TestAccountService_PasswordChangeFlow(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()

	_, err := f.accounts.Register(ctx, &usecase.RegisterInput{Email: "a@x.com", Username: "alice", Password: "Pw1!"})
	require.NoError(t, err)

	login, err := f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "a@x.com", Password: "Pw1!"})
	require.NoError(t, err)
	claims, err := f.tokenService.ValidateToken(login.Token)
	require.NoError(t, err)

	requester := service.Identity{
		Username: claims.Username,
		Email:    claims.Email,
		Roles:    entity.RolesFromStrings(claims.Roles),
	}
	err = f.accounts.UpdatePassword(ctx, requester, "alice", &usecase.UpdatePasswordInput{
		Password:         "Pw2!",
		RepeatedPassword: "Pw2!",
	})
	require.NoError(t, err)

	_, err = f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "alice", Password: "Pw1!"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "alice", Password: "Pw2!"})
	assert.NoError(t, err)

	assert.Equal(t, []string{service.EventAccountRegistered, service.EventAccountPasswordChanged}, f.publisher.eventTypes())
}

func TestAccountService_PasswordChangeSurvivesConcurrentRollback(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()
	bob := f.register(t, "bob", "b@x.com", "Pw1!x")

	err := memory.NewTransactionManager(f.store).Execute(ctx, func(_ repository.RepositoryFactory) error {
		if err := f.accounts.UpdatePassword(ctx, bob, "bob", &usecase.UpdatePasswordInput{
			Password:         "Pw2!x",
			RepeatedPassword: "Pw2!x",
		}); err != nil {
			return err
		}

		return errors.New("registration failed")
	})
	require.Error(t, err)

	_, err = f.accounts.Login(ctx, &usecase.LoginInput{EmailUsername: "bob", Password: "Pw2!x"})
	assert.NoError(t, err)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	t.Run("owner renames and content follows", func(t *testing.T) {
		f := newTestFixtures(t)
		ctx := context.Background()
		alice := f.register(t, "alice", "a@x.com", "Pw1!")
		category := &entity.Category{Title: "Go", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		require.NoError(t, f.categoryRepo.Create(ctx, category))
		_, err := f.blogs.CreateBlog(ctx, alice, &usecase.BlogInput{
			Title: "First", Content: "Hello", Username: "alice", CategoryID: category.ID,
		})
		require.NoError(t, err)

		out, err := f.accounts.UpdateProfile(ctx, alice, "alice", &usecase.UpdateProfileInput{
			Username:       "alicia",
			Email:          "alicia@x.com",
			ProfilePicture: "https://cdn.example.com/alicia.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "alicia", out.Username)
		assert.Equal(t, "alicia@x.com", out.Email)
		assert.Equal(t, "https://cdn.example.com/alicia.png", out.ProfilePicture)
		require.Len(t, out.Blogs, 1)
		assert.Equal(t, "alicia", out.Blogs[0].Username)

		_, err = f.accounts.GetAccount(ctx, "alice")
		assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
	})

	t.Run("empty picture falls back to default", func(t *testing.T) {
		f := newTestFixtures(t)
		alice := f.register(t, "alice", "a@x.com", "Pw1!")

		out, err := f.accounts.UpdateProfile(context.Background(), alice, "alice", &usecase.UpdateProfileInput{
			Username: "alice",
			Email:    "a@x.com",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultProfilePictureURL, out.ProfilePicture)
	})

	t.Run("case-only rename of own username is allowed", func(t *testing.T) {
		f := newTestFixtures(t)
		alice := f.register(t, "alice", "a@x.com", "Pw1!")

		out, err := f.accounts.UpdateProfile(context.Background(), alice, "alice", &usecase.UpdateProfileInput{
			Username: "Alice",
			Email:    "a@x.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", out.Username)
	})

	t.Run("conflicts", func(t *testing.T) {
		f := newTestFixtures(t)
		ctx := context.Background()
		alice := f.register(t, "alice", "a@x.com", "Pw1!")
		f.register(t, "bob", "b@x.com", "Pw1!")

		_, err := f.accounts.UpdateProfile(ctx, alice, "alice", &usecase.UpdateProfileInput{Username: "BOB", Email: "a@x.com"})
		assert.ErrorIs(t, err, domainerrors.ErrUsernameTaken)

		_, err = f.accounts.UpdateProfile(ctx, alice, "alice", &usecase.UpdateProfileInput{Username: "alice", Email: "b@x.com"})
		assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
	})

	t.Run("admin may edit others, users may not", func(t *testing.T) {
		f := newTestFixtures(t)
		ctx := context.Background()
		f.register(t, "alice", "a@x.com", "Pw1!")
		bob := f.register(t, "bob", "b@x.com", "Pw1!")
		input := &usecase.UpdateProfileInput{Username: "alice", Email: "new@x.com"}

		_, err := f.accounts.UpdateProfile(ctx, bob, "alice", input)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedMutation)

		out, err := f.accounts.UpdateProfile(ctx, adminIdentity(), "alice", input)
		require.NoError(t, err)
		assert.Equal(t, "new@x.com", out.Email)
	})

	t.Run("invalid picture url", func(t *testing.T) {
		f := newTestFixtures(t)
		alice := f.register(t, "alice", "a@x.com", "Pw1!")

		_, err := f.accounts.UpdateProfile(context.Background(), alice, "alice", &usecase.UpdateProfileInput{
			Username: "alice", Email: "a@x.com", ProfilePicture: "not a url",
		})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})
}

func TestAccountService_GetAndList(t *testing.T) {
	f := newTestFixtures(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "a@x.com", "Pw1!")
	f.register(t, "bob", "b@x.com", "Pw1!")
	category := &entity.Category{Title: "Go", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, f.categoryRepo.Create(ctx, category))
	blog, err := f.blogs.CreateBlog(ctx, alice, &usecase.BlogInput{
		Title: "First", Content: "Hello", Username: "alice", CategoryID: category.ID,
	})
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, alice, &usecase.CommentInput{Username: "alice", BlogID: blog.ID, Content: "me first"})
	require.NoError(t, err)

	out, err := f.accounts.GetAccount(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Username)
	assert.Len(t, out.Blogs, 1)
	assert.Len(t, out.Comments, 1)

	list, err := f.accounts.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, account := range list {
		assert.Equal(t, []string{"User"}, account.Roles)
		if account.Username == "bob" {
			assert.Empty(t, account.Blogs)
		}
	}

	_, err = f.accounts.GetAccount(ctx, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func mustAccountID(t *testing.T, f *testFixtures, username string) uuid.UUID {
	t.Helper()

	account, err := f.accountRepo.FindByUsername(context.Background(), username)
	require.NoError(t, err)

	return account.ID
}
