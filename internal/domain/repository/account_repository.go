// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"devroots/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound is returned when no account matches a lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStaleWrite is returned when an optimistic update matched no row at the expected version.
	ErrStaleWrite = errors.New("stale write")
)

// AccountRepository defines the credential store operations.
// Username and email lookups are case-insensitive.
type AccountRepository interface {
	// FindByID retrieves an account with its roles.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByUsername retrieves an account with its roles by username.
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// FindByEmail retrieves an account with its roles by email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// ExistsByUsername reports whether any account uses the username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether any account uses the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns every account with its roles, ordered by username.
	List(ctx context.Context) ([]*entity.Account, error)

	// HasRoleMember reports whether at least one account holds the role.
	HasRoleMember(ctx context.Context, role entity.Role) (bool, error)

	// Create persists a new account. Duplicate usernames or emails yield the matching conflict error.
	Create(ctx context.Context, account *entity.Account) error

	// Update persists changes when account.Version still matches the stored version,
	// otherwise it returns ErrStaleWrite. On success account.Version is advanced.
	Update(ctx context.Context, account *entity.Account) error

	// AssignRole adds a role membership to the account.
	AssignRole(ctx context.Context, accountID uuid.UUID, role entity.Role) error
}
