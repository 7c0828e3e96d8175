package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/errors"
)

type accountRepository struct {
	store *Store
	// undo is set when the repository runs inside a transaction.
	undo *undoLog
}

// NewAccountRepository creates an AccountRepository over the store.
func NewAccountRepository(store *Store) repository.AccountRepository {
	return &accountRepository{store: store}
}

func (r *accountRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrAccountNotFound)
	}

	return r.withRoles(account), nil
}

func (r *accountRepository) FindByUsername(_ context.Context, username string) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account := r.findByUsernameLocked(username)
	if account == nil {
		return nil, errors.WithStack(repository.ErrAccountNotFound)
	}

	return r.withRoles(account), nil
}

func (r *accountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account := r.findByEmailLocked(email)
	if account == nil {
		return nil, errors.WithStack(repository.ErrAccountNotFound)
	}

	return r.withRoles(account), nil
}

func (r *accountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.findByUsernameLocked(username) != nil, nil
}

func (r *accountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.findByEmailLocked(email) != nil, nil
}

func (r *accountRepository) List(_ context.Context) ([]*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*entity.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		accounts = append(accounts, r.withRoles(account))
	}
	slices.SortFunc(accounts, func(a, b *entity.Account) int {
		return strings.Compare(a.NormalizedUsername, b.NormalizedUsername)
	})

	return accounts, nil
}

func (r *accountRepository) HasRoleMember(_ context.Context, role entity.Role) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, roles := range r.store.memberships {
		if slices.Contains(roles, role) {
			return true, nil
		}
	}

	return false, nil
}

func (r *accountRepository) Create(_ context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if _, exists := r.store.accounts[account.ID]; exists {
		return errors.New("account id already exists")
	}
	if err := r.checkUniqueLocked(account); err != nil {
		return err
	}

	r.undo.saveAccount(r.store, account.ID)
	account.Version = 1
	stored := *account
	stored.Roles = nil
	r.store.accounts[account.ID] = &stored

	return nil
}

func (r *accountRepository) Update(_ context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.accounts[account.ID]
	if !ok || current.Version != account.Version {
		return errors.WithStack(repository.ErrStaleWrite)
	}
	if err := r.checkUniqueLocked(account); err != nil {
		return err
	}

	// Content rows reference the owner by username and follow a rename.
	if current.Username != account.Username {
		r.renameOwnerLocked(current.Username, account.Username)
	}

	r.undo.saveAccount(r.store, account.ID)
	account.Version++
	stored := *account
	stored.Roles = nil
	r.store.accounts[account.ID] = &stored

	return nil
}

func (r *accountRepository) AssignRole(_ context.Context, accountID uuid.UUID, role entity.Role) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[accountID]; !ok {
		return errors.WithStack(repository.ErrAccountNotFound)
	}
	if _, ok := r.store.roles[role]; !ok {
		return errors.WithStack(repository.ErrRoleNotFound)
	}
	if slices.Contains(r.store.memberships[accountID], role) {
		return nil
	}

	r.undo.saveMemberships(r.store, accountID)
	r.store.memberships[accountID] = append(slices.Clone(r.store.memberships[accountID]), role)

	return nil
}

func (r *accountRepository) findByUsernameLocked(username string) *entity.Account {
	normalized := entity.NormalizeName(username)
	for _, account := range r.store.accounts {
		if account.NormalizedUsername == normalized {
			return account
		}
	}

	return nil
}

func (r *accountRepository) findByEmailLocked(email string) *entity.Account {
	normalized := entity.NormalizeName(email)
	for _, account := range r.store.accounts {
		if account.NormalizedEmail == normalized {
			return account
		}
	}

	return nil
}

// checkUniqueLocked mirrors the unique indexes on the normalized columns.
func (r *accountRepository) checkUniqueLocked(account *entity.Account) error {
	for id, other := range r.store.accounts {
		if id == account.ID {
			continue
		}
		if other.NormalizedUsername == account.NormalizedUsername {
			return errors.WithStack(domainerrors.ErrUsernameTaken)
		}
		if other.NormalizedEmail == account.NormalizedEmail {
			return errors.WithStack(domainerrors.ErrEmailTaken)
		}
	}

	return nil
}

func (r *accountRepository) renameOwnerLocked(from, to string) {
	for id, blog := range r.store.blogs {
		if blog.Username == from {
			r.undo.saveBlog(r.store, id)
			renamed := *blog
			renamed.Username = to
			r.store.blogs[id] = &renamed
		}
	}
	for id, comment := range r.store.comments {
		if comment.Username == from {
			r.undo.saveComment(r.store, id)
			renamed := *comment
			renamed.Username = to
			r.store.comments[id] = &renamed
		}
	}
}

func (r *accountRepository) withRoles(account *entity.Account) *entity.Account {
	result := *account
	result.Roles = slices.Clone(entity.Roles(r.store.memberships[account.ID]))
	if result.Roles == nil {
		result.Roles = entity.Roles{}
	}

	return &result
}
