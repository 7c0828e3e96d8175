// Package memory is an in-process implementation of every repository contract.
// It backs the "memory" storage driver and the service and handler tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"devroots/internal/domain/entity"
	"devroots/internal/domain/repository"
)

// Store holds all tables behind one lock. Rows are copied on the way in and out
// so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex
	// txMu serializes transactions with each other.
	txMu sync.Mutex

	roles       map[entity.Role]*entity.RoleRecord
	accounts    map[uuid.UUID]*entity.Account
	memberships map[uuid.UUID][]entity.Role
	categories  map[int64]*entity.Category
	blogs       map[int64]*entity.Blog
	comments    map[int64]*entity.Comment

	nextCategoryID int64
	nextBlogID     int64
	nextCommentID  int64
}

// NewStore returns an empty store with the role set seeded.
func NewStore() *Store {
	s := &Store{
		roles:       make(map[entity.Role]*entity.RoleRecord),
		accounts:    make(map[uuid.UUID]*entity.Account),
		memberships: make(map[uuid.UUID][]entity.Role),
		categories:  make(map[int64]*entity.Category),
		blogs:       make(map[int64]*entity.Blog),
		comments:    make(map[int64]*entity.Comment),
	}
	for _, role := range entity.SeedRoles() {
		s.roles[role.Name] = &role
	}

	return s
}

// rowImage is the state of one row before a transaction first wrote it.
type rowImage[V any] struct {
	row     V
	existed bool
}

func saveRow[K comparable, V any](before map[K]rowImage[V], table map[K]V, key K) {
	if _, seen := before[key]; seen {
		return
	}
	row, existed := table[key]
	before[key] = rowImage[V]{row: row, existed: existed}
}

func revertRows[K comparable, V any](table map[K]V, before map[K]rowImage[V]) {
	for key, image := range before {
		if image.existed {
			table[key] = image.row
		} else {
			delete(table, key)
		}
	}
}

// undoLog records the rows a transaction wrote, so a rollback reverts only
// those rows and leaves writes made outside the transaction in place.
// A nil log records nothing.
type undoLog struct {
	accounts    map[uuid.UUID]rowImage[*entity.Account]
	memberships map[uuid.UUID]rowImage[[]entity.Role]
	blogs       map[int64]rowImage[*entity.Blog]
	comments    map[int64]rowImage[*entity.Comment]
}

func newUndoLog() *undoLog {
	return &undoLog{
		accounts:    make(map[uuid.UUID]rowImage[*entity.Account]),
		memberships: make(map[uuid.UUID]rowImage[[]entity.Role]),
		blogs:       make(map[int64]rowImage[*entity.Blog]),
		comments:    make(map[int64]rowImage[*entity.Comment]),
	}
}

// The save methods must be called with the store lock held.

func (u *undoLog) saveAccount(s *Store, id uuid.UUID) {
	if u != nil {
		saveRow(u.accounts, s.accounts, id)
	}
}

func (u *undoLog) saveMemberships(s *Store, id uuid.UUID) {
	if u != nil {
		saveRow(u.memberships, s.memberships, id)
	}
}

func (u *undoLog) saveBlog(s *Store, id int64) {
	if u != nil {
		saveRow(u.blogs, s.blogs, id)
	}
}

func (u *undoLog) saveComment(s *Store, id int64) {
	if u != nil {
		saveRow(u.comments, s.comments, id)
	}
}

func (s *Store) revert(u *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revertRows(s.accounts, u.accounts)
	revertRows(s.memberships, u.memberships)
	revertRows(s.blogs, u.blogs)
	revertRows(s.comments, u.comments)
}

// transactionManager gives all-or-nothing semantics by reverting the rows a
// failed transaction wrote.
type transactionManager struct {
	store *Store
}

// NewTransactionManager creates a TransactionManager over the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn and rolls its writes back if fn fails or panics.
func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	undo := newUndoLog()
	defer func() {
		if r := recover(); r != nil {
			tm.store.revert(undo)
			panic(r)
		}
		if err != nil {
			tm.store.revert(undo)
		}
	}()

	return fn(&repositoryFactory{store: tm.store, undo: undo})
}

type repositoryFactory struct {
	store *Store
	undo  *undoLog
}

func (f *repositoryFactory) AccountRepo() repository.AccountRepository {
	return &accountRepository{store: f.store, undo: f.undo}
}

func (f *repositoryFactory) RoleRepo() repository.RoleRepository {
	return NewRoleRepository(f.store)
}
