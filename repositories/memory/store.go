// Package memory provides an in-process user store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/upb/auth-service/models"
	"github.com/upb/auth-service/repositories"
)

// Store keeps credential records in maps guarded by one mutex
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]*models.User
	byEmail    map[string]int64
	byUsername map[string]int64
	now        func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nextID:     1,
		byID:       make(map[int64]*models.User),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
		now:        time.Now,
	}
}

// NewRepositories returns the repositories backed by this store
func (s *Store) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users: &UserRepository{store: s},
	}
}

// GetTransactionManager returns a manager whose transactions are no-ops.
// Insert is already atomic under the store mutex.
func (s *Store) GetTransactionManager() repositories.TransactionManager {
	return transactionManager{}
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(context.Context) error {
	return nil
}

// Driver returns "memory"
func (s *Store) Driver() string {
	return "memory"
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

// UserRepository implements repositories.UserRepository over a Store
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a repository over a fresh store
func NewUserRepository() *UserRepository {
	return &UserRepository{store: NewStore()}
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if id, ok := r.store.byEmail[email]; ok {
		return clone(r.store.byID[id]), nil
	}
	if id, ok := r.store.byUsername[username]; ok {
		return clone(r.store.byID[id]), nil
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byEmail[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return clone(r.store.byID[id]), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return clone(user), nil
}

// Insert checks both unique keys and stores the record under the write lock
func (r *UserRepository) Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.byEmail[email]; ok {
		return nil, repositories.ErrUniqueViolation
	}
	if _, ok := r.store.byUsername[username]; ok {
		return nil, repositories.ErrUniqueViolation
	}

	user := &models.User{
		ID:           r.store.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.store.now().UTC().Truncate(time.Millisecond),
	}
	r.store.nextID++
	r.store.byID[user.ID] = user
	r.store.byEmail[email] = user.ID
	r.store.byUsername[username] = user.ID

	return clone(user), nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]*models.User, 0, len(r.store.byID))
	for _, user := range r.store.byID {
		u := clone(user)
		u.PasswordHash = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// WithTx returns the same repository; memory writes need no transaction
func (r *UserRepository) WithTx(repositories.Transaction) repositories.UserRepository {
	return r
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

type transactionManager struct{}

func (transactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return transaction{ctx: ctx}, nil
}

func (m transactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, transaction{ctx: ctx})
}

type transaction struct {
	ctx context.Context
}

func (transaction) Commit() error              { return nil }
func (transaction) Rollback() error            { return nil }
func (t transaction) Context() context.Context { return t.ctx }
