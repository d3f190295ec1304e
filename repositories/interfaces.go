package repositories

import (
	"context"
	"errors"

	"github.com/upb/auth-service/models"
)

var (
	// ErrNotFound is returned by finders when no record matches
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation is returned by Insert when the username or email is taken
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles credential record storage.
// Implementations must reject duplicate usernames and emails atomically.
type UserRepository interface {
	// FindByEmailOrUsername returns the first record matching either key
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)

	// FindByEmail retrieves a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// Insert stores a new record and returns it with its assigned ID and creation time
	Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error)

	// ListAll returns every record ordered by ID, without password hashes
	ListAll(ctx context.Context) ([]*models.User, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// HealthChecker reports whether a storage backend is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Repositories holds all repository instances
type Repositories struct {
	Users UserRepository
}

// Store is a storage backend: its repositories, transactions and lifecycle
type Store interface {
	HealthChecker
	NewRepositories() *Repositories
	GetTransactionManager() TransactionManager
	Driver() string
	Close() error
}
