package postgres

import (
	"context"

	"github.com/upb/auth-service/config"
	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/repositories/postgres/migrations"
	"github.com/upb/auth-service/repositories/sqldb"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *sqldb.DB
	logger *zap.Logger
}

// NewRepositoryFactory connects to PostgreSQL and applies the embedded migrations
func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewRepositoryFactoryWithDB(db, logger), nil
}

// NewRepositoryFactoryWithDB builds a factory over an already migrated pool
func NewRepositoryFactoryWithDB(db *sqldb.DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users: NewUserRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return sqldb.NewTransactionManager(f.db, f.logger)
}

// HealthCheck pings the database
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	return f.db.HealthCheck(ctx)
}

// Driver returns "postgres"
func (f *RepositoryFactory) Driver() string {
	return config.DriverPostgres
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
