// Package sqlite provides the SQLite-backed user store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/upb/auth-service/config"
	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/repositories/sqldb"
	"github.com/upb/auth-service/repositories/sqlite/migrations"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store persists credential records in one SQLite file
type Store struct {
	db     *sqldb.DB
	logger *zap.Logger
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations.
// Writers are serialized on a single connection.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	db := sqldb.New(sqlDB, "sqlite3", logger)
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("sqlite store opened", zap.String("path", cleanPath))
	return &Store{db: db, logger: logger}, nil
}

// NewRepositories creates all repository instances
func (s *Store) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users: NewUserRepository(s.db, s.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (s *Store) GetTransactionManager() repositories.TransactionManager {
	return sqldb.NewTransactionManager(s.db, s.logger)
}

// HealthCheck pings the database
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Driver returns "sqlite"
func (s *Store) Driver() string {
	return config.DriverSQLite
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
