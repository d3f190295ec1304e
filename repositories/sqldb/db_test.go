package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-service/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB, "postgres", zap.NewNop()), mock
}

func TestDB_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		assert.NoError(t, db.HealthCheck(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		err := db.HealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database health check failed")
	})

	t.Run("query fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("boom"))

		err := db.HealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database query check failed")
	})
}

func TestDB_Migrate(t *testing.T) {
	fsys := fstest.MapFS{"00001_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}}

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	t.Run("runs goose from the embedded root", func(t *testing.T) {
		db, _ := newMockDB(t)
		var gotDir string
		gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}

		require.NoError(t, db.Migrate(context.Background(), fsys))
		assert.Equal(t, ".", gotDir)
		assert.Equal(t, "postgres", db.Dialect())
	})

	t.Run("wraps goose errors", func(t *testing.T) {
		db, _ := newMockDB(t)
		gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
			return errors.New("bad migration")
		}

		err := db.Migrate(context.Background(), fsys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run migrations: bad migration")
	})

	t.Run("rejects unknown dialect", func(t *testing.T) {
		sqlDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		err = New(sqlDB, "oracle-ish", zap.NewNop()).Migrate(context.Background(), fsys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set migration dialect")
	})
}

func TestTransactionManager_InTransaction(t *testing.T) {
	t.Run("commits on success and binds executor", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tm := NewTransactionManager(db, zap.NewNop())
		err := tm.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
			got, ok := GetTransactionFromContext(ctx)
			require.True(t, ok)
			assert.Same(t, tx, got)

			_, err := GetExecutor(ctx, db).ExecContext(ctx, "UPDATE users SET username = 'x'")
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		tm := NewTransactionManager(db, zap.NewNop())
		err := tm.InTransaction(context.Background(), func(context.Context, repositories.Transaction) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("no conn"))

		tm := NewTransactionManager(db, zap.NewNop())
		err := tm.InTransaction(context.Background(), func(context.Context, repositories.Transaction) error {
			t.Fatal("fn must not run")
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestGetExecutor_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)

	_, ok := GetTransactionFromContext(context.Background())
	assert.False(t, ok)
	assert.Same(t, db.DB, GetExecutor(context.Background(), db))
}
