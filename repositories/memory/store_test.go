package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-service/repositories"
	"github.com/upb/auth-service/repositories/repotest"
)

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepositoryTests(t, func(t *testing.T) repositories.UserRepository {
		return NewStore().NewRepositories().Users
	})
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, "alice", "a@x.com", "h")
	require.NoError(t, err)
	created.Username = "mallory"

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
}

func TestStore(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	assert.Equal(t, "memory", store.Driver())
	assert.NoError(t, store.HealthCheck(ctx))
	assert.NoError(t, store.Close())

	t.Run("transactions run fn directly", func(t *testing.T) {
		txMgr := store.GetTransactionManager()
		users := store.NewRepositories().Users

		err := txMgr.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
			_, err := users.WithTx(tx).Insert(ctx, "alice", "a@x.com", "h")
			return err
		})
		require.NoError(t, err)

		_, err = users.FindByEmail(ctx, "a@x.com")
		assert.NoError(t, err)

		boom := errors.New("boom")
		err = txMgr.InTransaction(ctx, func(context.Context, repositories.Transaction) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}
