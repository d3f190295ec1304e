// Package repotest holds behaviour tests shared by every UserRepository backend.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-service/repositories"
)

// RunUserRepositoryTests exercises newRepo against the UserRepository contract.
// newRepo must return an empty repository on each call.
func RunUserRepositoryTests(t *testing.T, newRepo func(t *testing.T) repositories.UserRepository) {
	t.Run("insert assigns increasing ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		before := time.Now().UTC().Add(-time.Second)
		alice, err := repo.Insert(ctx, "alice", "a@x.com", "hash-a")
		require.NoError(t, err)
		bob, err := repo.Insert(ctx, "bob", "b@x.com", "hash-b")
		require.NoError(t, err)

		assert.Equal(t, int64(1), alice.ID)
		assert.Greater(t, bob.ID, alice.ID)
		assert.Equal(t, "alice", alice.Username)
		assert.Equal(t, "a@x.com", alice.Email)
		assert.Equal(t, "hash-a", alice.PasswordHash)
		assert.True(t, alice.CreatedAt.After(before), "created_at %v", alice.CreatedAt)
		assert.Equal(t, time.UTC, alice.CreatedAt.Location())
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Insert(ctx, "alice", "a@x.com", "h")
		require.NoError(t, err)

		_, err = repo.Insert(ctx, "alice2", "a@x.com", "h")
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Insert(ctx, "alice", "a@x.com", "h")
		require.NoError(t, err)

		_, err = repo.Insert(ctx, "alice", "other@x.com", "h")
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)
	})

	t.Run("finders", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Insert(ctx, "alice", "a@x.com", "hash-a")
		require.NoError(t, err)

		byEmail, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, "hash-a", byEmail.PasswordHash)
		assert.True(t, created.CreatedAt.Equal(byEmail.CreatedAt))

		byID, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		viaEmail, err := repo.FindByEmailOrUsername(ctx, "a@x.com", "nobody")
		require.NoError(t, err)
		assert.Equal(t, created.ID, viaEmail.ID)

		viaUsername, err := repo.FindByEmailOrUsername(ctx, "nobody@x.com", "alice")
		require.NoError(t, err)
		assert.Equal(t, created.ID, viaUsername.ID)
	})

	t.Run("finders miss", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.FindByEmail(ctx, "missing@x.com")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		_, err = repo.FindByID(ctx, 42)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		_, err = repo.FindByEmailOrUsername(ctx, "missing@x.com", "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("list all ordered without hashes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		empty, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, name := range []string{"carol", "alice", "bob"} {
			_, err := repo.Insert(ctx, name, name+"@x.com", "hash-"+name)
			require.NoError(t, err)
		}

		users, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)

		for i, want := range []string{"carol", "alice", "bob"} {
			assert.Equal(t, want, users[i].Username)
			assert.Empty(t, users[i].PasswordHash)
			if i > 0 {
				assert.Greater(t, users[i].ID, users[i-1].ID)
			}
		}
	})

	t.Run("concurrent inserts of same email", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
			others    []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Insert(ctx, fmt.Sprintf("user%d", i), "same@x.com", "h")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, repositories.ErrUniqueViolation):
					conflicts++
				default:
					others = append(others, err)
				}
			}(i)
		}
		wg.Wait()

		assert.Empty(t, others)
		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, conflicts)
	})

	t.Run("cancelled context", func(t *testing.T) {
		repo := newRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.Insert(ctx, "alice", "a@x.com", "h")
		assert.Error(t, err)
		_, err = repo.FindByEmail(ctx, "a@x.com")
		assert.Error(t, err)
	})
}
