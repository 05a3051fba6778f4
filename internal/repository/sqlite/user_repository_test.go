package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"codefusion/internal/domain"
	"codefusion/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(username, email string) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		School:       "Lane Tech",
		FirstName:    "Alice",
		BirthCity:    "chicago",
	}
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	id, err := repo.Create(ctx, newTestUser("alice", "alice@example.com"))
	require.NoError(t, err)
	require.Positive(t, id)

	user, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.False(t, user.IsLoggedIn)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
}

func TestUserRepositoryNotFound(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryUniqueConstraints(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, newTestUser("alice", "alice@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newTestUser("alice", "other@example.com"))
	require.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.Create(ctx, newTestUser("bob", "alice@example.com"))
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, newTestUser("alice", "alice@example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePassword(ctx, "alice", "new-hash"))

	user, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "new-hash", user.PasswordHash)

	err = repo.UpdatePassword(ctx, "nobody", "new-hash")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositorySetLoggedIn(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, newTestUser("alice", "alice@example.com"))
	require.NoError(t, err)

	require.NoError(t, repo.SetLoggedIn(ctx, "alice", true))

	user, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, user.IsLoggedIn)

	err = repo.SetLoggedIn(ctx, "nobody", true)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
