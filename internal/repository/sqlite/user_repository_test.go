package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iron-coder/internal/domain"
	"iron-coder/internal/repository"
)

func setupTestRepo(t *testing.T) *UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "db", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserRepository_CreateAndExists(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	user := &domain.User{Username: "alice", PasswordHash: "pw1"}
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	exists, err = repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "pw1"}))
	err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "pw2"})
	assert.ErrorIs(t, err, repository.ErrUserExists)

	users, err := repo.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "pw1", users[0].PasswordHash)
}

func TestUserRepository_ListByUsernameEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	users, err := repo.ListByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_InitIsIdempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "bob", PasswordHash: "x"}))
	require.NoError(t, repo.Init(ctx))

	exists, err := repo.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIsUniqueViolation(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "pw1"}))

	_, err := repo.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, created_at)
VALUES (?, ?, ?)`, "alice", "pw2", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	_, err = repo.db.ExecContext(ctx, `INSERT INTO missing_table (x) VALUES (1)`)
	require.Error(t, err)
	assert.False(t, isUniqueViolation(err))

	assert.False(t, isUniqueViolation(errors.New("unique")))
}
