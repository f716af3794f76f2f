package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallboard/wallboard-server/internal/kv"
	"github.com/wallboard/wallboard-server/internal/model"
)

func TestUserRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemory())

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	user := model.User{
		UID:          "a@b.com",
		PasswordHash: "$2a$10$digest",
		Role:         "admin",
		CreatedAt:    created,
	}
	require.NoError(t, repo.Put(ctx, user))

	exists, err := repo.Exists(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.Equal(t, "admin", got.Role)
	assert.Equal(t, created, got.CreatedAt)
}

func TestUserRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kv.NewMemory())

	_, err := repo.Get(ctx, "nobody@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	exists, err := repo.Exists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_DefaultRole(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := NewUserRepository(store)

	// A record written without a role (e.g. by an older version) reads back
	// with the default role.
	require.NoError(t, store.SetFields(ctx, "user:x@y.com", map[string]string{"hash": "h"}))

	got, err := repo.Get(ctx, "x@y.com")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRole, got.Role)
}
