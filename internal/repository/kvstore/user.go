// Package kvstore implements record stores on top of the shared key-value
// backend, so user accounts survive (or degrade) together with the token
// registry.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/wallboard/wallboard-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const (
	fieldHash      = "hash"
	fieldRole      = "role"
	fieldCreatedAt = "created_at"
)

// UserRepository stores users as field maps keyed by lowercased email.
type UserRepository struct {
	store model.KeyValue
}

func NewUserRepository(store model.KeyValue) *UserRepository {
	return &UserRepository{store: store}
}

func userKey(uid string) string {
	return "user:" + uid
}

func (r *UserRepository) Exists(ctx context.Context, uid string) (bool, error) {
	exists, err := r.store.Exists(ctx, userKey(uid))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Get(ctx context.Context, uid string) (model.User, error) {
	fields, err := r.store.GetFields(ctx, userKey(uid))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if fields[fieldHash] == "" {
		return model.User{}, model.ErrNotFound
	}

	user := model.User{
		UID:          uid,
		PasswordHash: fields[fieldHash],
		Role:         fields[fieldRole],
	}
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	if raw := fields[fieldCreatedAt]; raw != "" {
		if createdAt, err := time.Parse(time.RFC3339, raw); err == nil {
			user.CreatedAt = createdAt
		}
	}
	return user, nil
}

func (r *UserRepository) Put(ctx context.Context, user model.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := r.store.SetFields(ctx, userKey(user.UID), map[string]string{
		fieldHash:      user.PasswordHash,
		fieldRole:      user.Role,
		fieldCreatedAt: createdAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}
