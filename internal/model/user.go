package model

import (
	"context"
	"time"
)

const RoleAdmin = "admin"

// DefaultRole is assigned at registration and assumed when a stored user
// record has no role field.
const DefaultRole = "user"

// User represents a stored account. UID is the lowercased email.
type User struct {
	UID          string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserStore defines persistence operations for users.
type UserStore interface {
	Exists(ctx context.Context, uid string) (bool, error)
	// Get returns ErrNotFound for unknown uids.
	Get(ctx context.Context, uid string) (User, error)
	Put(ctx context.Context, user User) error
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, digest string) bool
}
