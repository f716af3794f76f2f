package model

import (
	"context"
	"time"
)

// BackendKind identifies which key-value backend was selected at startup.
type BackendKind string

const (
	BackendRedis  BackendKind = "redis"
	BackendMemory BackendKind = "memory"
)

// KeyValue is the uniform contract over the networked cache and the
// in-process fallback. Callers are backend-agnostic; every operation may
// fail with ErrStoreUnavailable.
//
// TTL caveat: the memory backend does not enforce expiry. Entries persist
// until explicitly deleted. Callers that rely on expiry for cleanup (jti
// records, cached query results) tolerate stale entries while degraded.
type KeyValue interface {
	Exists(ctx context.Context, key string) (bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	// GetString returns ErrKeyNotFound for absent keys.
	GetString(ctx context.Context, key string) (string, error)
	// SetFields merges the given fields into the field-map value at key.
	SetFields(ctx context.Context, key string, fields map[string]string) error
	// GetFields returns an empty map for absent keys.
	GetFields(ctx context.Context, key string) (map[string]string, error)
	// AddToSet reports whether the member was newly added.
	AddToSet(ctx context.Context, key, member string) (bool, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
	// RemoveFromSet reports whether the member was present.
	RemoveFromSet(ctx context.Context, key, member string) (bool, error)
	// DeleteKeys returns the number of keys actually removed. Deletion of a
	// single key is atomic on both backends, which lets callers use the
	// returned count as a delete-if-present primitive.
	DeleteKeys(ctx context.Context, keys ...string) (int, error)
	// Increment bumps a counter, applying ttl when the counter is created.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
