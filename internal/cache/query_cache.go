// Package cache implements the read-through query cache for history list
// endpoints: canonical cache keys, TTL'd payload entries and coarse-grained
// bulk invalidation via a tracked key index.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

// indexKey tracks every cached history key. The store has no "list keys"
// primitive, so bulk invalidation walks this set instead.
const indexKey = "idx:history:all"

const (
	defaultPage     = 1
	defaultPageSize = 100
)

// Params are raw query parameters as presented by the client. Numeric
// values may arrive as numbers or numeric strings; Fingerprint normalizes
// both to the same key.
type Params struct {
	Page     string
	PageSize string
	Limit    string
	Since    string
	Start    string
	End      string
	Keyword  string
}

// Fingerprint derives the canonical cache key: semantically identical
// queries map to the same key regardless of parameter presentation.
// PageSize falls back to the Limit synonym, the keyword is trimmed and
// lowercased, and date bounds are passed through trimmed.
func Fingerprint(p Params) string {
	page := atoiDefault(p.Page, defaultPage)
	size := atoiDefault(p.PageSize, 0)
	if size == 0 {
		size = atoiDefault(p.Limit, defaultPageSize)
	}
	keyword := strings.ToLower(strings.TrimSpace(p.Keyword))
	return fmt.Sprintf("history:v2:p=%d|ps=%d|since=%s|start=%s|end=%s|kw=%s",
		page, size,
		strings.TrimSpace(p.Since),
		strings.TrimSpace(p.Start),
		strings.TrimSpace(p.End),
		keyword,
	)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// QueryCache stores serialized result sets in the key-value store and keeps
// an index of live keys to support invalidation.
type QueryCache struct {
	store  model.KeyValue
	logger *logger.Logger
}

func NewQueryCache(store model.KeyValue, logger *logger.Logger) *QueryCache {
	return &QueryCache{store: store, logger: logger}
}

// Get returns the cached payload for key and whether it was present.
func (c *QueryCache) Get(ctx context.Context, key string) (string, bool, error) {
	payload, err := c.store.GetString(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cached query: %w", err)
	}
	return payload, true, nil
}

// Put stores the payload under key with the given TTL and records the key
// in the index so InvalidateAll can find it later.
func (c *QueryCache) Put(ctx context.Context, key, payload string, ttl time.Duration) error {
	if err := c.store.SetString(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("failed to cache query result: %w", err)
	}
	if _, err := c.store.AddToSet(ctx, indexKey, key); err != nil {
		return fmt.Errorf("failed to index cache key: %w", err)
	}
	return nil
}

// InvalidateAll deletes every tracked cache entry plus the index itself.
// Any write to the underlying dataset drops the whole cache namespace; with
// the small expected cache size this beats tracking fine-grained
// dependencies.
func (c *QueryCache) InvalidateAll(ctx context.Context) error {
	keys, err := c.store.SetMembers(ctx, indexKey)
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) > 0 {
		if _, err := c.store.DeleteKeys(ctx, keys...); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}
	if _, err := c.store.DeleteKeys(ctx, indexKey); err != nil {
		return fmt.Errorf("failed to delete cache index: %w", err)
	}
	return nil
}
