package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallboard/wallboard-server/internal/kv"
	"github.com/wallboard/wallboard-server/internal/testutil"
)

func TestFingerprint_Defaults(t *testing.T) {
	key := Fingerprint(Params{})
	assert.Equal(t, "history:v2:p=1|ps=100|since=|start=|end=|kw=", key)
}

func TestFingerprint_TypeInsensitive(t *testing.T) {
	// "1" and 1 must fingerprint identically however the client spelled them.
	a := Fingerprint(Params{Page: "1", PageSize: "50"})
	b := Fingerprint(Params{Page: "01", PageSize: " 50 "})
	assert.Equal(t, a, b)
}

func TestFingerprint_LimitSynonym(t *testing.T) {
	a := Fingerprint(Params{PageSize: "25"})
	b := Fingerprint(Params{Limit: "25"})
	assert.Equal(t, a, b)

	// pageSize wins when both are present
	c := Fingerprint(Params{PageSize: "25", Limit: "99"})
	assert.Equal(t, a, c)
}

func TestFingerprint_KeywordNormalized(t *testing.T) {
	a := Fingerprint(Params{Keyword: "  Hello "})
	b := Fingerprint(Params{Keyword: "hello"})
	assert.Equal(t, a, b)
}

func TestQueryCache_PutGet(t *testing.T) {
	ctx := context.Background()
	c := NewQueryCache(kv.NewMemory(), testutil.MakeNoopLogger())

	_, found, err := c.Get(ctx, "history:v2:k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Put(ctx, "history:v2:k", `{"count":0}`, time.Minute))

	payload, found, err := c.Get(ctx, "history:v2:k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"count":0}`, payload)
}

func TestQueryCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	c := NewQueryCache(kv.NewMemory(), testutil.MakeNoopLogger())

	keys := []string{
		Fingerprint(Params{Page: "1"}),
		Fingerprint(Params{Page: "2"}),
		Fingerprint(Params{Keyword: "x"}),
	}
	for _, key := range keys {
		require.NoError(t, c.Put(ctx, key, "payload", time.Minute))
	}

	require.NoError(t, c.InvalidateAll(ctx))

	for _, key := range keys {
		_, found, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, "key %s should miss after invalidation", key)
	}
}

func TestQueryCache_InvalidateAll_Empty(t *testing.T) {
	ctx := context.Background()
	c := NewQueryCache(kv.NewMemory(), testutil.MakeNoopLogger())

	require.NoError(t, c.InvalidateAll(ctx))
}
