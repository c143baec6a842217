package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestGetSetJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.SetJSON(ctx, "items", "i1", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	hit, err := c.GetJSON(ctx, "items", "i1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestGetJSON_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	var got map[string]string
	hit, err := c.GetJSON(context.Background(), "items", "absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetJSON_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set("followup:items:bad", "{not json")

	var got map[string]string
	hit, err := c.GetJSON(context.Background(), "items", "bad", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "items", "i1", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "items", "i1"))

	var got string
	hit, err := c.GetJSON(ctx, "items", "i1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidateLayer_ScopedToLayer(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "queries", "q1", "a", time.Minute))
	require.NoError(t, c.SetJSON(ctx, "queries", "q2", "b", time.Minute))
	require.NoError(t, c.SetJSON(ctx, "stats", "queue", "c", time.Minute))

	removed, err := c.InvalidateLayer(ctx, "queries")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var got string
	hit, err := c.GetJSON(ctx, "stats", "queue", &got)
	require.NoError(t, err)
	assert.True(t, hit, "other layers must survive")
}

func TestInvalidatePattern(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "queries", "active:all", "a", time.Minute))
	require.NoError(t, c.SetJSON(ctx, "queries", "active:high", "b", time.Minute))
	require.NoError(t, c.SetJSON(ctx, "queries", "waiting", "c", time.Minute))

	removed, err := c.InvalidatePattern(ctx, "queries", "active:*")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var got string
	hit, err := c.GetJSON(ctx, "queries", "waiting", &got)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "items", "i1", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	var got string
	hit, err := c.GetJSON(ctx, "items", "i1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStats(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "items", "i1", "v", time.Minute))

	var got string
	_, _ = c.GetJSON(ctx, "items", "i1", &got)
	_, _ = c.GetJSON(ctx, "items", "absent", &got)
	_, _ = c.GetJSON(ctx, "items", "absent", &got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}
