package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-discovery/internal/cache"
	"github.com/oggyb/muzz-discovery/internal/config"
)

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSnapshotPointer(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	id, err := c.GetSnapshotPointer(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, id)

	moved, err := c.SetSnapshotPointer(ctx, "u1", "snap-1", at, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, moved)
	id, err = c.GetSnapshotPointer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", id)

	mr.FastForward(31 * time.Minute)
	id, err = c.GetSnapshotPointer(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSnapshotPointer_NeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)
	older := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)

	moved, err := c.SetSnapshotPointer(ctx, "u1", "snap-new", newer, 30*time.Minute)
	require.NoError(t, err)
	require.True(t, moved)

	// a slower builder finishing late
	moved, err = c.SetSnapshotPointer(ctx, "u1", "snap-old", older, 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, moved)

	id, err := c.GetSnapshotPointer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "snap-new", id)

	moved, err = c.SetSnapshotPointer(ctx, "u1", "snap-next", newer.Add(time.Minute), 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, moved)
	id, err = c.GetSnapshotPointer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "snap-next", id)
}

func TestLikeCount_IncrOnlyWhenWarm(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	// cold key stays cold
	require.NoError(t, c.IncrLikeCount(ctx, "u1"))
	_, ok, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetLikeCount(ctx, "u1", 4))
	require.NoError(t, c.IncrLikeCount(ctx, "u1"))

	n, ok, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)
}

func TestLikeCount_IncrRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	key := c.KeyForLikeCount("u1")

	require.NoError(t, c.SetLikeCount(ctx, "u1", 1))
	mr.FastForward(50 * time.Minute)
	require.NoError(t, c.IncrLikeCount(ctx, "u1"))

	assert.Equal(t, cache.LikeCountTTL, mr.TTL(key))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	mr.FastForward(cache.LikeCountTTL + time.Second)
	require.NoError(t, c.IncrLikeCount(ctx, "u1"))
	assert.False(t, mr.Exists(key), "an expired counter is not recreated")
}
