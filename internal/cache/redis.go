package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-discovery/internal/config"
)

// LikeCountTTL is refreshed on every read and write of a like counter.
const LikeCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForSnapshot is the pointer to a user's latest snapshot id.
func (c *RedisCache) KeyForSnapshot(userID string) string {
	return "snapshot:latest:" + userID
}

// KeyForLikeCount is the counter of likes a user has received.
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return "likes:count:" + userID
}

// pointerScript stores "<generatedAtMillis>:<id>" unless the stored pointer
// is at least as new. ARGV: generatedAt millis, snapshot id, ttl millis.
var pointerScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ts = tonumber(string.match(cur, '^(%d+):'))
	if ts and ts >= tonumber(ARGV[1]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1] .. ':' .. ARGV[2], 'PX', ARGV[3])
return 1
`)

// incrIfWarmScript bumps a counter and refreshes its TTL only when the key
// exists. Returns the new value, or -1 when the key was cold.
var incrIfWarmScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local n = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
return n
`)

// SetSnapshotPointer points the user at snapshotID for at most ttl. A pointer
// to a snapshot generated at or after generatedAt is left in place, so a slow
// writer never replaces a newer snapshot. Reports whether the pointer moved.
func (c *RedisCache) SetSnapshotPointer(ctx context.Context, userID, snapshotID string, generatedAt time.Time, ttl time.Duration) (bool, error) {
	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	n, err := pointerScript.Run(ctx, c.Client,
		[]string{c.KeyForSnapshot(userID)},
		generatedAt.UnixMilli(), snapshotID, ms,
	).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetSnapshotPointer returns "" on a cache miss.
func (c *RedisCache) GetSnapshotPointer(ctx context.Context, userID string) (string, error) {
	val, err := c.Client.Get(ctx, c.KeyForSnapshot(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	if _, id, ok := strings.Cut(val, ":"); ok {
		return id, nil
	}
	return val, nil
}

// IncrLikeCount bumps the received-like counter only if it is already cached,
// so a cold key is rebuilt from the DB instead of starting at 1.
func (c *RedisCache) IncrLikeCount(ctx context.Context, userID string) error {
	return incrIfWarmScript.Run(ctx, c.Client,
		[]string{c.KeyForLikeCount(userID)},
		LikeCountTTL.Milliseconds(),
	).Err()
}

func (c *RedisCache) SetLikeCount(ctx context.Context, userID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, LikeCountTTL).Err()
}

// GetLikeCount returns ok=false on a cache miss.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}
