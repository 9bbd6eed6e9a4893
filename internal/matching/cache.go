package matching

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/cache"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/metrics"
	"github.com/oggyb/muzz-discovery/internal/repository"
)

const (
	// DefaultStaleAfter is how long a snapshot is served before regeneration.
	DefaultStaleAfter = 30 * time.Minute

	// SnapshotRetention is how long a snapshot row is kept at all.
	SnapshotRetention = 7 * 24 * time.Hour
)

// Cache serves the latest stored snapshot per user and regenerates it when
// stale. There is no locking: concurrent stale reads may each build a new
// snapshot, and readers always pick the newest by generated_at.
type Cache struct {
	snapshots  *repository.SnapshotRepository
	redis      *cache.RedisCache
	gen        *Generator
	log        *slog.Logger
	now        func() time.Time
	staleAfter time.Duration
}

// NewCache wires a snapshot cache and its generator from the app context.
// A nil RedisCache disables the pointer fast path.
func NewCache(appCtx *app.AppContext) *Cache {
	stale := appCtx.SnapshotStaleAfter
	if stale <= 0 {
		stale = DefaultStaleAfter
	}
	gen := NewGenerator(
		repository.NewProfileRepository(appCtx.DB),
		repository.NewBoostRepository(appCtx.DB),
		appCtx.Now,
	)
	return &Cache{
		snapshots:  repository.NewSnapshotRepository(appCtx.DB),
		redis:      appCtx.RedisCache,
		gen:        gen,
		log:        appCtx.Logger,
		now:        appCtx.Now,
		staleAfter: stale,
	}
}

// GetOrBuild returns a fresh snapshot for userID.
//
// Behavior:
//   - Unless force is set, a snapshot younger than the staleness window is
//     returned as is. The Redis pointer is tried first, then the DB.
//   - Otherwise a new snapshot is generated and inserted; older rows are left
//     for the retention sweep.
func (c *Cache) GetOrBuild(ctx context.Context, userID string, force bool) (*db.MatchingSnapshot, error) {
	now := c.now()

	if force {
		metrics.SnapshotCacheLookups.WithLabelValues("forced").Inc()
	} else {
		snap, err := c.fresh(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			return snap, nil
		}
	}

	candidates, err := c.gen.BuildCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &db.MatchingSnapshot{
		ID:               uuid.NewString(),
		UserID:           userID,
		AlgorithmVersion: AlgorithmVersion,
		GeneratedAt:      now,
		ExpiresAt:        now.Add(SnapshotRetention),
		Candidates:       datatypes.NewJSONType(candidates),
	}
	if err := c.snapshots.Create(ctx, snap); err != nil {
		return nil, err
	}
	metrics.SnapshotsGenerated.Inc()
	c.remember(ctx, snap)

	c.log.Debug("snapshot generated", "user", userID, "snapshot", snap.ID, "candidates", len(candidates))
	return snap, nil
}

// Latest returns the newest retained snapshot regardless of staleness, or nil.
// It never triggers generation.
func (c *Cache) Latest(ctx context.Context, userID string) (*db.MatchingSnapshot, error) {
	return c.snapshots.Latest(ctx, userID, c.now())
}

func (c *Cache) fresh(ctx context.Context, userID string, now time.Time) (*db.MatchingSnapshot, error) {
	if snap := c.fromPointer(ctx, userID); snap != nil && c.isFresh(snap, now) {
		metrics.SnapshotCacheLookups.WithLabelValues("hit").Inc()
		return snap, nil
	}

	snap, err := c.snapshots.Latest(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		metrics.SnapshotCacheLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if !c.isFresh(snap, now) {
		metrics.SnapshotCacheLookups.WithLabelValues("stale").Inc()
		return nil, nil
	}
	metrics.SnapshotCacheLookups.WithLabelValues("hit").Inc()
	c.remember(ctx, snap)
	return snap, nil
}

func (c *Cache) isFresh(s *db.MatchingSnapshot, now time.Time) bool {
	return now.Sub(s.GeneratedAt) < c.staleAfter && s.ExpiresAt.After(now)
}

// fromPointer resolves the Redis pointer. Redis trouble degrades to the DB path.
func (c *Cache) fromPointer(ctx context.Context, userID string) *db.MatchingSnapshot {
	if c.redis == nil {
		return nil
	}
	id, err := c.redis.GetSnapshotPointer(ctx, userID)
	if err != nil {
		c.log.Warn("snapshot pointer read failed", "user", userID, "err", err)
		return nil
	}
	if id == "" {
		return nil
	}
	snap, err := c.snapshots.GetByID(ctx, id)
	if err != nil {
		c.log.Warn("snapshot pointer lookup failed", "user", userID, "snapshot", id, "err", err)
		return nil
	}
	if snap == nil || snap.UserID != userID {
		return nil
	}
	return snap
}

// remember points Redis at snap for the rest of its fresh life.
func (c *Cache) remember(ctx context.Context, snap *db.MatchingSnapshot) {
	if c.redis == nil {
		return
	}
	ttl := c.staleAfter - c.now().Sub(snap.GeneratedAt)
	if ttl <= 0 {
		return
	}
	if _, err := c.redis.SetSnapshotPointer(ctx, snap.UserID, snap.ID, snap.GeneratedAt, ttl); err != nil {
		c.log.Warn("snapshot pointer write failed", "user", snap.UserID, "err", err)
	}
}
