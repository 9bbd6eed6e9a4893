package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/analytics"
	"github.com/oggyb/muzz-discovery/internal/cache"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Tracker    *analytics.Tracker

	// Clock is the single source of "now". Tests replace it.
	Clock func() time.Time

	// SnapshotStaleAfter overrides the default regeneration window when set.
	SnapshotStaleAfter time.Duration
}

// New creates a new AppContext with a UTC millisecond clock and a log-backed
// analytics tracker.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tracker:    analytics.NewTracker(analytics.LogSink{Logger: logger}, logger),
		Clock:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Now reads the configured clock.
func (a *AppContext) Now() time.Time {
	if a.Clock == nil {
		return time.Now().UTC()
	}
	return a.Clock()
}
