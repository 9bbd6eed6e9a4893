package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/repository"
)

// EventRetention is how long interaction events are kept.
const EventRetention = 90 * 24 * time.Hour

// Result counts the rows one sweep removed.
type Result struct {
	Snapshots int64
	Events    int64
	Rewinds   int64
}

// Sweeper deletes snapshots past expires_at, events older than
// EventRetention and rewind tokens past expires_at.
type Sweeper struct {
	snapshots *repository.SnapshotRepository
	events    *repository.InteractionRepository
	log       *slog.Logger
	now       func() time.Time
	interval  time.Duration
}

// NewSweeper builds a sweeper; interval defaults to one hour.
func NewSweeper(appCtx *app.AppContext, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		snapshots: repository.NewSnapshotRepository(appCtx.DB),
		events:    repository.NewInteractionRepository(appCtx.DB),
		log:       appCtx.Logger,
		now:       appCtx.Now,
		interval:  interval,
	}
}

// SweepOnce runs every deletion once. It stops at the first failure.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	var (
		res Result
		err error
	)
	now := s.now()

	if res.Snapshots, err = s.snapshots.DeleteExpired(ctx, now); err != nil {
		return res, fmt.Errorf("sweep snapshots: %w", err)
	}
	if res.Events, err = s.events.DeleteEventsBefore(ctx, now.Add(-EventRetention)); err != nil {
		return res, fmt.Errorf("sweep events: %w", err)
	}
	if res.Rewinds, err = s.events.DeleteExpiredRewinds(ctx, now); err != nil {
		return res, fmt.Errorf("sweep rewinds: %w", err)
	}

	s.log.Info("retention sweep done", "snapshots", res.Snapshots, "events", res.Events, "rewinds", res.Rewinds)
	return res, nil
}

// Run sweeps on every tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("retention sweeper starting", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				// keep going; the next tick retries
				s.log.Error("retention sweep failed", "err", err)
			}
		}
	}
}
