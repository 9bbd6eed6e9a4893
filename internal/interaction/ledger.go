package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oggyb/muzz-discovery/internal/analytics"
	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/cache"
	"github.com/oggyb/muzz-discovery/internal/db"
	svcErr "github.com/oggyb/muzz-discovery/internal/errors"
	"github.com/oggyb/muzz-discovery/internal/metrics"
	"github.com/oggyb/muzz-discovery/internal/repository"
)

const (
	// QuotaWindow is the rolling window quotas are counted over.
	QuotaWindow = 24 * time.Hour

	// RewindTTL is how long an undo token stays valid.
	RewindTTL = 24 * time.Hour

	defaultSource = "discovery"
)

// Quotas caps each rate-limited event kind per actor per QuotaWindow.
var Quotas = map[string]int64{
	db.EventLike:      100,
	db.EventSuperLike: 5,
	db.EventRewind:    3,
}

// Context carries optional client metadata for a like or super-like.
type Context struct {
	Source     string
	BoostScore float64
	Metadata   map[string]any
}

type Result struct {
	Success bool   `json:"success"`
	Mutual  bool   `json:"mutual"`
	MatchID string `json:"matchId,omitempty"`
}

// Ledger records likes, super-likes and rewinds.
//
// Quota checks and writes are not atomic: concurrent calls from the same
// actor may each pass the check before either event lands.
type Ledger struct {
	events   *repository.InteractionRepository
	matches  *repository.MatchRepository
	profiles *repository.ProfileRepository
	promoter *Promoter
	redis    *cache.RedisCache
	tracker  *analytics.Tracker
	log      *slog.Logger
	now      func() time.Time
}

// NewLedger wires a ledger from the app context. snapshots feeds match scores.
func NewLedger(appCtx *app.AppContext, snapshots SnapshotReader) *Ledger {
	events := repository.NewInteractionRepository(appCtx.DB)
	matches := repository.NewMatchRepository(appCtx.DB)
	return &Ledger{
		events:   events,
		matches:  matches,
		profiles: repository.NewProfileRepository(appCtx.DB),
		promoter: NewPromoter(matches, events, snapshots, appCtx.Logger, appCtx.Now),
		redis:    appCtx.RedisCache,
		tracker:  appCtx.Tracker,
		log:      appCtx.Logger,
		now:      appCtx.Now,
	}
}

// Like records actor -> target and promotes a match when target already liked actor.
func (l *Ledger) Like(ctx context.Context, actorID, targetID string, c Context) (*Result, error) {
	if actorID == targetID {
		return nil, svcErr.ErrSelfInteraction
	}
	now := l.now()
	if err := l.checkQuota(ctx, actorID, db.EventLike, now); err != nil {
		return nil, err
	}

	repeat, err := l.events.LikeExists(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check existing like: %w", err)
	}

	source := sourceOf(c)
	if err := l.events.UpsertLike(ctx, &db.Like{
		ActorID:   actorID,
		TargetID:  targetID,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("upsert like: %w", err)
	}
	if err := l.events.AppendEvent(ctx, repository.NewEvent(actorID, targetID, db.EventLike, source, c.Metadata, now)); err != nil {
		return nil, fmt.Errorf("append like event: %w", err)
	}
	if !repeat {
		l.bumpLikeCount(ctx, targetID)
	}

	return l.afterPositive(ctx, db.EventLike, actorID, targetID, source)
}

// SuperLike is Like with a boost score; boostScore is at least 1.
func (l *Ledger) SuperLike(ctx context.Context, actorID, targetID string, c Context) (*Result, error) {
	if actorID == targetID {
		return nil, svcErr.ErrSelfInteraction
	}
	now := l.now()
	if err := l.checkQuota(ctx, actorID, db.EventSuperLike, now); err != nil {
		return nil, err
	}

	boostScore := c.BoostScore
	if boostScore < 1 {
		boostScore = 1
	}
	source := sourceOf(c)
	if err := l.events.UpsertSuperLike(ctx, &db.SuperLike{
		ActorID:    actorID,
		TargetID:   targetID,
		BoostScore: boostScore,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("upsert super like: %w", err)
	}

	meta := map[string]any{"boostScore": boostScore}
	for k, v := range c.Metadata {
		meta[k] = v
	}
	if err := l.events.AppendEvent(ctx, repository.NewEvent(actorID, targetID, db.EventSuperLike, source, meta, now)); err != nil {
		return nil, fmt.Errorf("append super like event: %w", err)
	}

	return l.afterPositive(ctx, db.EventSuperLike, actorID, targetID, source)
}

// Rewind stores an undo token for actor's last decision on target. The
// original like is left in place.
func (l *Ledger) Rewind(ctx context.Context, actorID, targetID string) (*Result, error) {
	if actorID == targetID {
		return nil, svcErr.ErrSelfInteraction
	}
	now := l.now()
	if err := l.checkQuota(ctx, actorID, db.EventRewind, now); err != nil {
		return nil, err
	}

	if err := l.events.UpsertRewind(ctx, &db.Rewind{
		UserID:    actorID,
		TargetID:  targetID,
		CreatedAt: now,
		ExpiresAt: now.Add(RewindTTL),
	}); err != nil {
		return nil, fmt.Errorf("upsert rewind: %w", err)
	}
	if err := l.events.AppendEvent(ctx, repository.NewEvent(actorID, targetID, db.EventRewind, defaultSource, nil, now)); err != nil {
		return nil, fmt.Errorf("append rewind event: %w", err)
	}

	metrics.InteractionsTotal.WithLabelValues(db.EventRewind).Inc()
	l.tracker.Track(analytics.Event{Name: db.EventRewind, UserID: actorID, TargetID: targetID, At: now})
	return &Result{Success: true}, nil
}

// GetLikeCount returns how many users liked userID. Redis is tried first and
// warmed from the DB on a miss.
func (l *Ledger) GetLikeCount(ctx context.Context, userID string) (int64, error) {
	if l.redis != nil {
		n, ok, err := l.redis.GetLikeCount(ctx, userID)
		if err != nil {
			l.log.Warn("like count cache read failed", "user", userID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	n, err := l.events.CountLikers(ctx, userID)
	if err != nil {
		return 0, err
	}
	if l.redis != nil {
		if err := l.redis.SetLikeCount(ctx, userID, n); err != nil {
			l.log.Warn("like count cache write failed", "user", userID, "err", err)
		}
	}
	return n, nil
}

// checkQuota fails once the actor is at or over the cap for kind.
func (l *Ledger) checkQuota(ctx context.Context, actorID, kind string, now time.Time) error {
	limit := Quotas[kind]
	count, err := l.events.CountEvents(ctx, actorID, kind, now.Add(-QuotaWindow))
	if err != nil {
		return fmt.Errorf("count %s events: %w", kind, err)
	}
	if count >= limit {
		metrics.RateLimitedTotal.WithLabelValues(kind).Inc()
		return &svcErr.RateLimitError{Kind: kind, Limit: limit, Count: count}
	}
	return nil
}

func (l *Ledger) afterPositive(ctx context.Context, kind, actorID, targetID, source string) (*Result, error) {
	metrics.InteractionsTotal.WithLabelValues(kind).Inc()
	l.tracker.Track(analytics.Event{
		Name:       kind,
		UserID:     actorID,
		TargetID:   targetID,
		Properties: map[string]any{"source": source},
		At:         l.now(),
	})

	mutual, err := l.events.HasLiked(ctx, targetID, actorID)
	if err != nil {
		return nil, fmt.Errorf("check reciprocity: %w", err)
	}
	if !mutual {
		return &Result{Success: true}, nil
	}

	m, err := l.promoter.Promote(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	l.log.Info("match confirmed", "match", m.ID, "actor", actorID, "target", targetID)
	l.tracker.Track(analytics.Event{
		Name:       db.EventMatchConfirmed,
		UserID:     actorID,
		TargetID:   targetID,
		Properties: map[string]any{"matchId": m.ID, "score": m.Score},
		At:         l.now(),
	})
	return &Result{Success: true, Mutual: true, MatchID: m.ID}, nil
}

// bumpLikeCount keeps a warm counter in step; cold keys are left for the DB fallback.
func (l *Ledger) bumpLikeCount(ctx context.Context, targetID string) {
	if l.redis == nil {
		return
	}
	if err := l.redis.IncrLikeCount(ctx, targetID); err != nil {
		l.log.Warn("like count cache bump failed", "target", targetID, "err", err)
	}
}

func sourceOf(c Context) string {
	if c.Source == "" {
		return defaultSource
	}
	return c.Source
}
