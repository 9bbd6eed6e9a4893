package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oggyb/muzz-discovery/internal/db"
	svcErr "github.com/oggyb/muzz-discovery/internal/errors"
	"github.com/oggyb/muzz-discovery/internal/metrics"
	"github.com/oggyb/muzz-discovery/internal/repository"
)

const (
	// DefaultMatchScore is used when the actor's snapshot has no entry for the target.
	DefaultMatchScore = 0.6

	genericOpener = "It's mutual! Say hello and ask how their week is going."

	pairSeparator = ":"
)

// SnapshotReader exposes the cached snapshot without triggering a rebuild.
type SnapshotReader interface {
	Latest(ctx context.Context, userID string) (*db.MatchingSnapshot, error)
}

// PairHash identifies an unordered pair of user ids.
func PairHash(a, b string) string {
	lo, hi := SortPair(a, b)
	return lo + pairSeparator + hi
}

// SortPair returns the two ids in lexicographic order.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Promoter turns a detected mutual like into the pair's single Match row.
type Promoter struct {
	matches   *repository.MatchRepository
	events    *repository.InteractionRepository
	snapshots SnapshotReader
	log       *slog.Logger
	now       func() time.Time
}

func NewPromoter(
	matches *repository.MatchRepository,
	events *repository.InteractionRepository,
	snapshots SnapshotReader,
	log *slog.Logger,
	now func() time.Time,
) *Promoter {
	return &Promoter{matches: matches, events: events, snapshots: snapshots, log: log, now: now}
}

// Promote upserts the match for (actorID, targetID).
//
// Behavior:
//   - Score and breakdown come from the actor's cached snapshot entry for the
//     target, else DefaultMatchScore with a generic opener.
//   - An existing match for the pair is reopened, never duplicated.
func (p *Promoter) Promote(ctx context.Context, actorID, targetID string) (*db.Match, error) {
	if actorID == targetID {
		return nil, svcErr.ErrSelfInteraction
	}
	now := p.now()
	score, breakdown, opener := p.scoreContext(ctx, actorID, targetID)

	lo, hi := SortPair(actorID, targetID)
	m := &db.Match{
		ID:                uuid.NewString(),
		PairHash:          PairHash(actorID, targetID),
		MemberA:           lo,
		MemberB:           hi,
		State:             db.MatchOpen,
		Score:             score,
		ScoreBreakdown:    datatypes.NewJSONType(breakdown),
		AIOpener:          opener,
		LastInteractionAt: now,
		ConfirmedAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	saved, err := p.matches.Upsert(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("upsert match %s: %w", m.PairHash, err)
	}
	if saved.ID == m.ID {
		metrics.MatchesTotal.Inc()
	}

	event := repository.NewEvent(actorID, targetID, db.EventMatchConfirmed, "mutual_like",
		map[string]any{"matchId": saved.ID, "score": saved.Score}, now)
	if err := p.events.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return saved, nil
}

func (p *Promoter) scoreContext(ctx context.Context, actorID, targetID string) (float64, db.ScoreBreakdown, string) {
	fallback := db.ScoreBreakdown{}

	snap, err := p.snapshots.Latest(ctx, actorID)
	if err != nil {
		p.log.Warn("snapshot read for match score failed", "actor", actorID, "err", err)
		return DefaultMatchScore, fallback, genericOpener
	}
	if snap == nil {
		return DefaultMatchScore, fallback, genericOpener
	}
	for _, c := range snap.Candidates.Data() {
		if c.CandidateID == targetID {
			pct := int(math.Round(c.Score * 100))
			return c.Score, c.ScoreBreakdown, fmt.Sprintf("We predict a %d%% match. Open with what caught your eye in their profile.", pct)
		}
	}
	return DefaultMatchScore, fallback, genericOpener
}
