package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/db"
	svcErr "github.com/oggyb/muzz-discovery/internal/errors"
	"github.com/oggyb/muzz-discovery/internal/metrics"
)

const (
	AlgorithmVersion = "cultural-cosine-v1"

	// MaxScanned and MaxAccepted cap a single build.
	MaxScanned  = 240
	MaxAccepted = 120

	// BoostBonus is the boost breakdown value for an actively boosted candidate.
	BoostBonus = 0.05

	weightCompatibility = 0.45
	weightCulture       = 0.25
	weightIntent        = 0.20
	weightBoost         = 0.10

	cultureSpan = 20.0
)

// ProfileSource is the read side of the profile service.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*db.Profile, error)
	ScanCandidates(ctx context.Context, excludeID string, limit int) ([]db.Profile, error)
	LatestQuiz(ctx context.Context, userID string) (*db.QuizResponse, error)
	LatestQuizzes(ctx context.Context, ids []string) (map[string]db.QuizResponse, error)
}

// BoostChecker reports which users are boosted right now.
type BoostChecker interface {
	ActiveUsers(ctx context.Context, userIDs []string, now time.Time) (map[string]bool, error)
}

// Generator scores candidate profiles for one requester.
type Generator struct {
	profiles ProfileSource
	boosts   BoostChecker
	now      func() time.Time
}

func NewGenerator(profiles ProfileSource, boosts BoostChecker, now func() time.Time) *Generator {
	return &Generator{profiles: profiles, boosts: boosts, now: now}
}

// BuildCandidates scores up to MaxAccepted candidates for userID.
//
// Behavior:
//   - Fails with ErrProfileMissing when the requester has no profile.
//   - Scans selfie-verified profiles in storage order; the first MaxAccepted win,
//     there is no global sort before the cap.
//   - Rank is the 1-based insertion position.
func (g *Generator) BuildCandidates(ctx context.Context, userID string) ([]db.CandidateScore, error) {
	started := time.Now()
	defer func() { metrics.SnapshotBuildSeconds.Observe(time.Since(started).Seconds()) }()

	me, err := g.profiles.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, svcErr.ErrProfileMissing)
	}
	if err != nil {
		return nil, err
	}

	myQuiz, err := g.profiles.LatestQuiz(ctx, userID)
	if err != nil {
		return nil, err
	}
	mine := BuildEmbedding(me, myQuiz)

	pool, err := g.profiles.ScanCandidates(ctx, userID, MaxScanned)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(pool))
	for i, p := range pool {
		ids[i] = p.UserID
	}
	quizzes, err := g.profiles.LatestQuizzes(ctx, ids)
	if err != nil {
		return nil, err
	}
	boosted, err := g.boosts.ActiveUsers(ctx, ids, g.now())
	if err != nil {
		return nil, err
	}

	out := make([]db.CandidateScore, 0, min(len(pool), MaxAccepted))
	for i := range pool {
		if len(out) == MaxAccepted {
			break
		}
		cand := &pool[i]

		var quiz *db.QuizResponse
		if q, ok := quizzes[cand.UserID]; ok {
			quiz = &q
		}

		breakdown := ScoreBreakdown(mine, BuildEmbedding(cand, quiz), me, cand, boosted[cand.UserID])
		score := CombinedScore(breakdown)
		metrics.CandidateScores.Observe(score)

		out = append(out, db.CandidateScore{
			CandidateID:    cand.UserID,
			Score:          score,
			Rank:           len(out) + 1,
			ScoreBreakdown: breakdown,
		})
	}
	return out, nil
}

// ScoreBreakdown computes the per-signal scores of a candidate.
func ScoreBreakdown(mine, theirs []float64, me, cand *db.Profile, boosted bool) db.ScoreBreakdown {
	b := db.ScoreBreakdown{
		Compatibility: Cosine(mine, theirs),
		Culture:       CultureScore(me.CulturalValues, cand.CulturalValues),
		Intent:        IntentScore(cand),
	}
	if boosted {
		bonus := BoostBonus
		b.Boost = &bonus
	}
	return b
}

// CombinedScore weights a breakdown into a single score in [0,1].
func CombinedScore(b db.ScoreBreakdown) float64 {
	var boost float64
	if b.Boost != nil {
		boost = *b.Boost
	}
	return math.Min(1, weightCompatibility*b.Compatibility+
		weightCulture*b.Culture+
		weightIntent*b.Intent+
		weightBoost*boost)
}

// CultureScore is 1 minus the normalised L1 distance of the cultural values.
func CultureScore(a, b db.CulturalValues) float64 {
	dist := absInt(a.Spirituality-b.Spirituality) +
		absInt(a.Family-b.Family) +
		absInt(a.Tradition-b.Tradition) +
		absInt(a.Modernity-b.Modernity)
	return round3(1 - math.Min(float64(dist)/cultureSpan, 1))
}

// IntentScore rewards language breadth and background verification.
func IntentScore(p *db.Profile) float64 {
	langs := len(p.Languages.Data())
	verified := 0.85
	if p.Verification.Background {
		verified = 1
	}
	return round3(math.Min(1, 0.6+0.05*float64(langs)) * verified)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
