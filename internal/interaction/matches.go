package interaction

import (
	"context"
	"time"

	"github.com/oggyb/muzz-discovery/internal/matching"
)

const (
	DefaultMatchPageSize = 20
	MaxMatchPageSize     = 100
)

// MatchView is a match as shown to one of its members.
type MatchView struct {
	MatchID     string     `json:"matchId"`
	Score       float64    `json:"score"`
	AIOpener    string     `json:"aiOpener"`
	TrustBadges []string   `json:"trustBadges"`
	State       string     `json:"state"`
	Members     []string   `json:"members"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

type MatchPage struct {
	Matches   []MatchView `json:"matches"`
	NextToken *string     `json:"nextToken,omitempty"`
}

// GetMatches lists userID's matches, most recent interaction first.
// trustBadges describe the other member.
func (l *Ledger) GetMatches(ctx context.Context, userID string, token *string, limit int) (*MatchPage, error) {
	if limit <= 0 {
		limit = DefaultMatchPageSize
	}
	if limit > MaxMatchPageSize {
		limit = MaxMatchPageSize
	}

	matches, next, err := l.matches.ListForUser(ctx, userID, token, limit)
	if err != nil {
		return nil, err
	}

	others := make([]string, 0, len(matches))
	for _, m := range matches {
		others = append(others, otherMember(m.MemberA, m.MemberB, userID))
	}
	profiles, err := l.profiles.GetMany(ctx, others)
	if err != nil {
		return nil, err
	}

	page := &MatchPage{Matches: make([]MatchView, 0, len(matches)), NextToken: next}
	for i, m := range matches {
		badges := []string{}
		if p, ok := profiles[others[i]]; ok {
			if b := matching.TrustBadges(p.Verification); b != nil {
				badges = b
			}
		}
		page.Matches = append(page.Matches, MatchView{
			MatchID:     m.ID,
			Score:       m.Score,
			AIOpener:    m.AIOpener,
			TrustBadges: badges,
			State:       m.State,
			Members:     m.Members(),
			ConfirmedAt: m.ConfirmedAt,
		})
	}
	return page, nil
}

func otherMember(a, b, self string) string {
	if a == self {
		return b
	}
	return a
}
