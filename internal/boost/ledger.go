package boost

import (
	"context"
	"time"

	"github.com/oggyb/muzz-discovery/internal/repository"
)

// maxUpcoming bounds the upcoming half of the strip.
const maxUpcoming = 10

type ActiveSession struct {
	SessionID string    `json:"sessionId"`
	Placement string    `json:"placement"`
	EndsAt    time.Time `json:"endsAt"`
}

type UpcomingSession struct {
	SessionID string    `json:"sessionId"`
	Placement string    `json:"placement"`
	StartsAt  time.Time `json:"startsAt"`
}

// Strip is the boost state shown to the boosted user.
type Strip struct {
	Active   []ActiveSession   `json:"active"`
	Upcoming []UpcomingSession `json:"upcoming"`
}

// Ledger reads boost sessions; writes belong to billing.
type Ledger struct {
	boosts *repository.BoostRepository
	now    func() time.Time
}

func NewLedger(boosts *repository.BoostRepository, now func() time.Time) *Ledger {
	return &Ledger{boosts: boosts, now: now}
}

// GetStrip returns the user's running and scheduled boosts. Both lists are
// empty, never nil, when the user has none.
func (l *Ledger) GetStrip(ctx context.Context, userID string) (*Strip, error) {
	now := l.now()

	active, err := l.boosts.Active(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := l.boosts.Upcoming(ctx, userID, now, maxUpcoming)
	if err != nil {
		return nil, err
	}

	strip := &Strip{
		Active:   make([]ActiveSession, 0, len(active)),
		Upcoming: make([]UpcomingSession, 0, len(upcoming)),
	}
	for _, s := range active {
		strip.Active = append(strip.Active, ActiveSession{SessionID: s.ID, Placement: s.Placement, EndsAt: s.EndsAt})
	}
	for _, s := range upcoming {
		strip.Upcoming = append(strip.Upcoming, UpcomingSession{SessionID: s.ID, Placement: s.Placement, StartsAt: s.StartedAt})
	}
	return strip, nil
}
