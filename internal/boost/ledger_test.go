package boost_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-discovery/internal/boost"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/db/dbtest"
	"github.com/oggyb/muzz-discovery/internal/repository"
)

func TestGetStrip(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, gdb.Create(&[]db.BoostSession{
		{ID: "live", UserID: "a", Placement: "discovery", Status: db.BoostActive, StartedAt: now.Add(-10 * time.Minute), EndsAt: now.Add(20 * time.Minute)},
		{ID: "done", UserID: "a", Placement: "discovery", Status: db.BoostActive, StartedAt: now.Add(-2 * time.Hour), EndsAt: now.Add(-time.Hour)},
		{ID: "later", UserID: "a", Placement: "story", Status: db.BoostScheduled, StartedAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour)},
		{ID: "theirs", UserID: "b", Placement: "discovery", Status: db.BoostActive, StartedAt: now.Add(-time.Minute), EndsAt: now.Add(time.Hour)},
	}).Error)

	l := boost.NewLedger(repository.NewBoostRepository(gdb), func() time.Time { return now })
	strip, err := l.GetStrip(ctx, "a")
	require.NoError(t, err)

	require.Len(t, strip.Active, 1)
	assert.Equal(t, "live", strip.Active[0].SessionID)
	assert.True(t, now.Add(20*time.Minute).Equal(strip.Active[0].EndsAt))

	require.Len(t, strip.Upcoming, 1)
	assert.Equal(t, "later", strip.Upcoming[0].SessionID)
	assert.Equal(t, "story", strip.Upcoming[0].Placement)
}

func TestGetStrip_EmptyNotNil(t *testing.T) {
	gdb := dbtest.Open(t)
	l := boost.NewLedger(repository.NewBoostRepository(gdb), time.Now)

	strip, err := l.GetStrip(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, strip.Active)
	assert.NotNil(t, strip.Upcoming)
	assert.Empty(t, strip.Active)
}
