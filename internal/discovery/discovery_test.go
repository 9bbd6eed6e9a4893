package discovery_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/db/dbtest"
	"github.com/oggyb/muzz-discovery/internal/discovery"
	svcErr "github.com/oggyb/muzz-discovery/internal/errors"
	"github.com/oggyb/muzz-discovery/internal/logger"
	"github.com/oggyb/muzz-discovery/internal/matching"
	"github.com/oggyb/muzz-discovery/internal/validation"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	engine *discovery.Engine
	store  *discovery.RecipeStore
	gdb    *gorm.DB
	clk    *clock
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	clk := &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}

	appCtx := app.New(gdb, nil, logger.Discard())
	appCtx.Clock = clk.Now
	t.Cleanup(appCtx.Tracker.Wait)

	return &fixture{
		engine: discovery.NewEngine(appCtx, matching.NewCache(appCtx)),
		store:  discovery.NewRecipeStore(appCtx),
		gdb:    gdb,
		clk:    clk,
	}
}

func boolPtr(b bool) *bool { return &b }

func ids(cs []matching.RankedCandidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.CandidateID)
	}
	return out
}

func seedPool(t *testing.T, f *fixture) {
	t.Helper()
	issued := f.clk.Now().Add(-24 * time.Hour)
	dbtest.Insert(t, f.gdb,
		dbtest.Profile("me"),
		dbtest.Profile("c1", dbtest.WithBadge(issued)),
		dbtest.Profile("c2"),
		dbtest.Profile("c3", dbtest.WithBadge(issued), dbtest.Incognito()),
	)
}

func TestGetFeed_ProfileMissing(t *testing.T) {
	f := setup(t)
	_, err := f.engine.GetFeed(context.Background(), "ghost", discovery.FeedRequest{})
	assert.ErrorIs(t, err, svcErr.ErrProfileMissing)
}

func TestGetFeed_DefaultsAndOverrides(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seedPool(t, f)

	feed, err := f.engine.GetFeed(ctx, "me", discovery.FeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, discovery.ModeSwipe, feed.Mode)
	assert.Equal(t, discovery.DefaultFilters(), feed.Filters)
	assert.Equal(t, []string{"c1"}, ids(feed.Candidates))
	for _, c := range feed.Candidates {
		require.NotNil(t, c.Profile.VerificationStatus)
		assert.NotNil(t, c.Profile.VerificationStatus.BadgeIssuedAt)
	}
	assert.NotNil(t, feed.StoryPanels)
	assert.Empty(t, feed.StoryPanels)
	assert.NotNil(t, feed.Recipes)
	assert.Equal(t, 1, feed.Telemetry.Total)

	feed, err = f.engine.GetFeed(ctx, "me", discovery.FeedRequest{
		Filters: &db.RecipeFilters{VerifiedOnly: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(feed.Candidates))
	assert.InDelta(t, feed.Candidates[0].MatchScore+0.002, feed.Candidates[1].MatchScore, 1e-9,
		"identical profiles differ only by the index nudge")

	travel := discovery.TravelAbroad
	feed, err = f.engine.GetFeed(ctx, "me", discovery.FeedRequest{
		Filters: &db.RecipeFilters{VerifiedOnly: boolPtr(false), TravelMode: &travel},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(feed.Candidates))
}

func TestGetFeed_RecipeLayering(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seedPool(t, f)

	def, err := f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{
		Name:      "everyone",
		Filters:   db.RecipeFilters{VerifiedOnly: boolPtr(false)},
		IsDefault: true,
	})
	require.NoError(t, err)
	guardian, err := f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{
		Name:    "guardian",
		Filters: db.RecipeFilters{GuardianApproved: boolPtr(true)},
	})
	require.NoError(t, err)

	feed, err := f.engine.GetFeed(ctx, "me", discovery.FeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(feed.Candidates), "default recipe applies")
	assert.Len(t, feed.Recipes, 2)

	feed, err = f.engine.GetFeed(ctx, "me", discovery.FeedRequest{
		Filters: &db.RecipeFilters{VerifiedOnly: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids(feed.Candidates), "request wins over recipe")

	feed, err = f.engine.GetFeed(ctx, "me", discovery.FeedRequest{RecipeID: guardian.ID})
	require.NoError(t, err)
	assert.Empty(t, feed.Candidates, "nobody is background checked")
	assert.True(t, feed.Filters.GuardianApproved)
	assert.True(t, feed.Filters.VerifiedOnly, "the selected recipe replaces the default one")

	feed, err = f.engine.GetFeed(ctx, "me", discovery.FeedRequest{RecipeID: "no-such-recipe"})
	require.NoError(t, err)
	assert.Equal(t, discovery.DefaultFilters(), feed.Filters)

	var touched db.DiscoveryRecipe
	require.NoError(t, f.gdb.Where("id = ?", def.ID).Take(&touched).Error)
	require.NotNil(t, touched.LastUsedAt)
}

func TestGetFeed_StoryMode(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	profiles := []db.Profile{dbtest.Profile("000-me")}
	for i := 0; i < 30; i++ {
		profiles = append(profiles, dbtest.Profile(fmt.Sprintf("c-%02d", i),
			dbtest.WithBadge(f.clk.Now()),
			dbtest.WithCulture(1, 5, 2, 0),
		))
	}
	require.NoError(t, f.gdb.Create(&profiles).Error)

	feed, err := f.engine.GetFeed(ctx, "000-me", discovery.FeedRequest{Mode: discovery.ModeStory})
	require.NoError(t, err)
	require.Len(t, feed.Candidates, discovery.StoryLength)
	require.Len(t, feed.StoryPanels, discovery.StoryPanelCount)
	assert.Equal(t, discovery.StoryLength, feed.Telemetry.Total)

	for i, p := range feed.StoryPanels {
		assert.Equal(t, feed.Candidates[i].CandidateID, p.CandidateID)
		assert.Equal(t, "Leads with family, based in Lagos.", p.ContextPanel)
	}
	for _, c := range feed.Candidates {
		assert.LessOrEqual(t, c.MatchScore, 1.0)
	}
}

func TestGetFeed_SnapshotReusedWithinWindow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seedPool(t, f)

	first, err := f.engine.GetFeed(ctx, "me", discovery.FeedRequest{})
	require.NoError(t, err)

	f.clk.Advance(29 * time.Minute)
	second, err := f.engine.GetFeed(ctx, "me", discovery.FeedRequest{})
	require.NoError(t, err)
	assert.True(t, first.Telemetry.GeneratedAt.Equal(second.Telemetry.GeneratedAt))
	assert.Equal(t, first.Telemetry.SnapshotID, second.Telemetry.SnapshotID)

	f.clk.Advance(2 * time.Minute)
	third, err := f.engine.GetFeed(ctx, "me", discovery.FeedRequest{})
	require.NoError(t, err)
	assert.True(t, third.Telemetry.GeneratedAt.After(first.Telemetry.GeneratedAt))

	var views int64
	require.NoError(t, f.gdb.Model(&db.InteractionEvent{}).
		Where("actor_id = ? AND event = ?", "me", db.EventView).Count(&views).Error)
	assert.Equal(t, int64(3), views)
}

func TestSaveRecipe_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{Name: "   "})
	var ve *validation.Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Fields[0].Field)

	bad := "moon"
	_, err = f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{
		Name:    "weird",
		Filters: db.RecipeFilters{TravelMode: &bad},
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "oneof", ve.Fields[0].Tag)
}

func TestSaveRecipe_SingleDefaultAndUpsert(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	a, err := f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{Name: "a", IsDefault: true})
	require.NoError(t, err)
	f.clk.Advance(time.Second)
	_, err = f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{Name: "b", IsDefault: true})
	require.NoError(t, err)
	f.clk.Advance(time.Second)
	again, err := f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{
		Name:    " a ",
		Filters: db.RecipeFilters{OnlineNow: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, again.ID, "same name updates in place")
	assert.False(t, again.IsDefault)
	require.NotNil(t, again.Filters.Data().OnlineNow)

	list, err := f.store.ListRecipes(ctx, "me")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name, "most recently updated first")

	var defaults int64
	require.NoError(t, f.gdb.Model(&db.DiscoveryRecipe{}).
		Where("user_id = ? AND is_default = ?", "me", true).Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)

	var saved int64
	require.NoError(t, f.gdb.Model(&db.InteractionEvent{}).
		Where("event = ?", db.EventFilterSaved).Count(&saved).Error)
	assert.Equal(t, int64(3), saved)
}

func TestListRecipes_Limit(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for i := 0; i < discovery.MaxRecipes+5; i++ {
		f.clk.Advance(time.Second)
		_, err := f.store.SaveRecipe(ctx, "me", discovery.SaveRecipeRequest{Name: fmt.Sprintf("r-%02d", i)})
		require.NoError(t, err)
	}

	list, err := f.store.ListRecipes(ctx, "me")
	require.NoError(t, err)
	require.Len(t, list, discovery.MaxRecipes)
	assert.Equal(t, fmt.Sprintf("r-%02d", discovery.MaxRecipes+4), list[0].Name)
}
