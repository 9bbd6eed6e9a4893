package discovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/cache"
	"github.com/oggyb/muzz-discovery/internal/config"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/db/dbtest"
	"github.com/oggyb/muzz-discovery/internal/logger"
	"github.com/oggyb/muzz-discovery/internal/service/discovery"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

//
// Test helpers
//

// newTestApp builds an AppContext over in-memory SQLite and miniredis with a
// fixed clock.
func newTestApp(t *testing.T) (*app.AppContext, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t)
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	appCtx := app.New(gdb, cache.NewRedisCache(cfg), logger.Discard())
	appCtx.Clock = func() time.Time { return testNow }
	t.Cleanup(appCtx.Tracker.Wait)
	return appCtx, gdb
}

// seedMinimal inserts a requester, two badged candidates and one boost.
func seedMinimal(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	dbtest.Insert(t, gdb,
		dbtest.Profile("u1", dbtest.WithName("Ada")),
		dbtest.Profile("u2", dbtest.WithName("Bola"), dbtest.WithBadge(testNow), dbtest.WithBackgroundCheck()),
		dbtest.Profile("u3", dbtest.WithName("Chi"), dbtest.WithBadge(testNow)),
	)
	require.NoError(t, gdb.Create(&db.BoostSession{
		ID: "boost-1", UserID: "u1", Placement: "discovery", Status: db.BoostScheduled,
		StartedAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour),
	}).Error)
}

func TestService_GetFeed(t *testing.T) {
	appCtx, gdb := newTestApp(t)
	seedMinimal(t, gdb)
	svc := discovery.NewDiscoveryService(appCtx)

	out, err := svc.GetFeed(context.Background(), &discovery.GetFeedRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "Bola", out.Candidates[0].Profile.Name)
	assert.True(t, testNow.Equal(out.Telemetry.GeneratedAt))
}

func TestService_GetFeed_Errors(t *testing.T) {
	appCtx, _ := newTestApp(t)
	svc := discovery.NewDiscoveryService(appCtx)
	ctx := context.Background()

	_, err := svc.GetFeed(ctx, &discovery.GetFeedRequest{UserID: "ghost"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = svc.GetFeed(ctx, &discovery.GetFeedRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.GetFeed(ctx, &discovery.GetFeedRequest{UserID: "u1", Mode: "grid"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestService_LikeFlow(t *testing.T) {
	appCtx, gdb := newTestApp(t)
	seedMinimal(t, gdb)
	svc := discovery.NewDiscoveryService(appCtx)
	ctx := context.Background()

	_, err := svc.Like(ctx, &discovery.InteractionRequest{ActorID: "u1", TargetID: "u1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "self likes are rejected")

	// u1 builds a snapshot so the match carries a predicted score
	_, err = svc.GetFeed(ctx, &discovery.GetFeedRequest{UserID: "u1"})
	require.NoError(t, err)

	res, err := svc.Like(ctx, &discovery.InteractionRequest{ActorID: "u2", TargetID: "u1"})
	require.NoError(t, err)
	assert.False(t, res.Mutual)

	res, err = svc.Like(ctx, &discovery.InteractionRequest{ActorID: "u1", TargetID: "u2", Source: "swipe"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Mutual)

	page, err := svc.GetMatches(ctx, &discovery.GetMatchesRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, page.Matches, 1)
	m := page.Matches[0]
	assert.Equal(t, res.MatchID, m.MatchID)
	assert.Equal(t, []string{"u1", "u2"}, m.Members)
	assert.Equal(t, db.MatchOpen, m.State)
	assert.NotEqual(t, 0.6, m.Score)
	assert.Contains(t, m.AIOpener, "%")
	assert.Contains(t, m.TrustBadges, "background_checked")

	count, err := svc.GetLikeCount(ctx, &discovery.GetLikeCountRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Count)

	_, err = svc.GetMatches(ctx, &discovery.GetMatchesRequest{UserID: "u1", PaginationToken: strPtr("%%%")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestService_RateLimited(t *testing.T) {
	appCtx, _ := newTestApp(t)
	svc := discovery.NewDiscoveryService(appCtx)
	ctx := context.Background()

	for _, target := range []string{"a", "b", "c"} {
		_, err := svc.Rewind(ctx, &discovery.RewindRequest{ActorID: "u1", TargetID: target})
		require.NoError(t, err)
	}
	_, err := svc.Rewind(ctx, &discovery.RewindRequest{ActorID: "u1", TargetID: "d"})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestService_Recipes(t *testing.T) {
	appCtx, _ := newTestApp(t)
	svc := discovery.NewDiscoveryService(appCtx)
	ctx := context.Background()

	verified := false
	saved, err := svc.SaveRecipe(ctx, &discovery.SaveRecipeRequest{
		UserID:    "u1",
		Name:      "open",
		Filters:   db.RecipeFilters{VerifiedOnly: &verified},
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, saved.IsDefault)
	require.NotNil(t, saved.Filters.VerifiedOnly)

	list, err := svc.ListRecipes(ctx, &discovery.ListRecipesRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list.Recipes, 1)
	assert.Equal(t, saved.ID, list.Recipes[0].ID)

	_, err = svc.SaveRecipe(ctx, &discovery.SaveRecipeRequest{UserID: "u1", Name: "  "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestService_GetBoostStrip(t *testing.T) {
	appCtx, gdb := newTestApp(t)
	seedMinimal(t, gdb)
	svc := discovery.NewDiscoveryService(appCtx)

	strip, err := svc.GetBoostStrip(context.Background(), &discovery.GetBoostStripRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, strip.Active)
	require.Len(t, strip.Upcoming, 1)
	assert.Equal(t, "boost-1", strip.Upcoming[0].SessionID)
}

func strPtr(s string) *string { return &s }
