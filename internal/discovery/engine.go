package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/oggyb/muzz-discovery/internal/analytics"
	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/matching"
	"github.com/oggyb/muzz-discovery/internal/repository"
)

const (
	ModeSwipe = "swipe"
	ModeStory = "story"

	// StoryLength caps the candidates returned in story mode.
	StoryLength = 24
	// StoryPanelCount is how many story candidates get a context panel.
	StoryPanelCount = 9

	nudgeStep = 0.002
)

// SnapshotSource yields the requester's current snapshot.
type SnapshotSource interface {
	GetOrBuild(ctx context.Context, userID string, force bool) (*db.MatchingSnapshot, error)
}

type FeedRequest struct {
	Mode     string            `json:"mode" validate:"omitempty,oneof=swipe story"`
	Filters  *db.RecipeFilters `json:"filters,omitempty"`
	RecipeID string            `json:"recipeId,omitempty" validate:"omitempty,max=36"`
	// Force regenerates the snapshot even inside the staleness window.
	Force bool `json:"force,omitempty"`
}

// StoryPanel is a story-mode candidate with its one-line context.
type StoryPanel struct {
	matching.RankedCandidate
	ContextPanel string `json:"contextPanel"`
}

type RecipeSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

type Telemetry struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Total       int       `json:"total"`
	SnapshotID  string    `json:"snapshotId"`
}

type Feed struct {
	Mode        string                     `json:"mode"`
	Filters     Filters                    `json:"filters"`
	Candidates  []matching.RankedCandidate `json:"candidates"`
	StoryPanels []StoryPanel               `json:"storyPanels"`
	Recipes     []RecipeSummary            `json:"recipes"`
	Telemetry   Telemetry                  `json:"telemetry"`
}

// Engine cuts a user's snapshot into a swipe or story feed.
type Engine struct {
	snapshots SnapshotSource
	decorator *matching.Decorator
	recipes   *repository.RecipeRepository
	events    *repository.InteractionRepository
	tracker   *analytics.Tracker
	log       *slog.Logger
	now       func() time.Time
}

func NewEngine(appCtx *app.AppContext, snapshots SnapshotSource) *Engine {
	return &Engine{
		snapshots: snapshots,
		decorator: matching.NewDecorator(repository.NewProfileRepository(appCtx.DB), appCtx.Now),
		recipes:   repository.NewRecipeRepository(appCtx.DB),
		events:    repository.NewInteractionRepository(appCtx.DB),
		tracker:   appCtx.Tracker,
		log:       appCtx.Logger,
		now:       appCtx.Now,
	}
}

// GetFeed builds the feed for userID.
//
// Behavior:
//   - Filters resolve as defaults < recipe (req.RecipeID, else the user's
//     default recipe) < req.Filters. An unknown recipe id adds no layer.
//   - Survivors keep snapshot order and get a small index-based score nudge.
//   - Swipe returns every survivor; story returns the first StoryLength plus
//     context panels for the first StoryPanelCount.
func (e *Engine) GetFeed(ctx context.Context, userID string, req FeedRequest) (*Feed, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeSwipe
	}

	recipe, err := e.selectRecipe(ctx, userID, req.RecipeID)
	if err != nil {
		return nil, err
	}
	var recipeFilters *db.RecipeFilters
	if recipe != nil {
		rf := recipe.Filters.Data()
		recipeFilters = &rf
	}
	filters := Resolve(recipeFilters, req.Filters)

	snap, err := e.snapshots.GetOrBuild(ctx, userID, req.Force)
	if err != nil {
		return nil, err
	}
	ranked, err := e.decorator.Decorate(ctx, snap.Candidates.Data())
	if err != nil {
		return nil, fmt.Errorf("decorate candidates: %w", err)
	}

	survivors := make([]matching.RankedCandidate, 0, len(ranked))
	for _, c := range ranked {
		if !filters.Allows(c.CandidateID, c.Live) {
			continue
		}
		c.MatchScore = nudge(c.MatchScore, len(survivors))
		survivors = append(survivors, c)
	}

	feed := &Feed{
		Mode:        mode,
		Filters:     filters,
		Candidates:  survivors,
		StoryPanels: []StoryPanel{},
	}
	if mode == ModeStory {
		if len(feed.Candidates) > StoryLength {
			feed.Candidates = feed.Candidates[:StoryLength]
		}
		for i := 0; i < len(feed.Candidates) && i < StoryPanelCount; i++ {
			c := feed.Candidates[i]
			feed.StoryPanels = append(feed.StoryPanels, StoryPanel{RankedCandidate: c, ContextPanel: contextLine(c.Profile)})
		}
	}

	if feed.Recipes, err = e.summaries(ctx, userID); err != nil {
		return nil, err
	}
	feed.Telemetry = Telemetry{GeneratedAt: snap.GeneratedAt, Total: len(feed.Candidates), SnapshotID: snap.ID}

	e.recordView(ctx, userID, recipe, feed)
	return feed, nil
}

func (e *Engine) selectRecipe(ctx context.Context, userID, recipeID string) (*db.DiscoveryRecipe, error) {
	var (
		recipe *db.DiscoveryRecipe
		err    error
	)
	if recipeID != "" {
		recipe, err = e.recipes.Get(ctx, userID, recipeID)
	} else {
		recipe, err = e.recipes.GetDefault(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	if recipe != nil {
		if err := e.recipes.Touch(ctx, recipe.ID, e.now()); err != nil {
			e.log.Warn("recipe touch failed", "user", userID, "recipe", recipe.ID, "err", err)
		}
	}
	return recipe, nil
}

func (e *Engine) summaries(ctx context.Context, userID string) ([]RecipeSummary, error) {
	rows, err := e.recipes.List(ctx, userID, MaxRecipes)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	out := make([]RecipeSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecipeSummary{ID: r.ID, Name: r.Name, IsDefault: r.IsDefault})
	}
	return out, nil
}

// recordView logs the impression; failures never fail the feed.
func (e *Engine) recordView(ctx context.Context, userID string, recipe *db.DiscoveryRecipe, feed *Feed) {
	meta := map[string]any{
		"mode":       feed.Mode,
		"total":      feed.Telemetry.Total,
		"snapshotId": feed.Telemetry.SnapshotID,
	}
	if recipe != nil {
		meta["recipeId"] = recipe.ID
	}
	now := e.now()
	if err := e.events.AppendEvent(ctx, repository.NewEvent(userID, "", db.EventView, feed.Mode, meta, now)); err != nil {
		e.log.Warn("view event append failed", "user", userID, "err", err)
	}
	e.tracker.Track(analytics.Event{Name: db.EventView, UserID: userID, Properties: meta, At: now})
}

func nudge(score float64, idx int) float64 {
	return math.Round(math.Min(1, score+float64(idx)*nudgeStep)*1000) / 1000
}

var dimensionLabels = [...]string{"spirituality", "family", "tradition", "modernity"}

// contextLine names the strongest cultural dimension and the location.
// Ties go to the earlier dimension.
func contextLine(p matching.CandidateProfile) string {
	if p.CulturalValues == nil {
		if p.Location == "" {
			return "Someone new to discover."
		}
		return fmt.Sprintf("Someone new to discover in %s.", p.Location)
	}

	cv := p.CulturalValues
	values := [...]int{cv.Spirituality, cv.Family, cv.Tradition, cv.Modernity}
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	if p.Location == "" {
		return fmt.Sprintf("Leads with %s.", dimensionLabels[best])
	}
	return fmt.Sprintf("Leads with %s, based in %s.", dimensionLabels[best], p.Location)
}
