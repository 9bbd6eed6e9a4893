package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oggyb/muzz-discovery/internal/analytics"
	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/repository"
	"github.com/oggyb/muzz-discovery/internal/validation"
)

// MaxRecipes bounds ListRecipes and the recipe summary on a feed.
const MaxRecipes = 20

type SaveRecipeRequest struct {
	Name      string           `json:"name" validate:"required,max=80"`
	Filters   db.RecipeFilters `json:"filters"`
	IsDefault bool             `json:"isDefault"`
}

// RecipeStore persists named filter presets.
type RecipeStore struct {
	recipes *repository.RecipeRepository
	events  *repository.InteractionRepository
	tracker *analytics.Tracker
	log     *slog.Logger
	now     func() time.Time
}

func NewRecipeStore(appCtx *app.AppContext) *RecipeStore {
	return &RecipeStore{
		recipes: repository.NewRecipeRepository(appCtx.DB),
		events:  repository.NewInteractionRepository(appCtx.DB),
		tracker: appCtx.Tracker,
		log:     appCtx.Logger,
		now:     appCtx.Now,
	}
}

// SaveRecipe upserts by (userID, name). Saving as default clears the flag on
// the user's other recipes. Returns *validation.Error on bad input.
func (s *RecipeStore) SaveRecipe(ctx context.Context, userID string, req SaveRecipeRequest) (*db.DiscoveryRecipe, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := s.now()
	saved, err := s.recipes.Save(ctx, &db.DiscoveryRecipe{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Filters:   datatypes.NewJSONType(req.Filters),
		IsDefault: req.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("save recipe %q: %w", req.Name, err)
	}

	meta := map[string]any{"recipeId": saved.ID, "name": saved.Name, "isDefault": saved.IsDefault}
	if err := s.events.AppendEvent(ctx, repository.NewEvent(userID, "", db.EventFilterSaved, "recipes", meta, now)); err != nil {
		s.log.Warn("filter_saved event append failed", "user", userID, "err", err)
	}
	s.tracker.Track(analytics.Event{Name: db.EventFilterSaved, UserID: userID, Properties: meta, At: now})
	return saved, nil
}

// ListRecipes returns up to MaxRecipes, most recently updated first.
func (s *RecipeStore) ListRecipes(ctx context.Context, userID string) ([]db.DiscoveryRecipe, error) {
	return s.recipes.List(ctx, userID, MaxRecipes)
}
