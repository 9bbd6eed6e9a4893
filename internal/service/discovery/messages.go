package discovery

import (
	"time"

	"github.com/oggyb/muzz-discovery/internal/db"
)

type GetFeedRequest struct {
	UserID   string            `json:"userId" validate:"required,max=36"`
	Mode     string            `json:"mode,omitempty" validate:"omitempty,oneof=swipe story"`
	Filters  *db.RecipeFilters `json:"filters,omitempty"`
	RecipeID string            `json:"recipeId,omitempty" validate:"omitempty,max=36"`
	Force    bool              `json:"force,omitempty"`
}

type SaveRecipeRequest struct {
	UserID    string           `json:"userId" validate:"required,max=36"`
	Name      string           `json:"name" validate:"required,max=80"`
	Filters   db.RecipeFilters `json:"filters"`
	IsDefault bool             `json:"isDefault"`
}

// Recipe is the wire form of a stored recipe.
type Recipe struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Filters    db.RecipeFilters `json:"filters"`
	IsDefault  bool             `json:"isDefault"`
	LastUsedAt *time.Time       `json:"lastUsedAt,omitempty"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

type ListRecipesRequest struct {
	UserID string `json:"userId" validate:"required,max=36"`
}

type ListRecipesResponse struct {
	Recipes []Recipe `json:"recipes"`
}

// InteractionRequest is shared by Like and SuperLike.
type InteractionRequest struct {
	ActorID    string         `json:"actorId" validate:"required,max=36"`
	TargetID   string         `json:"targetId" validate:"required,max=36,nefield=ActorID"`
	Source     string         `json:"source,omitempty" validate:"omitempty,max=32"`
	BoostScore float64        `json:"boostScore,omitempty" validate:"gte=0"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type RewindRequest struct {
	ActorID  string `json:"actorId" validate:"required,max=36"`
	TargetID string `json:"targetId" validate:"required,max=36,nefield=ActorID"`
}

type InteractionResponse struct {
	Success bool   `json:"success"`
	Mutual  bool   `json:"mutual"`
	MatchID string `json:"matchId,omitempty"`
}

type GetMatchesRequest struct {
	UserID          string  `json:"userId" validate:"required,max=36"`
	PageSize        int     `json:"pageSize,omitempty" validate:"gte=0,max=100"`
	PaginationToken *string `json:"paginationToken,omitempty"`
}

type GetBoostStripRequest struct {
	UserID string `json:"userId" validate:"required,max=36"`
}

type GetLikeCountRequest struct {
	UserID string `json:"userId" validate:"required,max=36"`
}

type GetLikeCountResponse struct {
	Count int64 `json:"count"`
}
