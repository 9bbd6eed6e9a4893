package discovery

import (
	"context"

	"github.com/oggyb/muzz-discovery/internal/app"
	"github.com/oggyb/muzz-discovery/internal/boost"
	"github.com/oggyb/muzz-discovery/internal/db"
	feed "github.com/oggyb/muzz-discovery/internal/discovery"
	svcErr "github.com/oggyb/muzz-discovery/internal/errors"
	"github.com/oggyb/muzz-discovery/internal/interaction"
	"github.com/oggyb/muzz-discovery/internal/matching"
	"github.com/oggyb/muzz-discovery/internal/repository"
	"github.com/oggyb/muzz-discovery/internal/validation"
)

// Service implements the Discovery gRPC API on top of the feed engine,
// recipe store, interaction ledger and boost ledger.
type Service struct {
	appCtx  *app.AppContext
	engine  *feed.Engine
	recipes *feed.RecipeStore
	ledger  *interaction.Ledger
	boosts  *boost.Ledger
}

// NewDiscoveryService wires every component from the shared AppContext.
// The feed and the match promoter read the same snapshot cache.
func NewDiscoveryService(appCtx *app.AppContext) *Service {
	snapshots := matching.NewCache(appCtx)
	return &Service{
		appCtx:  appCtx,
		engine:  feed.NewEngine(appCtx, snapshots),
		recipes: feed.NewRecipeStore(appCtx),
		ledger:  interaction.NewLedger(appCtx, snapshots),
		boosts:  boost.NewLedger(repository.NewBoostRepository(appCtx.DB), appCtx.Now),
	}
}

// GetFeed returns ranked, filtered candidates for the requester.
//
// Behavior:
//   - Fails with FailedPrecondition when the requester has no profile.
//   - An unknown recipe id or an empty pool is not an error.
//
// Example:
//
//	svc.GetFeed(ctx, &GetFeedRequest{UserID: "u-1", Mode: "story"})
func (s *Service) GetFeed(ctx context.Context, req *GetFeedRequest) (*feed.Feed, error) {
	s.appCtx.Logger.Debug("GetFeed called", "user", req.UserID, "mode", req.Mode, "recipe", req.RecipeID, "force", req.Force)
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	out, err := s.engine.GetFeed(ctx, req.UserID, feed.FeedRequest{
		Mode:     req.Mode,
		Filters:  req.Filters,
		RecipeID: req.RecipeID,
		Force:    req.Force,
	})
	if err != nil {
		s.appCtx.Logger.Error("GetFeed failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("GetFeed result", "user", req.UserID, "total", out.Telemetry.Total, "snapshot", out.Telemetry.SnapshotID)
	return out, nil
}

// SaveRecipe upserts a named filter preset.
func (s *Service) SaveRecipe(ctx context.Context, req *SaveRecipeRequest) (*Recipe, error) {
	s.appCtx.Logger.Debug("SaveRecipe called", "user", req.UserID, "name", req.Name, "default", req.IsDefault)
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	saved, err := s.recipes.SaveRecipe(ctx, req.UserID, feed.SaveRecipeRequest{
		Name:      req.Name,
		Filters:   req.Filters,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	r := toRecipe(*saved)
	return &r, nil
}

// ListRecipes returns the requester's recipes, most recently updated first.
func (s *Service) ListRecipes(ctx context.Context, req *ListRecipesRequest) (*ListRecipesResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	rows, err := s.recipes.ListRecipes(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &ListRecipesResponse{Recipes: make([]Recipe, 0, len(rows))}
	for _, r := range rows {
		resp.Recipes = append(resp.Recipes, toRecipe(r))
	}
	return resp, nil
}

// Like records a like and reports whether it completed a mutual match.
//
// Example:
//
//	svc.Like(ctx, &InteractionRequest{ActorID: "u-1", TargetID: "u-2"})
func (s *Service) Like(ctx context.Context, req *InteractionRequest) (*InteractionResponse, error) {
	s.appCtx.Logger.Debug("Like called", "actor", req.ActorID, "target", req.TargetID)
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	res, err := s.ledger.Like(ctx, req.ActorID, req.TargetID, toContext(req))
	if err != nil {
		s.appCtx.Logger.Warn("Like rejected", "actor", req.ActorID, "target", req.TargetID, "err", err)
		return nil, svcErr.Map(err)
	}
	return toResponse(res), nil
}

func (s *Service) SuperLike(ctx context.Context, req *InteractionRequest) (*InteractionResponse, error) {
	s.appCtx.Logger.Debug("SuperLike called", "actor", req.ActorID, "target", req.TargetID, "boost", req.BoostScore)
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	res, err := s.ledger.SuperLike(ctx, req.ActorID, req.TargetID, toContext(req))
	if err != nil {
		s.appCtx.Logger.Warn("SuperLike rejected", "actor", req.ActorID, "target", req.TargetID, "err", err)
		return nil, svcErr.Map(err)
	}
	return toResponse(res), nil
}

// Rewind stores an undo token. The earlier like stays in place.
func (s *Service) Rewind(ctx context.Context, req *RewindRequest) (*InteractionResponse, error) {
	s.appCtx.Logger.Debug("Rewind called", "actor", req.ActorID, "target", req.TargetID)
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	res, err := s.ledger.Rewind(ctx, req.ActorID, req.TargetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toResponse(res), nil
}

// GetMatches lists the requester's matches with cursor pagination.
func (s *Service) GetMatches(ctx context.Context, req *GetMatchesRequest) (*interaction.MatchPage, error) {
	s.appCtx.Logger.Debug("GetMatches called", "user", req.UserID, "token", req.PaginationToken)
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	page, err := s.ledger.GetMatches(ctx, req.UserID, req.PaginationToken, req.PageSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return page, nil
}

// GetBoostStrip returns the requester's active and upcoming boosts.
func (s *Service) GetBoostStrip(ctx context.Context, req *GetBoostStripRequest) (*boost.Strip, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	strip, err := s.boosts.GetStrip(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return strip, nil
}

// GetLikeCount returns how many users liked the requester.
// Cache-first: Redis likes:count:<user>, falling back to the DB.
func (s *Service) GetLikeCount(ctx context.Context, req *GetLikeCountRequest) (*GetLikeCountResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	n, err := s.ledger.GetLikeCount(ctx, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &GetLikeCountResponse{Count: n}, nil
}

func toRecipe(r db.DiscoveryRecipe) Recipe {
	return Recipe{
		ID:         r.ID,
		Name:       r.Name,
		Filters:    r.Filters.Data(),
		IsDefault:  r.IsDefault,
		LastUsedAt: r.LastUsedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toContext(req *InteractionRequest) interaction.Context {
	return interaction.Context{Source: req.Source, BoostScore: req.BoostScore, Metadata: req.Metadata}
}

func toResponse(r *interaction.Result) *InteractionResponse {
	return &InteractionResponse{Success: r.Success, Mutual: r.Mutual, MatchID: r.MatchID}
}
