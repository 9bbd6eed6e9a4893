package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// RecipeRepository stores named discovery filter presets.
type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(database *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: database}
}

// Save upserts a recipe by (user_id, name) and returns the stored row.
//
// Behavior:
//   - If rec.IsDefault, every other recipe of the user loses its default flag first.
//   - On conflict the filters, default flag and updated_at are overwritten; the
//     original id and created_at are kept.
func (r *RecipeRepository) Save(ctx context.Context, rec *db.DiscoveryRecipe) (*db.DiscoveryRecipe, error) {
	var saved db.DiscoveryRecipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.IsDefault {
			err := tx.Model(&db.DiscoveryRecipe{}).
				Where("user_id = ? AND name <> ? AND is_default = ?", rec.UserID, rec.Name, true).
				UpdateColumn("is_default", false).Error
			if err != nil {
				return err
			}
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"filters", "is_default", "updated_at"}),
		}).Create(rec).Error
		if err != nil {
			return err
		}

		return tx.Where("user_id = ? AND name = ?", rec.UserID, rec.Name).Take(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Get returns nil when the recipe does not exist or belongs to someone else.
func (r *RecipeRepository) Get(ctx context.Context, userID, id string) (*db.DiscoveryRecipe, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id))
}

// GetDefault returns nil when the user has no default recipe.
func (r *RecipeRepository) GetDefault(ctx context.Context, userID string) (*db.DiscoveryRecipe, error) {
	return r.first(ctx, r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		Order("updated_at DESC"))
}

// List returns up to limit recipes, most recently updated first.
func (r *RecipeRepository) List(ctx context.Context, userID string, limit int) ([]db.DiscoveryRecipe, error) {
	var rows []db.DiscoveryRecipe
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Touch records that a recipe fed a discovery request. It does not bump
// updated_at, so list order is unaffected.
func (r *RecipeRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.DiscoveryRecipe{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

func (r *RecipeRepository) first(_ context.Context, q *gorm.DB) (*db.DiscoveryRecipe, error) {
	var rec db.DiscoveryRecipe
	err := q.Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
