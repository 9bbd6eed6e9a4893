package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// ProfileRepository reads profile and quiz data owned by the profile service.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Get returns gorm.ErrRecordNotFound when the user has no profile.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMany returns the profiles that exist for ids, keyed by user id.
func (r *ProfileRepository) GetMany(ctx context.Context, ids []string) (map[string]db.Profile, error) {
	out := make(map[string]db.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []db.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.UserID] = p
	}
	return out, nil
}

// ScanCandidates returns up to limit selfie-verified profiles other than
// excludeID, in primary-key order.
//
// Example:
//
//	repo.ScanCandidates(ctx, "u-1", 240)
func (r *ProfileRepository) ScanCandidates(ctx context.Context, excludeID string, limit int) ([]db.Profile, error) {
	var rows []db.Profile
	err := r.db.WithContext(ctx).
		Where("verified_selfie = ? AND user_id <> ?", true, excludeID).
		Order("user_id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// LatestQuiz returns the most recent quiz submission, or nil if the user never
// took the quiz.
func (r *ProfileRepository) LatestQuiz(ctx context.Context, userID string) (*db.QuizResponse, error) {
	var q db.QuizResponse
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// LatestQuizzes returns the most recent quiz submission per user for ids.
func (r *ProfileRepository) LatestQuizzes(ctx context.Context, ids []string) (map[string]db.QuizResponse, error) {
	out := make(map[string]db.QuizResponse, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []db.QuizResponse
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("submitted_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	// ascending order: later submissions overwrite earlier ones
	for _, q := range rows {
		out[q.UserID] = q
	}
	return out, nil
}
