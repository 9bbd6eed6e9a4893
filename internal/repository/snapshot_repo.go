package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// SnapshotRepository stores matching snapshots. Rows are never updated.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(database *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: database}
}

func (r *SnapshotRepository) Create(ctx context.Context, s *db.MatchingSnapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// GetByID returns nil when the snapshot does not exist.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*db.MatchingSnapshot, error) {
	var s db.MatchingSnapshot
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Latest returns the most recently generated snapshot that has not passed its
// retention expiry, or nil.
//
// Behavior:
//   - Concurrent regenerations may leave several rows; the newest generated_at wins.
func (r *SnapshotRepository) Latest(ctx context.Context, userID string, now time.Time) (*db.MatchingSnapshot, error) {
	var s db.MatchingSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("generated_at DESC").
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteExpired removes snapshots past their retention window.
func (r *SnapshotRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&db.MatchingSnapshot{})
	return res.RowsAffected, res.Error
}
