package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// BoostRepository reads paid visibility sessions.
type BoostRepository struct {
	db *gorm.DB
}

func NewBoostRepository(database *gorm.DB) *BoostRepository {
	return &BoostRepository{db: database}
}

// ActiveUsers returns which of userIDs have an active session overlapping now.
func (r *BoostRepository) ActiveUsers(ctx context.Context, userIDs []string, now time.Time) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(userIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.BoostSession{}).
		Distinct("user_id").
		Where("user_id IN ? AND status = ? AND started_at <= ? AND ends_at > ?", userIDs, db.BoostActive, now, now).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Active lists the user's sessions running right now, soonest ending first.
func (r *BoostRepository) Active(ctx context.Context, userID string, now time.Time) ([]db.BoostSession, error) {
	var rows []db.BoostSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND started_at <= ? AND ends_at > ?", userID, db.BoostActive, now, now).
		Order("ends_at ASC").
		Find(&rows).Error
	return rows, err
}

// Upcoming lists sessions that have not started yet, soonest first.
func (r *BoostRepository) Upcoming(ctx context.Context, userID string, now time.Time, limit int) ([]db.BoostSession, error) {
	var rows []db.BoostSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ? AND started_at > ?", userID, []string{db.BoostScheduled, db.BoostActive}, now).
		Order("started_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
