package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// InteractionRepository covers the event log and the directional like,
// super-like and rewind edges.
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

// NewEvent builds a log entry with a fresh id. targetID may be empty.
func NewEvent(actorID, targetID, kind, source string, meta map[string]any, at time.Time) *db.InteractionEvent {
	e := &db.InteractionEvent{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Event:     kind,
		Source:    source,
		CreatedAt: at,
	}
	if targetID != "" {
		e.TargetID = &targetID
	}
	if len(meta) > 0 {
		e.Metadata = datatypes.JSONMap(meta)
	}
	return e
}

// AppendEvent inserts into the append-only log.
func (r *InteractionRepository) AppendEvent(ctx context.Context, e *db.InteractionEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CountEvents counts an actor's events of one kind since the given instant.
//
// Example:
//
//	repo.CountEvents(ctx, "u-1", db.EventLike, now.Add(-24*time.Hour))
func (r *InteractionRepository) CountEvents(ctx context.Context, actorID, kind string, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.InteractionEvent{}).
		Where("actor_id = ? AND event = ? AND created_at > ?", actorID, kind, since).
		Count(&n).Error
	return n, err
}

// UpsertLike inserts or refreshes the actor -> target like.
// Composite PK ensures a single row per pair.
func (r *InteractionRepository) UpsertLike(ctx context.Context, l *db.Like) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"source", "updated_at"}),
		}).
		Create(l).Error
}

// UpsertSuperLike inserts or refreshes the actor -> target super-like.
func (r *InteractionRepository) UpsertSuperLike(ctx context.Context, s *db.SuperLike) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"boost_score", "source", "updated_at"}),
		}).
		Create(s).Error
}

// UpsertRewind inserts or renews the undo token for (user, target).
func (r *InteractionRepository) UpsertRewind(ctx context.Context, rw *db.Rewind) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"created_at", "expires_at"}),
		}).
		Create(rw).Error
}

// LikeExists reports whether the plain like edge actor -> target is stored.
func (r *InteractionRepository) LikeExists(ctx context.Context, actorID, targetID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&n).Error
	return n > 0, err
}

// HasLiked reports whether actor has a like or super-like toward target.
func (r *InteractionRepository) HasLiked(ctx context.Context, actorID, targetID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&n).Error
	if err != nil || n > 0 {
		return n > 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&db.SuperLike{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&n).Error
	return n > 0, err
}

// CountLikers returns how many users have liked target.
func (r *InteractionRepository) CountLikers(ctx context.Context, targetID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("target_id = ?", targetID).
		Count(&n).Error
	return n, err
}

// DeleteEventsBefore trims the log to its retention window.
func (r *InteractionRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&db.InteractionEvent{})
	return res.RowsAffected, res.Error
}

// DeleteExpiredRewinds drops undo tokens past their expiry.
func (r *InteractionRepository) DeleteExpiredRewinds(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&db.Rewind{})
	return res.RowsAffected, res.Error
}
