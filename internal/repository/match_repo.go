package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-discovery/internal/db"
	"github.com/oggyb/muzz-discovery/internal/utils/pagination"
)

// MatchRepository stores canonical match records keyed by pair hash.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Upsert creates the match for m.PairHash or, if it already exists, reopens it.
//
// Behavior:
//   - Insert path stores every field of m.
//   - Conflict path only refreshes state, confirmed_at, last_interaction_at and
//     updated_at; id, members and the original score are kept.
//   - Returns the persisted row.
func (r *MatchRepository) Upsert(ctx context.Context, m *db.Match) (*db.Match, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "confirmed_at", "last_interaction_at", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPairHash(ctx, m.PairHash)
}

// GetByPairHash returns nil when no match exists for the pair.
func (r *MatchRepository) GetByPairHash(ctx context.Context, pairHash string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where("pair_hash = ?", pairHash).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForUser returns matches the user is a member of, most recent
// interaction first, with keyset pagination.
//
// Example:
//
//	repo.ListForUser(ctx, "u-1", nil, 20)
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID string,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("(member_a = ? OR member_b = ?)", userID, userID).
		Order("last_interaction_at DESC, id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.At()
		query = query.Where(
			"(last_interaction_at < ? OR (last_interaction_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			AtUnixMilli: last.LastInteractionAt.UnixMilli(),
		})
		nextToken = &token
		matches = matches[:limit]
	}
	return matches, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
