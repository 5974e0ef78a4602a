package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/models"
)

// ListVotes exposes the raw vote rows of one event for audit inspection.
func (h *AdminH) ListVotes(ctx context.Context, eventID int) ([]models.Vote, error) {
	sql, args, _ := psql.
		Select("id", "voter_id", "candidate_id", "position_id", "event_id", "cast_at").
		From("votes").
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("id").
		ToSql()

	votes := []models.Vote{}
	err := pgxscan.Select(ctx, h.sharedDB, &votes, sql, args...)
	if err != nil {
		return nil, err
	}
	return votes, nil
}
