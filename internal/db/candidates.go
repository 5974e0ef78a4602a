package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"gitlab.com/halalan/halalan/internal/models"
)

func (h *AdminH) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	// The position must belong to the same event as the candidate.
	checkSQL, args, _ := psql.
		Select("1").
		From("positions").
		Where(sq.Eq{"id": candidate.PositionID, "event_id": candidate.EventID}).
		ToSql()
	one := 0
	err := h.sharedDB.QueryRow(ctx, checkSQL, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidCandidate
	}
	if err != nil {
		return err
	}

	sql, args, _ := psql.
		Insert("candidates").
		Columns("event_id", "position_id", "partylist_id", "name", "platform").
		Values(candidate.EventID, candidate.PositionID, candidate.PartylistID, candidate.Name, candidate.Platform).
		Suffix("RETURNING id").
		ToSql()
	return h.sharedDB.QueryRow(ctx, sql, args...).Scan(&candidate.ID)
}

func (h *AdminH) ListCandidates(ctx context.Context, eventID int) ([]models.Candidate, error) {
	sql, args, _ := psql.
		Select("id", "event_id", "position_id", "partylist_id", "name", "platform").
		From("candidates").
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("position_id", "id").
		ToSql()

	candidates := []models.Candidate{}
	err := pgxscan.Select(ctx, h.sharedDB, &candidates, sql, args...)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (h *AdminH) UpdateCandidate(ctx context.Context, candidate *models.Candidate) error {
	sql, args, _ := psql.
		Update("candidates").
		Set("partylist_id", candidate.PartylistID).
		Set("name", candidate.Name).
		Set("platform", candidate.Platform).
		Where(sq.Eq{"id": candidate.ID}).
		ToSql()
	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (h *AdminH) DeleteCandidate(ctx context.Context, candidateID int) error {
	sql, args, _ := psql.Delete("candidates").Where(sq.Eq{"id": candidateID}).ToSql()
	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
