package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/models"
)

type candidateRow struct {
	ID         int            `db:"id"`
	PositionID int            `db:"position_id"`
	Name       string         `db:"name"`
	Platform   string         `db:"platform"`
	Partylist  sql.NullString `db:"partylist"`
}

func (h *AdminH) CreatePosition(ctx context.Context, position *models.Position) error {
	if position.MaxVotes < 1 {
		return ErrBadMaxVotes
	}
	sql, args, _ := psql.
		Insert("positions").
		Columns("event_id", "name", "max_votes", "priority").
		Values(position.EventID, position.Name, position.MaxVotes, position.Priority).
		Suffix("RETURNING id").
		ToSql()
	return h.sharedDB.QueryRow(ctx, sql, args...).Scan(&position.ID)
}

func (h *AdminH) ListPositions(ctx context.Context, eventID int) ([]models.Position, error) {
	return listPositions(ctx, h.sharedDB, eventID)
}

func listPositions(ctx context.Context, db DBTX, eventID int) ([]models.Position, error) {
	sql, args, _ := psql.
		Select("id", "event_id", "name", "max_votes", "priority").
		From("positions").
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("priority", "id").
		ToSql()

	positions := []models.Position{}
	err := pgxscan.Select(ctx, db, &positions, sql, args...)
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (h *AdminH) UpdatePosition(ctx context.Context, position *models.Position) error {
	if position.MaxVotes < 1 {
		return ErrBadMaxVotes
	}
	sql, args, _ := psql.
		Update("positions").
		Set("name", position.Name).
		Set("max_votes", position.MaxVotes).
		Set("priority", position.Priority).
		Where(sq.Eq{"id": position.ID}).
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

func (h *AdminH) DeletePosition(ctx context.Context, positionID int) error {
	sql, args, _ := psql.Delete("positions").Where(sq.Eq{"id": positionID}).ToSql()
	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BallotSheet lists the event's positions with their candidates, in display
// order, for the voting screen.
func (sdb *SharedDB) BallotSheet(ctx context.Context, eventID int) ([]models.PositionBallot, error) {
	positions, err := listPositions(ctx, sdb.db, eventID)
	if err != nil {
		return nil, err
	}

	sql, args, _ := psql.
		Select(
			"candidates.id",
			"candidates.position_id",
			"candidates.name",
			"candidates.platform",
			"partylists.name AS partylist",
		).
		From("candidates").
		LeftJoin("partylists ON partylists.id = candidates.partylist_id").
		Where(sq.Eq{"candidates.event_id": eventID}).
		OrderBy("candidates.position_id", "candidates.id").
		ToSql()

	var rows []candidateRow
	err = pgxscan.Select(ctx, sdb.db, &rows, sql, args...)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[int][]models.CandidateView, len(positions))
	for _, row := range rows {
		byPosition[row.PositionID] = append(byPosition[row.PositionID], models.CandidateView{
			ID:        row.ID,
			Name:      row.Name,
			Platform:  row.Platform,
			Partylist: row.Partylist,
		})
	}

	sheet := make([]models.PositionBallot, 0, len(positions))
	for _, position := range positions {
		sheet = append(sheet, models.PositionBallot{
			Position:   position,
			Candidates: byPosition[position.ID],
		})
	}
	return sheet, nil
}
