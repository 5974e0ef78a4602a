package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/models"
)

func (h *AdminH) CreatePartylist(ctx context.Context, partylist *models.Partylist) error {
	sql, args, _ := psql.
		Insert("partylists").
		Columns("event_id", "name").
		Values(partylist.EventID, partylist.Name).
		Suffix("RETURNING id").
		ToSql()
	return h.sharedDB.QueryRow(ctx, sql, args...).Scan(&partylist.ID)
}

func (h *AdminH) ListPartylists(ctx context.Context, eventID int) ([]models.Partylist, error) {
	sql, args, _ := psql.
		Select("id", "event_id", "name").
		From("partylists").
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("name", "id").
		ToSql()

	partylists := []models.Partylist{}
	err := pgxscan.Select(ctx, h.sharedDB, &partylists, sql, args...)
	if err != nil {
		return nil, err
	}
	return partylists, nil
}

func (h *AdminH) UpdatePartylist(ctx context.Context, partylist *models.Partylist) error {
	sql, args, _ := psql.
		Update("partylists").
		Set("name", partylist.Name).
		Where(sq.Eq{"id": partylist.ID}).
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

func (h *AdminH) DeletePartylist(ctx context.Context, partylistID int) error {
	sql, args, _ := psql.Delete("partylists").Where(sq.Eq{"id": partylistID}).ToSql()
	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
