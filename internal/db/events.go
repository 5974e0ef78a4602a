package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/models"
)

func getEvent(ctx context.Context, db DBTX, eventID int) (*models.Event, error) {
	var event models.Event
	sql, args, _ := psql.
		Select("id", "name", "active", "opens_at", "closes_at").
		From("events").
		Where(sq.Eq{"id": eventID}).
		ToSql()
	err := pgxscan.Get(ctx, db, &event, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (sdb *SharedDB) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return getEvent(ctx, sdb.db, eventID)
}

// ActiveEvent returns the event currently flagged active, if any. Which event
// is active is the caller's lookup; the ballot path always takes an explicit
// event id.
func (sdb *SharedDB) ActiveEvent(ctx context.Context) (*models.Event, error) {
	var event models.Event
	sql, args, _ := psql.
		Select("id", "name", "active", "opens_at", "closes_at").
		From("events").
		Where(sq.Eq{"active": true}).
		OrderBy("id").
		Limit(1).
		ToSql()
	err := pgxscan.Get(ctx, sdb.db, &event, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (h *AdminH) CreateEvent(ctx context.Context, event *models.Event) error {
	sql, args, _ := psql.
		Insert("events").
		Columns("name", "active", "opens_at", "closes_at").
		Values(event.Name, event.Active, event.OpensAt, event.ClosesAt).
		Suffix("RETURNING id").
		ToSql()
	return h.sharedDB.QueryRow(ctx, sql, args...).Scan(&event.ID)
}

func (h *AdminH) ListEvents(ctx context.Context) ([]models.Event, error) {
	sql, args, _ := psql.
		Select("id", "name", "active", "opens_at", "closes_at").
		From("events").
		OrderBy("id").
		ToSql()

	events := []models.Event{}
	err := pgxscan.Select(ctx, h.sharedDB, &events, sql, args...)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (h *AdminH) UpdateEvent(ctx context.Context, event *models.Event) error {
	sql, args, _ := psql.
		Update("events").
		Set("name", event.Name).
		Set("active", event.Active).
		Set("opens_at", event.OpensAt).
		Set("closes_at", event.ClosesAt).
		Where(sq.Eq{"id": event.ID}).
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

func (h *AdminH) DeleteEvent(ctx context.Context, eventID int) error {
	sql, args, _ := psql.Delete("events").Where(sq.Eq{"id": eventID}).ToSql()
	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
