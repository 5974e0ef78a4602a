package db

import (
	"context"

	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/models"
)

func insertActivity(ctx context.Context, tx DBTX, entry *models.ActivityEntry) error {
	sql, args, _ := psql.
		Insert("activity_log").
		Columns("receipt", "voter_id", "event_id", "address").
		Values(entry.Receipt, entry.VoterID, entry.EventID, entry.Address).
		Suffix("RETURNING id, created_at").
		ToSql()
	return tx.QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.CreatedAt)
}

func (h *AdminH) ListActivity(ctx context.Context, limit uint64) ([]models.ActivityEntry, error) {
	sql, args, _ := psql.
		Select("id", "receipt", "voter_id", "event_id", "address", "created_at").
		From("activity_log").
		OrderBy("id DESC").
		Limit(limit).
		ToSql()

	entries := []models.ActivityEntry{}
	err := pgxscan.Select(ctx, h.sharedDB, &entries, sql, args...)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearAllVotes wipes every vote row across all events. Irreversible; only
// reachable from admin tooling. The activity log is kept for review.
func (h *AdminH) ClearAllVotes(ctx context.Context) error {
	_, err := h.sharedDB.Exec(ctx, "TRUNCATE votes")
	return err
}
