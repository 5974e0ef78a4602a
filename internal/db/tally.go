package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
	"gitlab.com/halalan/halalan/internal/models"
)

// snapshotTxOptions gives tally reads one consistent view: counts across
// positions must not mix states from different moments, per report
// reproducibility. Read-only, so ballot writes are never blocked.
var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

type tallyRow struct {
	PositionID  int            `db:"position_id"`
	Position    string         `db:"position"`
	MaxVotes    int            `db:"max_votes"`
	CandidateID int            `db:"candidate_id"`
	Candidate   string         `db:"candidate"`
	Partylist   sql.NullString `db:"partylist"`
	Votes       int            `db:"votes"`
}

// RankedResults counts votes per candidate within each position of the event.
// Candidates are ordered descending by count; ties break on candidate id
// ascending, so repeated reads of unchanged data always produce the same
// ranking. Candidates with zero votes are included.
func (sdb *SharedDB) RankedResults(ctx context.Context, eventID int) ([]models.PositionResult, error) {
	tx, err := sdb.db.BeginTx(ctx, snapshotTxOptions)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sql, args, _ := psql.
		Select(
			"positions.id AS position_id",
			"positions.name AS position",
			"positions.max_votes",
			"candidates.id AS candidate_id",
			"candidates.name AS candidate",
			"partylists.name AS partylist",
			"COUNT(votes.id) AS votes",
		).
		From("positions").
		Join("candidates ON candidates.position_id = positions.id").
		LeftJoin("partylists ON partylists.id = candidates.partylist_id").
		LeftJoin("votes ON votes.candidate_id = candidates.id").
		Where(sq.Eq{"positions.event_id": eventID}).
		GroupBy("positions.id", "candidates.id", "partylists.id").
		OrderBy("positions.priority", "positions.id", "votes DESC", "candidates.id").
		ToSql()

	var rows []tallyRow
	err = pgxscan.Select(ctx, tx, &rows, sql, args...)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	results := []models.PositionResult{}
	for _, row := range rows {
		n := len(results)
		if n == 0 || results[n-1].PositionID != row.PositionID {
			results = append(results, models.PositionResult{
				PositionID: row.PositionID,
				Position:   row.Position,
				MaxVotes:   row.MaxVotes,
			})
			n++
		}
		results[n-1].Candidates = append(results[n-1].Candidates, models.CandidateTally{
			CandidateID: row.CandidateID,
			Candidate:   row.Candidate,
			Partylist:   row.Partylist,
			Votes:       row.Votes,
		})
	}
	return results, nil
}

// Turnout reports how many of the event's registered voters have cast at
// least one vote. Both counts come from the same snapshot.
func (sdb *SharedDB) Turnout(ctx context.Context, eventID int) (models.Turnout, error) {
	tx, err := sdb.db.BeginTx(ctx, snapshotTxOptions)
	if err != nil {
		return models.Turnout{}, err
	}
	defer tx.Rollback(ctx)

	cast := 0
	err = tx.QueryRow(ctx,
		"SELECT COUNT(DISTINCT voter_id) FROM votes WHERE event_id = $1",
		eventID).Scan(&cast)
	if err != nil {
		return models.Turnout{}, err
	}

	total := 0
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM voters WHERE event_id = $1",
		eventID).Scan(&total)
	if err != nil {
		return models.Turnout{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Turnout{}, err
	}

	return models.ComputeTurnout(cast, total), nil
}
