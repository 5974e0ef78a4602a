package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/google/uuid"
	"gitlab.com/halalan/halalan/internal/models"
)

// CastBallot records a voter's selections for one event. The whole submission
// is atomic: either every qualifying vote row is inserted or none are. The
// voter row is locked for the duration of the transaction, so two concurrent
// submissions by the same voter are serialized and the second one fails with
// ErrAlreadyVoted. The unique constraint on (voter_id, candidate_id) is the
// final arbiter against races the application checks can't see.
//
// On success it returns an opaque receipt id, also written to the activity log.
func (h *VoterH) CastBallot(ctx context.Context, ballot *models.Ballot) (string, error) {
	if err := ballot.Validate(); err != nil {
		return "", err
	}

	receipt := uuid.NewString()
	err := execTx(ctx, h.sharedDB, func(ctx context.Context, tx DBTX) error {
		voter, err := lockVoter(ctx, tx, h.id)
		if err != nil {
			return err
		}
		if !voter.Active {
			return ErrInactiveVoter
		}
		if voter.EventID != ballot.EventID {
			return ErrWrongEvent
		}

		event, err := getEvent(ctx, tx, ballot.EventID)
		if err != nil {
			return err
		}
		if !event.AcceptsBallots(time.Now()) {
			return ErrInactiveEvent
		}

		for _, sel := range ballot.Selections {
			if err := checkSelection(ctx, tx, voter, sel); err != nil {
				return err
			}
		}

		for _, sel := range ballot.Selections {
			if err := insertVotes(ctx, tx, voter, sel); err != nil {
				return err
			}
		}

		return insertActivity(ctx, tx, &models.ActivityEntry{
			Receipt: receipt,
			VoterID: voter.ID,
			EventID: voter.EventID,
			Address: ballot.Address,
		})
	})
	if err != nil {
		return "", err
	}
	return receipt, nil
}

// lockVoter reads the voter row FOR UPDATE, pinning the voter's ballot scope
// for the rest of the transaction.
func lockVoter(ctx context.Context, tx DBTX, voterID int) (*models.Voter, error) {
	var voter models.Voter
	err := pgxscan.Get(ctx, tx, &voter,
		`SELECT id, event_id, username, first_name, last_name, year_level, section, active
		FROM voters WHERE id = $1 FOR UPDATE`,
		voterID)
	if pgxscan.NotFound(err) {
		return nil, ErrVoterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

// checkSelection runs the per-position validation steps, in order: the
// position is locked once any vote exists for it, the selection must fit
// within max_votes, and every candidate must belong to the stated position
// and event.
func checkSelection(ctx context.Context, tx DBTX, voter *models.Voter, sel models.Selection) error {
	var position models.Position
	sql, args, _ := psql.
		Select("id", "event_id", "name", "max_votes", "priority").
		From("positions").
		Where(sq.Eq{"id": sel.PositionID, "event_id": voter.EventID}).
		ToSql()
	err := pgxscan.Get(ctx, tx, &position, sql, args...)
	if pgxscan.NotFound(err) {
		return &BallotError{sel.PositionID, ErrInvalidCandidate}
	}
	if err != nil {
		return err
	}

	sql, args, _ = psql.
		Select("COUNT(*)").
		From("votes").
		Where(sq.Eq{"voter_id": voter.ID, "position_id": sel.PositionID}).
		ToSql()
	existing := 0
	if err := tx.QueryRow(ctx, sql, args...).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return &BallotError{sel.PositionID, ErrAlreadyVoted}
	}

	if len(sel.CandidateIDs) > position.MaxVotes {
		return &BallotError{sel.PositionID, ErrOverVoteLimit}
	}

	sql, args, _ = psql.
		Select("COUNT(*)").
		From("candidates").
		Where(sq.Eq{
			"id":          sel.CandidateIDs,
			"position_id": sel.PositionID,
			"event_id":    voter.EventID,
		}).
		ToSql()
	matched := 0
	if err := tx.QueryRow(ctx, sql, args...).Scan(&matched); err != nil {
		return err
	}
	if matched != len(sel.CandidateIDs) {
		return &BallotError{sel.PositionID, ErrInvalidCandidate}
	}
	return nil
}

func insertVotes(ctx context.Context, tx DBTX, voter *models.Voter, sel models.Selection) error {
	insertCols := psql.
		Insert("votes").
		Columns("voter_id", "candidate_id", "position_id", "event_id")

	for _, candidateID := range sel.CandidateIDs {
		sql, args, _ := insertCols.
			Values(voter.ID, candidateID, sel.PositionID, voter.EventID).
			ToSql()

		_, err := tx.Exec(ctx, sql, args...)
		if isUniqueViolation(err, "votes_voter_id_candidate_id_key") {
			// A concurrent duplicate submission won the race; the storage
			// constraint is the last line of defense.
			return &BallotError{sel.PositionID, ErrAlreadyVoted}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// VotedPositions lists the positions this voter has already voted for in the
// event, so the ballot screen can mark them as locked.
func (h *VoterH) VotedPositions(ctx context.Context) ([]int, error) {
	sql, args, _ := psql.
		Select("position_id").
		Distinct().
		From("votes").
		Where(sq.Eq{"voter_id": h.id}).
		OrderBy("position_id").
		ToSql()

	var positions []int
	err := pgxscan.Select(ctx, h.sharedDB, &positions, sql, args...)
	if err != nil {
		return nil, err
	}
	return positions, nil
}
