package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const voterColumns = "id, event_id, username, first_name, last_name, year_level, section, active"

func (h *VoterH) Read(ctx context.Context) (*models.Voter, error) {
	var voter models.Voter
	sql, args, _ := psql.
		Select(voterColumns).
		From("voters").
		Where(sq.Eq{"id": h.id}).
		ToSql()
	err := pgxscan.Get(ctx, h.sharedDB, &voter, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, ErrVoterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

func (h *AdminH) CreateVoter(ctx context.Context, voter *models.Voter, passwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), h.bcryptCost)
	if err != nil {
		return err
	}
	sql, args, _ := psql.
		Insert("voters").
		Columns("event_id", "username", "passwd_hash", "first_name", "last_name", "year_level", "section", "active").
		Values(voter.EventID, voter.Username, hash, voter.FirstName, voter.LastName, voter.YearLevel, voter.Section, voter.Active).
		Suffix("RETURNING id").
		ToSql()

	err = h.sharedDB.QueryRow(ctx, sql, args...).Scan(&voter.ID)
	if isUniqueViolation(err, "voters_username_key") {
		return ErrUsernameTaken
	}
	return err
}

func (h *AdminH) ListVoters(ctx context.Context, eventID int) ([]models.Voter, error) {
	sql, args, _ := psql.
		Select(voterColumns).
		From("voters").
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("last_name", "first_name", "id").
		ToSql()

	voters := []models.Voter{}
	err := pgxscan.Select(ctx, h.sharedDB, &voters, sql, args...)
	if err != nil {
		return nil, err
	}
	return voters, nil
}

func (h *AdminH) UpdateVoter(ctx context.Context, voter *models.Voter) error {
	sql, args, _ := psql.
		Update("voters").
		Set("username", voter.Username).
		Set("first_name", voter.FirstName).
		Set("last_name", voter.LastName).
		Set("year_level", voter.YearLevel).
		Set("section", voter.Section).
		Where(sq.Eq{"id": voter.ID}).
		ToSql()

	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if isUniqueViolation(err, "voters_username_key") {
		return ErrUsernameTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVoterNotFound
	}
	return nil
}

// SetVoterActive flips the voter's active flag. Deactivation also deletes the
// voter's session tokens in the same transaction, so revocation takes effect
// immediately, not at next login.
func (h *AdminH) SetVoterActive(ctx context.Context, voterID int, active bool) error {
	return execTx(ctx, h.sharedDB, func(ctx context.Context, tx DBTX) error {
		sql, args, _ := psql.
			Update("voters").
			Set("active", active).
			Where(sq.Eq{"id": voterID}).
			ToSql()
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVoterNotFound
		}
		if !active {
			sql, args, _ = psql.
				Delete("voter_tokens").
				Where(sq.Eq{"voter_id": voterID}).
				ToSql()
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *AdminH) DeleteVoter(ctx context.Context, voterID int) error {
	sql, args, _ := psql.Delete("voters").Where(sq.Eq{"id": voterID}).ToSql()
	tag, err := h.sharedDB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVoterNotFound
	}
	return nil
}
