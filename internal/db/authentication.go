package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/halalan/halalan/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// VoterH is a capability handle for one authenticated voter, resolved from a
// session token. Everything a voter may do hangs off it.
type VoterH struct {
	id       int
	eventID  int
	sharedDB DBTX
}

func (h *VoterH) ID() int      { return h.id }
func (h *VoterH) EventID() int { return h.eventID }

// AdminH is the capability handle for an authenticated administrator.
type AdminH struct {
	id         int
	sharedDB   DBTX
	bcryptCost int
}

func (h *AdminH) ID() int { return h.id }

func (sdb *SharedDB) LoginVoter(ctx context.Context, username string, passwd string) (token string, err error) {
	sql, args, _ := psql.
		Select("id", "passwd_hash", "active").
		From("voters").
		Where(sq.Eq{"username": username}).
		ToSql()

	var data struct {
		ID         int
		PasswdHash string
		Active     bool
	}
	err = pgxscan.Get(ctx, sdb.db, &data, sql, args...)
	if pgxscan.NotFound(err) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(data.PasswdHash), []byte(passwd)) != nil {
		return "", ErrBadCredentials
	}
	if !data.Active {
		return "", ErrInactiveVoter
	}

	token = utils.GenToken(TokenLen)
	sql, args, _ = psql.
		Insert("voter_tokens").
		Columns("voter_id", "token").
		Values(data.ID, token).
		ToSql()

	_, err = sdb.db.Exec(ctx, sql, args...)
	if err != nil {
		return "", err
	}
	return token, nil
}

// GetVoterH resolves a session token. Tokens of deactivated voters are
// deleted at deactivation time, so a hit here implies an active voter; the
// active flag is still checked to keep the invariant local.
func (sdb *SharedDB) GetVoterH(ctx context.Context, token string) (*VoterH, error) {
	var data struct {
		ID      int
		EventID int `db:"event_id"`
	}
	err := pgxscan.Get(ctx, sdb.db, &data,
		`SELECT voters.id, voters.event_id
		FROM voter_tokens
		JOIN voters ON voters.id = voter_tokens.voter_id
		WHERE voter_tokens.token = $1
		AND voters.active
		AND voter_tokens.created_at > now() - ($2 * interval '1 second')`,
		token, sdb.config.SessionMaxAge)
	if pgxscan.NotFound(err) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	return &VoterH{id: data.ID, eventID: data.EventID, sharedDB: sdb.db}, nil
}

func (sdb *SharedDB) SignoutVoter(ctx context.Context, token string) error {
	_, err := sdb.db.Exec(ctx, "DELETE FROM voter_tokens WHERE voter_tokens.token = $1", token)
	return err
}

// CreateAdmin provisions an administrator account. Exposed through the CLI,
// never through voter-facing paths.
func (sdb *SharedDB) CreateAdmin(ctx context.Context, username string, passwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), sdb.bcryptCost)
	if err != nil {
		return err
	}
	sql, args, _ := psql.
		Insert("admins").
		Columns("username", "passwd_hash").
		Values(username, hash).
		ToSql()
	_, err = sdb.db.Exec(ctx, sql, args...)
	if isUniqueViolation(err, "admins_username_key") {
		return ErrUsernameTaken
	}
	return err
}

func (sdb *SharedDB) LoginAdmin(ctx context.Context, username string, passwd string) (token string, err error) {
	sql, args, _ := psql.
		Select("id", "passwd_hash").
		From("admins").
		Where(sq.Eq{"username": username}).
		ToSql()

	var data struct {
		ID         int
		PasswdHash string
	}
	err = pgxscan.Get(ctx, sdb.db, &data, sql, args...)
	if pgxscan.NotFound(err) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(data.PasswdHash), []byte(passwd)) != nil {
		return "", ErrBadCredentials
	}

	token = utils.GenToken(TokenLen)
	sql, args, _ = psql.
		Insert("admin_tokens").
		Columns("admin_id", "token").
		Values(data.ID, token).
		ToSql()

	_, err = sdb.db.Exec(ctx, sql, args...)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (sdb *SharedDB) GetAdminH(ctx context.Context, token string) (*AdminH, error) {
	var adminID int
	err := pgxscan.Get(ctx, sdb.db, &adminID,
		`SELECT admin_id FROM admin_tokens
		WHERE token = $1
		AND created_at > now() - ($2 * interval '1 second')`,
		token, sdb.config.SessionMaxAge)
	if pgxscan.NotFound(err) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	return &AdminH{id: adminID, sharedDB: sdb.db, bcryptCost: sdb.bcryptCost}, nil
}

func (sdb *SharedDB) SignoutAdmin(ctx context.Context, token string) error {
	_, err := sdb.db.Exec(ctx, "DELETE FROM admin_tokens WHERE admin_tokens.token = $1", token)
	return err
}
