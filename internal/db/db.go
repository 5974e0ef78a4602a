package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"gitlab.com/halalan/halalan/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const TokenLen = 64 // 64 bytes

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ErrVoterNotFound = errors.New("voter not found")
var ErrInactiveVoter = errors.New("voter is deactivated")
var ErrInactiveEvent = errors.New("event is not open for voting")
var ErrWrongEvent = errors.New("voter is not registered in this event")
var ErrAlreadyVoted = errors.New("a vote is already recorded for this position")
var ErrOverVoteLimit = errors.New("selections exceed the position's vote limit")
var ErrBadMaxVotes = errors.New("max_votes must be at least 1")
var ErrInvalidCandidate = errors.New("candidate does not belong to the stated position and event")
var ErrBadCredentials = errors.New("wrong username or password")
var ErrUsernameTaken = errors.New("username is already taken")
var ErrNotFound = errors.New("not found")

// BallotError ties a casting failure to the position that caused it, so the
// caller can tell the voter exactly which office was rejected.
type BallotError struct {
	PositionID int
	Err        error
}

func (e *BallotError) Error() string {
	return fmt.Sprintf("position %d: %v", e.PositionID, e.Err)
}
func (e *BallotError) Unwrap() error { return e.Err }

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type SharedDB struct {
	db         *pgxpool.Pool
	config     *models.EnvConfig
	bcryptCost int
}

func MigrateUp(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("Error reading migrations: %s", err)
	}
	defer m.Close()
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("While migrating up: %s", err)
	}
	return nil
}
func MigrateDown(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("Error reading migrations: %s", err)
	}
	defer m.Close()
	err = m.Down()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("While migrating down: %s", err)
	}
	return nil
}
func Drop(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("Error reading migrations: %s", err)
	}
	defer m.Close()
	err = m.Drop()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("While dropping: %s", err)
	}
	return nil
}

func Connect(config *models.EnvConfig) (SharedDB, error) {
	pool, err := pgxpool.Connect(context.Background(), config.DatabaseURL)
	if err != nil {
		err = fmt.Errorf("Failed to connect to postgres: %w", err)
	}
	bcryptCost := bcrypt.DefaultCost + 2
	if config.Debug {
		bcryptCost = bcrypt.MinCost
	}

	return SharedDB{
		db:         pool,
		config:     config,
		bcryptCost: bcryptCost,
	}, err
}

func (sdb *SharedDB) Close() {
	sdb.db.Close()
}

func execTx(ctx context.Context, db DBTX, txFunc func(context.Context, DBTX) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	err = txFunc(ctx, tx)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
