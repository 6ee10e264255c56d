package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrHealthcheckFailed        = errors.New("postgres healthcheck failed")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
)

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found"
// handling across queries.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError detects PostgreSQL unique constraint violations
// (SQLSTATE 23505), used for email/username/artist-name conflicts.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ConstraintName returns the violated constraint's name, or empty when
// the error is not a PostgreSQL constraint violation. Callers use it to
// decide which field a uniqueness conflict belongs to.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
