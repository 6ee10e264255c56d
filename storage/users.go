package storage

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remasterhq/remaster/modules/auth"
	"github.com/remasterhq/remaster/pkg/pg"
)

// UserStore implements auth.UserStorage over a pgx pool.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, verified, email, username, password_hash, token_version, created_at, updated_at`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Verified, &u.Email, &u.Username, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) CreateUser(ctx context.Context, params auth.CreateUserParams) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, verified)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		params.Email, params.Username, params.PasswordHash, params.Verified)

	user, err := scanUser(row)
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return user, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
}

func (s *UserStore) UpdateUsername(ctx context.Context, id int64, username string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET username = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, username)

	user, err := scanUser(row)
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return user, nil
}

func (s *UserStore) UpdateEmail(ctx context.Context, id int64, email string) (*auth.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET email = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, email)

	user, err := scanUser(row)
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return user, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// ResetPassword stores the new hash and bumps token_version in a single
// UPDATE so revocation cannot be observed half-applied.
func (s *UserStore) ResetPassword(ctx context.Context, id int64, passwordHash string) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, token_version = token_version + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, passwordHash))
}

func (s *UserStore) MarkVerified(ctx context.Context, id int64) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		UPDATE users SET verified = true, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id))
}

// mapUserConflict turns a unique-constraint violation into the domain
// error for the colliding column.
func mapUserConflict(err error) error {
	if !pg.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(pg.ConstraintName(err), "username") {
		return auth.ErrUsernameTaken
	}
	return auth.ErrEmailTaken
}
