package auth

import (
	"context"
	"time"
)

// User is the identity record owned by the persistence layer. The auth
// subsystem reads and updates it but never deletes one.
type User struct {
	ID           int64     `json:"_id"`
	Verified     bool      `json:"verified"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	TokenVersion int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a
// password. Accounts created through Google federation have none.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// CreateUserParams is the input for UserStorage.CreateUser. An empty
// PasswordHash creates a federated (passwordless) account.
type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	Verified     bool
}

// UserStorage is the persistence contract the auth subsystem depends
// on. Implementations report uniqueness violations as ErrEmailTaken or
// ErrUsernameTaken and missing rows as ErrUserNotFound.
type UserStorage interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUsername(ctx context.Context, id int64, username string) (*User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	// ResetPassword sets a new password hash and increments
	// token_version in the same atomic update, invalidating every
	// refresh token issued before the call. Returns the updated row.
	ResetPassword(ctx context.Context, id int64, passwordHash string) (*User, error)
	MarkVerified(ctx context.Context, id int64) (*User, error)
}
