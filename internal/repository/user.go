package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gatekeep/gatekeep-go/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository persists users keyed by a unique username.
type UserRepository interface {
	// Create inserts a new user and sets the generated ID on the user struct.
	// It returns ErrDuplicateUsername when the username is already taken.
	Create(ctx context.Context, user *model.User) error
	// GetByUsername returns ErrUserNotFound when no user has the username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByID returns ErrUserNotFound when no user has the ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

const userColumns = `id, username, email, country, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Country,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
