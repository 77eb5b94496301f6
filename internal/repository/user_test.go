package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep/gatekeep-go/internal/model"
)

var userRowColumns = []string{"id", "username", "email", "country", "password_hash", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func newAlice() *model.User {
	return &model.User{Username: "alice", Email: "a@x.com", Country: "US", PasswordHash: "$2a$10$hash"}
}

func TestMySQLCreate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, email, country, password_hash) VALUES (?, ?, ?, ?)`)).
		WithArgs("alice", "a@x.com", "US", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(7, 1))

	user := newAlice()
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestMySQLCreate_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'uq_users_username'"})

	err := repo.Create(context.Background(), newAlice())
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestMySQLCreate_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), newAlice())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUsername)
	assert.Contains(t, err.Error(), "db down")
}

func TestMySQLGetByUsername_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(7, "alice", "a@x.com", "US", "$2a$10$hash", created, created))

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.Equal(t, created, user.CreatedAt)
}

func TestMySQLGetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE username = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMySQLGetByID_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestPostgresCreate_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)INSERT INTO users \(username, email, country, password_hash\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s+RETURNING id, created_at, updated_at`).
		WithArgs("alice", "a@x.com", "US", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, created, created))

	user := newAlice()
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, created, user.UpdatedAt)
}

func TestPostgresCreate_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_username"})

	err := repo.Create(context.Background(), newAlice())
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestPostgresGetByID_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(3, "alice", "a@x.com", "US", "$2a$10$hash", created, created))

	user, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "US", user.Country)
}

func TestPostgresGetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("Alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByUsername(context.Background(), "Alice")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIsDuplicateEntryError(t *testing.T) {
	assert.False(t, isDuplicateEntryError(nil))
	assert.False(t, isDuplicateEntryError(ErrUserNotFound))
	assert.False(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1045}))
	assert.True(t, isDuplicateEntryError(&mysql.MySQLError{Number: 1062}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23502"}))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
}
