package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsite-server/internal/domain"
	"finsite-server/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL COLLATE NOCASE UNIQUE,
	password_hash TEXT NOT NULL,
	session_token TEXT NULL,
	last_login_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Create inserts the user and persists the initial session token in a single
// transaction. A duplicate email rolls the whole transaction back.
func (r *UserRepository) Create(ctx context.Context, user *domain.User, sessionToken string) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO users (full_name, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &repository.ConstraintViolation{Field: "email"}
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE users SET session_token=? WHERE id=?`,
		sessionToken, id,
	); err != nil {
		return 0, fmt.Errorf("persist session token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create user: %w", err)
	}

	user.ID = id
	user.SessionToken = &sessionToken
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, full_name, email, password_hash, session_token, last_login_at, created_at, updated_at
FROM users
WHERE email = ?
LIMIT 1`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) UpdateSessionToken(ctx context.Context, id int64, token string, touchLastLogin bool) error {
	now := time.Now().UTC()

	var err error
	if touchLastLogin {
		_, err = r.db.ExecContext(ctx, `
UPDATE users SET session_token=?, last_login_at=?, updated_at=? WHERE id=?`,
			token, now, now, id,
		)
	} else {
		_, err = r.db.ExecContext(ctx, `
UPDATE users SET session_token=?, updated_at=? WHERE id=?`,
			token, now, id,
		)
	}
	if err != nil {
		return fmt.Errorf("update session token: %w", err)
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		token     sql.NullString
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&token,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if token.Valid {
		user.SessionToken = &token.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
