package repository

import (
	"context"

	"finsite-server/internal/domain"
)

// UserRepository defines persistence operations for User entities.
//
// Create runs inside a single transaction that inserts the user row and
// persists the initially issued session token; on a duplicate email the whole
// transaction rolls back and a ConstraintViolation{Field: "email"} is
// returned, leaving no partial row behind.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User, sessionToken string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateSessionToken(ctx context.Context, id int64, token string, touchLastLogin bool) error
}
