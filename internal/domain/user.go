package domain

import "time"

// User represents a registered account of the site. SessionToken holds the
// single active opaque session token; issuing a new one replaces it.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	SessionToken *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
