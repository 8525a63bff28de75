package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsite-server/internal/auth"
	"finsite-server/internal/domain"
	"finsite-server/internal/repository"
)

var (
	// ErrInvalidInput indicates a required field is missing or empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken is returned when registering an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session carries a freshly issued token and its cookie lifetime.
type Session struct {
	Token string
	TTL   time.Duration
}

// AuthService describes account registration and credential verification.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string, remember bool) (*domain.User, Session, error)
	Login(ctx context.Context, email, password string, remember bool) (*domain.User, Session, error)
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
}

func NewAuthService(users repository.UserRepository, hasher *auth.Hasher) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
	}
}

// Register creates the user and persists the initial session token in one
// transaction; the returned session holds the exact token that was stored.
func (s *authService) Register(ctx context.Context, fullName, email, password string, remember bool) (*domain.User, Session, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" || password == "" {
		return nil, Session{}, ErrInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, Session{}, err
	}

	token, err := auth.NewToken()
	if err != nil {
		return nil, Session{}, err
	}

	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
	}

	if _, err := s.users.Create(ctx, user, token); err != nil {
		if repository.IsConstraintViolation(err, "email") {
			return nil, Session{}, ErrEmailTaken
		}
		return nil, Session{}, fmt.Errorf("create user: %w", err)
	}

	return user, Session{Token: token, TTL: auth.SessionTTL(remember)}, nil
}

// Login verifies the credentials, issues a new session token and stamps the
// login time. Lookup and verification failures are indistinguishable.
func (s *authService) Login(ctx context.Context, email, password string, remember bool) (*domain.User, Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, Session{}, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, Session{}, ErrInvalidCredentials
	}

	token, err := auth.NewToken()
	if err != nil {
		return nil, Session{}, err
	}
	if err := s.users.UpdateSessionToken(ctx, user.ID, token, true); err != nil {
		return nil, Session{}, fmt.Errorf("persist session token: %w", err)
	}
	user.SessionToken = &token

	return user, Session{Token: token, TTL: auth.SessionTTL(remember)}, nil
}

// normalizeEmail applies the same normalization at every write and read so
// comparisons are case and surrounding-whitespace insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
