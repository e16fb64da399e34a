package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shindakun/orderdesk/internal/models"
	"github.com/shindakun/orderdesk/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist so that unknown
// usernames cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("orderdesk-dummy-password"), bcrypt.DefaultCost)

// LocalAuthenticator checks credentials against the users table
type LocalAuthenticator struct {
	db *sql.DB
}

// NewLocalAuthenticator returns an authenticator backed by db
func NewLocalAuthenticator(db *sql.DB) *LocalAuthenticator {
	return &LocalAuthenticator{db: db}
}

// Authenticate resolves with success when the bcrypt hash matches. Unknown
// users and wrong passwords both fail with InvalidCredentials; a failing user
// store fails with ServiceUnavailable.
func (a *LocalAuthenticator) Authenticate(ctx context.Context, username, password string) (Result, error) {
	user, err := storage.GetUserByUsername(ctx, a.db, username)
	if errors.Is(err, storage.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Result{}, Fail(InvalidCredentials)
	}
	if err != nil {
		return Result{}, &Failure{Reason: ServiceUnavailable, Err: fmt.Errorf("failed to look up user: %w", err)}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Result{}, Fail(InvalidCredentials)
	}

	return Result{Success: true}, nil
}

// AddUser hashes password and provisions a local user
func AddUser(ctx context.Context, db *sql.DB, username, password string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := storage.CreateUser(ctx, db, user); err != nil {
		return nil, err
	}

	return user, nil
}
