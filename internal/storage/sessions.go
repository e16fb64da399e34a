package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shindakun/orderdesk/internal/models"
)

// SQLiteSessions keeps server-side session records in the sessions table
type SQLiteSessions struct {
	db *sql.DB
}

// NewSQLiteSessions returns a session repository backed by db
func NewSQLiteSessions(db *sql.DB) *SQLiteSessions {
	return &SQLiteSessions{db: db}
}

// Save inserts or replaces a session record
func (s *SQLiteSessions) Save(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, username, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			expires_at = excluded.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Username,
		session.ExpiresAt.UTC(),
		session.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session to database: %w", err)
	}

	return nil
}

// Get returns the session with the given id, or ErrNotFound
func (s *SQLiteSessions) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, username, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`

	var session models.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Username,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from database: %w", err)
	}

	return &session, nil
}

// Delete removes a session record; deleting a missing id is not an error
func (s *SQLiteSessions) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session from database: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired before now
func (s *SQLiteSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
