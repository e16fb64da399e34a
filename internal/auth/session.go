package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/shindakun/orderdesk/internal/models"
	"github.com/shindakun/orderdesk/internal/storage"
)

const (
	sessionName         = "orderdesk-session"
	sessionKeySessionID = "session_id"
)

// ErrNoSession is returned when the request carries no valid session
var ErrNoSession = errors.New("no session")

// SessionRepository stores server-side session records
type SessionRepository interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionManager pairs a signed cookie holding the session id with the
// server-side record it points to.
type SessionManager struct {
	store  *sessions.CookieStore
	repo   SessionRepository
	maxAge time.Duration
}

// NewSessionManager creates a session manager with HTTP-only cookies
func NewSessionManager(secret string, maxAge int, secure bool, sameSite http.SameSite, repo SessionRepository) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}

	return &SessionManager{
		store:  store,
		repo:   repo,
		maxAge: time.Duration(maxAge) * time.Second,
	}
}

// SaveSession creates a session for username and writes the cookie
func (sm *SessionManager) SaveSession(w http.ResponseWriter, r *http.Request, username string) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.maxAge),
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := sm.repo.Save(r.Context(), session); err != nil {
		return nil, err
	}

	// A stale or tampered cookie still yields a fresh session to write into
	cookieSession, _ := sm.store.Get(r, sessionName)
	cookieSession.Values[sessionKeySessionID] = session.ID

	if err := cookieSession.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save cookie session: %w", err)
	}

	return session, nil
}

// GetSession retrieves the session named by the request cookie
func (sm *SessionManager) GetSession(r *http.Request) (*models.Session, error) {
	cookieSession, err := sm.store.Get(r, sessionName)
	if err != nil {
		return nil, ErrNoSession
	}

	id, ok := cookieSession.Values[sessionKeySessionID].(string)
	if !ok || id == "" {
		return nil, ErrNoSession
	}

	session, err := sm.repo.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		if err := sm.repo.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}

	return session, nil
}

// ClearSession removes the session record and expires the cookie (logout)
func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	cookieSession, err := sm.store.Get(r, sessionName)
	if err != nil {
		// Unreadable cookie: nothing server-side to delete
		return nil
	}

	if id, ok := cookieSession.Values[sessionKeySessionID].(string); ok && id != "" {
		if err := sm.repo.Delete(r.Context(), id); err != nil {
			return err
		}
	}

	cookieSession.Options.MaxAge = -1
	if err := cookieSession.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear cookie session: %w", err)
	}

	return nil
}

// Sweep deletes expired session records
func (sm *SessionManager) Sweep(ctx context.Context) (int64, error) {
	return sm.repo.DeleteExpired(ctx, time.Now())
}

type contextKey struct{}

// GetSessionFromContext retrieves session from request context
func GetSessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*models.Session)
	return session, ok
}

// SetSessionInContext stores session in request context
func SetSessionInContext(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}
