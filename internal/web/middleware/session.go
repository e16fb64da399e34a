package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
)

// LoadSession attaches the request's session, if any, to the request context.
// Requests without a session pass through unchanged.
func LoadSession(sessionManager *auth.SessionManager, logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionManager.GetSession(r)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to load session")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetSessionInContext(r.Context(), session)))
		})
	}
}
