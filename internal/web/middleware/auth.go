package middleware

import (
	"net/http"

	"github.com/shindakun/orderdesk/internal/auth"
)

// RequireAuth is a middleware that requires authentication.
// It relies on LoadSession having run and redirects to loginPath otherwise.
func RequireAuth(loginPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := auth.GetSessionFromContext(r.Context())
			if !ok || session == nil || !session.IsActive() {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
