package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFProtection creates a CSRF protection middleware using gorilla/csrf.
// The login form carries the token in fieldName.
func CSRFProtection(secret []byte, secure bool, fieldName string) func(http.Handler) http.Handler {
	return csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(fieldName),
		csrf.ErrorHandler(http.HandlerFunc(CSRFFailureHandler)),
	)
}

// PlaintextHTTP marks requests as plain HTTP for gorilla/csrf, which otherwise
// assumes TLS and rejects POSTs whose Referer is http://.
func PlaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// CSRFFailureHandler answers requests whose CSRF token is missing or stale
func CSRFFailureHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`<!DOCTYPE html>
<p class="error" role="alert">Your login form has expired. <a href="/login">Reload the login page</a> and try again.</p>
`))
}
