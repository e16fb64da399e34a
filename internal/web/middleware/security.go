package middleware

import (
	"net/http"
	"strings"

	"github.com/shindakun/orderdesk/internal/config"
)

// staticPrefix is the only path whose responses may be cached
const staticPrefix = "/static/"

// SecurityHeaders adds the configured security headers to every response.
// Pages echo the entered username and show per-session data, so everything
// outside /static/ is also marked no-store.
func SecurityHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	headers := cfg.Server.Security.Headers

	set := map[string]string{
		"X-Frame-Options":         headers.XFrameOptions,
		"X-Content-Type-Options":  headers.XContentTypeOptions,
		"Referrer-Policy":         headers.ReferrerPolicy,
		"Content-Security-Policy": headers.ContentSecurityPolicy,
	}
	// HSTS over plain HTTP is ignored by browsers and pins nothing
	if cfg.IsHTTPS() {
		set["Strict-Transport-Security"] = headers.StrictTransportSecurity
	}
	for name, value := range set {
		if value == "" {
			delete(set, name)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range set {
				h.Set(name, value)
			}
			if !strings.HasPrefix(r.URL.Path, staticPrefix) {
				h.Set("Cache-Control", "no-store")
			}

			next.ServeHTTP(w, r)
		})
	}
}
