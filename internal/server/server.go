// Package server wires configuration, the login flow and the HTTP handlers
// into a chi router.
package server

import (
	"context"
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/config"
	"github.com/shindakun/orderdesk/internal/login"
	"github.com/shindakun/orderdesk/internal/web/handlers"
	webmiddleware "github.com/shindakun/orderdesk/internal/web/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Deps are the collaborators the router is built from
type Deps struct {
	Config        *config.Config
	Sessions      *auth.SessionManager
	Authenticator auth.Authenticator
	Logger        zerolog.Logger
	Version       string
}

// NewRouter builds the application's HTTP handler
func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config

	templates, err := handlers.ParseTemplates()
	if err != nil {
		return nil, err
	}

	flow := login.NewFlow(d.Authenticator, cfg.Login.Destination, d.Logger)
	forms := login.NewRegistry(cfg.Login.MaxForms, cfg.Login.FormTTL)
	h := handlers.New(d.Sessions, flow, forms, templates, d.Logger, handlers.Options{
		Version:   d.Version,
		CSRFField: cfg.Server.Security.CSRFFieldName,
	})

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(webmiddleware.Recoverer(d.Logger, h.InternalError))
	r.Use(webmiddleware.SecurityHeaders(cfg))
	r.Use(webmiddleware.MaxBytesMiddleware(cfg.Server.Security.MaxRequestBytes))
	r.Use(webmiddleware.LoadSession(d.Sessions, d.Logger))
	r.Use(webmiddleware.LoggingMiddleware(d.Logger))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", h.ServeStatic())

	r.Group(func(r chi.Router) {
		if cfg.Server.Security.CSRFEnabled {
			if !cfg.IsHTTPS() {
				r.Use(webmiddleware.PlaintextHTTP)
			}
			r.Use(webmiddleware.CSRFProtection(csrfKey(cfg.Session.Secret), cfg.CookieSecure(), cfg.Server.Security.CSRFFieldName))
		}

		r.Get("/", h.Landing)
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.LoginSubmit)
		r.Get("/logout", h.Logout)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(webmiddleware.RequireAuth("/login"))
			r.Get(cfg.Login.Destination, h.Orders)
		})
	})

	r.NotFound(h.NotFound)

	return otelhttp.NewHandler(r, "orderdesk"), nil
}

// csrfKey derives the 32-byte gorilla/csrf key from the session secret so the
// cookie signing key is never reused verbatim
func csrfKey(secret string) []byte {
	sum := sha256.Sum256([]byte("orderdesk-csrf:" + secret))
	return sum[:]
}

// NewHTTPServer returns the http.Server for handler using the configured timeouts
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// RunSessionSweeper deletes expired session records every interval until ctx is done
func RunSessionSweeper(ctx context.Context, sessions *auth.SessionManager, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Sweep(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("swept expired sessions")
			}
		}
	}
}
