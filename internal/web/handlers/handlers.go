package handlers

import (
	"io/fs"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/login"
	"github.com/shindakun/orderdesk/internal/web"
)

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	sessionManager *auth.SessionManager
	flow           *login.Flow
	forms          *login.Registry
	templates      *Templates
	logger         zerolog.Logger
	version        string
	csrfField      string
}

// Options are the non-dependency settings of Handlers
type Options struct {
	Version string
	// CSRFField is the form field gorilla/csrf reads the token from
	CSRFField string
}

// New creates a new Handlers instance
func New(sessionManager *auth.SessionManager, flow *login.Flow, forms *login.Registry, templates *Templates, logger zerolog.Logger, opts Options) *Handlers {
	return &Handlers{
		sessionManager: sessionManager,
		flow:           flow,
		forms:          forms,
		templates:      templates,
		logger:         logger,
		version:        opts.Version,
		csrfField:      opts.CSRFField,
	}
}

// Landing sends signed-in users to the login destination and everyone else to the login page
func (h *Handlers) Landing(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.GetSessionFromContext(r.Context()); ok && session != nil {
		http.Redirect(w, r, h.flow.Destination(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout clears the session and returns to the login page
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.ClearSession(w, r); err != nil {
		// Log error but continue with logout
		h.logger.Error().Err(err).Msg("failed to clear session")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Healthz reports liveness
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// NotFound renders the 404 page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Not found", "The page you asked for does not exist.")
}

// ServeStatic serves the embedded static assets under /static/
func (h *Handlers) ServeStatic() http.Handler {
	sub, err := fs.Sub(web.Static, "static")
	if err != nil {
		// web.Static always contains static/
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	session, _ := auth.GetSessionFromContext(r.Context())
	data := TemplateData{
		Title:   title,
		Message: message,
		Session: session,
	}
	if err := h.renderTemplate(w, r, status, "error", data); err != nil {
		h.logger.Error().Err(err).Msg("error rendering error template")
		http.Error(w, title, status)
	}
}

// InternalError renders the 500 page; used by the panic recoverer
func (h *Handlers) InternalError(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again in a moment.")
}
