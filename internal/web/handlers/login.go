package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/login"
	"github.com/shindakun/orderdesk/internal/models"
)

// Form actions posted by the login page buttons
const (
	actionLogin  = "login"
	actionToggle = "toggle"
)

// LoginPage renders a fresh login form
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.GetSessionFromContext(r.Context()); ok && session != nil {
		http.Redirect(w, r, h.flow.Destination(), http.StatusSeeOther)
		return
	}

	form := h.forms.New()
	h.renderLogin(w, r, http.StatusOK, form)
}

// LoginSubmit handles both form buttons: the visibility toggle re-renders the
// form, anything else submits the credentials.
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn().Err(err).Msg("failed to parse login form")
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	form := h.forms.Resume(r.PostFormValue("form_id"))
	if form.State() != login.Pending {
		form.SetCredentials(r.PostFormValue("username"), r.PostFormValue("password"))
	}

	if r.PostFormValue("action") == actionToggle {
		form.ToggleVisibility()
		h.renderLogin(w, r, http.StatusOK, form)
		return
	}

	nav := &httpNavigator{w: w, r: r}
	sessions := &cookieSessionWriter{manager: h.sessionManager, w: w, r: r}

	err := h.flow.Submit(r.Context(), form, sessions, nav)
	switch {
	case errors.Is(err, login.ErrSubmissionPending):
		http.Error(w, "Login already in progress", http.StatusConflict)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("form_id", form.ID()).Msg("login could not be completed")
		h.renderLogin(w, r, http.StatusInternalServerError, form)
		return
	}

	if nav.redirected {
		h.forms.Remove(form.ID())
		return
	}

	h.renderLogin(w, r, http.StatusUnauthorized, form)
}

// renderLogin renders the login page around form
func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, form *login.Form) {
	v := form.View()
	data := TemplateData{
		Title: "Sign in",
		Login: &models.LoginPageData{
			Title:             "Sign in",
			FormID:            v.ID,
			Username:          v.Username,
			Password:          v.Password,
			PasswordInputType: v.InputType,
			ToggleLabel:       v.ToggleLabel,
			Error:             v.Error,
		},
	}

	if err := h.renderTemplate(w, r, status, "login", data); err != nil {
		h.logger.Error().Err(err).Msg("error rendering login template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// httpNavigator answers the login POST with a 303 to the destination
type httpNavigator struct {
	w          http.ResponseWriter
	r          *http.Request
	redirected bool
}

func (n *httpNavigator) GoTo(path string) {
	n.redirected = true
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

// cookieSessionWriter establishes the session for the requesting browser
type cookieSessionWriter struct {
	manager *auth.SessionManager
	w       http.ResponseWriter
	r       *http.Request
}

func (s *cookieSessionWriter) Establish(ctx context.Context, username string) error {
	_, err := s.manager.SaveSession(s.w, s.r.WithContext(ctx), username)
	return err
}
