package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/models"
)

// Orders renders the post-login destination (protected route)
func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	// Get session from context (set by RequireAuth middleware)
	session, ok := auth.GetSessionFromContext(r.Context())
	if !ok || session == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := TemplateData{
		Title:   "Orders",
		Session: session,
		Orders: &models.OrdersPageData{
			Username:     session.Username,
			SignedInAgo:  humanize.Time(session.CreatedAt),
			SessionUntil: session.ExpiresAt.Local().Format("Mon Jan 2 15:04 MST"),
		},
	}

	if err := h.renderTemplate(w, r, http.StatusOK, "orders", data); err != nil {
		h.logger.Error().Err(err).Msg("error rendering orders template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
