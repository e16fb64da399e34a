package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/gorilla/csrf"
	"github.com/shindakun/orderdesk/internal/models"
	"github.com/shindakun/orderdesk/internal/web"
)

// TemplateData holds common data passed to templates
type TemplateData struct {
	Title     string
	Message   string
	Session   *models.Session
	Login     *models.LoginPageData
	Orders    *models.OrdersPageData
	Version   string
	CSRFToken string // CSRF token for forms
	CSRFField string
}

// pages are parsed together with the base layout and every partial
var pages = []string{"login", "orders", "error"}

// Templates is the parsed set of pages and partials
type Templates struct {
	pages map[string]*template.Template
}

// ParseTemplates parses the embedded templates once at startup
func ParseTemplates() (*Templates, error) {
	return parseTemplates(web.Templates)
}

func parseTemplates(fsys fs.FS) (*Templates, error) {
	t := &Templates{
		pages: make(map[string]*template.Template, len(pages)),
	}
	for _, name := range pages {
		tmpl, err := template.ParseFS(fsys,
			"templates/layouts/base.html",
			path.Join("templates", "pages", name+".html"),
			"templates/partials/*.html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}

	return t, nil
}

// renderTemplate renders a page with the base layout. Output is buffered so a
// template error never leaves a half-written response.
func (h *Handlers) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := h.templates.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}

	h.fillCommon(r, &data)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (h *Handlers) fillCommon(r *http.Request, data *TemplateData) {
	data.Version = h.version
	data.CSRFToken = csrf.Token(r)
	data.CSRFField = h.csrfField
}
