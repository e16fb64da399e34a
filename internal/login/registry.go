package login

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shindakun/orderdesk/internal/metrics"
)

// Registry holds the forms handed out to browsers, keyed by form ID. Forms
// are dropped after ttl or when the registry is full, oldest first.
type Registry struct {
	forms *expirable.LRU[string, *Form]
}

// NewRegistry returns a registry holding at most size forms for ttl each
func NewRegistry(size int, ttl time.Duration) *Registry {
	onEvict := func(string, *Form) {
		metrics.LoginFormsActive.Dec()
	}
	return &Registry{forms: expirable.NewLRU[string, *Form](size, onEvict, ttl)}
}

// New creates, stores and returns a fresh form
func (r *Registry) New() *Form {
	form := NewForm(uuid.New().String())
	r.forms.Add(form.ID(), form)
	metrics.LoginFormsActive.Inc()
	return form
}

// Get returns the form with id, if it is still held
func (r *Registry) Get(id string) (*Form, bool) {
	if id == "" {
		return nil, false
	}
	return r.forms.Get(id)
}

// Resume returns the form with id, or a fresh one when id is unknown or expired
func (r *Registry) Resume(id string) *Form {
	if form, ok := r.Get(id); ok {
		return form
	}
	return r.New()
}

// Remove drops a form, typically once its login has succeeded
func (r *Registry) Remove(id string) {
	r.forms.Remove(id)
}

// Len returns the number of forms held
func (r *Registry) Len() int {
	return r.forms.Len()
}
