// Package login implements the login form: credential entry, the password
// visibility toggle and the submission state machine
//
//	Idle → Pending → Succeeded
//	              ↘ Failed → Pending → ...
//
// A Form is driven by a Flow, which talks to the authenticator, the session
// store and the navigator.
package login

import (
	"sync"
)

// State is where a form is in its submission lifecycle
type State int

const (
	Idle State = iota
	Pending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Input types and toggle labels for the password field
const (
	InputMasked  = "password"
	InputVisible = "text"
	LabelShow    = "show"
	LabelHide    = "hide"
)

// Credentials is one username/password pair as entered. No validation is
// applied; empty strings are passed through.
type Credentials struct {
	Username string
	Password string
}

// View is a snapshot of a form for rendering
type View struct {
	ID          string
	Username    string
	Password    string
	Visible     bool
	InputType   string
	ToggleLabel string
	State       State
	Error       string
}

// Form is one login form instance. It is safe for concurrent use.
type Form struct {
	id string

	mu      sync.Mutex
	creds   Credentials
	visible bool
	state   State
	err     string
}

// NewForm returns an idle, masked form with no credentials
func NewForm(id string) *Form {
	return &Form{id: id}
}

// ID returns the form's identifier
func (f *Form) ID() string {
	return f.id
}

// SetCredentials replaces the entered username and password
func (f *Form) SetCredentials(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = Credentials{Username: username, Password: password}
}

// ToggleVisibility flips password visibility and returns the new value
func (f *Form) ToggleVisibility() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = !f.visible
	return f.visible
}

// State returns the current submission state
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns a rendering snapshot. The error is only present in Failed.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		ID:          f.id,
		Username:    f.creds.Username,
		Password:    f.creds.Password,
		Visible:     f.visible,
		InputType:   InputMasked,
		ToggleLabel: LabelShow,
		State:       f.state,
	}
	if f.visible {
		v.InputType = InputVisible
		v.ToggleLabel = LabelHide
	}
	if f.state == Failed {
		v.Error = f.err
	}
	return v
}

// begin moves the form to Pending and returns the credentials to submit.
// The previous error is cleared and the form stops holding the password.
func (f *Form) begin() (Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Pending {
		return Credentials{}, ErrSubmissionPending
	}
	f.state = Pending
	f.err = ""
	creds := f.creds
	f.creds.Password = ""
	return creds, nil
}

func (f *Form) succeed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Succeeded
	f.err = ""
}

func (f *Form) fail(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Failed
	f.err = reason
}
