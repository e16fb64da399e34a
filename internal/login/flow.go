package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/metrics"
)

// ErrSubmissionPending is returned when a form is submitted again while its
// previous submission has not resolved
var ErrSubmissionPending = errors.New("login: submission already pending")

// SessionUnavailable is shown when authentication succeeded but the session
// could not be stored
const SessionUnavailable = "Unable to start session, please try again"

// SessionWriter records the authenticated session
type SessionWriter interface {
	Establish(ctx context.Context, username string) error
}

// Navigator moves the user to another page
type Navigator interface {
	GoTo(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) GoTo(path string) { f(path) }

// Flow submits forms to an authenticator and acts on the result
type Flow struct {
	auth        auth.Authenticator
	destination string
	log         zerolog.Logger
}

// NewFlow returns a Flow that redirects to destination after a successful login
func NewFlow(a auth.Authenticator, destination string, log zerolog.Logger) *Flow {
	return &Flow{
		auth:        a,
		destination: destination,
		log:         log.With().Str("component", "login").Logger(),
	}
}

// Destination is where successful logins are sent
func (fl *Flow) Destination() string {
	return fl.destination
}

// Submit runs one submission of form: exactly one Authenticate call with the
// form's credentials, then either Establish + GoTo(destination) on success or
// the failure reason recorded on the form. Authentication failures are handled
// here and not returned; the error result is ErrSubmissionPending or a
// session store failure.
func (fl *Flow) Submit(ctx context.Context, form *Form, sessions SessionWriter, nav Navigator) error {
	creds, err := form.begin()
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		fl.log.Warn().Str("form_id", form.ID()).Msg("login submitted while pending")
		return err
	}

	start := time.Now()
	res, err := fl.auth.Authenticate(ctx, creds.Username, creds.Password)
	elapsed := time.Since(start)

	if err == nil && !res.Success {
		reason := res.Reason
		if reason == "" {
			reason = auth.InvalidCredentials
		}
		err = auth.Fail(reason)
	}

	if err != nil {
		reason := auth.ReasonOf(err)
		form.fail(reason)
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		metrics.LoginDuration.WithLabelValues(metrics.ResultFailure).Observe(elapsed.Seconds())
		fl.log.Info().
			Err(err).
			Str("form_id", form.ID()).
			Str("user", creds.Username).
			Dur("duration", elapsed).
			Msg("login failed")
		return nil
	}

	if err := sessions.Establish(ctx, creds.Username); err != nil {
		form.fail(SessionUnavailable)
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("failed to establish session for %q: %w", creds.Username, err)
	}

	form.succeed()
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.LoginDuration.WithLabelValues(metrics.ResultSuccess).Observe(elapsed.Seconds())
	fl.log.Info().
		Str("form_id", form.ID()).
		Str("user", creds.Username).
		Dur("duration", elapsed).
		Msg("login succeeded")

	nav.GoTo(fl.destination)
	return nil
}
