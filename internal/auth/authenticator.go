package auth

import (
	"context"
	"errors"
)

// InvalidCredentials is the failure reason for an unknown user or a wrong password
const InvalidCredentials = "Invalid credentials"

// ServiceUnavailable is the failure reason when the user store or the remote
// service cannot be reached
const ServiceUnavailable = "Authentication service unavailable"

// Result is what an Authenticator resolves with. A Result with Success false
// is treated as a failure carrying Reason.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Failure is an authentication failure with a human-readable reason.
// Err, when set, is the underlying cause and is only ever logged.
type Failure struct {
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Reason + ": " + f.Err.Error()
	}
	return f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fail returns a *Failure carrying reason
func Fail(reason string) error {
	return &Failure{Reason: reason}
}

// ReasonOf returns the text to show a user for err: the Failure reason when
// err wraps one, err.Error() otherwise.
func ReasonOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return err.Error()
}

// Authenticator verifies a username/password pair
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Result, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface
type AuthenticatorFunc func(ctx context.Context, username, password string) (Result, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, username, password string) (Result, error) {
	return f(ctx, username, password)
}
