package login

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth records every call and answers with a fixed result
type fakeAuth struct {
	mu     sync.Mutex
	calls  []Credentials
	result auth.Result
	err    error
}

func (a *fakeAuth) Authenticate(_ context.Context, username, password string) (auth.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Credentials{Username: username, Password: password})
	return a.result, a.err
}

// memorySession holds the single session of a client, empty until a login succeeds
type memorySession struct {
	current *models.Session
	err     error
}

func (s *memorySession) Establish(_ context.Context, username string) error {
	if s.err != nil {
		return s.err
	}
	s.current = &models.Session{ID: "s-" + username, Username: username}
	return nil
}

type recordingNav struct {
	paths []string
}

func (n *recordingNav) GoTo(path string) {
	n.paths = append(n.paths, path)
}

func newTestFlow(a auth.Authenticator) *Flow {
	return NewFlow(a, "/orders", zerolog.Nop())
}

func TestSubmit_FailureShowsReason(t *testing.T) {
	a := &fakeAuth{err: auth.Fail("Invalid credentials")}
	sess := &memorySession{}
	nav := &recordingNav{}

	form := NewForm("f1")
	form.SetCredentials("wrongUser", "wrongPassword")

	require.NoError(t, newTestFlow(a).Submit(context.Background(), form, sess, nav))

	v := form.View()
	assert.Equal(t, Failed, v.State)
	assert.Equal(t, "Invalid credentials", v.Error)
	assert.Empty(t, nav.paths)
	assert.Nil(t, sess.current)
	assert.Equal(t, []Credentials{{"wrongUser", "wrongPassword"}}, a.calls)
}

func TestSubmit_SuccessNavigatesOnce(t *testing.T) {
	a := &fakeAuth{result: auth.Result{Success: true}}
	sess := &memorySession{}
	nav := &recordingNav{}

	form := NewForm("f1")
	form.SetCredentials("validUser", "validPassword")

	require.NoError(t, newTestFlow(a).Submit(context.Background(), form, sess, nav))

	assert.Equal(t, []Credentials{{"validUser", "validPassword"}}, a.calls)
	assert.Equal(t, []string{"/orders"}, nav.paths)
	require.NotNil(t, sess.current)
	assert.Equal(t, "validUser", sess.current.Username)

	v := form.View()
	assert.Equal(t, Succeeded, v.State)
	assert.Empty(t, v.Error)
}

func TestSubmit_ReasonsPassThroughVerbatim(t *testing.T) {
	reasons := []string{"Invalid credentials", "Account locked", "  spaced  ", "¡Credenciales inválidas!", ""}

	for _, reason := range reasons {
		a := &fakeAuth{err: errors.New(reason)}
		nav := &recordingNav{}
		form := NewForm("f")

		require.NoError(t, newTestFlow(a).Submit(context.Background(), form, &memorySession{}, nav))
		assert.Equal(t, reason, form.View().Error)
		assert.Empty(t, nav.paths)
	}
}

func TestSubmit_ErrorReplacedOnRetry(t *testing.T) {
	a := &fakeAuth{err: auth.Fail("Invalid credentials")}
	form := NewForm("f1")
	flow := newTestFlow(a)

	require.NoError(t, flow.Submit(context.Background(), form, &memorySession{}, &recordingNav{}))

	a.err = auth.Fail("Account locked")
	require.NoError(t, flow.Submit(context.Background(), form, &memorySession{}, &recordingNav{}))

	assert.Equal(t, "Account locked", form.View().Error)
	assert.Len(t, a.calls, 2)
}

func TestSubmit_UnsuccessfulResultIsFailure(t *testing.T) {
	form := NewForm("f1")

	a := &fakeAuth{result: auth.Result{Reason: "Password expired"}}
	require.NoError(t, newTestFlow(a).Submit(context.Background(), form, &memorySession{}, &recordingNav{}))
	assert.Equal(t, "Password expired", form.View().Error)

	a = &fakeAuth{result: auth.Result{}}
	require.NoError(t, newTestFlow(a).Submit(context.Background(), form, &memorySession{}, &recordingNav{}))
	assert.Equal(t, auth.InvalidCredentials, form.View().Error)
}

func TestSubmit_EmptyCredentialsPassedThrough(t *testing.T) {
	a := &fakeAuth{err: auth.Fail("Invalid credentials")}

	require.NoError(t, newTestFlow(a).Submit(context.Background(), NewForm("f"), &memorySession{}, &recordingNav{}))
	assert.Equal(t, []Credentials{{"", ""}}, a.calls)
}

func TestSubmit_SessionFailureDoesNotNavigate(t *testing.T) {
	a := &fakeAuth{result: auth.Result{Success: true}}
	sess := &memorySession{err: errors.New("disk full")}
	nav := &recordingNav{}
	form := NewForm("f1")

	err := newTestFlow(a).Submit(context.Background(), form, sess, nav)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Empty(t, nav.paths)
	assert.Equal(t, SessionUnavailable, form.View().Error)
}

// blockingAuth holds every call until release is closed
type blockingAuth struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (a *blockingAuth) Authenticate(ctx context.Context, _, _ string) (auth.Result, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	close(a.started)
	<-a.release
	return auth.Result{Success: true}, nil
}

func TestSubmit_RejectsResubmissionWhilePending(t *testing.T) {
	a := &blockingAuth{started: make(chan struct{}), release: make(chan struct{})}
	flow := newTestFlow(a)
	form := NewForm("f1")
	form.SetCredentials("validUser", "validPassword")

	nav := &recordingNav{}
	done := make(chan error, 1)
	go func() {
		done <- flow.Submit(context.Background(), form, &memorySession{}, nav)
	}()

	<-a.started
	assert.Equal(t, Pending, form.State())

	err := flow.Submit(context.Background(), form, &memorySession{}, &recordingNav{})
	assert.ErrorIs(t, err, ErrSubmissionPending)

	close(a.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, []string{"/orders"}, nav.paths)
	assert.Equal(t, Succeeded, form.State())
}

func TestNavigatorFunc(t *testing.T) {
	var got string
	NavigatorFunc(func(p string) { got = p }).GoTo("/orders")
	assert.Equal(t, "/orders", got)
}
