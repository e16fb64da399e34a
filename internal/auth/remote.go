package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// maxResponseBytes bounds how much of a remote response is read
const maxResponseBytes = 64 << 10

// RemoteAuthenticator delegates credential checks to an HTTP endpoint.
// Each call makes exactly one request; there are no retries.
type RemoteAuthenticator struct {
	url    string
	client *http.Client
}

// NewRemoteAuthenticator returns an authenticator that POSTs to url
func NewRemoteAuthenticator(url string, timeout time.Duration) *RemoteAuthenticator {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout
	return &RemoteAuthenticator{url: url, client: client}
}

type remoteRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type remoteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r remoteResponse) reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// Authenticate posts the credentials as JSON. A 2xx response with
// {"success": true} resolves with success; anything else fails with the
// response's error or message field, falling back to the HTTP status text.
func (a *RemoteAuthenticator) Authenticate(ctx context.Context, username, password string) (Result, error) {
	body, err := json.Marshal(remoteRequest{Username: username, Password: password})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build authentication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Result{}, &Failure{Reason: ServiceUnavailable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &Failure{Reason: ServiceUnavailable, Err: err}
	}

	var decoded remoteResponse
	jsonErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if jsonErr != nil {
			return Result{}, &Failure{Reason: ServiceUnavailable, Err: fmt.Errorf("malformed response: %w", jsonErr)}
		}
		if decoded.Success {
			return Result{Success: true}, nil
		}
		return Result{Reason: decoded.reason()}, nil
	}

	if reason := strings.TrimSpace(decoded.reason()); jsonErr == nil && reason != "" {
		return Result{}, Fail(reason)
	}
	return Result{}, Fail(http.StatusText(resp.StatusCode))
}
