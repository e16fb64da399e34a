package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog"
	"github.com/shindakun/orderdesk/internal/auth"
	"github.com/shindakun/orderdesk/internal/config"
	"github.com/shindakun/orderdesk/internal/models"
	"github.com/shindakun/orderdesk/internal/storage"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

// TestCSRFTokenGeneration verifies that CSRF middleware generates tokens
func TestCSRFTokenGeneration(t *testing.T) {
	csrfMiddleware := CSRFProtection([]byte(testSecret), false, "csrf_token")

	var tokens []string
	handler := csrfMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, csrf.Token(r))
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
	}

	if len(tokens) != 2 || tokens[0] == "" || tokens[1] == "" {
		t.Fatalf("Expected two non-empty tokens, got %q", tokens)
	}
	if tokens[0] == tokens[1] {
		t.Error("Expected different tokens for different sessions, got same token")
	}
}

// TestCSRFRejectsPostWithoutToken verifies unsafe methods need a token
func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	reached := false
	handler := PlaintextHTTP(CSRFProtection([]byte(testSecret), false, "csrf_token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a")))

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
	if reached {
		t.Error("Handler must not run when the CSRF check fails")
	}
}

// TestCSRFFailureHandler verifies the failure page links back to the login form
func TestCSRFFailureHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	CSRFFailureHandler(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `href="/login"`) {
		t.Errorf("Expected a link back to the login page, got: %s", body)
	}
}

func securityConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Server.BaseURL = baseURL
	return &cfg
}

// TestSecurityHeaders verifies headers on every status and HSTS only over HTTPS
func TestSecurityHeaders(t *testing.T) {
	for _, tc := range []struct {
		name     string
		baseURL  string
		wantHSTS bool
	}{
		{"http", "http://localhost:8080", false},
		{"https", "https://orders.example.com", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Use(SecurityHeaders(securityConfig(tc.baseURL)))
			r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			r.Get("/error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

			for _, path := range []string{"/ok", "/error", "/missing"} {
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

				if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
					t.Errorf("%s: X-Frame-Options = %q", path, got)
				}
				if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
					t.Errorf("%s: X-Content-Type-Options = %q", path, got)
				}
				if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "form-action 'self'") {
					t.Errorf("%s: Content-Security-Policy = %q, want form-action 'self'", path, got)
				}
				if got := rec.Header().Get("Cache-Control"); got != "no-store" {
					t.Errorf("%s: Cache-Control = %q, want no-store", path, got)
				}
				hasHSTS := rec.Header().Get("Strict-Transport-Security") != ""
				if hasHSTS != tc.wantHSTS {
					t.Errorf("%s: HSTS present = %v, want %v", path, hasHSTS, tc.wantHSTS)
				}
			}
		})
	}
}

// TestSecurityHeaders_StaticCacheable verifies static assets are not marked no-store
func TestSecurityHeaders_StaticCacheable(t *testing.T) {
	handler := SecurityHeaders(securityConfig("http://localhost:8080"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	if got := rec.Header().Get("Cache-Control"); got != "" {
		t.Errorf("Expected no Cache-Control on static assets, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

// TestMaxBytesMiddleware verifies oversized bodies cannot be read in full
func TestMaxBytesMiddleware(t *testing.T) {
	handler := MaxBytesMiddleware(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRecorder()
	handler.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(make([]byte, 1024))))
	if small.Code != http.StatusOK {
		t.Errorf("Expected status 200 at the limit, got %d", small.Code)
	}

	large := httptest.NewRecorder()
	handler.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(make([]byte, 1025))))
	if large.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413 over the limit, got %d", large.Code)
	}
}

// TestRequireAuth verifies redirects without a session and pass-through with one
func TestRequireAuth(t *testing.T) {
	protected := RequireAuth("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no session redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("Expected 303 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("active session passes", func(t *testing.T) {
		session := &models.Session{ID: "s", Username: "validUser", ExpiresAt: time.Now().Add(time.Hour)}
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req = req.WithContext(auth.SetSessionInContext(req.Context(), session))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})
}

// TestLoadSessionAndLogging verifies the logged user comes from the loaded session
func TestLoadSessionAndLogging(t *testing.T) {
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "mw.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	sm := auth.NewSessionManager(testSecret, 3600, false, http.SameSiteLaxMode, storage.NewSQLiteSessions(db))

	loginRec := httptest.NewRecorder()
	if _, err := sm.SaveSession(loginRec, httptest.NewRequest(http.MethodPost, "/login", nil), "validUser"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	handler := LoadSession(sm, log)(LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["user"] != "validUser" {
		t.Errorf("Expected user validUser, got %v", entry["user"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("Expected status 418, got %v", entry["status"])
	}
	if entry["bytes"] != float64(len("short and stout")) {
		t.Errorf("Expected bytes %d, got %v", len("short and stout"), entry["bytes"])
	}
}

// TestRecoverer verifies panics are turned into the fallback response
func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	handler := Recoverer(zerolog.New(&buf), func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("Expected panic to be logged, got %q", buf.String())
	}
}
