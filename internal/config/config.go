package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Auth     AuthConfig     `yaml:"auth"`
	Login    LoginConfig    `yaml:"login"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int            `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	Host            string         `yaml:"host" env:"HOST"`
	BaseURL         string         `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	ReadTimeout     time.Duration  `yaml:"read_timeout"`
	WriteTimeout    time.Duration  `yaml:"write_timeout"`
	IdleTimeout     time.Duration  `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Security        SecurityConfig `yaml:"security"`
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	CSRFEnabled     bool                  `yaml:"csrf_enabled" env:"CSRF_ENABLED"`
	CSRFFieldName   string                `yaml:"csrf_field_name"`
	MaxRequestBytes int64                 `yaml:"max_request_bytes" validate:"min=0"`
	Headers         SecurityHeadersConfig `yaml:"headers"`
}

// SecurityHeadersConfig contains HTTP security header settings
type SecurityHeadersConfig struct {
	XFrameOptions           string `yaml:"x_frame_options"`
	XContentTypeOptions     string `yaml:"x_content_type_options"`
	ReferrerPolicy          string `yaml:"referrer_policy"`
	ContentSecurityPolicy   string `yaml:"content_security_policy"`
	StrictTransportSecurity string `yaml:"strict_transport_security"`
}

// SessionConfig controls the signed session cookie and where session records live
type SessionConfig struct {
	Secret         string `yaml:"secret" env:"SESSION_SECRET" validate:"required,min=32"`
	MaxAge         int    `yaml:"max_age" validate:"min=1"`
	CookieSecure   string `yaml:"cookie_secure" validate:"oneof=auto true false"`
	CookieSameSite string `yaml:"cookie_samesite" validate:"oneof=strict lax none"`
	Backend        string `yaml:"backend" env:"SESSION_BACKEND" validate:"oneof=sqlite redis"`
}

// AuthConfig selects the authentication client
type AuthConfig struct {
	Mode      string        `yaml:"mode" env:"AUTH_MODE" validate:"oneof=local remote"`
	RemoteURL string        `yaml:"remote_url" env:"AUTH_REMOTE_URL" validate:"required_if=Mode remote,omitempty,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=0"`
}

// LoginConfig contains login form settings
type LoginConfig struct {
	Destination string        `yaml:"destination" validate:"required,startswith=/"`
	FormTTL     time.Duration `yaml:"form_ttl" validate:"min=0"`
	MaxForms    int           `yaml:"max_forms" validate:"min=1"`
}

// DatabaseConfig contains SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" validate:"required"`
}

// RedisConfig is only used when session.backend is "redis"
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" validate:"min=0"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// Default returns a configuration with every optional field populated.
// Values from the config file are layered on top of it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "localhost",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Security: SecurityConfig{
				CSRFEnabled:     true,
				CSRFFieldName:   "csrf_token",
				MaxRequestBytes: 1 << 20,
				Headers: SecurityHeadersConfig{
					XFrameOptions:           "DENY",
					XContentTypeOptions:     "nosniff",
					ReferrerPolicy:          "same-origin",
					ContentSecurityPolicy:   "default-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'",
					StrictTransportSecurity: "max-age=31536000; includeSubDomains",
				},
			},
		},
		Session: SessionConfig{
			MaxAge:         7 * 24 * 60 * 60,
			CookieSecure:   "auto",
			CookieSameSite: "lax",
			Backend:        "sqlite",
		},
		Auth: AuthConfig{
			Mode:    "local",
			Timeout: 10 * time.Second,
		},
		Login: LoginConfig{
			Destination: "/orders",
			FormTTL:     30 * time.Minute,
			MaxForms:    10000,
		},
		Database: DatabaseConfig{
			Path: "./data/orderdesk.db",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the specified file path.
// Environment variables referenced as ${VAR} are expanded first, then the
// variables named in env tags override whatever the file set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, envconfig.OsLookuper())
}

// Parse builds a Config from raw YAML and an environment lookuper
func Parse(data []byte, lookuper envconfig.Lookuper) (*Config, error) {
	expanded := os.Expand(string(data), func(key string) string {
		v, _ := lookuper.Lookup(key)
		return v
	})

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:           &cfg,
		Lookuper:         lookuper,
		DefaultOverwrite: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that all required configuration fields are set
func (c *Config) Validate() error {
	if strings.Contains(c.Session.Secret, "${") {
		return fmt.Errorf("session.secret is required (set SESSION_SECRET environment variable)")
	}

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Session.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when session.backend is redis")
	}

	return nil
}

// GetAddr returns the full server address (host:port)
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetBaseURL returns base_url if set, otherwise one built from host:port
func (c *Config) GetBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	return fmt.Sprintf("http://%s", c.GetAddr())
}

// IsHTTPS returns true if the base URL uses HTTPS
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(c.GetBaseURL()), "https://")
}

// CookieSecure resolves session.cookie_secure, where "auto" follows the base URL scheme
func (c *Config) CookieSecure() bool {
	switch c.Session.CookieSecure {
	case "true":
		return true
	case "false":
		return false
	default:
		return c.IsHTTPS()
	}
}

// CookieSameSite maps session.cookie_samesite to its http.SameSite value
func (c *Config) CookieSameSite() http.SameSite {
	switch c.Session.CookieSameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
