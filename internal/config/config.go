// Package config loads lacsverts configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all lacsverts configuration.
type Config struct {
	// BackendURL is the origin of the REST backend; the client appends /api.
	BackendURL string `yaml:"backend_url"`

	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	HTTP    HTTPConfig    `yaml:"http"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// AuthConfig configures the identity provider redirect.
type AuthConfig struct {
	ProviderURL  string `yaml:"provider_url"`
	CallbackAddr string `yaml:"callback_addr"`
	LoginTimeout string `yaml:"login_timeout"`
	// Headless runs the browser-automated login without a window.
	Headless bool `yaml:"headless"`
}

// SessionConfig selects where the session token is persisted.
type SessionConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	Path    string `yaml:"path"`
}

// HTTPConfig configures the backend client.
type HTTPConfig struct {
	// RequestTimeout is empty by default: no client-side timeout.
	RequestTimeout string `yaml:"request_timeout"`
	UserAgent      string `yaml:"user_agent"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	DarkMode bool `yaml:"dark_mode"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	Enabled    bool            `yaml:"enabled"`
	Level      string          `yaml:"level"`
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// Session backends.
const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
	SessionBackendMemory = "memory"
)

// ValidSessionBackends lists the supported session backends.
var ValidSessionBackends = []string{SessionBackendFile, SessionBackendSQLite, SessionBackendMemory}

// DefaultDir returns ~/.lacsverts, or .lacsverts when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lacsverts"
	}
	return filepath.Join(home, ".lacsverts")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultSessionPath returns the default session location for a backend.
func DefaultSessionPath(backend string) string {
	if backend == SessionBackendSQLite {
		return filepath.Join(DefaultDir(), "session.db")
	}
	return filepath.Join(DefaultDir(), "session.json")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		BackendURL: "http://localhost:8001",
		Auth: AuthConfig{
			ProviderURL:  "https://auth.emergentagent.com",
			CallbackAddr: "127.0.0.1:51123",
			LoginTimeout: "5m",
		},
		Session: SessionConfig{
			Backend: SessionBackendFile,
			Path:    DefaultSessionPath(SessionBackendFile),
		},
		HTTP: HTTPConfig{
			UserAgent: "lacsverts",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     filepath.Join(dir, "logs"),
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Missing file: defaults, still subject to the environment.
		cfg.applyEnvOverrides()
		cfg.resolveSessionPath()
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.resolveSessionPath()

	return cfg, nil
}

// resolveSessionPath replaces an unset or inherited default path with the
// default for the selected backend, so sqlite never opens session.json.
func (c *Config) resolveSessionPath() {
	p := c.Session.Path
	if p == "" || p == DefaultSessionPath(SessionBackendFile) {
		c.Session.Path = DefaultSessionPath(c.Session.Backend)
	}
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LACSVERTS_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("LACSVERTS_AUTH_URL"); v != "" {
		c.Auth.ProviderURL = v
	}
	if v := os.Getenv("LACSVERTS_SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := os.Getenv("LACSVERTS_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}
	if v := os.Getenv("LACSVERTS_REQUEST_TIMEOUT"); v != "" {
		c.HTTP.RequestTimeout = v
	}
	if v := os.Getenv("LACSVERTS_DARK_MODE"); v == "1" || strings.EqualFold(v, "true") {
		c.UI.DarkMode = true
	}
}

// GetRequestTimeout returns the per-request timeout. Zero means none.
func (c *Config) GetRequestTimeout() time.Duration {
	if c.HTTP.RequestTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.HTTP.RequestTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetLoginTimeout returns how long the login flow waits for the callback.
func (c *Config) GetLoginTimeout() time.Duration {
	d, err := time.ParseDuration(c.Auth.LoginTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// CallbackURL is the profile route served by the local callback server.
func (c *Config) CallbackURL() string {
	return "http://" + c.Auth.CallbackAddr + "/profile"
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend_url: %q", c.BackendURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url must be http or https, got %s", u.Scheme)
	}

	if _, err := url.Parse(c.Auth.ProviderURL); err != nil || c.Auth.ProviderURL == "" {
		return fmt.Errorf("invalid auth.provider_url: %q", c.Auth.ProviderURL)
	}

	validBackend := false
	for _, b := range ValidSessionBackends {
		if c.Session.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid session backend: %s (valid: %v)", c.Session.Backend, ValidSessionBackends)
	}
	if c.Session.Backend != SessionBackendMemory && c.Session.Path == "" {
		return fmt.Errorf("session.path is required for the %s backend", c.Session.Backend)
	}

	if c.HTTP.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.HTTP.RequestTimeout); err != nil {
			return fmt.Errorf("invalid http.request_timeout: %w", err)
		}
	}

	return nil
}
