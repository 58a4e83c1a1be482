package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	defaultFailoverTimeout = 5 * time.Second
	defaultPullTimeout     = 300 * time.Second
	defaultSearchRate      = 1.6
	defaultCacheTTL        = 24 * time.Hour
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend     BackendConfig     `toml:"backend"`
	Acquisition AcquisitionConfig `toml:"acquisition"`
	Search      SearchConfig      `toml:"search"`
	Session     SessionConfig     `toml:"session"`
	Database    DatabaseConfig    `toml:"database"`
}

// BackendConfig locates the setlist backend and its endpoints.
type BackendConfig struct {
	BaseURL      string `toml:"base_url"`
	StreamPath   string `toml:"stream_path"`
	PullPath     string `toml:"pull_path"`
	HealthPath   string `toml:"health_path"`
	LoginPath    string `toml:"login_path"`
	SearchPath   string `toml:"search_path"`
	PlaylistPath string `toml:"playlist_path"`
}

// URL joins the base URL with path.
func (b BackendConfig) URL(path string) string {
	return strings.TrimRight(b.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// LoginURL is the external authentication entry point users are redirected to.
func (b BackendConfig) LoginURL() string {
	return b.URL(b.LoginPath)
}

// AcquisitionConfig tunes the push/pull failover.
type AcquisitionConfig struct {
	FailoverTimeoutMS  int `toml:"failover_timeout_ms"`
	PullTimeoutSeconds int `toml:"pull_timeout_seconds"`
}

// FailoverTimeout returns how long the event stream may stay silent before falling back to the pull endpoint.
func (a AcquisitionConfig) FailoverTimeout() time.Duration {
	if a.FailoverTimeoutMS <= 0 {
		return defaultFailoverTimeout
	}
	return time.Duration(a.FailoverTimeoutMS) * time.Millisecond
}

// PullTimeout returns the deadline of the single pull request.
func (a AcquisitionConfig) PullTimeout() time.Duration {
	if a.PullTimeoutSeconds <= 0 {
		return defaultPullTimeout
	}
	return time.Duration(a.PullTimeoutSeconds) * time.Second
}

// SearchConfig contains artist search rate limiting and cache settings.
type SearchConfig struct {
	RateLimit       float64 `toml:"rate_limit"`
	Burst           int     `toml:"burst"`
	CacheTTLMinutes int     `toml:"cache_ttl_minutes"`
}

// Rate returns requests per second, defaulting below setlist.fm's limit.
func (s SearchConfig) Rate() float64 {
	if s.RateLimit <= 0 {
		return defaultSearchRate
	}
	return s.RateLimit
}

// CacheTTL returns how long cached search results stay fresh. Negative disables caching.
func (s SearchConfig) CacheTTL() time.Duration {
	if s.CacheTTLMinutes == 0 {
		return defaultCacheTTL
	}
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

// SessionConfig holds the backend session credential.
type SessionConfig struct {
	AccessToken string    `toml:"access_token"`
	TokenType   string    `toml:"token_type"`
	Expiry      time.Time `toml:"expiry,omitempty"`
}

// Token converts the stored credential into an [oauth2.Token]. Returns nil when no credential is stored.
func (s SessionConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: s.AccessToken, TokenType: s.TokenType, Expiry: s.Expiry}
}

// SetToken stores tok, or clears the credential when tok is nil.
func (s *SessionConfig) SetToken(tok *oauth2.Token) {
	if tok == nil {
		*s = SessionConfig{TokenType: "Bearer"}
		return
	}
	s.AccessToken = tok.AccessToken
	s.TokenType = tok.TokenType
	s.Expiry = tok.Expiry
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Validate checks the fields the client cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("%w: backend.base_url is required", ErrInvalidConfig)
	}
	if c.Backend.StreamPath == "" || c.Backend.PullPath == "" {
		return fmt.Errorf("%w: backend stream_path and pull_path are required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Missing keys keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// The file may hold a session token.
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
