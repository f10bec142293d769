package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/calsetup/internal/logging"
)

// Default values.
const (
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
	DefaultTokenDatabase   = "token.db"
	DefaultCallbackPort    = 8000
	DefaultCalendarID      = "primary"
	DefaultLogLevel        = "warn"

	// Credential cache backends.
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"

	// searchPath is relative to each XDG config directory.
	searchPath = "calsetup/config.toml"
)

// Config is the configuration of a setup run.
type Config struct {
	// CredentialsFile is the OAuth client secrets JSON downloaded from the
	// Google Cloud console.
	CredentialsFile string `toml:"credentials_file"`

	// TokenFile is where the authorized credential is cached. With the
	// sqlite store it is the database path.
	TokenFile string `toml:"token_file"`

	// TokenStore selects the cache backend: file or sqlite.
	TokenStore string `toml:"token_store"`

	// CallbackPort is the local port the authorization redirect lands on.
	// Zero picks a free port.
	CallbackPort int `toml:"callback_port"`

	// CalendarID is the calendar the demo event is inserted into.
	CalendarID string `toml:"calendar_id"`

	// Scopes requested during authorization.
	Scopes []string `toml:"scopes"`

	// OpenBrowser controls whether the authorization URL is opened
	// automatically. The URL is always printed.
	OpenBrowser bool `toml:"open_browser"`

	// AuthTimeout bounds the wait for the browser redirect. Zero waits
	// until interrupted.
	AuthTimeout Duration `toml:"auth_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Source is the file the configuration was read from, empty for defaults.
	Source string `toml:"-"`
}

// Duration wraps time.Duration so it decodes from TOML strings like "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		CredentialsFile: DefaultCredentialsFile,
		TokenFile:       DefaultTokenFile,
		TokenStore:      TokenStoreFile,
		CallbackPort:    DefaultCallbackPort,
		CalendarID:      DefaultCalendarID,
		Scopes:          []string{calendar.CalendarScope},
		OpenBrowser:     true,
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads configuration from path. An empty path searches the XDG config
// directories; if nothing is found the defaults are returned. An explicit
// path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := xdg.SearchConfigFile(searchPath)
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Source = path

	return cfg, nil
}

// ResolveTokenFile points the sqlite store at DefaultTokenDatabase when the
// token path was left at the JSON cache default.
func (c *Config) ResolveTokenFile() {
	if c.TokenStore == TokenStoreSQLite && c.TokenFile == DefaultTokenFile {
		c.TokenFile = DefaultTokenDatabase
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.CredentialsFile == "" {
		return fmt.Errorf("credentials_file must not be empty")
	}
	if c.TokenFile == "" {
		return fmt.Errorf("token_file must not be empty")
	}
	if c.TokenStore != TokenStoreFile && c.TokenStore != TokenStoreSQLite {
		return fmt.Errorf("token_store must be %q or %q, got %q", TokenStoreFile, TokenStoreSQLite, c.TokenStore)
	}
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		return fmt.Errorf("callback_port must be between 0 and 65535, got %d", c.CallbackPort)
	}
	if c.CalendarID == "" {
		return fmt.Errorf("calendar_id must not be empty")
	}
	if len(c.Scopes) == 0 {
		return fmt.Errorf("at least one scope is required")
	}
	if c.AuthTimeout.Duration < 0 {
		return fmt.Errorf("auth_timeout must not be negative, got %s", c.AuthTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
