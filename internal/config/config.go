// ABOUTME: Configuration loading and parsing for the bookdesk client
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config location.
const EnvConfigPath = "BOOKDESK_CONFIG"

// Credential backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the complete bookdesk client configuration
type Config struct {
	API         APIConfig         `yaml:"api" toml:"api"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
	Routes      RoutesConfig      `yaml:"routes" toml:"routes"`
	Tailscale   TailscaleConfig   `yaml:"tailscale" toml:"tailscale"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
}

// APIConfig holds the remote API location
type APIConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// CredentialsConfig selects where tokens are kept between runs
type CredentialsConfig struct {
	Backend   string `yaml:"backend" toml:"backend"`
	Path      string `yaml:"path" toml:"path"`
	Namespace string `yaml:"namespace" toml:"namespace"`
	// EncryptionKey seals stored tokens when set (32 bytes, hex or base64)
	EncryptionKey string `yaml:"encryption_key" toml:"encryption_key"`
}

// RoutesConfig names the guard's login and home routes
type RoutesConfig struct {
	Login string `yaml:"login" toml:"login"`
	Home  string `yaml:"home" toml:"home"`
}

// TailscaleConfig holds Tailscale tsnet configuration for reaching a tailnet-only API
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api/v1",
			Timeout:    30 * time.Second,
			TimeoutRaw: "30s",
		},
		Credentials: CredentialsConfig{
			Backend:   BackendFile,
			Namespace: "bookdesk",
		},
		Routes: RoutesConfig{
			Login: "login",
			Home:  "status",
		},
		Tailscale: TailscaleConfig{
			Hostname:  "bookdesk",
			Ephemeral: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML. Environment
// variables in the format ${VAR_NAME} are expanded. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads the first config file found by DefaultPaths, or Default() when
// none exists. It returns the path it loaded ("" for built-in defaults).
func LoadDefault() (*Config, string, error) {
	for _, path := range DefaultPaths() {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("checking config file: %w", err)
		}
		cfg, err := Load(path)
		return cfg, path, err
	}
	return Default(), "", nil
}

// DefaultPaths lists the config locations in lookup order: $BOOKDESK_CONFIG,
// ./bookdesk.yaml, then $XDG_CONFIG_HOME/bookdesk/config.yaml.
func DefaultPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, "bookdesk.yaml")
	if dir := ConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	return paths
}

// ConfigDir returns $XDG_CONFIG_HOME/bookdesk, falling back to ~/.config/bookdesk.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bookdesk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bookdesk")
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	switch c.Credentials.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("credentials.backend must be one of memory, file, sqlite (got %q)", c.Credentials.Backend)
	}
	if c.Credentials.Namespace == "" {
		return fmt.Errorf("credentials.namespace is required")
	}

	if c.Routes.Login == "" || c.Routes.Home == "" {
		return fmt.Errorf("routes.login and routes.home are required")
	}
	if c.Routes.Login == c.Routes.Home {
		return fmt.Errorf("routes.login and routes.home must differ")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.API.TimeoutRaw != "" {
		cfg.API.Timeout, err = time.ParseDuration(cfg.API.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.API.TimeoutRaw, err)
		}
	}

	return nil
}
