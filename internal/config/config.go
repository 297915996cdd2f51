// Package config loads and validates the server configuration from an
// optional YAML file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "DOCMOST_MCP_CONFIG"

// DefaultPort is the listen port when none is configured.
const DefaultPort = 3000

// Config is the complete server configuration.
type Config struct {
	BaseURL  string `yaml:"base_url" env:"DOCMOST_BASE_URL"`
	APIToken string `yaml:"api_token" env:"DOCMOST_API_TOKEN"`
	Email    string `yaml:"email" env:"DOCMOST_EMAIL"`
	Password string `yaml:"password" env:"DOCMOST_PASSWORD"`
	// PublicURL is where browsers reach Docmost; defaults to BaseURL.
	PublicURL   string        `yaml:"public_url" env:"PUBLIC_BASE_URL"`
	ReadOnly    bool          `yaml:"read_only" env:"MCP_READ_ONLY"`
	Port        int           `yaml:"port" env:"PORT"`
	TLSCertFile string        `yaml:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string        `yaml:"tls_key_file" env:"TLS_KEY_FILE"`
	Logging     LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns a Config with every optional field at its default.
func Default() *Config {
	return &Config{
		Port:    DefaultPort,
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path and environ.
// An empty path falls back to $DOCMOST_MCP_CONFIG; no file is read when
// both are empty. A nil environ means the process environment. Load does
// not validate; call Validate once flags have been applied.
func Load(path string, environ map[string]string) (*Config, error) {
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	if path == "" {
		path = environ[PathEnv]
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data), environ)
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with values from environ.
func expandEnvVars(s string, environ map[string]string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return environ[envVarPattern.FindStringSubmatch(match)[1]]
	})
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.PublicURL = strings.TrimRight(strings.TrimSpace(c.PublicURL), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// PageBaseURL is the base for browser links to pages.
func (c *Config) PageBaseURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return c.BaseURL
}

// UsesLogin reports whether the backend credential comes from a login
// exchange rather than a bearer token.
func (c *Config) UsesLogin() bool { return c.APIToken == "" }

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("DOCMOST_BASE_URL is required"))
	} else if err := checkHTTPURL(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("DOCMOST_BASE_URL: %w", err))
	}
	if c.PublicURL != "" {
		if err := checkHTTPURL(c.PublicURL); err != nil {
			errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL: %w", err))
		}
	}
	if c.APIToken == "" && (c.Email == "" || c.Password == "") {
		errs = append(errs, errors.New("DOCMOST_API_TOKEN or both DOCMOST_EMAIL and DOCMOST_PASSWORD are required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if _, ok := logLevels[c.Logging.Level]; !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of text, json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is missing")
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the process logger writing to w.
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[l.Level]}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
