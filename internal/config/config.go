package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/goopy/internal/google"
)

// Serve transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the merged goopy configuration.
type Config struct {
	CredentialsFile string   `toml:"credentials_file"`
	CredentialsKind string   `toml:"credentials_kind"`
	TokenFile       string   `toml:"token_file"`
	Scopes          []string `toml:"scopes"`
	AuthTimeout     string   `toml:"auth_timeout"`
	NoBrowser       bool     `toml:"no_browser"`
	Debug           bool     `toml:"debug"`

	Serve ServeConfig `toml:"serve"`

	// Path is the config file the values were read from, or the default
	// location when no file exists.
	Path string `toml:"-"`
}

// ServeConfig configures the MCP server.
type ServeConfig struct {
	Transport      string `toml:"transport"`
	HTTPAddr       string `toml:"http_addr"`
	Yolo           bool   `toml:"yolo"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
	MetricsAddr    string `toml:"metrics_addr"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		AuthTimeout: google.DefaultAuthTimeout.String(),
		Serve: ServeConfig{
			Transport:   TransportStdio,
			HTTPAddr:    ":8080",
			MetricsAddr: ":9090",
		},
	}
}

// Validate checks values that cannot be checked by decoding alone.
func Validate(cfg *Config) error {
	if _, err := google.ParseCredentialKind(cfg.CredentialsKind); err != nil {
		return err
	}
	if _, err := cfg.AuthTimeoutDuration(); err != nil {
		return err
	}
	switch cfg.Serve.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("serve.transport must be %q or %q, got %q", TransportStdio, TransportStreamableHTTP, cfg.Serve.Transport)
	}
	for _, s := range cfg.Scopes {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("scopes must not contain empty entries")
		}
	}
	return nil
}

// AuthTimeoutDuration parses auth_timeout. Empty means the default.
func (c *Config) AuthTimeoutDuration() (time.Duration, error) {
	if c.AuthTimeout == "" {
		return google.DefaultAuthTimeout, nil
	}
	d, err := time.ParseDuration(c.AuthTimeout)
	if err != nil {
		return 0, fmt.Errorf("auth_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("auth_timeout must be positive, got %s", c.AuthTimeout)
	}
	return d, nil
}

// CredentialSpec builds the credential spec described by the config.
func (c *Config) CredentialSpec() (google.CredentialSpec, error) {
	kind, err := google.ParseCredentialKind(c.CredentialsKind)
	if err != nil {
		return google.CredentialSpec{}, err
	}
	return google.CredentialSpec{
		Path:      ExpandHome(c.CredentialsFile),
		Kind:      kind,
		TokenFile: ExpandHome(c.TokenFile),
		Scopes:    c.Scopes,
	}, nil
}
