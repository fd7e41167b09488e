package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and validates a TOML config file. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Path = path
	return cfg, nil
}

// LoadOrDefault reads path if it exists and returns the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.Path = path
		return cfg, nil
	}
	return Load(path)
}

// Resolve applies defaults, then the config file, then the environment, then
// flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	path := DefaultConfigPath()
	if env.ConfigPath != "" {
		path = env.ConfigPath
	}
	if cli.ConfigPath != "" {
		path = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(ExpandHome(path))
	if err != nil {
		return nil, err
	}

	if env.CredentialsFile != "" {
		cfg.CredentialsFile = env.CredentialsFile
	}
	if env.CredentialsKind != "" {
		cfg.CredentialsKind = env.CredentialsKind
	}
	if env.TokenFile != "" {
		cfg.TokenFile = env.TokenFile
	}

	if cli.CredentialsFile != "" {
		cfg.CredentialsFile = cli.CredentialsFile
	}
	if cli.CredentialsKind != "" {
		cfg.CredentialsKind = cli.CredentialsKind
	}
	if cli.TokenFile != "" {
		cfg.TokenFile = cli.TokenFile
	}
	if cli.Debug {
		cfg.Debug = true
	}
	if cli.NoBrowser {
		cfg.NoBrowser = true
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// CLIOverrides holds values given as command-line flags. Zero values mean
// the flag was not set.
type CLIOverrides struct {
	ConfigPath      string
	CredentialsFile string
	CredentialsKind string
	TokenFile       string
	Debug           bool
	NoBrowser       bool
}
