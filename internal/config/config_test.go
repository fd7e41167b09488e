package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/goopy/internal/google"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
credentials_file = "/etc/goopy/sa.json"
credentials_kind = "service-account"
scopes = ["https://www.googleapis.com/auth/drive.readonly"]
auth_timeout = "30s"

[serve]
transport = "streamable-http"
http_addr = ":9000"
yolo = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/goopy/sa.json", cfg.CredentialsFile)
	assert.Equal(t, TransportStreamableHTTP, cfg.Serve.Transport)
	assert.Equal(t, ":9000", cfg.Serve.HTTPAddr)
	assert.True(t, cfg.Serve.Yolo)
	assert.Equal(t, ":9090", cfg.Serve.MetricsAddr, "unset keys keep their defaults")
	assert.Equal(t, path, cfg.Path)

	d, err := cfg.AuthTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	spec, err := cfg.CredentialSpec()
	require.NoError(t, err)
	assert.Equal(t, google.KindServiceAccount, spec.Kind)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/drive.readonly"}, spec.Scopes)
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, `
credential_file = "x.json"

[serve]
transprt = "stdio"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "credential_file", did you mean "credentials_file"?`)
	assert.Contains(t, err.Error(), `did you mean "serve.transport"?`)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad kind", `credentials_kind = "api-key"`},
		{"bad timeout", `auth_timeout = "soon"`},
		{"negative timeout", `auth_timeout = "-1m"`},
		{"bad transport", "[serve]\ntransport = \"sse\""},
		{"empty scope", `scopes = [""]`},
		{"syntax", `credentials_file = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, TransportStdio, cfg.Serve.Transport)
	assert.Equal(t, path, cfg.Path)

	d, err := cfg.AuthTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, google.DefaultAuthTimeout, d)
}

func TestResolvePrecedence(t *testing.T) {
	path := writeConfig(t, `
credentials_file = "file.json"
token_file = "file-token.json"
credentials_kind = "oauth-client"
`)

	cfg, err := Resolve(EnvOverrides{ConfigPath: path}, CLIOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "file.json", cfg.CredentialsFile)
	assert.Equal(t, "file-token.json", cfg.TokenFile)

	cfg, err = Resolve(
		EnvOverrides{ConfigPath: path, CredentialsFile: "env.json", TokenFile: "env-token.json"},
		CLIOverrides{},
	)
	require.NoError(t, err)
	assert.Equal(t, "env.json", cfg.CredentialsFile)
	assert.Equal(t, "env-token.json", cfg.TokenFile)
	assert.Equal(t, "oauth-client", cfg.CredentialsKind)

	cfg, err = Resolve(
		EnvOverrides{ConfigPath: path, CredentialsFile: "env.json"},
		CLIOverrides{CredentialsFile: "flag.json", CredentialsKind: "service-account", Debug: true},
	)
	require.NoError(t, err)
	assert.Equal(t, "flag.json", cfg.CredentialsFile)
	assert.Equal(t, "service-account", cfg.CredentialsKind)
	assert.True(t, cfg.Debug)
}

func TestResolveConfigPathFlagWins(t *testing.T) {
	envPath := writeConfig(t, `credentials_file = "env-config.json"`)
	flagPath := writeConfig(t, `credentials_file = "flag-config.json"`)

	cfg, err := Resolve(EnvOverrides{ConfigPath: envPath}, CLIOverrides{ConfigPath: flagPath})
	require.NoError(t, err)
	assert.Equal(t, "flag-config.json", cfg.CredentialsFile)
	assert.Equal(t, flagPath, cfg.Path)
}

func TestResolveRejectsBadFlag(t *testing.T) {
	_, err := Resolve(
		EnvOverrides{ConfigPath: filepath.Join(t.TempDir(), "none.toml")},
		CLIOverrides{CredentialsKind: "password"},
	)
	assert.Error(t, err)
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/goopy.toml")
	t.Setenv(EnvCredentials, "/tmp/sa.json")
	t.Setenv(EnvCredentialsKind, "service-account")
	t.Setenv(EnvTokenFile, "/tmp/token.json")

	assert.Equal(t, EnvOverrides{
		ConfigPath:      "/tmp/goopy.toml",
		CredentialsFile: "/tmp/sa.json",
		CredentialsKind: "service-account",
		TokenFile:       "/tmp/token.json",
	}, ReadEnvOverrides())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "creds.json"), ExpandHome("~/creds.json"))
	assert.Equal(t, "/abs/creds.json", ExpandHome("/abs/creds.json"))
	assert.Equal(t, "rel/~/x", ExpandHome("rel/~/x"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("debug", "debug"))
	assert.Equal(t, 1, levenshtein("debg", "debug"))
	assert.Equal(t, 5, levenshtein("", "debug"))
	assert.Equal(t, "", closestKey("completely_unrelated"))
}
