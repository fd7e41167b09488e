package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig          = "GOOPY_CONFIG"
	EnvCredentials     = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvCredentialsKind = "GOOPY_CREDENTIALS_KIND"
	EnvTokenFile       = "GOOPY_TOKEN_FILE"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath      string // GOOPY_CONFIG
	CredentialsFile string // GOOGLE_APPLICATION_CREDENTIALS
	CredentialsKind string // GOOPY_CREDENTIALS_KIND
	TokenFile       string // GOOPY_TOKEN_FILE
}

// ReadEnvOverrides reads the override variables from the environment.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:      os.Getenv(EnvConfig),
		CredentialsFile: os.Getenv(EnvCredentials),
		CredentialsKind: os.Getenv(EnvCredentialsKind),
		TokenFile:       os.Getenv(EnvTokenFile),
	}
}
