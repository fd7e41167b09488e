// Package config loads goopy's TOML configuration file and merges it with
// environment variables and command-line flags.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, flags. The config file is optional; a missing file yields the
// defaults. Unknown keys in the file are rejected with a suggestion for the
// closest known key.
//
// Example file:
//
//	credentials_file = "~/.config/goopy/client_secret.json"
//	credentials_kind = "oauth-client"
//	auth_timeout = "3m"
//
//	[serve]
//	transport = "streamable-http"
//	http_addr = ":8080"
package config
