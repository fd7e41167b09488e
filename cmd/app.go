package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/goopy/internal/config"
	"github.com/teemow/goopy/internal/drive"
	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/logging"
	"github.com/teemow/goopy/internal/sheets"
	"github.com/teemow/goopy/internal/slides"
)

// globalFlags are the persistent flags shared by every subcommand.
var globalFlags config.CLIOverrides

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&globalFlags.ConfigPath, "config", "", "Config file (default: "+config.DefaultConfigPath()+"). Can also use "+config.EnvConfig+" env var.")
	f.StringVar(&globalFlags.CredentialsFile, "credentials", "", "Service-account or OAuth client JSON file. Can also use "+config.EnvCredentials+" env var.")
	f.StringVar(&globalFlags.CredentialsKind, "credentials-kind", "", "Credential kind: service-account or oauth-client (default: detect from the file)")
	f.StringVar(&globalFlags.TokenFile, "token-file", "", "OAuth token cache file. Can also use "+config.EnvTokenFile+" env var.")
	f.BoolVar(&globalFlags.Debug, "debug", false, "Enable debug logging")
	f.BoolVar(&globalFlags.NoBrowser, "no-browser", false, "Print the OAuth consent URL and read the redirect URL from stdin instead of opening a browser")
}

// app holds what a command needs to talk to Google, built from the layered
// configuration.
type app struct {
	cfg      *config.Config
	spec     google.CredentialSpec
	logger   *slog.Logger
	resolver *google.Resolver
	registry *google.Registry
}

// authMode selects how a command may obtain a missing OAuth token.
type authMode int

const (
	// authInteractive opens the browser, or with --no-browser reads the
	// pasted redirect URL from stdin.
	authInteractive authMode = iota
	// authForceConsent is authInteractive with prompt=consent.
	authForceConsent
	// authNone never starts a consent flow.
	authNone
	// authServeStdio is used while stdin carries MCP traffic. Only the
	// browser flow is allowed.
	authServeStdio
)

// authorizerFor returns the authorizer for mode, or nil when a missing token
// must fail with a hint to run 'goopy auth login'.
func authorizerFor(mode authMode, noBrowser bool) google.Authorizer {
	switch mode {
	case authNone:
		return nil
	case authServeStdio:
		if noBrowser {
			return nil
		}
		return &google.LoopbackAuthorizer{}
	case authForceConsent:
		return &google.LoopbackAuthorizer{Manual: noBrowser, ForceConsent: true}
	}
	return &google.LoopbackAuthorizer{Manual: noBrowser}
}

// newApp builds an app with the interactive authorizer.
func newApp(opts ...google.ResolverOption) (*app, error) {
	return newAppWithAuth(authInteractive, opts...)
}

// newAppWithAuth resolves the configuration and builds the resolver and
// registry. Extra resolver options are applied after the defaults.
func newAppWithAuth(mode authMode, opts ...google.ResolverOption) (*app, error) {
	cfg, err := config.Resolve(config.ReadEnvOverrides(), globalFlags)
	if err != nil {
		return nil, err
	}
	spec, err := cfg.CredentialSpec()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.AuthTimeoutDuration()
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.Debug)
	slog.SetDefault(logger)

	resolverOpts := []google.ResolverOption{
		google.WithAuthorizer(authorizerFor(mode, cfg.NoBrowser)),
		google.WithAuthTimeout(timeout),
		google.WithResolverLogger(logger),
	}
	resolver := google.NewResolver(append(resolverOpts, opts...)...)

	return &app{
		cfg:      cfg,
		spec:     spec,
		logger:   logger,
		resolver: resolver,
		registry: google.NewRegistry(resolver, google.WithRegistryLogger(logger)),
	}, nil
}

func (a *app) base() *google.Base {
	return a.registry.For(a.spec)
}

func (a *app) drive() *drive.Client {
	return drive.NewClient(a.base(), a.logger)
}

func (a *app) sheets() *sheets.Client {
	return sheets.NewClient(a.base(), a.logger)
}

func (a *app) slides() *slides.Client {
	return slides.NewClient(a.base(), a.logger)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
