package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/goopy/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google credentials",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		scopes       string
		forceConsent bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize an OAuth client and cache its token",
		Long: `Run the OAuth consent flow for the configured OAuth client file and store
the resulting token in the token cache. A consent page opens in the browser;
with --no-browser the URL is printed and the redirect URL is read from stdin.
Use --force-consent when Google returned no refresh token, for example after
the app was authorized before.

Service-account keys need no login; the command only checks that the key
can mint a token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := authInteractive
			if forceConsent {
				mode = authForceConsent
			}
			a, err := newAppWithAuth(mode)
			if err != nil {
				return err
			}
			spec := a.spec
			spec.Scopes = append(spec.Scopes, parseCommaSeparatedList(scopes)...)

			session, err := a.resolver.Login(cmd.Context(), spec)
			if err != nil {
				return err
			}
			return printSessionStatus(cmd.OutOrStdout(), session)
		},
	}

	cmd.Flags().StringVar(&scopes, "scopes", "", "Comma-separated OAuth scopes to request instead of the Drive, Sheets and Slides defaults")
	cmd.Flags().BoolVar(&forceConsent, "force-consent", false, "Ask Google to show the consent page again so it issues a new refresh token")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are configured and whether they yield a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppWithAuth(authNone)
			if err != nil {
				return err
			}
			session, err := a.resolver.Resolve(cmd.Context(), a.spec)
			if err != nil {
				return err
			}
			return printSessionStatus(cmd.OutOrStdout(), session)
		},
	}
}

func printSessionStatus(w io.Writer, s *google.Session) error {
	tok, err := s.TokenSource.Token()
	if err != nil {
		return tokenError(s, err)
	}

	fmt.Fprintf(w, "Credentials: %s\n", s.Spec.Path)
	fmt.Fprintf(w, "Kind:        %s\n", s.Kind())
	if s.Kind() == google.KindOAuthClient {
		tokenFile := s.Spec.TokenFile
		if tokenFile == "" {
			tokenFile = s.Spec.DefaultTokenFile()
		}
		fmt.Fprintf(w, "Token file:  %s\n", tokenFile)
	}
	if !tok.Expiry.IsZero() {
		fmt.Fprintf(w, "Token valid until %s\n", tok.Expiry.Local().Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "Token valid")
	}
	return nil
}

// tokenError reports a failed token fetch. A service account that cannot mint
// a token has a bad key file; an OAuth session needs a new login.
func tokenError(s *google.Session, err error) error {
	if s.Kind() == google.KindServiceAccount {
		return &google.CredentialError{Path: s.Spec.Path, Err: err}
	}
	return &google.AuthenticationError{Reason: "token unavailable", Err: google.WrapOAuthError(err)}
}
