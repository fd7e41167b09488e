package google

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/oauth2"
)

// Authorizer runs the interactive part of the OAuth installed-app flow. The
// context carries the overall deadline; implementations must return when it
// is done.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	return f(ctx, cfg)
}

const callbackPath = "/oauth2/callback"

// LoopbackAuthorizer receives the authorization code on a temporary
// 127.0.0.1 listener, or in Manual mode asks the user to paste the redirect
// URL.
type LoopbackAuthorizer struct {
	// Manual skips the local listener and the browser.
	Manual bool

	// ForceConsent adds prompt=consent so Google issues a new refresh token.
	ForceConsent bool

	// Out receives instructions. Defaults to os.Stderr.
	Out io.Writer

	// In is read for the pasted URL in Manual mode. Defaults to os.Stdin.
	In io.Reader

	// OpenBrowser opens the consent page. Defaults to the platform opener.
	// Errors are ignored; the URL is always printed.
	OpenBrowser func(url string) error
}

// Authorize implements Authorizer.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	if a.Manual {
		return a.manual(ctx, cfg, state)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	defer ln.Close()

	conf := *cfg
	conf.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d%s", ln.Addr().(*net.TCPAddr).Port, callbackPath)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{Handler: callbackHandler(state, codeCh, errCh)}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer srv.Close()

	authURL := conf.AuthCodeURL(state, a.authURLParams()...)
	out := a.out()
	fmt.Fprintln(out, "Opening browser for authorization...")
	fmt.Fprintln(out, "If the browser doesn't open, visit this URL:")
	fmt.Fprintln(out, authURL)

	opener := a.OpenBrowser
	if opener == nil {
		opener = openBrowser
	}
	_ = opener(authURL)

	select {
	case code := <-codeCh:
		return exchange(ctx, &conf, code)
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *LoopbackAuthorizer) manual(ctx context.Context, cfg *oauth2.Config, state string) (*oauth2.Token, error) {
	conf := *cfg
	conf.RedirectURL = "http://localhost:1"

	out := a.out()
	fmt.Fprintln(out, "Visit this URL to authorize:")
	fmt.Fprintln(out, conf.AuthCodeURL(state, a.authURLParams()...))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "After authorizing you are redirected to a localhost URL that won't load.")
	fmt.Fprintln(out, "Copy the URL from the address bar and paste it here.")
	fmt.Fprint(out, "Paste redirect URL: ")

	in := a.In
	if in == nil {
		in = os.Stdin
	}

	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			errCh <- fmt.Errorf("failed to read redirect URL: %w", err)
			return
		}
		lineCh <- strings.TrimSpace(line)
	}()

	var line string
	select {
	case line = <-lineCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	code, gotState, err := extractCodeAndState(line)
	if err != nil {
		return nil, err
	}
	if gotState != "" && gotState != state {
		return nil, &AuthenticationError{Reason: "state mismatch"}
	}
	return exchange(ctx, &conf, code)
}

func (a *LoopbackAuthorizer) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stderr
}

func (a *LoopbackAuthorizer) authURLParams() []oauth2.AuthCodeOption {
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if a.ForceConsent {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", "consent"))
	}
	return opts
}

func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	fail := func(w http.ResponseWriter, status int, msg string, err error) {
		select {
		case errCh <- err:
		default:
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(msg + " You can close this window."))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != callbackPath {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			fail(w, http.StatusOK, "Authorization cancelled.", &AuthenticationError{Reason: "consent denied: " + e})
			return
		}
		if q.Get("state") != state {
			fail(w, http.StatusBadRequest, "State mismatch.", &AuthenticationError{Reason: "state mismatch"})
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, http.StatusBadRequest, "Missing code.", &AuthenticationError{Reason: "callback without authorization code"})
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Success! You can close this window."))
	})
}

func exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, &AuthenticationError{Reason: "no refresh token received; run 'goopy auth login --force-consent'"}
	}
	return tok, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func extractCodeAndState(rawURL string) (code string, state string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", &AuthenticationError{Reason: "pasted value is not a URL", Err: err}
	}
	q := parsed.Query()
	code = q.Get("code")
	if code == "" {
		return "", "", &AuthenticationError{Reason: "no code found in pasted URL"}
	}
	return code, q.Get("state"), nil
}

func openBrowser(u string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	default:
		cmd = exec.Command("xdg-open", u)
	}
	return cmd.Start()
}
