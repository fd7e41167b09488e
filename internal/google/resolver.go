package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"

	"github.com/teemow/goopy/internal/logging"
)

// DefaultAuthTimeout bounds the interactive OAuth step.
const DefaultAuthTimeout = 2 * time.Minute

// AuthObserver is told the outcome of every credential resolution.
// result is "success" or "failure".
type AuthObserver func(kind CredentialKind, result string)

// Resolver turns credential specs into sessions. It holds at most one session
// per spec key and is safe for concurrent use.
type Resolver struct {
	authorizer  Authorizer
	authTimeout time.Duration
	logger      *slog.Logger
	httpClient  *http.Client
	observer    AuthObserver

	group    singleflight.Group
	mu       sync.RWMutex
	sessions map[string]*Session
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithAuthorizer sets the interactive step used when an OAuth client has no
// cached token. Without one, such a resolution fails with AuthenticationError.
func WithAuthorizer(a Authorizer) ResolverOption {
	return func(r *Resolver) {
		r.authorizer = a
	}
}

// WithAuthTimeout overrides DefaultAuthTimeout. Non-positive values are ignored.
func WithAuthTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.authTimeout = d
		}
	}
}

// WithResolverLogger sets the logger. The default is slog.Default().
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTokenHTTPClient sets the HTTP client used for token exchange and refresh.
func WithTokenHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithAuthObserver registers a callback for resolution outcomes.
func WithAuthObserver(fn AuthObserver) ResolverOption {
	return func(r *Resolver) {
		r.observer = fn
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		authTimeout: DefaultAuthTimeout,
		logger:      slog.Default(),
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the session for spec, building it on first use. Concurrent
// callers for the same spec share one resolution. Failures are not cached, so
// a later call retries.
func (r *Resolver) Resolve(ctx context.Context, spec CredentialSpec) (*Session, error) {
	if spec.Path == "" {
		_, _, err := readCredentials(spec)
		return nil, err
	}

	key := spec.Key()
	if s := r.cached(key); s != nil {
		return s, nil
	}

	return r.share(ctx, key, func(ctx context.Context) (*Session, error) {
		if s := r.cached(key); s != nil {
			return s, nil
		}
		return r.resolve(ctx, key, spec, false)
	})
}

// Login runs the interactive flow for an OAuth client even when a token is
// cached, and replaces any cached session for spec. Service accounts have no
// interactive step, so Login resolves them normally.
func (r *Resolver) Login(ctx context.Context, spec CredentialSpec) (*Session, error) {
	if spec.Path == "" {
		_, _, err := readCredentials(spec)
		return nil, err
	}

	key := spec.Key()
	return r.share(ctx, key+"|login", func(ctx context.Context) (*Session, error) {
		return r.resolve(ctx, key, spec, true)
	})
}

// share runs fn once per flight key, detached from the caller's cancellation.
// The interactive step stays bounded by the auth timeout. A caller whose
// context ends stops waiting and gets an AuthenticationError.
func (r *Resolver) share(ctx context.Context, flight string, fn func(context.Context) (*Session, error)) (*Session, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(flight, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	case <-ctx.Done():
		return nil, &AuthenticationError{Reason: "authorization cancelled", Err: ctx.Err()}
	}
}

func (r *Resolver) resolve(ctx context.Context, key string, spec CredentialSpec, forceLogin bool) (*Session, error) {
	s, err := r.build(ctx, spec, forceLogin)
	r.observe(spec, s, err)
	if err != nil {
		return nil, err
	}
	r.store(key, s)
	return s, nil
}

// Forget drops the cached session for spec, if any.
func (r *Resolver) Forget(spec CredentialSpec) {
	r.mu.Lock()
	delete(r.sessions, spec.Key())
	r.mu.Unlock()
}

func (r *Resolver) cached(key string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[key]
}

func (r *Resolver) store(key string, s *Session) {
	r.mu.Lock()
	r.sessions[key] = s
	r.mu.Unlock()
}

func (r *Resolver) observe(spec CredentialSpec, s *Session, err error) {
	if r.observer == nil {
		return
	}
	if err != nil {
		r.observer(spec.Kind, "failure")
		return
	}
	r.observer(s.Kind(), "success")
}

// tokenContext carries the token HTTP client. Token sources outlive the
// request that created them, so it is not derived from the caller's context.
func (r *Resolver) tokenContext() context.Context {
	ctx := context.Background()
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}
	return ctx
}

func (r *Resolver) build(ctx context.Context, spec CredentialSpec, forceLogin bool) (*Session, error) {
	data, spec, err := readCredentials(spec)
	if err != nil {
		return nil, err
	}

	scopes := spec.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	logger := r.logger.With(logging.Credentials(spec.Path), slog.String("kind", string(spec.Kind)))

	switch spec.Kind {
	case KindServiceAccount:
		cfg, err := googleoauth.JWTConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, &CredentialError{Path: spec.Path, Err: fmt.Errorf("invalid service account key: %w", err)}
		}
		logger.Debug("Resolved service account", "email", cfg.Email)
		return NewSession(spec, cfg.TokenSource(r.tokenContext())), nil

	case KindOAuthClient:
		cfg, err := googleoauth.ConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, &CredentialError{Path: spec.Path, Err: fmt.Errorf("invalid OAuth client file: %w", err)}
		}
		return r.oauthSession(ctx, spec, cfg, scopes, forceLogin, logger)
	}

	return nil, &CredentialError{Path: spec.Path, Err: fmt.Errorf("unsupported credentials kind %q", spec.Kind)}
}

func (r *Resolver) oauthSession(ctx context.Context, spec CredentialSpec, cfg *oauth2.Config, scopes []string, forceLogin bool, logger *slog.Logger) (*Session, error) {
	tokenPath := spec.tokenFile()

	var tok *oauth2.Token
	if !forceLogin {
		contents, err := loadTokenFile(tokenPath)
		if err != nil {
			logger.Warn("Ignoring unreadable token cache", "token_file", tokenPath, logging.Err(err))
		}
		if contents != nil && contents.covers(scopes) {
			tok = contents.Token
		} else if contents != nil {
			logger.Info("Cached token lacks requested scopes, authorization required", "token_file", tokenPath)
		}
	}

	if tok == nil {
		var err error
		tok, err = r.authorize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := SaveToken(tokenPath, tok, scopes); err != nil {
			logger.Warn("Failed to save token", "token_file", tokenPath, logging.Err(err))
		}
	}

	pts := newPersistingTokenSource(cfg.TokenSource(r.tokenContext(), tok), tokenPath, scopes, tok)
	pts.onSaveError = func(err error) {
		logger.Warn("Failed to save refreshed token", "token_file", tokenPath, logging.Err(err))
	}

	// Refresh now if the cached token expired, so a revoked grant fails here
	// rather than on the first API call.
	if _, err := pts.Token(); err != nil {
		return nil, &AuthenticationError{Reason: "cached token could not be refreshed", Err: WrapOAuthError(err)}
	}

	logger.Debug("Resolved OAuth session", "token_file", tokenPath)
	return NewSession(spec, pts), nil
}

func (r *Resolver) authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	if r.authorizer == nil {
		return nil, &AuthenticationError{
			Reason: "no cached token",
			Err:    errors.New("run 'goopy auth login' to authorize this OAuth client"),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.authTimeout)
	defer cancel()

	tok, err := r.authorizer.Authorize(ctx, cfg)
	switch {
	case err == nil:
		if tok == nil {
			return nil, &AuthenticationError{Reason: "authorization returned no token"}
		}
		return tok, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, &AuthenticationError{Reason: fmt.Sprintf("authorization timed out after %s", r.authTimeout), Err: err}
	case errors.Is(err, context.Canceled):
		return nil, &AuthenticationError{Reason: "authorization cancelled", Err: err}
	}
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return nil, err
	}
	return nil, &AuthenticationError{Reason: "authorization failed", Err: WrapOAuthError(err)}
}
