package google

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"golang.org/x/oauth2"
)

// Session is an authenticated identity produced by a Resolver. It is shared
// read-only by every ServiceClient built from it.
type Session struct {
	// ID is a short stable identifier derived from the credential spec key.
	ID string

	// Spec is the resolved spec; its Kind is always set.
	Spec CredentialSpec

	// TokenSource yields access tokens and refreshes them when they expire.
	TokenSource oauth2.TokenSource

	base http.RoundTripper
}

// NewSession wraps an existing token source. The resolver builds sessions
// itself; this exists for callers that already hold a token source.
func NewSession(spec CredentialSpec, ts oauth2.TokenSource) *Session {
	sum := sha256.Sum256([]byte(spec.Key()))
	return &Session{
		ID:          hex.EncodeToString(sum[:6]),
		Spec:        spec,
		TokenSource: ts,
		// Force HTTP/1.1 by disabling HTTP/2
		base: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		},
	}
}

// Kind reports which flow produced the session.
func (s *Session) Kind() CredentialKind {
	return s.Spec.Kind
}

// HTTPClient returns an HTTP client that authenticates every request with the
// session's token source.
func (s *Session) HTTPClient(ctx context.Context) *http.Client {
	client := oauth2.NewClient(ctx, s.TokenSource)
	if transport, ok := client.Transport.(*oauth2.Transport); ok && s.base != nil {
		transport.Base = s.base
	}
	return client
}
