// Package googletest provides a fake Google API endpoint for testing the
// service wrappers without credentials or network access.
package googletest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/goopy/internal/google"
)

// Request is a request received by the fake endpoint.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Decode unmarshals the request body into v.
func (r Request) Decode(t testing.TB, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding request body %q: %v", r.Body, err)
	}
}

// Server records every request and delegates the response to a handler.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake endpoint that is closed when the test ends.
func NewServer(t testing.TB, handler http.HandlerFunc) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})
		s.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Registry returns a registry whose clients talk to the fake endpoint with a
// static access token.
func (s *Server) Registry() *google.Registry {
	return google.NewRegistry(StaticResolver{},
		google.WithClientOptions(option.WithEndpoint(s.URL+"/")),
	)
}

// Source returns a ClientSource backed by Registry.
func (s *Server) Source() google.ClientSource {
	return s.Registry().For(Spec)
}

// Spec is the credential spec used by StaticResolver sessions.
var Spec = google.CredentialSpec{Path: "testdata/service-account.json", Kind: google.KindServiceAccount}

// StaticResolver resolves every spec to a session with a fixed token.
type StaticResolver struct{}

// Resolve implements google.SessionResolver.
func (StaticResolver) Resolve(_ context.Context, spec google.CredentialSpec) (*google.Session, error) {
	if spec.Kind == "" {
		spec.Kind = google.KindServiceAccount
	}
	return google.NewSession(spec, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})), nil
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a Google API error body.
func WriteError(w http.ResponseWriter, status int, reason, message string) {
	WriteJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
			"errors": []map[string]string{
				{"reason": reason, "message": message},
			},
		},
	})
}
