package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var (
	testKeyOnce sync.Once
	testKeyPEM  []byte
)

func testPrivateKey(t *testing.T) []byte {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			panic(err)
		}
		testKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	})
	return testKeyPEM
}

func writeJSON(t *testing.T, path string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeServiceAccount(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	return writeJSON(t, filepath.Join(dir, "service-account.json"), map[string]string{
		"type":           "service_account",
		"project_id":     "goopy-test",
		"private_key_id": "key-1",
		"private_key":    string(testPrivateKey(t)),
		"client_email":   "robot@goopy-test.iam.gserviceaccount.com",
		"client_id":      "1234",
		"token_uri":      tokenURL,
	})
}

func writeOAuthClient(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	return writeJSON(t, filepath.Join(dir, "client.json"), map[string]interface{}{
		"installed": map[string]interface{}{
			"client_id":     "client-id.apps.googleusercontent.com",
			"client_secret": "secret",
			"auth_uri":      "https://accounts.google.com/o/oauth2/auth",
			"token_uri":     tokenURL,
			"redirect_uris": []string{"http://localhost"},
		},
	})
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "cached-access",
		RefreshToken: "cached-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func TestResolveMissingFileIsNotCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service-account.json")
	r := NewResolver()
	spec := CredentialSpec{Path: path}

	_, err := r.Resolve(context.Background(), spec)
	var credErr *CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Empty(t, r.sessions)

	writeServiceAccount(t, dir, "")
	s, err := r.Resolve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, KindServiceAccount, s.Kind())
}

func TestResolveEmptyPath(t *testing.T) {
	_, err := NewResolver().Resolve(context.Background(), CredentialSpec{})
	var credErr *CredentialError
	assert.True(t, errors.As(err, &credErr))
}

func TestResolveServiceAccountCachesSession(t *testing.T) {
	path := writeServiceAccount(t, t.TempDir(), "")
	r := NewResolver()

	first, err := r.Resolve(context.Background(), CredentialSpec{Path: path})
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), CredentialSpec{Path: path, Kind: KindServiceAccount})
	require.NoError(t, err)
	assert.Same(t, first, second)

	scoped, err := r.Resolve(context.Background(), CredentialSpec{Path: path, Scopes: DriveScopes})
	require.NoError(t, err)
	assert.NotSame(t, first, scoped)
}

func TestResolveConcurrentFirstUse(t *testing.T) {
	path := writeServiceAccount(t, t.TempDir(), "")
	var resolutions int32
	r := NewResolver(WithAuthObserver(func(CredentialKind, string) {
		atomic.AddInt32(&resolutions, 1)
	}))

	const callers = 32
	sessions := make([]*Session, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			s, err := r.Resolve(context.Background(), CredentialSpec{Path: path})
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&resolutions))
	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
	}
}

func TestResolveInvalidServiceAccountKey(t *testing.T) {
	path := writeJSON(t, filepath.Join(t.TempDir(), "sa.json"), map[string]string{
		"type": "service_account",
	})
	_, err := NewResolver().Resolve(context.Background(), CredentialSpec{Path: path})
	var credErr *CredentialError
	assert.True(t, errors.As(err, &credErr), "got %v", err)
}

func TestResolveOAuthWithCachedToken(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, SaveToken(tokenFile, validToken(), DefaultScopes))

	s, err := NewResolver().Resolve(context.Background(), CredentialSpec{Path: path, TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, KindOAuthClient, s.Kind())

	tok, err := s.TokenSource.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached-access", tok.AccessToken)
}

func TestResolveOAuthWithoutAuthorizer(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")

	_, err := NewResolver().Resolve(context.Background(), CredentialSpec{
		Path:      path,
		TokenFile: filepath.Join(dir, "token.json"),
	})
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, err.Error(), "goopy auth login")
}

func TestResolveOAuthRunsAuthorizer(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")
	tokenFile := filepath.Join(dir, "token.json")

	var calls int32
	authorizer := AuthorizerFunc(func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
		atomic.AddInt32(&calls, 1)
		assert.ElementsMatch(t, DefaultScopes, cfg.Scopes)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return validToken(), nil
	})

	r := NewResolver(WithAuthorizer(authorizer))
	spec := CredentialSpec{Path: path, TokenFile: tokenFile}
	_, err := r.Resolve(context.Background(), spec)
	require.NoError(t, err)

	saved, err := LoadToken(tokenFile)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "cached-refresh", saved.RefreshToken)

	// A fresh resolver reads the saved token instead of authorizing again.
	_, err = NewResolver(WithAuthorizer(authorizer)).Resolve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Login always authorizes.
	_, err = r.Login(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolveOAuthScopeUpgradeReauthorizes(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, SaveToken(tokenFile, validToken(), DriveScopes))

	var calls int32
	authorizer := AuthorizerFunc(func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		atomic.AddInt32(&calls, 1)
		return validToken(), nil
	})

	_, err := NewResolver(WithAuthorizer(authorizer)).Resolve(context.Background(), CredentialSpec{Path: path, TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolveOAuthTimeout(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")

	blocking := AuthorizerFunc(func(ctx context.Context, _ *oauth2.Config) (*oauth2.Token, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	r := NewResolver(WithAuthorizer(blocking), WithAuthTimeout(50*time.Millisecond))
	spec := CredentialSpec{Path: path, TokenFile: filepath.Join(dir, "token.json")}

	started := time.Now()
	_, err := r.Resolve(context.Background(), spec)
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, authErr.Reason, "timed out")
	assert.Less(t, time.Since(started), 5*time.Second)
	assert.Empty(t, r.sessions, "failed resolution must not be cached")
}

func TestResolveOAuthCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancelling := AuthorizerFunc(func(ctx context.Context, _ *oauth2.Config) (*oauth2.Token, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	r := NewResolver(WithAuthorizer(cancelling), WithAuthTimeout(100*time.Millisecond))
	_, err := r.Resolve(ctx, CredentialSpec{
		Path:      path,
		TokenFile: filepath.Join(dir, "token.json"),
	})
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "authorization cancelled", authErr.Reason)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveCancelledCallerLeavesSharedFlight(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")
	spec := CredentialSpec{Path: path, TokenFile: filepath.Join(dir, "token.json")}

	var calls int32
	var once sync.Once
	entered := make(chan struct{})
	release := make(chan struct{})
	authorizer := AuthorizerFunc(func(ctx context.Context, _ *oauth2.Config) (*oauth2.Token, error) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(entered) })
		select {
		case <-release:
			return validToken(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	r := NewResolver(WithAuthorizer(authorizer))

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, spec)
		firstErr <- err
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), spec)
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	err := <-firstErr
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr), "got %v", err)
	assert.Equal(t, "authorization cancelled", authErr.Reason)

	close(release)
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not complete")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.NotNil(t, r.cached(spec.Key()))
}

func TestLoginDoesNotJoinResolveFlight(t *testing.T) {
	dir := t.TempDir()
	path := writeOAuthClient(t, dir, "")
	spec := CredentialSpec{Path: path, TokenFile: filepath.Join(dir, "token.json")}

	var calls int32
	entered := make(chan struct{})
	release := make(chan struct{})
	authorizer := AuthorizerFunc(func(ctx context.Context, _ *oauth2.Config) (*oauth2.Token, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
		}
		return validToken(), nil
	})
	r := NewResolver(WithAuthorizer(authorizer))

	resolved := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), spec)
		resolved <- err
	}()
	<-entered
	defer func() {
		close(release)
		assert.NoError(t, <-resolved)
	}()

	login := make(chan error, 1)
	go func() {
		_, err := r.Login(context.Background(), spec)
		login <- err
	}()
	select {
	case err := <-login:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("login waited on the pending resolution")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolveOAuthRevokedToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
	}))
	defer tokenServer.Close()

	dir := t.TempDir()
	path := writeOAuthClient(t, dir, tokenServer.URL)
	tokenFile := filepath.Join(dir, "token.json")
	expired := validToken()
	expired.Expiry = time.Now().Add(-time.Hour)
	require.NoError(t, SaveToken(tokenFile, expired, DefaultScopes))

	_, err := NewResolver().Resolve(context.Background(), CredentialSpec{Path: path, TokenFile: tokenFile})
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	var retrieveErr *oauth2.RetrieveError
	assert.True(t, errors.As(err, &retrieveErr))
}

func TestResolveOAuthRefreshPersists(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	dir := t.TempDir()
	path := writeOAuthClient(t, dir, tokenServer.URL)
	tokenFile := filepath.Join(dir, "token.json")
	expired := validToken()
	expired.Expiry = time.Now().Add(-time.Hour)
	require.NoError(t, SaveToken(tokenFile, expired, DefaultScopes))

	_, err := NewResolver().Resolve(context.Background(), CredentialSpec{Path: path, TokenFile: tokenFile})
	require.NoError(t, err)

	saved, err := LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "refreshed", saved.AccessToken)
	assert.Equal(t, "cached-refresh", saved.RefreshToken)
}

func TestForget(t *testing.T) {
	path := writeServiceAccount(t, t.TempDir(), "")
	r := NewResolver()
	spec := CredentialSpec{Path: path}

	first, err := r.Resolve(context.Background(), spec)
	require.NoError(t, err)
	r.Forget(spec)
	second, err := r.Resolve(context.Background(), spec)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
