package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

const (
	tokenFilePerms = 0o600
	tokenDirPerms  = 0o700
)

// tokenFileContents is the on-disk token cache layout.
type tokenFileContents struct {
	Token  *oauth2.Token `json:"token"`
	Scopes []string      `json:"scopes,omitempty"`
}

// LoadToken reads a cached OAuth token. It returns (nil, nil) when the file
// does not exist.
func LoadToken(path string) (*oauth2.Token, error) {
	contents, err := loadTokenFile(path)
	if err != nil || contents == nil {
		return nil, err
	}
	return contents.Token, nil
}

func loadTokenFile(path string) (*tokenFileContents, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token cache %s: %w", path, err)
	}

	var contents tokenFileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("decoding token cache %s: %w", path, err)
	}
	if contents.Token == nil {
		return nil, fmt.Errorf("token cache %s has no token", path)
	}
	return &contents, nil
}

// covers reports whether the cached token was granted every scope in want.
// Caches written without scope information are trusted.
func (c *tokenFileContents) covers(want []string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	granted := make(map[string]bool, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = true
	}
	for _, s := range want {
		if !granted[s] {
			return false
		}
	}
	return true
}

// SaveToken writes a token to path atomically with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token, scopes []string) error {
	data, err := json.MarshalIndent(tokenFileContents{Token: tok, Scopes: scopes}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, tokenDirPerms); err != nil {
		return fmt.Errorf("creating token directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, tokenFilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("setting token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming token file: %w", err)
	}

	success = true
	return nil
}

// persistingTokenSource writes every newly minted token back to the cache so
// refreshed access tokens survive the process.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	scopes []string

	mu   sync.Mutex
	last string
	// onSaveError is called when a refreshed token cannot be written.
	onSaveError func(error)
}

func newPersistingTokenSource(base oauth2.TokenSource, path string, scopes []string, current *oauth2.Token) *persistingTokenSource {
	ts := &persistingTokenSource{base: base, path: path, scopes: scopes}
	if current != nil {
		ts.last = current.AccessToken
	}
	return ts
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		// A save failure must not fail the request; the token is still valid in memory.
		if err := SaveToken(p.path, tok, p.scopes); err != nil && p.onSaveError != nil {
			p.onSaveError(err)
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}
