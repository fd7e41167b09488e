package google

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CredentialKind tells the resolver how to interpret a credentials file.
type CredentialKind string

const (
	// KindServiceAccount is a service-account JSON key.
	KindServiceAccount CredentialKind = "service-account"

	// KindOAuthClient is an OAuth client JSON ("installed" or "web" application).
	KindOAuthClient CredentialKind = "oauth-client"
)

// ParseCredentialKind accepts the spellings used in flags and config files.
// An empty string means "detect from the file".
func ParseCredentialKind(s string) (CredentialKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case "service-account", "service_account", "serviceaccount":
		return KindServiceAccount, nil
	case "oauth-client", "oauth", "oauth_client", "installed", "web":
		return KindOAuthClient, nil
	}
	return "", Invalid("credentials kind", "%q is not one of service-account, oauth-client", s)
}

// CredentialSpec identifies one credentials file and how to use it.
type CredentialSpec struct {
	// Path is the credentials JSON file.
	Path string

	// Kind selects the flow. Empty means detect from the file contents.
	Kind CredentialKind

	// TokenFile overrides where OAuth tokens are cached. Ignored for service accounts.
	TokenFile string

	// Scopes overrides the scopes requested. Empty means every supported API's scope.
	Scopes []string
}

// Key returns the identity of the credential spec used for session caching: the absolute
// credentials path plus any scope override. The kind is not part of the key
// because the file itself decides it.
func (s CredentialSpec) Key() string {
	key := absPath(s.Path)
	if len(s.Scopes) > 0 {
		scopes := append([]string(nil), s.Scopes...)
		sort.Strings(scopes)
		key += "|" + strings.Join(scopes, " ")
	}
	return key
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// DefaultTokenFile returns the token cache location used when the credential spec does not
// name one: <user cache dir>/goopy/token-<hash of credentials path>.json.
func (s CredentialSpec) DefaultTokenFile() string {
	sum := sha256.Sum256([]byte(absPath(s.Path)))
	return filepath.Join(userCacheDir(), "goopy", "token-"+hex.EncodeToString(sum[:6])+".json")
}

func (s CredentialSpec) tokenFile() string {
	if s.TokenFile != "" {
		return s.TokenFile
	}
	return s.DefaultTokenFile()
}

// credentialsFile is the subset of both JSON layouts needed for detection.
type credentialsFile struct {
	Type      string          `json:"type"`
	Installed json.RawMessage `json:"installed"`
	Web       json.RawMessage `json:"web"`
}

// DetectKind inspects a credentials document and reports which flow it is for.
func DetectKind(data []byte) (CredentialKind, error) {
	var f credentialsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("not a JSON credentials document: %w", err)
	}
	switch {
	case f.Type == "service_account":
		return KindServiceAccount, nil
	case len(f.Installed) > 0 || len(f.Web) > 0:
		return KindOAuthClient, nil
	case f.Type != "":
		return "", fmt.Errorf("unsupported credentials type %q", f.Type)
	}
	return "", errors.New("neither a service account key nor an OAuth client file")
}

// readCredentials loads the credentials file and settles the kind of the credential spec.
// Every failure is a CredentialError.
func readCredentials(spec CredentialSpec) ([]byte, CredentialSpec, error) {
	if spec.Path == "" {
		return nil, spec, &CredentialError{
			Err: errors.New("no credentials file configured; pass --credentials or set GOOGLE_APPLICATION_CREDENTIALS"),
		}
	}

	info, err := os.Stat(spec.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, spec, &CredentialError{Path: spec.Path, Err: errors.New("file does not exist")}
	case err != nil:
		return nil, spec, &CredentialError{Path: spec.Path, Err: err}
	case info.IsDir():
		return nil, spec, &CredentialError{Path: spec.Path, Err: errors.New("is a directory, not a file")}
	}

	data, err := os.ReadFile(spec.Path)
	if err != nil {
		return nil, spec, &CredentialError{Path: spec.Path, Err: fmt.Errorf("cannot be read: %w", err)}
	}

	detected, err := DetectKind(data)
	if err != nil {
		return nil, spec, &CredentialError{Path: spec.Path, Err: err}
	}
	if spec.Kind == "" {
		spec.Kind = detected
	} else if spec.Kind != detected {
		return nil, spec, &CredentialError{
			Path: spec.Path,
			Err:  fmt.Errorf("configured as %s but the file is a %s credential", spec.Kind, detected),
		}
	}

	return data, spec, nil
}
