package google

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// CredentialError reports a credentials file that is missing, unreadable,
// malformed, or rejected by Google's identity provider.
type CredentialError struct {
	Path string
	Err  error
}

func (e *CredentialError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("credentials: %v", e.Err)
	}
	return fmt.Sprintf("credentials %s: %v", e.Path, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports an OAuth flow that was denied, timed out, or
// produced a token that can no longer be refreshed.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed: " + e.Reason
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ClientConstructionError reports an unsupported service/version pair or a
// failure while building the SDK service for a supported one.
type ClientConstructionError struct {
	Service string
	Version string
	Err     error
}

func (e *ClientConstructionError) Error() string {
	return fmt.Sprintf("cannot build %s/%s client: %v", e.Service, e.Version, e.Err)
}

func (e *ClientConstructionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a bad caller argument. It is always returned before
// any request leaves the process.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for building a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RemoteReason classifies a failure returned by a Google API so callers can
// pick the right remediation.
type RemoteReason string

const (
	ReasonPermissionDenied RemoteReason = "permission_denied"
	ReasonNotFound         RemoteReason = "not_found"
	ReasonQuotaExceeded    RemoteReason = "quota_exceeded"
	ReasonInvalidRequest   RemoteReason = "invalid_request"
	ReasonUnauthenticated  RemoteReason = "unauthenticated"
	ReasonUnavailable      RemoteReason = "unavailable"
	ReasonUnknown          RemoteReason = "unknown"
)

// RemoteAPIError is a failure reported by the remote Google service.
type RemoteAPIError struct {
	Service    string
	Operation  string
	StatusCode int
	Reason     RemoteReason
	Message    string
	Err        error
}

func (e *RemoteAPIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed (%s): %s", e.Service, e.Operation, e.Reason, msg)
	}
	return fmt.Sprintf("%s %s failed (%s, HTTP %d): %s", e.Service, e.Operation, e.Reason, e.StatusCode, msg)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// quotaReasons are the googleapi error item reasons Google uses for rate and
// quota exhaustion. They arrive with either 403 or 429.
var quotaReasons = map[string]bool{
	"rateLimitExceeded":        true,
	"userRateLimitExceeded":    true,
	"quotaExceeded":            true,
	"dailyLimitExceeded":       true,
	"sharingRateLimitExceeded": true,
	"RESOURCE_EXHAUSTED":       true,
}

// invalidReasons are 403 item reasons that describe the request rather than
// the caller's permissions.
var invalidReasons = map[string]bool{
	"fileNotDownloadable":       true,
	"cannotDownloadAbusiveFile": true,
	"exportSizeLimitExceeded":   true,
}

// classify derives a RemoteReason from a googleapi.Error.
func classify(gerr *googleapi.Error) RemoteReason {
	for _, item := range gerr.Errors {
		if quotaReasons[item.Reason] {
			return ReasonQuotaExceeded
		}
		if invalidReasons[item.Reason] {
			return ReasonInvalidRequest
		}
	}
	switch {
	case gerr.Code == http.StatusTooManyRequests:
		return ReasonQuotaExceeded
	case gerr.Code == http.StatusForbidden:
		if strings.Contains(strings.ToLower(gerr.Message), "quota") {
			return ReasonQuotaExceeded
		}
		return ReasonPermissionDenied
	case gerr.Code == http.StatusNotFound:
		return ReasonNotFound
	case gerr.Code == http.StatusUnauthorized:
		return ReasonUnauthenticated
	case gerr.Code == http.StatusBadRequest:
		return ReasonInvalidRequest
	case gerr.Code >= 500:
		return ReasonUnavailable
	}
	return ReasonUnknown
}

// isOwnKind reports whether err already carries one of this package's kinds.
func isOwnKind(err error) bool {
	var (
		credErr   *CredentialError
		authErr   *AuthenticationError
		buildErr  *ClientConstructionError
		validErr  *ValidationError
		remoteErr *RemoteAPIError
	)
	return errors.As(err, &credErr) || errors.As(err, &authErr) || errors.As(err, &buildErr) ||
		errors.As(err, &validErr) || errors.As(err, &remoteErr)
}

// mapError converts a raw SDK error into one of this package's kinds. Token
// refresh failures become CredentialError for service accounts and
// AuthenticationError for OAuth sessions.
func mapError(kind CredentialKind, path, service, operation string, err error) error {
	if err == nil {
		return nil
	}
	if isOwnKind(err) {
		return err
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if kind == KindServiceAccount {
			return &CredentialError{Path: path, Err: WrapOAuthError(err)}
		}
		return &AuthenticationError{Reason: "token refresh rejected", Err: WrapOAuthError(err)}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &RemoteAPIError{
			Service:    service,
			Operation:  operation,
			StatusCode: gerr.Code,
			Reason:     classify(gerr),
			Message:    gerr.Message,
			Err:        err,
		}
	}

	return &RemoteAPIError{
		Service:   service,
		Operation: operation,
		Reason:    ReasonUnknown,
		Err:       err,
	}
}

// WrapOAuthError appends a human-readable hint to known Google OAuth error
// codes. The original error is preserved for unwrapping.
func WrapOAuthError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "invalid_grant"):
		return fmt.Errorf("%w (hint: token revoked or expired, run 'goopy auth login' again)", err)
	case strings.Contains(msg, "unauthorized_client"):
		return fmt.Errorf("%w (hint: the client is not allowed this grant, check the credentials file)", err)
	case strings.Contains(msg, "invalid_client"):
		return fmt.Errorf("%w (hint: client id or secret invalid, download the credentials file again)", err)
	}
	return err
}

func remoteReason(err error) RemoteReason {
	var remoteErr *RemoteAPIError
	if errors.As(err, &remoteErr) {
		return remoteErr.Reason
	}
	return ""
}

// IsPermissionDenied reports whether err is a RemoteAPIError caused by
// missing sharing permissions or scopes.
func IsPermissionDenied(err error) bool {
	return remoteReason(err) == ReasonPermissionDenied
}

// IsNotFound reports whether err is a RemoteAPIError for a missing resource.
func IsNotFound(err error) bool {
	return remoteReason(err) == ReasonNotFound
}

// IsQuotaExceeded reports whether err is a RemoteAPIError for rate or quota
// exhaustion.
func IsQuotaExceeded(err error) bool {
	return remoteReason(err) == ReasonQuotaExceeded
}

// Hint returns a one-line remediation suggestion for err, or "" when none
// applies.
func Hint(err error) string {
	var (
		credErr  *CredentialError
		authErr  *AuthenticationError
		buildErr *ClientConstructionError
		validErr *ValidationError
	)
	switch {
	case errors.As(err, &credErr):
		return "check the credentials file path (GOOGLE_APPLICATION_CREDENTIALS) and its contents"
	case errors.As(err, &authErr):
		return "run 'goopy auth login' to authorize again"
	case errors.As(err, &buildErr):
		return "use one of the supported APIs: drive/v3, sheets/v4, slides/v1"
	case errors.As(err, &validErr):
		return ""
	}
	switch remoteReason(err) {
	case ReasonPermissionDenied:
		return "share the file or folder with the account in your credentials file"
	case ReasonNotFound:
		return "check the link or id, and that the account can see the file"
	case ReasonQuotaExceeded:
		return "you exceeded an API quota, wait and retry later"
	case ReasonUnauthenticated:
		return "the credentials were rejected, run 'goopy auth login' or replace the key"
	}
	return ""
}
