// Package logging provides structured logging utilities for goopy.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "drive.create_file")
//	logger.Info("created file",
//	    logging.FileID(id),
//	    logging.Status(logging.StatusSuccess))
//
// Redact sensitive data before logging:
//
//	logger.Debug("resolving credentials",
//	    logging.Credentials(spec.Path))
//
// # Security Considerations
//
//   - Credentials paths are logged as base name plus hash
//   - Tokens are never logged directly, only their length via SanitizeToken
package logging
