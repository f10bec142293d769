// Package logging provides structured logging utilities for calsetup.
//
// Human-facing status lines go to stdout; this package covers the
// diagnostic side, which goes to stderr through log/slog so that setup
// output stays readable.
//
// # Usage Patterns
//
// Build the process logger from the configured level:
//
//	logger, err := logging.New(os.Stderr, "warn")
//
// Attach standard attributes:
//
//	logger = logging.WithOperation(logger, "calendar.list")
//	logger.Info("listed calendars", logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// Access and refresh tokens are never logged directly; use SanitizeToken.
package logging
