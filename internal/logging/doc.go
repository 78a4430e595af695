// Package logging provides structured logging utilities for handoff.
//
// All components log through log/slog. This package centralizes attribute
// naming, handler construction and the anonymization of participant emails.
//
// # Usage Patterns
//
// Build the process logger once:
//
//	logger := logging.New(logging.Options{Level: "info", Format: "json"})
//
// Attach standard attributes:
//
//	logger = logging.WithOperation(logger, "handoff.scan")
//	logger.Info("event skipped",
//	    logging.Event(ev.Summary),
//	    logging.Err(err))
//
// Participant emails are hashed unless PII logging was enabled:
//
//	logger.Info("folder created", logging.Participant(email))
//
// # Security Considerations
//
//   - Participant emails are hashed by default; correlation stays possible
//   - OAuth tokens are never logged directly
package logging
