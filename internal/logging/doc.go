// Package logging provides structured logging helpers for the server.
//
// It builds slog loggers in text or JSON format and centralizes the
// attribute names used across packages so log lines stay queryable.
//
// # Usage Patterns
//
//	logger := logging.New(os.Stderr, "info", "json")
//	logging.WithTool(logger, "gdrive_search").Info("tool finished",
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
//   - Access tokens are never logged; Token reports only their length
//   - Email addresses of share targets are hashed with UserHash
package logging
