// Package pkglog configures the application's slog JSON logger.
//
// Records get stable keys ("ts", "severity", "file") and, when the context
// carries them, the request correlation ID and the upload being worked on.
package pkglog
