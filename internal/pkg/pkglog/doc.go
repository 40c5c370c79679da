// Package pkglog configures the process-wide slog logger: JSON to stdout,
// "ts"/"severity"/"file" keys, the service name, and the request correlation
// id when the context carries one.
package pkglog
