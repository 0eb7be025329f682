// Package errors provides a classified error type used throughout the
// engine: every error carries a category, a severity, and a retry
// strategy, so callers can make routing decisions (exit code, log level,
// whether a registry should try the next candidate builder) without
// string-matching messages.
package errors
