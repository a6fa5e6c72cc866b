// Package logging assembles the slog loggers used across audioscribe.
//
// It owns the console and JSON handlers and the level parsing, and provides a
// no-op logger for tests and wiring code that cannot fail. Components tag
// their lines with logger.With("component", name).
package logging
