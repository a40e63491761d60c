// Package logging assembles structured slog loggers and formatting helpers used
// across mmove.
//
// It owns the console and JSON handlers, routes the optional log file through
// a rotating lumberjack writer, and exposes context-aware helpers so phase code
// can tag log lines with the run ID, phase, and collection root automatically.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
