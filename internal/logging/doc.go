// Package logging assembles structured slog loggers and formatting helpers used
// across brandforge components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and provides attribute helpers so pipeline code tags log lines with
// workflow instance IDs, domains, and marketplace job refs under consistent
// keys. The package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
