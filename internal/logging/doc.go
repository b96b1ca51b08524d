// Package logging builds the slog loggers used across convoy.
//
// The daemon writes a console-formatted stream for interactive use and a
// run-scoped log file with a stable pointer link; the CLI stays on the
// console handler. Attr helpers and field name constants keep structured
// keys consistent between components so log queries do not chase synonyms.
package logging
