// Package log carries the shared structured-logging vocabulary: component
// names and field keys used across the binaries, plus a helper to derive a
// component-scoped logger.
package log

import "log/slog"

// ForComponent returns the default logger tagged with a component field.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With(FieldComponent, component)
}
