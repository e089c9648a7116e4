// Package output formats command output for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	successMark = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnLabel   = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	keyLabel    = color.New(color.FgCyan).SprintFunc()
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table creates an aligned table writer. Call Flush when done.
func Table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Success prints a line prefixed with a check mark.
func Success(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successMark("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func Warn(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", warnLabel("Warning:"), fmt.Sprintf(format, args...))
}

// Error prints an error line.
func Error(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorLabel("Error:"), fmt.Sprintf(format, args...))
}

// KeyValue prints an indented "key: value" line.
func KeyValue(w io.Writer, key string, value any) {
	_, _ = fmt.Fprintf(w, "  %s %v\n", keyLabel(key+":"), value)
}

// SetColor forces colored output on or off.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}
