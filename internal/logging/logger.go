package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	debugEnabled = os.Getenv("NIPPO_DEBUG") != ""
)

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// DebugEnabled reports whether Debug messages are written.
func DebugEnabled() bool {
	return debugEnabled
}

// SetOutput redirects all log output. The TUI points it at io.Discard or a
// file so that log lines never land on the alternate screen.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Info logs an informational message (always shown)
func Info(subsystem, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
}

// Warn logs a recoverable problem.
func Warn(subsystem, format string, args ...any) {
	log.Printf("[%s] warning: "+format, append([]any{subsystem}, args...)...)
}

// Debug logs a debug message (only shown if NIPPO_DEBUG is set)
func Debug(subsystem, format string, args ...any) {
	if debugEnabled {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}

// Truncate shortens s to maxWidth terminal cells and adds an ellipsis.
// Report text is mostly full-width Japanese, so width is measured in cells
// rather than bytes.
func Truncate(s string, maxWidth int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	return runewidth.Truncate(s, maxWidth, "...")
}
