// Package logging wires the diagnostic stream described in the system's
// error handling design: one structured logger, defaulting to stderr,
// redirectable via NewWithOutput, with sub-loggers per component.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New returns the process-wide logger, writing to stderr by default.
func New() *log.Logger {
	return NewWithOutput(os.Stderr)
}

// NewWithOutput returns a logger writing to the given stream, matching the
// "redirectable via a runtime option" requirement for runtime failures.
func NewWithOutput(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
	l.SetLevel(log.InfoLevel)
	return l
}

// Component returns a sub-logger tagged with the given component name, the
// structured-logging equivalent of the teacher's
// text_color_set(...); dw_printf("%s: ...", component, ...) call pairs.
func Component(l *log.Logger, component string) *log.Logger {
	return l.With("component", component)
}

// Fatal prints the single diagnostic line spec'd for startup failures
// (component + error kind) and exits non-zero.
func Fatal(l *log.Logger, component string, err error) {
	Component(l, component).Fatal("startup failed", "err", err)
}
