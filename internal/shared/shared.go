// package shared defines helpers used across the pipeline packages
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// logLevelEnv overrides the default log level, e.g. "debug" or "error".
const logLevelEnv = "RIGHTSCAN_LOG_LEVEL"

// NewLogger creates a [log.Logger] writing to the specified [io.Writer], with
// timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]. The level defaults to info and honors
// RIGHTSCAN_LOG_LEVEL when it names a valid level.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})

	if raw := os.Getenv(logLevelEnv); raw != "" {
		if level, err := log.ParseLevel(raw); err == nil {
			SetLogLevel(logger, level)
		}
	}

	return logger
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}
