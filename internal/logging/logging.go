// Package logging wraps charmbracelet/log behind the same flat
// package-level call sites the teacher's utils/logger exposes
// (logger.Info(...), logger.Error(...)), so the rest of the codebase
// reads identically to the teacher's.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// Info logs an informational message.
func Info(msg string, keyvals ...interface{}) { logger.Info(msg, keyvals...) }

// Warn logs a warning.
func Warn(msg string, keyvals ...interface{}) { logger.Warn(msg, keyvals...) }

// Error logs an error. Pass the error itself as the first keyval for
// structured output, e.g. logging.Error("ingest failed", "err", err).
func Error(msg string, keyvals ...interface{}) { logger.Error(msg, keyvals...) }

// Debug logs a debug message, hidden unless SONICA_DEBUG is set.
func Debug(msg string, keyvals ...interface{}) { logger.Debug(msg, keyvals...) }

func init() {
	if os.Getenv("SONICA_DEBUG") != "" {
		logger.SetLevel(log.DebugLevel)
	}
}
