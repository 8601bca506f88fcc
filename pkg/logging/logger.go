package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"frameworks/dbdoctor/pkg/config"
)

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// Level represents a log level
type Level = logrus.Level

// Log levels
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// NewLogger creates a logger writing to stderr so stdout stays reserved for
// the rendered report. verbose forces debug level over LOG_LEVEL.
func NewLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	logger.SetLevel(config.GetLogLevel())
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// NewJSONLogger is used when the report itself is machine-readable, so the
// log stream is too.
func NewJSONLogger(verbose bool) *logrus.Logger {
	logger := NewLogger(verbose)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
