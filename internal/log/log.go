// Package log wraps logrus with the handful of helpers the application uses.
// Output goes to stderr so stdout stays clean for --json.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Setup configures the level. An unparseable level falls back to warn;
// debug forces the debug level regardless.
func Setup(level string, debug bool) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.WarnLevel
	}
	formatter := &logrus.TextFormatter{DisableTimestamp: true}
	if debug {
		parsed = logrus.DebugLevel
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	logger.SetFormatter(formatter)
	logger.SetLevel(parsed)
}

// SetOutput redirects log output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger exposes the underlying logger.
func Logger() *logrus.Logger {
	return logger
}

// WithFields starts an entry with structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
