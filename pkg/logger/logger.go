// Package logger provides the leveled, structured logging facade used by
// every component of the broker.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' own levels, keeping the small surface the rest of
// the broker depends on independent of the logging library underneath.
type Level = logrus.Level

const (
	DEBUG = logrus.DebugLevel
	INFO  = logrus.InfoLevel
	ERROR = logrus.ErrorLevel
)

// Logger wraps a *logrus.Logger. It is created once at startup and handed
// down to every component that needs to log; components attach their own
// name via WithComponent rather than formatting it into the message.
type Logger struct {
	entry *logrus.Entry
}

// New creates a Logger that logs to stdout at minLevel, formatted the way
// an operator tailing the broker's stdout expects: timestamped, one line
// per entry.
func New(minLevel Level) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(minLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Logger{entry: logrus.NewEntry(l)}
}

// WithComponent returns a Logger whose every entry carries component=name
// as a structured field, instead of a string prefix baked into the message.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{entry: l.entry.WithField("component", name)}
}

// WithFields returns a Logger whose every entry carries the given
// structured fields in addition to any already attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Debug logs a formatted message at DEBUG level.
func (l *Logger) Debug(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

// Info logs a formatted message at INFO level.
func (l *Logger) Info(format string, args ...interface{}) { l.entry.Infof(format, args...) }

// Error logs a formatted message at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
