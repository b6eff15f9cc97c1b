package daemon

import (
	"fmt"
	"io"
	"os"
	"strings"

	logrus "github.com/sirupsen/logrus"
)

func init() {
	// Default logging to discard until explicitly enabled via --log-level or settings
	logrus.SetOutput(io.Discard)
}

// ParseLogLevel maps a settings/flag value (case insensitive) to a logrus level.
// The second result is false when logging should be off.
func ParseLogLevel(level string) (logrus.Level, bool) {
	switch strings.ToLower(level) {
	case "", "off", "none":
		return logrus.PanicLevel, false
	case "trace":
		return logrus.TraceLevel, true
	case "debug":
		return logrus.DebugLevel, true
	case "info":
		return logrus.InfoLevel, true
	case "warn", "warning":
		return logrus.WarnLevel, true
	case "error":
		return logrus.ErrorLevel, true
	default:
		return logrus.DebugLevel, true
	}
}

// SetupLogging points logrus at the configured log file (stderr when empty)
// at the configured level, or discards everything when logging is off. The
// returned closer releases the log file and is never nil.
func SetupLogging(settings *GlobalSettings) (io.Closer, error) {
	if !settings.LoggingEnabled() {
		logrus.SetOutput(io.Discard)
		return nopCloser{}, nil
	}

	lvl, _ := ParseLogLevel(settings.LogLevel)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if settings.LogFile == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
