package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// base is the shared logger all components hang off. Output goes to stderr
// so piped command output stays clean.
var base = newBaseLogger()

func newBaseLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Logger returns a component-scoped log entry. Components use a fixed name
// ("wire", "transport", "resolver", "client") so log lines can be filtered
// per subsystem.
func Logger(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// SetLogLevel configures the shared logger. Must be one of debug, info,
// warn or error.
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "info":
		base.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
	return nil
}
