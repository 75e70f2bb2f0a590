// Package logger provides a Logrus-based logger implementation for unified logging.
package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/logicmonitor/lm-logs-forwarder/common"
)

// ConfigOption is a function type used to configure the logger.
type ConfigOption func(*log.Logger)

// NewLogrusLogger creates a new instance of logrus.Logger with the provided configuration options.
func NewLogrusLogger(opts ...ConfigOption) *log.Logger {
	l := log.New()
	for _, fn := range opts {
		if nil != fn {
			fn(l)
		}
	}

	return l
}

// WithLogLevel is a configuration option that sets the log level of the logger.
func WithLogLevel(level string) ConfigOption {
	return func(l *log.Logger) {
		parsedLevel, err := log.ParseLevel(level)
		if err != nil {
			l.Errorf("Invalid log level '%s'. Using default 'info' level.", level)
			parsedLevel = log.InfoLevel
		}
		l.SetLevel(parsedLevel)
	}
}

// WithDebugLevel is a configuration option that sets the log level to debug if the DebugEnabled environment variable is set to "true", otherwise sets it to info.
func WithDebugLevel() ConfigOption {
	if os.Getenv(common.DebugEnabled) == "true" {
		return WithLogLevel("debug")
	}
	return WithLogLevel("info")
}

// WithEnvLevel sets the level from the LogLevel environment variable ("trace" shows
// request and response bodies). When it is unset the DebugEnabled switch applies.
func WithEnvLevel() ConfigOption {
	if level := strings.TrimSpace(os.Getenv(common.LogLevel)); level != "" {
		return WithLogLevel(level)
	}
	return WithDebugLevel()
}

// WithJSONFormatter emits one JSON object per line so that fields such as the
// invocation id can be queried by a log aggregator.
func WithJSONFormatter() ConfigOption {
	return func(l *log.Logger) {
		l.SetFormatter(&log.JSONFormatter{})
	}
}

// WithOutput redirects the logger output.
func WithOutput(w io.Writer) ConfigOption {
	return func(l *log.Logger) {
		l.SetOutput(w)
	}
}
