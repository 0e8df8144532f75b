// Package logging configures zerolog for the Yupdates client and CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yupdates/yupdates-sdk-go/pkg/config"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs every request, chunk and cache decision.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled silences all output.
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// FromEnv builds a logger configuration from YUPDATES_LOG_LEVEL and
// YUPDATES_LOG_PRETTY.
func FromEnv(env config.Env) Config {
	cfg := DefaultConfig()
	if env.LogLevel != "" {
		cfg.Level = LogLevel(env.LogLevel)
	}
	cfg.Pretty = env.LogPretty
	return cfg
}

// Setup configures the global zerolog logger. The client logs through the
// global logger, so this is the one switch for library output too.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level. Unknown levels fall back
// to info.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-call detail
//   - Request start/finish (request_id, endpoint, status, duration)
//   - Each submitted chunk (chunk, chunks, items, feed_id)
//   - Cache hits and pages read by a pager (key, cursor)
//
// Info: operation summaries
//   - Batch feed fetch complete
//   - CLI command results
//
// Warn: problems that do not fail the call
//   - Cache get/set errors (read falls through to the API)
//   - Discarded cache entries
//   - A feed read failing inside a batch fetch
//
// Error: the call failed
//   - CLI commands that return an error
//
// Context Fields:
//   - component: emitting package ("yupdates-client", "yupdates-cli")
//   - request_id: per-call ID, only in logs
//   - endpoint: API path relative to the base URL
//   - status: HTTP status code
//   - feed_id: feed the call concerns
//   - cursor: item time a page was read relative to
//   - key: cache key (the token is hashed)
