// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the zerolog logger and the Prometheus
// metrics shared by the batch commands.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soyoung-yu/paper-site/pkg/types"
)

// NewLogger returns a logger writing to the configured stream.
func NewLogger(cfg types.LoggingConfig) zerolog.Logger {
	out := io.Writer(os.Stderr)
	if strings.EqualFold(cfg.Output, "stdout") {
		out = os.Stdout
	}
	return NewLoggerTo(out, cfg)
}

// NewLoggerTo returns a logger writing to w. Format "console" produces
// human-readable lines; anything else produces JSON.
func NewLoggerTo(w io.Writer, cfg types.LoggingConfig) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithPaper adds the identity of a catalog row to a logger.
func WithPaper(logger zerolog.Logger, paperID, folder, path string) zerolog.Logger {
	return logger.With().
		Str("paper_id", paperID).
		Str("folder", folder).
		Str("path", path).
		Logger()
}
