// Package logging builds the process logger. Records go to stderr because
// stdout carries the MCP stdio transport.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "MEMO_LOG_LEVEL"

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog
// level. An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a text logger on w at the given level name. MEMO_LOG_LEVEL,
// when set, takes precedence. An unknown level falls back to info and is
// reported through the returned logger.
func New(w io.Writer, level string) *slog.Logger {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	if err != nil {
		logger.Warn("invalid log level, using info", "error", err)
	}
	return logger
}

// Setup builds a stderr logger and installs it as the slog default.
func Setup(level string) *slog.Logger {
	logger := New(os.Stderr, level)
	slog.SetDefault(logger)
	return logger
}
