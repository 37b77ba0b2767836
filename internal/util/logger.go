// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package util holds process-wide helpers shared by the apvault binaries.
package util

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the process logger. It is nil until InitLogger runs; library
// code falls back to a discarding logger in that case.
var Logger *slog.Logger

// InitLogger initializes the global logger with appropriate log level
// Set APVAULT_DEBUG=1 environment variable to enable debug logging
func InitLogger() {
	InitLoggerTo(os.Stderr)
}

// InitLoggerTo initializes the global logger writing to w.
func InitLoggerTo(w io.Writer) {
	level := slog.LevelInfo

	if os.Getenv("APVAULT_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time attribute for cleaner CLI output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// Debug logs a debug message (only shown when APVAULT_DEBUG is set)
func Debug(msg string, args ...any) {
	if Logger == nil {
		return
	}
	Logger.Debug(msg, args...)
}
