// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for headless commands.
// A terminal on stderr gets slog.TextHandler; a pipe or file gets
// slog.JSONHandler.
func NewCommandLogger(level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}

// OpenFileLogHandler returns a JSON handler appending to path and the
// function that closes the file.
func OpenFileLogHandler(path string, level slog.Level) (slog.Handler, func() error, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}), file.Close, nil
}
