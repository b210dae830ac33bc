// Package logutil sets up structured logging to a rotated file in the
// user's data directory. Swallowed background errors (remote sync,
// coaching calls) end up here rather than on the terminal.
package logutil

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a JSON slog.Logger writing to the given file with
// rotation.
func NewLogger(path string) *slog.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	return slog.New(slog.NewJSONHandler(w, nil))
}
