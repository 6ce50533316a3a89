package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog. The level can be raised
// to debug with FOLIO_LOG_LEVEL=debug.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("FOLIO_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
