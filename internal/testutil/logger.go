package testutil

import (
	"io"
	"log/slog"

	"github.com/smokerelay/smokerelay/internal/logger"
)

// MakeNoopLogger returns a logger that discards all output, for use in tests.
func MakeNoopLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))}
}
