package testutil

import (
	"bytes"
	"log/slog"

	"github.com/preston-bernstein/roster-service/internal/logging"
)

// NewBufferLogger returns a debug-level text logger built the way the service
// builds its own, writing to a buffer returned for assertions.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "debug", Format: logging.FormatText, Output: &buf})
	return logger, &buf
}
