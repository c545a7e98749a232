// Package testhelpers holds small utilities shared by package tests.
package testhelpers

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/jigsawroom/internal/logging"
)

// NewLogger creates a debug level logger writing to logSink, such as io.Discard or [NewWriter].
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.NewLogger(logSink, false)
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// NewWriter returns a writer that forwards each write to t.Log so log lines show up next to the failing test.
func NewWriter(t testing.TB) io.Writer {
	return testWriter{t: t}
}
