package log

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, err := New(Config{
		Level:    "debug",
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))
	// Trace is disabled at debug level and must not appear
	Trace("Trace message")

	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "Debug message")
	assert.Contains(t, contentStr, "Info message")
	assert.Contains(t, contentStr, "Warning message")
	assert.Contains(t, contentStr, "Error message")
	assert.Contains(t, contentStr, "test error")
	assert.NotContains(t, contentStr, "Trace message")
}

func TestTraceEnabledAtTraceLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "trace.log")

	logger, err := New(Config{
		Level:    "trace",
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	Trace("wire line", "raw", "{}")
	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "TRACE: wire line")
}

func TestNilDefaultLoggerIsSafe(t *testing.T) {
	SetDefaultLogger(nil)
	// Must not panic
	Debug("no-op")
	Info("no-op")
	Warn("no-op")
	Error("no-op")
	Trace("no-op")
}
