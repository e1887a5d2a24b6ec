package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger writes structured JSON logs to a file. Logging never goes to the
// terminal because the TUI owns it.
type Logger struct {
	logger       *slog.Logger
	file         *os.File
	traceEnabled bool
}

// Config contains the settings used to build a Logger.
type Config struct {
	// Level is one of: trace, debug, info, warn, error
	Level string
	// FilePath is the file the logger appends to
	FilePath string
}

// New creates a Logger writing to the configured file, creating parent
// directories as needed.
func New(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0700); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	return &Logger{
		logger:       slog.New(handler),
		file:         file,
		traceEnabled: strings.EqualFold(cfg.Level, "trace"),
	}, nil
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() {
	if err := l.file.Close(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error closing logger: %v\n", err)
	}
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// parseLevel converts a config string into an slog level. Unknown values
// fall back to info.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "trace", "debug":
		// Trace is handled by this package, slog only knows debug
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
