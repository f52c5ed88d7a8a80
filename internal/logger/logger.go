// Package logger provides leveled structured logging for the process. Records
// are written through log/slog text handlers to a rotating file and,
// optionally, to stderr.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a string to a Level. Unknown names yield INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F is a shorthand for creating a Field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err is a shorthand for an "error" field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Config holds logger configuration
type Config struct {
	Level      Level  // Minimum log level
	FilePath   string // Path to log file; empty disables file output
	MaxSizeMB  int    // Max size in megabytes before rotation
	MaxAge     int    // Max age in days of rotated files
	MaxBackups int    // Max number of rotated files kept
	Console    bool   // Enable stderr logging
}

// DefaultConfig returns default logger configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Level:      INFO,
		FilePath:   filepath.Join(home, ".config", "taskboard", "logs", "taskboard.log"),
		MaxSizeMB:  10,
		MaxAge:     7,
		MaxBackups: 5,
		Console:    false, // stderr would corrupt the TUI
	}
}

// Logger is a leveled logger carrying preset fields.
type Logger struct {
	config Config
	slog   *slog.Logger
	closer io.Closer
}

// New creates a logger writing to the configured file and console.
func New(config Config) (*Logger, error) {
	var (
		writers []io.Writer
		closer  io.Closer
	)

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		rot := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSizeMB,
			MaxAge:     config.MaxAge,
			MaxBackups: config.MaxBackups,
		}
		writers = append(writers, rot)
		closer = rot
	}
	if config.Console {
		writers = append(writers, os.Stderr)
	}

	l := NewWriter(config.Level, io.MultiWriter(writers...))
	l.config = config
	l.closer = closer
	return l, nil
}

// NewWriter creates a logger that writes text records to w.
func NewWriter(level Level, w io.Writer) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.slog()})
	return &Logger{
		config: Config{Level: level},
		slog:   slog.New(h),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWriter(ERROR, io.Discard)
}

// WithFields creates a new logger with preset fields
func (l *Logger) WithFields(fields ...Field) *Logger {
	return &Logger{
		config: l.config,
		slog:   l.slog.With(attrs(fields)...),
		closer: l.closer,
	}
}

// Slog exposes the underlying slog logger.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Enabled reports whether records at level are emitted.
func (l *Logger) Enabled(level Level) bool {
	return l.slog.Enabled(context.Background(), level.slog())
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	l.slog.Log(context.Background(), level.slog(), msg, attrs(fields)...)
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) { l.log(DEBUG, msg, fields) }

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) { l.log(INFO, msg, fields) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) { l.log(WARN, msg, fields) }

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) { l.log(ERROR, msg, fields) }

// Close releases the log file.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

var (
	mu           sync.RWMutex
	globalLogger = Nop()
)

// Init replaces the global logger.
func Init(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// SetGlobal installs l as the global logger, closing the previous one.
func SetGlobal(l *Logger) {
	mu.Lock()
	prev := globalLogger
	globalLogger = l
	mu.Unlock()
	if prev != nil && prev != l {
		prev.Close()
	}
}

// Global returns the process-wide logger.
func Global() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) { Global().Debug(msg, fields...) }

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) { Global().Info(msg, fields...) }

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) { Global().Warn(msg, fields...) }

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) { Global().Error(msg, fields...) }

// WithFields creates a new logger with preset fields using the global logger
func WithFields(fields ...Field) *Logger { return Global().WithFields(fields...) }

// Close closes the global logger
func Close() error { return Global().Close() }

// GetConfig returns the current logger configuration
func GetConfig() Config { return Global().config }
