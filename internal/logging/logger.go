// Package logging provides the structured slog logger shared by the
// CLI and the daemon. Sensitive attribute values (webhook URLs, tokens)
// are masked before they reach any handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: maskAttr,
	}))

	// Debug reports whether the logger was initialized at debug level.
	Debug bool
)

// Config selects the handler the global logger writes through.
type Config struct {
	Level     slog.Level
	JSON      bool
	Output    io.Writer
	AddSource bool
}

// Init replaces the global logger. The daemon points Output at its log
// file; the CLI keeps stderr.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: maskAttr,
	}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	mu.Lock()
	logger = slog.New(h)
	Debug = cfg.Level <= slog.LevelDebug
	mu.Unlock()
}

// Logger returns the current global logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// DebugLog logs at DEBUG level.
func DebugLog(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Attribute keys shared across packages so log lines stay greppable.
const (
	KeyOperation  = "op"
	KeyError      = "error"
	KeyDog        = "dog"
	KeyAction     = "action"
	KeyReminderID = "reminder_id"
	KeyWebhook    = "webhook"
	KeyStatus     = "status"
	KeyCount      = "count"
)
