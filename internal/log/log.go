// Package log is the process-wide structured logger for go-duo, a thin
// layer over slog. The level comes from config; output is text on a dev
// machine and JSON when GO_ENV=production so the robot-side journal stays
// machine-parseable.
package log

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
	level  slog.LevelVar
)

// Init sets the global log level ("debug", "info", "warn", "error").
// Unknown level strings fall back to info. Safe to call more than once;
// later calls just adjust the level.
func Init(levelName string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(levelName)); err != nil {
		lvl = slog.LevelInfo
	}
	level.Set(lvl)

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogger()
		slog.SetDefault(logger)
	}
}

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: &level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// L returns the global logger, initializing it at info level if Init has
// not run yet.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		level.Set(slog.LevelInfo)
		logger = newLogger()
		slog.SetDefault(logger)
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
