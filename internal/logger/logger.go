// Package logger provides application-wide structured logging backed by
// zap. The package-level functions log through a process-wide logger that
// Init configures once at startup; before Init they log through a no-op
// logger, which keeps tests quiet by default.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds and installs the process logger. Level is one of debug, info,
// warn, error; unknown values fall back to info. When development is true
// the output is human-readable console encoding instead of JSON.
func Init(level string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
	return nil
}

// Set replaces the process logger. Useful for tests that want to capture
// output.
func Set(l *zap.Logger) {
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

// Debug logs a debug message with alternating key-value pairs.
func Debug(msg string, kv ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugw(msg, kv...)
}

// Info logs an informational message with alternating key-value pairs.
func Info(msg string, kv ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infow(msg, kv...)
}

// Warn logs a warning with alternating key-value pairs.
func Warn(msg string, kv ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnw(msg, kv...)
}

// Error logs an error with alternating key-value pairs.
func Error(msg string, kv ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorw(msg, kv...)
}
