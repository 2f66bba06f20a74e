// Package logger provides verbose logging for the filings CLI and server.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the classify and retrieve pipeline.
// Errors are always printed. The server switches to JSON lines with SetJSON.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	asJSON  bool
	output  io.Writer = os.Stderr
	sugared           = build(os.Stderr, false)
)

// build creates the zap logger writing to w. Level gating is done by this
// package, so the core accepts everything.
func build(w io.Writer, jsonLines bool) *zap.SugaredLogger {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + l.CapitalString() + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var enc zapcore.Encoder
	if jsonLines {
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
	return zap.New(core).Sugar()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	sugared = build(w, asJSON)
}

// SetJSON switches between console lines and JSON lines.
func SetJSON(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	asJSON = enabled
	sugared = build(output, enabled)
}

// Zap returns the underlying logger for libraries that take a *zap.Logger.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared.Desugar()
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		sugared.Debugf(format, args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && !asJSON {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		sugared.Infof(format, args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		sugared.Warnf(format, args...)
	}
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugared.Errorf(format, args...)
}

// With returns a structured logger carrying the given key/value pairs.
// It ignores verbose mode and is meant for request logging in the server.
func With(keysAndValues ...any) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared.With(keysAndValues...)
}
