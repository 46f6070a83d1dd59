// Package logger exposes the zap-backed logging factory used across
// cac-core. Loggers are named, write human-readable console output to
// stderr, and switch to a caller-annotated encoding at debug level.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level names accepted by NewAtLevel.
const (
	// LevelDebug enables debug output with caller annotations.
	LevelDebug = "debug"

	// LevelInfo is the default level.
	LevelInfo = "info"

	// LevelWarn suppresses informational output.
	LevelWarn = "warn"

	// LevelError only reports errors.
	LevelError = "error"

	// LevelNone disables logging entirely.
	LevelNone = "none"
)

// New returns a named logger at info level.
//
// Parameters:
//   - name: Logger name, typically the package or command name
//
// Returns:
//   - *zap.SugaredLogger: Configured logger instance
func New(name string) *zap.SugaredLogger {
	l, err := NewAtLevel(name, LevelInfo)
	if err != nil {
		// Unreachable with a fixed valid level.
		return zap.NewNop().Sugar()
	}
	return l
}

// NewAtLevel returns a named logger at the requested level.
//
// Debug level adds caller file:line annotations to every message.
// LevelNone returns a no-op logger.
//
// Parameters:
//   - name: Logger name, typically the package or command name
//   - level: One of "debug", "info", "warn", "error", "none"
//
// Returns:
//   - *zap.SugaredLogger: Configured logger instance
//   - error: When the level string is not recognized
func NewAtLevel(name, level string) (*zap.SugaredLogger, error) {
	if level == LevelNone {
		return zap.NewNop().Sugar(), nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.ConsoleSeparator = " "

	opts := []zap.Option{}
	if lvl == zapcore.DebugLevel {
		encoderCfg.CallerKey = "caller"
		encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)

	return zap.New(core, opts...).Named(name).Sugar(), nil
}

// Nop returns a logger that discards everything. Useful in tests.
//
// Returns:
//   - *zap.SugaredLogger: A no-op logger
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
