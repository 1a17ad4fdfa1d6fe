// Package logger provides the global structured logger for opsq.
//
// Components take no logger dependency; they log through the package-level
// SugaredLogger, which is a no-op until Initialize is called. This keeps the
// core pipeline constructors free of plumbing while still giving every
// resolution turn structured, correlated output.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput tracks whether JSON output is enabled
	JSONOutput bool
)

func init() {
	// Safe no-op logger at package load time so callers never nil-check
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects machine-readable
// JSON over human-readable console output; level controls verbosity.
func Initialize(jsonOutput bool, level zapcore.Level) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "", // no timestamps in console mode, keeps output calm
			LevelKey:       "level",
			MessageKey:     "msg",
			NameKey:        "name",
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				zapcore.AddSync(os.Stderr),
				level,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = Logger.Sync()
}
