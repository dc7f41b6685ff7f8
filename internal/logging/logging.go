// Package logging builds the zap loggers used across the triage pipeline.
package logging

import (
	"fmt"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// NewDefaultConfig returns the production defaults: info-level JSON.
func NewDefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// New creates a zap logger from config, writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stderr())), level)
	return zap.New(core), nil
}

// Sync flushes a logger, tolerating the EINVAL/ENOTTY that syncing
// stderr returns on Linux.
func Sync(logger *zap.Logger) error {
	err := logger.Sync()
	if err != nil && isTerminalSyncError(err) {
		return nil
	}
	return err
}

func isTerminalSyncError(err error) bool {
	for _, errno := range []syscall.Errno{syscall.EINVAL, syscall.ENOTTY, syscall.EBADF} {
		if isErrno(err, errno) {
			return true
		}
	}
	return false
}
