// Package logging builds the zap logger used by every gatekeeper command.
// Output always goes to a file: stdout carries the hook protocol and stderr
// is shown to the user when a prompt is blocked.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/gatekeeper/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New opens cfg.File for appending and returns a logger writing to it. The
// returned close func syncs and closes the file.
func New(cfg config.LogConfig) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	if cfg.File == "" {
		return nil, nil, errors.New("log file path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(file), zap.NewAtomicLevelAt(level))
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	closeFn := func() error {
		return errors.Join(logger.Sync(), file.Close())
	}
	return logger, closeFn, nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
