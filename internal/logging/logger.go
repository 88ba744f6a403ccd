// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunIDKey is the field name that ties every log line to one run.
const RunIDKey = "run_id"

// New builds a zap.Logger configured for development or production and names
// it after the binary.
func New(name string, development bool) (*zap.Logger, error) {
	var (
		cfg zap.Config
		env string
	)
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		env = "dev"
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = false
		env = "prod"
	}
	cfg.EncoderConfig.TimeKey = "ts"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s logger: %w", env, err)
	}
	if name != "" {
		logger = logger.Named(name)
	}
	return logger, nil
}

// WithRunID returns a child logger stamped with runID.
func WithRunID(logger *zap.Logger, runID string) *zap.Logger {
	return logger.With(zap.String(RunIDKey, runID))
}
