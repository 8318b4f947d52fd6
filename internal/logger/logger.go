// Package logger builds the zap logger used across the server.
package logger

import (
	"fmt"

	"foodshare/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger for local runs and a JSON logger otherwise.
func New(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch env {
	case config.EnvLocal:
		cfg = zap.NewDevelopmentConfig()
	case config.EnvDev, config.EnvProd:
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown env %q", env)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}
