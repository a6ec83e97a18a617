package bootstrap

import (
	"fmt"

	"ui-verbs/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(config *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.AppConfig.Debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig.DisableStacktrace = true

	// stdout belongs to the console prompt and step results.
	zapConfig.OutputPaths = []string{"stderr"}

	level, err := zap.ParseAtomicLevel(config.AppConfig.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	zapConfig.Level = level

	return zapConfig.Build()
}
