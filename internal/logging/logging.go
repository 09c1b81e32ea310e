// Package logging builds the zap logger used across tab_cookies.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajsharma/tab_cookies/internal/config"
)

// New builds a logger from cfg. With a log file configured, JSON entries go to
// that file; otherwise human-readable entries go to stderr, unless quiet is set,
// in which case nothing is logged (the interactive UI owns the terminal).
func New(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	var zcfg zap.Config
	switch {
	case cfg.LogFile != "":
		zcfg = zap.NewProductionConfig()
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	case quiet:
		return zap.NewNop(), nil
	default:
		zcfg = zap.NewDevelopmentConfig()
		zcfg.DisableStacktrace = true
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !cfg.Color {
			zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log.With(zap.String("version", config.Version)), nil
}
