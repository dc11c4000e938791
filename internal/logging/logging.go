// Package logging builds the zap loggers shared by the server and the
// terminal client.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the minimum level and the encoding.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	// OutputPaths defaults to stderr. The TUI points this at a file so log
	// lines do not tear the alternate screen.
	OutputPaths []string
}

// New builds a sugared logger from cfg.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zc = zap.NewProductionConfig()
		zc.Encoding = "json"
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
		zc.ErrorOutputPaths = cfg.OutputPaths
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Sugar(), nil
}

// ParseLevel maps a level name to a zap level. The empty string means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return level, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
