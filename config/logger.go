// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a JSON logger at cfg.LogLevel writing to cfg.LogFile, or
// to stderr when no file is set.
func NewLogger(cfg Config) (*zap.Logger, error) {
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return nil, ErrInvalidLogLevel
	}
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Sampling = nil
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger.With(zap.String("network", cfg.Network)), nil
}
