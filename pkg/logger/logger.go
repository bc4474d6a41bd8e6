// Package logger installs the process-wide zap logger every binary logs through.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a development logger at level (debug, info, warn, error;
// default info), tags it with service and replaces the zap globals. Callers
// defer the returned logger's Sync.
func Init(service, level string) *zap.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	logger, err := zapConfig.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	logger = logger.With(zap.String("service", service))
	zap.ReplaceGlobals(logger)

	return logger
}

func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return l
}
