// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DebugLevel is the debug log level, i.e. the most verbose.
	DebugLevel = "debug"
	// InfoLevel is the default log level.
	InfoLevel = "info"
	// ErrorLevel is a log level where only errors are logged.
	ErrorLevel = "error"

	// FormatJSON produces one JSON object per log line.
	FormatJSON = "json"
	// FormatText produces human-readable text output.
	FormatText = "text"
)

// MustNewZapLogger is like NewZapLogger but panics on invalid input.
func MustNewZapLogger(level string, format string, additionalOpts ...zap.Option) logr.Logger {
	logger, err := NewZapLogger(level, format, additionalOpts...)
	if err != nil {
		panic(err)
	}
	return logger
}

// NewZapLogger creates a new logr.Logger backed by Zap.
func NewZapLogger(level string, format string, additionalOpts ...zap.Option) (logr.Logger, error) {
	var (
		zapLevel zapcore.Level
		encoding string
	)

	switch level {
	case DebugLevel:
		zapLevel = zapcore.DebugLevel
	case "", InfoLevel:
		zapLevel = zapcore.InfoLevel
	case ErrorLevel:
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("invalid log level %q", level)
	}

	switch format {
	case "", FormatJSON:
		encoding = "json"
	case FormatText:
		encoding = "console"
	default:
		return logr.Logger{}, fmt.Errorf("invalid log format %q", format)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         encoding,
		DisableCaller:    true,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	zapLogger, err := cfg.Build(additionalOpts...)
	if err != nil {
		return logr.Logger{}, err
	}

	return zapr.NewLogger(zapLogger), nil
}
