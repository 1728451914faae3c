// Package logger wraps zap the way the pack's service layer does: a
// console core always on, plus an optional rotated JSON file core backed by
// lumberjack. Every actor and TCP worker gets a scoped child logger rather
// than logging through a single undifferentiated global.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the logger's level, encoding, and optional file sink.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Dir    string // rotated log file directory; empty disables file logging
}

// New builds a zap.Logger per cfg. Console output is always on; a second
// JSON-encoded core writing to a lumberjack-rotated file is added when
// cfg.Dir is non-empty.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	if cfg.Format == "json" {
		consoleEncoder = zapcore.NewJSONEncoder(encoderCfg)
	}
	cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level))

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("logger: create log dir: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, "doorcore.log"),
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		}
		jsonEncoder := zapcore.NewJSONEncoder(encoderCfg)
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(fileWriter), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// WithResource scopes a logger to a peripheral actor.
func WithResource(log *zap.Logger, resource string) *zap.Logger {
	return log.With(zap.String("resource", resource))
}

// WithConnection scopes a logger to a TCP worker's per-connection trace id,
// distinct from the gateway's correlation ID, so interleaved actor logs can
// be attributed back to the connection that produced them.
func WithConnection(log *zap.Logger, traceID string) *zap.Logger {
	return log.With(zap.String("trace_id", traceID))
}
