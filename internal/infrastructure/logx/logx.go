package logx

import (
	"context"
	"os"
	"strings"

	"yfquote-service/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *zap.Logger
)

func init() {
	var err error
	logger, err = New(config.Load())
	if err != nil {
		panic(err)
	}
}

// New builds a JSON production logger at cfg.LogLevel. When cfg.LogFile is
// set, entries are also written to a size-rotated file.
func New(cfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogLevel != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(cfg.LogLevel)))
	}

	if cfg.LogFile == "" {
		return zapCfg.Build(zap.AddCaller())
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
	enc := zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapCfg.Level),
		zapcore.NewCore(enc, zapcore.AddSync(rotated), zapCfg.Level),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

type ctxKey struct{}

// ContextWith returns a copy of ctx carrying fields for WithFields.
func ContextWith(ctx context.Context, fields ...zap.Field) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]zap.Field)
	all := make([]zap.Field, 0, len(prev)+len(fields))
	all = append(all, prev...)
	all = append(all, fields...)
	return context.WithValue(ctx, ctxKey{}, all)
}

// WithFields enriches the logger with request IDs / trace IDs stored in ctx.
func WithFields(ctx context.Context) *zap.Logger {
	fields, _ := ctx.Value(ctxKey{}).([]zap.Field)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
