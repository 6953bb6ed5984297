// Package logger provides a logger using the zap library.
package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kdmitry/cclint/internal/config"
)

// loggerCtxKey is a type used to store the logger in the context.
type loggerCtxKey struct{}

var once sync.Once

// Get returns the process-wide zap logger, initializing it from cfg the
// first time it is called. Later calls ignore cfg and return the
// already-initialized logger, matching the singleton the teacher builds
// around sync.Once. It logs to both stderr and a rotating file.
func Get(cfg *config.Logger) *zap.Logger {
	once.Do(func() {
		stderr := zapcore.AddSync(os.Stderr)

		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})

		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			log.Println(fmt.Errorf("invalid log level %q, defaulting to INFO: %w", cfg.Level, err))
			level = zapcore.InfoLevel
		}
		logLevel := zap.NewAtomicLevelAt(level)

		productionCfg := zap.NewProductionEncoderConfig()
		productionCfg.TimeKey = "timestamp"
		productionCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		developmentCfg := zap.NewDevelopmentEncoderConfig()
		developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

		consoleEncoder := zapcore.NewConsoleEncoder(developmentCfg)
		fileEncoder := zapcore.NewJSONEncoder(productionCfg)

		var gitRevision string
		buildInfo, ok := debug.ReadBuildInfo()
		if ok {
			for _, v := range buildInfo.Settings {
				if v.Key == "vcs.revision" {
					gitRevision = v.Value
					break
				}
			}
		}

		// log to multiple destinations (console and file)
		core := zapcore.NewTee(
			zapcore.NewCore(consoleEncoder, stderr, logLevel),
			zapcore.NewCore(fileEncoder, file, logLevel).
				With([]zapcore.Field{
					zap.String("git_revision", gitRevision),
					zap.String("go_version", buildInfo.GoVersion),
				}),
		)

		zap.ReplaceGlobals(zap.New(core))
	})

	return zap.L()
}

// FromCtx returns the Logger associated with ctx, or the global logger
// if none is attached.
func FromCtx(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}

// WithCtx returns a copy of ctx with the Logger attached.
func WithCtx(ctx context.Context, l *zap.Logger) context.Context {
	if lp, ok := ctx.Value(loggerCtxKey{}).(*zap.Logger); ok {
		if lp == l {
			return ctx
		}
	}
	return context.WithValue(ctx, loggerCtxKey{}, l)
}
