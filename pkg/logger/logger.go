// Package logger provides structured logging using zap, with context-aware
// request loggers and runtime level changes.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// correlationIDKey is the context key for correlation ID.
	correlationIDKey contextKey = "correlation_id"
	// loggerKey is the context key for the logger instance.
	loggerKey contextKey = "logger"
)

var (
	globalLogger *zap.Logger
	atomicLevel  zap.AtomicLevel
	once         sync.Once
	initErr      error
)

// Config represents logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Development enables development mode with human-readable output.
	Development bool
	// InitialFields are fields added to every log entry.
	InitialFields map[string]interface{}
}

// DefaultConfig returns a default configuration suitable for production.
func DefaultConfig() Config {
	return Config{Level: "info"}
}

// Init initializes the global logger with the given configuration.
// It is safe to call multiple times; only the first call takes effect.
func Init(cfg Config) error {
	once.Do(func() {
		initErr = initLogger(cfg)
	})
	return initErr
}

func initLogger(cfg Config) error {
	atomicLevel = zap.NewAtomicLevel()
	if err := atomicLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapCfg := zap.Config{
		Level:            atomicLevel,
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    cfg.InitialFields,
	}

	var err error
	globalLogger, err = zapCfg.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(globalLogger)

	return nil
}

// L returns the global logger instance.
// If not initialized, returns a no-op logger.
func L() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// S returns the global sugared logger for convenient logging.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Named returns a named child logger.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// With returns a logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// SetLevel changes the log level at runtime.
func SetLevel(level string) error {
	return atomicLevel.UnmarshalText([]byte(level))
}

// Sync flushes any buffered log entries.
// Applications should call this before exiting.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// FromContext retrieves the logger from context.
// If no logger is found, returns the global logger with correlation ID if present.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}

	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}

	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return L().With(zap.String("correlation_id", id))
	}

	return L()
}

// ToContext stores the logger in the context.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithCorrelationID adds a correlation ID to the context and returns a new
// context with a logger that includes it.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	ctx = context.WithValue(ctx, correlationIDKey, correlationID)
	l := L().With(zap.String("correlation_id", correlationID))
	return ToContext(ctx, l)
}

// MustInit initializes the logger or panics on error.
func MustInit(cfg Config) {
	if err := Init(cfg); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	L().Fatal(msg, fields...)
}
