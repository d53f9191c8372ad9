package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configuración del logger de consola y del journal
type Options struct {
	Level      string
	JournalDir string
	JSON       bool
}

// LevelToSeverity convierte niveles de Zap a la severidad escrita en los logs
func LevelToSeverity(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		return "CRITICAL"
	case zapcore.FatalLevel:
		return "EMERGENCY"
	default:
		return "DEFAULT"
	}
}

func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelToSeverity(level))
}

// New construye el logger: consola (stderr) + journal diario en JournalDir
func New(opts Options) (*zap.Logger, error) {
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	var buildOpts []zap.Option
	if opts.JournalDir != "" {
		journal := NewJournalCore(opts.JournalDir, zapcore.InfoLevel)
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, journal)
		}))
	}

	return config.Build(buildOpts...)
}

// newConfig configuración de la consola; JSON cambia solo el encoder
func newConfig(opts Options) (zap.Config, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	// Sin sampling: cada intento de reembolso debe quedar registrado
	config.Sampling = nil
	config.Encoding = "console"
	if opts.JSON {
		config.Encoding = "json"
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "severity"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeLevel = encodeSeverity
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config, nil
}
