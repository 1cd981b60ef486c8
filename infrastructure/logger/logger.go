package logger

import (
	"os"

	"github.com/banterhq/banter/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*zap.Logger
}

// New builds the service logger from config. When a file path is configured
// output goes through lumberjack rotation in addition to stderr.
func New(cfg *config.Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Logger.Level); err != nil && cfg.Logger.Level != "" {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Logger.Encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}
	if cfg.Logger.FilePath != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Logger.FilePath,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return &Logger{zap.New(core, zap.AddCaller())}, nil
}

// NewDevelopmentLogger is used by tests and local tooling.
func NewDevelopmentLogger() (*Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{l}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}
