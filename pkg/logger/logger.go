package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/virtual-classroom/pkg/config"
	"github.com/noah-isme/virtual-classroom/pkg/requestid"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "json":
		zapCfg.Encoding = "json"
	default:
		zapCfg.Encoding = "console"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	// zap opens file sinks in append mode, so the log survives restarts.
	zapCfg.OutputPaths = []string{cfg.Log.File}
	if cfg.Log.Stderr {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, "stderr")
	}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.DisableStacktrace = true
	zapCfg.Sampling = nil

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// Notifier forwards registry notifications to a zap logger.
type Notifier struct {
	logger *zap.Logger
}

// NewNotifier wraps l; a nil logger discards notifications.
func NewNotifier(l *zap.Logger) *Notifier {
	if l == nil {
		l = zap.NewNop()
	}
	return &Notifier{logger: l.WithOptions(zap.WithCaller(false))}
}

// Info logs a successful outcome.
func (n *Notifier) Info(ctx context.Context, msg string) {
	n.logger.Info(msg, fields(ctx)...)
}

// Error logs a rejected operation.
func (n *Notifier) Error(ctx context.Context, msg string) {
	n.logger.Error(msg, fields(ctx)...)
}

func fields(ctx context.Context) []zap.Field {
	if id := requestid.Value(ctx); id != "" {
		return []zap.Field{zap.String("request_id", id)}
	}
	return nil
}
