package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "edubot"

var (
	mu     sync.RWMutex
	global *zap.Logger
)

// Init installs the process-wide logger. Calls after the first successful
// one are ignored. An empty level means info.
func Init(level string) error {
	if strings.TrimSpace(level) != "" {
		if _, err := zapcore.ParseLevel(strings.TrimSpace(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = New(level)
	}
	return nil
}

// Get returns the process-wide logger, building one from LOG_LEVEL when Init
// was never called.
func Get() *zap.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}
	if err := Init(os.Getenv("LOG_LEVEL")); err != nil {
		return zap.NewNop()
	}
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if global != nil {
		_ = global.Sync()
	}
}

// New builds a JSON logger writing to stdout. Unknown or empty levels mean
// info.
func New(level string) *zap.Logger {
	return NewWithSink(level, zapcore.Lock(os.Stdout))
}

// NewWithSink is New with an explicit destination.
func NewWithSink(level string, sink zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, parseLevel(level))
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
		zap.Fields(zap.String("service", serviceName)),
	)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
