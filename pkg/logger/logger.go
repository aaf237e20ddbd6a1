package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger writing human readable output to the console or,
// when logFile is not empty, JSON lines to logs/<logFile> instead. The chat
// TUI owns the terminal so it always logs to a file.
func New(level string, logFile string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if logFile != "" {
		if err := os.MkdirAll("logs", 0o755); err != nil {
			return nil, fmt.Errorf("creating logs directory: %w", err)
		}
		cfg.Encoding = "json"
		cfg.OutputPaths = []string{filepath.Join("logs", logFile)}
		cfg.ErrorOutputPaths = []string{filepath.Join("logs", logFile)}
	}

	return cfg.Build()
}
