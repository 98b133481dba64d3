package utils

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "verbose", Encoding: "json", ServiceName: "test"})
	if err != nil {
		t.Fatalf("unexpected error building logger: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level to be enabled")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be disabled for unknown level")
	}
	if zap.L() != logger {
		t.Fatalf("expected logger to be installed as zap global")
	}
}

func TestNewLoggerHonoursDebugLevel(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "DEBUG"})
	if err != nil {
		t.Fatalf("unexpected error building logger: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}
