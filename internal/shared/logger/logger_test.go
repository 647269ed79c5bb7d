package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New("betting-service", "prod", "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("betting-service", "local", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
