package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		level    string
		enabled  zapcore.Level
		disabled zapcore.Level
		checkOff bool
	}{
		{"production_defaults_to_info", "production", "", zapcore.InfoLevel, zapcore.DebugLevel, true},
		{"development_defaults_to_debug", "development", "", zapcore.DebugLevel, zapcore.DebugLevel, false},
		{"level_override", "production", "warn", zapcore.WarnLevel, zapcore.InfoLevel, true},
		{"invalid_level_ignored", "production", "loud", zapcore.InfoLevel, zapcore.DebugLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := build(tt.env, tt.level)
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("expected %s to be enabled", tt.enabled)
			}
			if tt.checkOff && l.Core().Enabled(tt.disabled) {
				t.Errorf("expected %s to be disabled", tt.disabled)
			}
		})
	}
}

func TestBuild_Test(t *testing.T) {
	if build("test", "debug").Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected test logger to discard everything")
	}
}

func TestGet(t *testing.T) {
	if Get() == nil {
		t.Fatal("expected a logger")
	}
}
