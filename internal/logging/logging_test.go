package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.FatalLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogLevel(%q) error = %v, wantErr %t", tt.input, err, tt.wantErr)
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestInitializeLogger(t *testing.T) {
	previous := L
	defer func() { L = previous }()

	if err := InitializeLogger("debug", "console"); err != nil {
		t.Fatalf("InitializeLogger returned error: %v", err)
	}
	if !L.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("debug level should be enabled")
	}

	if err := InitializeLogger("warn", "json"); err != nil {
		t.Fatalf("InitializeLogger returned error: %v", err)
	}
	if L.Core().Enabled(zapcore.InfoLevel) {
		t.Errorf("info level should be disabled at warn")
	}

	if err := InitializeLogger("loud", "json"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
	if err := InitializeLogger("info", "xml"); err == nil {
		t.Errorf("expected an error for an unknown format")
	}
}

func TestConfigFor(t *testing.T) {
	tests := []struct {
		format   string
		encoding string
		wantErr  bool
	}{
		{"json", "json", false},
		{"", "json", false},
		{"Console", "console", false},
		{"logfmt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config, err := configFor(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("configFor(%q) error = %v, wantErr %t", tt.format, err, tt.wantErr)
			}
			if config.Encoding != tt.encoding {
				t.Errorf("configFor(%q).Encoding = %q, want %q", tt.format, config.Encoding, tt.encoding)
			}
		})
	}
}
