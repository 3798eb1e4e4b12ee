package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Level
	}{
		{"debug", "debug", LevelDebug},
		{"info", "info", LevelInfo},
		{"warn", "warn", LevelWarn},
		{"error", "error", LevelError},
		{"DEBUG uppercase", "DEBUG", LevelDebug},
		{"unknown defaults to info", "verbose", LevelInfo},
		{"empty defaults to info", "", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	output := &bytes.Buffer{}
	logger := New(LevelWarn, output)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	got := output.String()
	if strings.Contains(got, "debug message") {
		t.Error("debug message should be filtered at warn level")
	}
	if strings.Contains(got, "info message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(got, "[WARN] warn message") {
		t.Errorf("warn message missing from output: %q", got)
	}
	if !strings.Contains(got, "[ERROR] error message") {
		t.Errorf("error message missing from output: %q", got)
	}
}

func TestLogger_Formatting(t *testing.T) {
	output := &bytes.Buffer{}
	logger := New(LevelDebug, output)

	logger.Info("loaded %d items from %s", 3, "gallery.json")

	if !strings.Contains(output.String(), "[INFO] loaded 3 items from gallery.json") {
		t.Errorf("unexpected output: %q", output.String())
	}
}

func TestNewFromString(t *testing.T) {
	output := &bytes.Buffer{}
	logger := NewFromString("error", output)

	if logger.Level() != LevelError {
		t.Errorf("Level() = %v, want %v", logger.Level(), LevelError)
	}
}
