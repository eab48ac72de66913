package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{
			name:   "default config",
			config: nil,
			want:   "text",
		},
		{
			name: "json format",
			config: &Config{
				Level:  LevelInfo,
				Format: "json",
				Output: &bytes.Buffer{},
			},
			want: "json",
		},
		{
			name: "text format",
			config: &Config{
				Level:  LevelDebug,
				Format: "text",
				Output: &bytes.Buffer{},
			},
			want: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)
			if logger == nil {
				t.Error("NewLogger() returned nil")
			}
			if logger.format != tt.want {
				t.Errorf("format = %s, want %s", logger.format, tt.want)
			}
		})
	}
}

func TestLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{
		Level:   LevelDebug,
		Format:  "text",
		Output:  &buf,
		Sync:    true,
		NoColor: true,
	}

	logger := NewLogger(config)

	deviceLogger := logger.WithDevice(2)
	deviceLogger.Info("registered")

	output := buf.String()
	if !strings.Contains(output, "device_id=2") {
		t.Errorf("Expected device_id=2 in output, got: %s", output)
	}

	buf.Reset()
	cycleLogger := deviceLogger.WithCycle(4096)
	cycleLogger.Info("deadlock check")

	output = buf.String()
	if !strings.Contains(output, "device_id=2") {
		t.Errorf("Expected device_id=2 in cycle logger output, got: %s", output)
	}
	if !strings.Contains(output, "cycle=4096") {
		t.Errorf("Expected cycle=4096 in output, got: %s", output)
	}
}

func TestLoggerWithCommit(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{
		Level:   LevelDebug,
		Format:  "text",
		Output:  &buf,
		Sync:    true,
		NoColor: true,
	}

	logger := NewLogger(config)
	commitLogger := logger.WithCommit(123, "normal")
	commitLogger.Debug("gpr match")

	output := buf.String()
	if !strings.Contains(output, "commit_seq=123") {
		t.Errorf("Expected commit_seq=123 in output, got: %s", output)
	}
	if !strings.Contains(output, "commit_kind=normal") {
		t.Errorf("Expected commit_kind=normal in output, got: %s", output)
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{
		Level:   LevelDebug,
		Format:  "text",
		Output:  &buf,
		Sync:    true,
		NoColor: true,
	}

	logger := NewLogger(config)
	testErr := errors.New("gpr x10 mismatch")
	errorLogger := logger.WithError(testErr)
	errorLogger.Error("divergence")

	output := buf.String()
	if !strings.Contains(output, "gpr x10 mismatch") {
		t.Errorf("Expected error text in output, got: %s", output)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Format: "text", Output: &buf, NoColor: true})

	logger.Debug("dropped")
	logger.Info("also dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output below configured level, got: %s", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected warn message, got: %s", buf.String())
	}
}

func TestLoggerCriticalAboveError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelCritical, Format: "text", Output: &buf, NoColor: true})

	logger.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected error below critical to be dropped, got: %s", buf.String())
	}

	logger.Critical("run aborted: deadlock")
	if !strings.Contains(buf.String(), "CRITICAL") {
		t.Errorf("expected CRITICAL level tag, got: %s", buf.String())
	}
}

func TestNewNamedAttachesSink(t *testing.T) {
	var buf bytes.Buffer
	logger := NewNamed("diff_trace", &Config{Level: LevelInfo, Format: "text", Output: &buf, NoColor: true})
	logger.Info("commit checked")

	if !strings.Contains(buf.String(), "sink=diff_trace") {
		t.Errorf("Expected sink=diff_trace in output, got: %s", buf.String())
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{
		Level:   LevelDebug,
		Format:  "text",
		Output:  &buf,
		Sync:    true,
		NoColor: true,
	}

	SetDefault(NewLogger(config))
	defer SetDefault(NewLogger(nil))

	Debug("debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("Expected debug message, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected key=value, got: %s", output)
	}

	buf.Reset()
	Info("info message")
	output = buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message, got: %s", output)
	}

	buf.Reset()
	Warn("warning message")
	output = buf.String()
	if !strings.Contains(output, "warning message") {
		t.Errorf("Expected warning message, got: %s", output)
	}

	buf.Reset()
	Error("error message")
	output = buf.String()
	if !strings.Contains(output, "error message") {
		t.Errorf("Expected error message, got: %s", output)
	}

	buf.Reset()
	Critical("critical message")
	output = buf.String()
	if !strings.Contains(output, "critical message") {
		t.Errorf("Expected critical message, got: %s", output)
	}
}
