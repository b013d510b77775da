package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"default text logger", Config{Level: LogLevelNormal, Format: "text"}},
		{"json logger", Config{Level: LogLevelNormal, Format: "json"}},
		{"quiet logger", Config{Level: LogLevelQuiet}},
		{"verbose logger", Config{Level: LogLevelVerbose}},
		{"debug logger", Config{Level: LogLevelDebug}},
		{"caller reporting", Config{Level: LogLevelNormal, ShowCaller: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("NewLogger() returned nil logger")
			}
		})
	}
}

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger()
	if logger == nil {
		t.Fatal("NewDefaultLogger() returned nil")
	}
	if logger.GetLevel() != LogLevelNormal {
		t.Errorf("Expected level %v, got %v", LogLevelNormal, logger.GetLevel())
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: LogLevelQuiet, Output: &buf})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("should not appear")
	logger.Error("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Error("Quiet logger emitted info output")
	}
	if !strings.Contains(output, "should appear") {
		t.Error("Quiet logger suppressed error output")
	}
}

func TestLoggerFileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "wp-backup.log")

	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: LogLevelNormal, Output: &buf, LogFile: logFile})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("written to both")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to both") {
		t.Error("log file missing message")
	}
	if !strings.Contains(buf.String(), "written to both") {
		t.Error("writer output missing message")
	}
}

func TestLoggerFileOutputInvalidPath(t *testing.T) {
	_, err := NewLogger(Config{Level: LogLevelNormal, LogFile: "/nonexistent-dir/nope/wp.log"})
	if err == nil {
		t.Error("Expected error for unwritable log file path")
	}
}

func TestLogDialectResolution(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(Config{Level: LogLevelNormal, Output: &buf, Format: "json"})

	logger.LogDialectResolution("mysql", "default", true)

	output := buf.String()
	if !strings.Contains(output, `"confidence":"low"`) {
		t.Errorf("Expected low-confidence marker in output, got %s", output)
	}
	if !strings.Contains(output, "warning") {
		t.Errorf("Expected warning level for defaulted dialect, got %s", output)
	}
}

func TestLogDumpExecution(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(Config{Level: LogLevelNormal, Output: &buf, Format: "json"})

	logger.LogDumpExecution("wordpress", true, 2048, 3*time.Second, nil)
	if !strings.Contains(buf.String(), `"size_bytes":2048`) {
		t.Errorf("Expected dump size in output, got %s", buf.String())
	}

	buf.Reset()
	logger.LogDumpExecution("wordpress", false, 0, time.Second, errors.New("exit status 2"))
	if !strings.Contains(buf.String(), "Database dump failed") {
		t.Errorf("Expected failure message, got %s", buf.String())
	}
	if strings.Contains(buf.String(), "size_bytes") {
		t.Error("Failed dump should not report a size")
	}
}

func TestLogEnvironmentDetection(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(Config{Level: LogLevelNormal, Output: &buf, Format: "json"})

	logger.LogEnvironmentDetection("/srv/site", true, "/srv", 5*time.Millisecond)

	output := buf.String()
	if !strings.Contains(output, `"containerized":true`) {
		t.Errorf("Expected containerized field, got %s", output)
	}
	if !strings.Contains(output, `"compose_dir":"/srv"`) {
		t.Errorf("Expected compose_dir field, got %s", output)
	}
}
