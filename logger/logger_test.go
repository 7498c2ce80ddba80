package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/worshipkit/stemdeck/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want zapcore.Level
		err  bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"loud", 0, true},
	} {
		got, err := logger.ParseLevel(tc.in)
		if (err != nil) != tc.err {
			t.Errorf("ParseLevel(%q) error = %v, want error %v", tc.in, err, tc.err)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stemdeck.log")
	log, err := logger.New(logger.Config{Level: "info", OutputPath: path, MaxSize: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug("hidden")
	log.Info("track loaded", zap.String("locator", "bass.wav"))
	log.Sync()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), b)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["msg"] != "track loaded" || entry["locator"] != "bass.wav" || entry["level"] != "info" {
		t.Errorf("unexpected log entry %v", entry)
	}
}

func TestNoOutputs(t *testing.T) {
	log, err := logger.New(logger.Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Errorf("logger without outputs is enabled")
	}
}
