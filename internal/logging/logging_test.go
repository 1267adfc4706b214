package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{" WARN ", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.InfoLevel, true},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "panel.log")

	logger, flush, err := New(Options{Level: "info", File: path, Name: "panel"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Warn("status check failed", zap.String("mode", "party"))
	flush()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want only the warning", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["level"] != "warn" || entry["msg"] != "status check failed" || entry["logger"] != "panel" || entry["mode"] != "party" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry["ts"].(string); !ok {
		t.Fatalf("ts = %v, want ISO8601 string", entry["ts"])
	}
}

func TestNew_RejectsBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatalf("New accepted bad level")
	}
}
