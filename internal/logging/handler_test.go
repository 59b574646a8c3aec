package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: FormatAuto, Output: &buf})

	logger.Info("backend connection error", "status", 503)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "backend connection error" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["status"] != float64(503) {
		t.Errorf("status = %v", entry["status"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: FormatText, Output: &buf})

	logger.Info("starting server", "address", ":8000")

	out := buf.String()
	if !strings.Contains(out, "starting server") || !strings.Contains(out, "address=:8000") {
		t.Errorf("unexpected text output: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("expected no ANSI colors for a non-terminal writer, got %q", out)
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Format: FormatJSON, Output: &buf})

	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info/debug to be filtered, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be logged, got %q", buf.String())
	}
}
