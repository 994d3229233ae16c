package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return logEntry
}

func TestNewDispatcherLogger(t *testing.T) {
	dl := NewDispatcherLogger(zerolog.New(&bytes.Buffer{}))

	if dl == nil {
		t.Fatal("expected non-nil DispatcherLogger")
	}
}

func TestDispatcherLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	dl.Debug("test message", "command", ":PLAY:", "queueSize", 42)

	logEntry := decodeEntry(t, &buf)
	if logEntry["level"] != "debug" {
		t.Errorf("expected level 'debug', got %v", logEntry["level"])
	}
	if logEntry["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", logEntry["message"])
	}
	if logEntry["command"] != ":PLAY:" {
		t.Errorf("expected command=':PLAY:', got %v", logEntry["command"])
	}
	if logEntry["queueSize"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected queueSize=42, got %v", logEntry["queueSize"])
	}
}

func TestDispatcherLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	dl.Info("info message", "status", "ok")

	logEntry := decodeEntry(t, &buf)
	if logEntry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", logEntry["level"])
	}
	if logEntry["status"] != "ok" {
		t.Errorf("expected status='ok', got %v", logEntry["status"])
	}
}

func TestDispatcherLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	dl.Info("filtered")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	dl.Error("error occurred", "code", "NotPlayersTurn", "dangling")

	logEntry := decodeEntry(t, &buf)
	if logEntry["level"] != "error" {
		t.Errorf("expected level 'error', got %v", logEntry["level"])
	}
	if logEntry["code"] != "NotPlayersTurn" {
		t.Errorf("expected code='NotPlayersTurn', got %v", logEntry["code"])
	}
	if _, ok := logEntry["dangling"]; ok {
		t.Error("key without value should be dropped")
	}
}

func TestDispatcherLogger_NonStringKeysSkipped(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Warn("odd pairs", 1, "a", "b", 2)

	logEntry := decodeEntry(t, &buf)
	if logEntry["level"] != "warn" {
		t.Errorf("expected level 'warn', got %v", logEntry["level"])
	}
	if logEntry["b"] != float64(2) {
		t.Errorf("expected b=2, got %v", logEntry["b"])
	}
	if len(logEntry) != 3 {
		t.Errorf("unexpected fields: %v", logEntry)
	}
}

func TestDispatcherLogger_ErrorValues(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Error("handler failed", "error", errors.New("zone not found"))

	logEntry := decodeEntry(t, &buf)
	if logEntry["error"] != "zone not found" {
		t.Errorf("expected error message, got %v", logEntry["error"])
	}
}
