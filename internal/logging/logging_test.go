package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger_EmitsOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "test")

	logger.Info("analysis complete", F("url", "https://example.com/"), F("score", 87))
	logger.Warn("source degraded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if first["level"] != "info" || first["msg"] != "analysis complete" || first["component"] != "test" {
		t.Errorf("unexpected entry: %v", first)
	}
	fields, ok := first["fields"].(map[string]any)
	if !ok {
		t.Fatalf("missing fields object: %v", first)
	}
	if fields["url"] != "https://example.com/" {
		t.Errorf("unexpected url field: %v", fields["url"])
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not JSON: %v", err)
	}
	if second["level"] != "warn" {
		t.Errorf("unexpected level: %v", second["level"])
	}
	if _, present := second["fields"]; present {
		t.Errorf("fields should be omitted when empty: %v", second)
	}
}

func TestJSONLogger_WithChangesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "server")

	logger.With("pipeline").Error("extraction failed")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["component"] != "pipeline" {
		t.Errorf("expected child component, got %v", entry["component"])
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	var logger Logger = Nop{}
	logger.Info("nothing")
	logger.With("x").Error("still nothing")
}
