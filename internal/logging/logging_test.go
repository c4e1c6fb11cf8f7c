package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTraceWritesJSONWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trace.log")
	Configure(path)
	t.Cleanup(func() {
		Configure("")
		SetTraceEnabled(false)
	})

	Trace("ignored", nil)
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected no log file while tracing is disabled")
	}

	SetTraceEnabled(true)
	Trace("fetch.queue", map[string]interface{}{"owner": "octocat"})
	Error(errors.New("boom"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d:\n%s", len(lines), data)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON entry, got %q: %v", lines[0], err)
	}
	if entry["event"] != "fetch.queue" {
		t.Fatalf("expected event field, got %v", entry["event"])
	}
	if !strings.Contains(lines[1], "boom") {
		t.Fatalf("expected error entry, got %q", lines[1])
	}
}

func TestConfigureEmptyFallsBackToDefault(t *testing.T) {
	Configure("")
	if got := Path(); got != defaultLogFile {
		t.Fatalf("expected %q, got %q", defaultLogFile, got)
	}
}
