package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sarsim/internal/telemetry"
)

func TestFileWriter_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.jsonl")
	eventPath := filepath.Join(dir, "events.jsonl")

	fw, err := NewFileWriter(statePath, eventPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	rows := []telemetry.DroneStateRow{
		{DroneID: "DRN-1", SectorID: "SEC-1", X: 1, Y: 2, Timestamp: time.Now()},
		{DroneID: "DRN-2", SectorID: "SEC-1", X: 3, Y: 4, Timestamp: time.Now()},
	}
	if err := fw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := fw.WriteEvent(telemetry.DetectionEventRow{Kind: telemetry.EventDetected, AnomalyID: "ANM-001"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := countJSONLines(t, statePath); got != 2 {
		t.Errorf("state file has %d lines, want 2", got)
	}
	if got := countJSONLines(t, eventPath); got != 1 {
		t.Errorf("event file has %d lines, want 1", got)
	}
}

func TestFileWriter_EventLogOptional(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(filepath.Join(dir, "state.jsonl"), "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()

	// Must be a no-op, not a panic.
	if err := fw.WriteEvent(telemetry.DetectionEventRow{Kind: telemetry.EventDetected}); err != nil {
		t.Fatalf("WriteEvent without event file: %v", err)
	}
}

func countJSONLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var v map[string]any
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			t.Fatalf("line %d is not JSON: %v", n+1, err)
		}
		n++
	}
	return n
}
