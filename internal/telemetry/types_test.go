package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"sarsim/internal/geo"
)

func TestDroneStateRowFieldNames(t *testing.T) {
	row := DroneStateRow{
		SectorID:   "SEC-1",
		DroneID:    "DRN-1",
		X:          12.5,
		Y:          -3.25,
		HeadingDeg: 180,
		Status:     "search",
		Timestamp:  time.Unix(0, 0).UTC(),
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"sector_id", "drone_id", "x", "y", "heading_deg", "speed_kts", "battery_pct", "status", "return_min", "ts"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing column key %q", key)
		}
	}
}

func TestDetectionEventRowOmitsEmpty(t *testing.T) {
	row := DetectionEventRow{
		SectorID:  "SEC-1",
		Kind:      EventBatteryWarning,
		DroneID:   "DRN-1",
		Position:  geo.Vec2{X: 1, Y: 2},
		Message:   "battery at 50%",
		Timestamp: time.Unix(0, 0).UTC(),
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["anomaly_id"]; ok {
		t.Error("empty anomaly_id should be omitted")
	}
	if _, ok := m["confidence"]; ok {
		t.Error("zero confidence should be omitted")
	}
	if m["kind"] != EventBatteryWarning {
		t.Errorf("kind = %v", m["kind"])
	}
}

func TestTableNames(t *testing.T) {
	if StateTableName == "" || EventTableName == "" {
		t.Fatal("table names must have defaults")
	}
	if got := (DroneStateRow{}).TableName(); got != StateTableName {
		t.Errorf("state table = %s", got)
	}
	if got := (DetectionEventRow{}).TableName(); got != EventTableName {
		t.Errorf("event table = %s", got)
	}
}
