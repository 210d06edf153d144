package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sarsim/internal/config"
	"sarsim/internal/scenario"
	"sarsim/internal/sim"
	"sarsim/internal/telemetry"
)

func testScenario(t *testing.T) *scenario.Scenario {
	t.Helper()
	return scenario.Generate("CMD-SEED", scenario.KmBounds{Width: 2, Height: 2})
}

func TestNewWritersPrintOnly(t *testing.T) {
	sw, ew, cleanup, err := newWriters(testScenario(t), true, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := sw.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", sw)
	}
	if _, ok := ew.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", ew)
	}
}

func TestNewWritersInteractive(t *testing.T) {
	sw, _, cleanup, err := newWriters(testScenario(t), true, true, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := sw.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", sw)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	sw, _, cleanup, err := newWriters(testScenario(t), false, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := sw.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", sw)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.log")
	sw, ew, cleanup, err := newWriters(testScenario(t), true, false, path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := sw.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", sw)
	}
	row := telemetry.DroneStateRow{SectorID: "s1", DroneID: "d1", Timestamp: time.Now()}
	if err := sw.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := ew.WriteEvent(telemetry.DetectionEventRow{SectorID: "s1", Kind: telemetry.EventDetected, Timestamp: time.Now()}); err != nil {
		t.Fatalf("write event failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected log file to be non-empty")
	}
	eventInfo, err := os.Stat(path + ".events")
	if err != nil {
		t.Fatalf("stat events failed: %v", err)
	}
	if eventInfo.Size() == 0 {
		t.Fatalf("expected event file to be non-empty")
	}
}

func TestBuildScenarioUsesPresetAndName(t *testing.T) {
	cfg := &config.SimulationConfig{
		Scenario: config.ScenarioSettings{
			Seed:     "CMD-SEED",
			WidthKm:  2,
			HeightKm: 2,
			Preset:   "clustered",
			Name:     "Exercise North",
		},
	}
	scn := buildScenario(cfg)
	if scn.Name != "Exercise North" {
		t.Errorf("name = %q", scn.Name)
	}
	again := buildScenario(cfg)
	if scn.Seed != again.Seed || len(scn.Anomalies.Items) != len(again.Anomalies.Items) {
		t.Error("expected deterministic regeneration")
	}
}
