package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
scenario:
  seed: TEST-SEED
  width_km: 2
  height_km: 3
  preset: basic

models:
  - id: vtol-scout
    label: Scout VTOL
    speed_kts: 35
    battery_life_minutes: 60

fleet:
  - name: alpha
    model: vtol-scout
    count: 2

sensor:
  range_meters: 500
  check_interval_ms: 500

coverage:
  spacing_meters: 200
  overlap_ratio: 0.2

tick_ms: 50
`

const sampleSchema = `
scenario: {
	seed:      string & !=""
	name?:     string
	width_km:  number & >0
	height_km: number & >0
	preset?:   "basic" | "distributed" | "clustered"
}

models?: [...{
	id:                   string & !=""
	label:                string
	speed_kts:            number & >0
	battery_life_minutes: number & >0
}]

fleet?: [...{
	name:  string & !=""
	model: string & !=""
	count: int & >=0
}]

sensor?: {
	range_meters?:      number & >0
	check_interval_ms?: int & >0
}

coverage?: {
	spacing_meters?: number & >0
	overlap_ratio?:  number & >=0 & <=0.9
}

tick_ms?: int & >0
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfgPath := writeTemp(t, "simulation.yaml", sampleYAML)
	schemaPath := writeTemp(t, "simulation.cue", sampleSchema)

	cfg, err := Load(cfgPath, schemaPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scenario.Seed != "TEST-SEED" {
		t.Errorf("seed = %q", cfg.Scenario.Seed)
	}
	if cfg.Scenario.WidthKm != 2 || cfg.Scenario.HeightKm != 3 {
		t.Errorf("bounds = %.1f x %.1f", cfg.Scenario.WidthKm, cfg.Scenario.HeightKm)
	}
	if len(cfg.Fleet) != 1 || cfg.Fleet[0].Count != 2 {
		t.Errorf("fleet = %+v", cfg.Fleet)
	}
	if cfg.Sensor.RangeMeters != 500 || cfg.Sensor.CheckIntervalMs != 500 {
		t.Errorf("sensor = %+v", cfg.Sensor)
	}
	if cfg.Coverage.SpacingMeters != 200 {
		t.Errorf("coverage spacing = %.1f", cfg.Coverage.SpacingMeters)
	}
	if got := cfg.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("tick interval = %v", got)
	}
}

func TestLoadSkipsSchemaWhenPathEmpty(t *testing.T) {
	cfgPath := writeTemp(t, "simulation.yaml", sampleYAML)
	if _, err := Load(cfgPath, ""); err != nil {
		t.Fatalf("Load without schema: %v", err)
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	bad := `
scenario:
  seed: ""
  width_km: -1
  height_km: 5
`
	cfgPath := writeTemp(t, "bad.yaml", bad)
	schemaPath := writeTemp(t, "simulation.cue", sampleSchema)

	if _, err := Load(cfgPath, schemaPath); err == nil {
		t.Fatal("expected schema validation to fail")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	cfgPath := writeTemp(t, "broken.yaml", "scenario: [unbalanced")
	if _, err := Load(cfgPath, ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTickIntervalDefault(t *testing.T) {
	cfg := &SimulationConfig{}
	if got := cfg.TickInterval(); got != 100*time.Millisecond {
		t.Errorf("default tick = %v", got)
	}
}

func TestDefaultIsRunnable(t *testing.T) {
	cfg := Default()
	if cfg.Scenario.Seed == "" {
		t.Error("default config needs a seed")
	}
	if len(cfg.Fleet) == 0 {
		t.Error("default config should spawn a fleet")
	}
	if cfg.Coverage.SpacingMeters <= 0 {
		t.Error("default coverage spacing must be positive")
	}
}
