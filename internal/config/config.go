// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DroneModelSpec declares one catalog entry in the config file.
type DroneModelSpec struct {
	ID                 string  `yaml:"id"`
	Label              string  `yaml:"label"`
	SpeedKts           float64 `yaml:"speed_kts"`
	BatteryLifeMinutes float64 `yaml:"battery_life_minutes"`
}

// FleetSpec spawns an initial group of drones of one model at the hub.
type FleetSpec struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
	Count int    `yaml:"count"`
}

// ScenarioSettings seeds the generated sector.
type ScenarioSettings struct {
	Seed     string  `yaml:"seed"`
	Name     string  `yaml:"name"`
	WidthKm  float64 `yaml:"width_km"`
	HeightKm float64 `yaml:"height_km"`
	Preset   string  `yaml:"preset"`
}

// SensorSettings tunes the detection loop. Zero values fall back to the
// built-in defaults.
type SensorSettings struct {
	RangeMeters                 float64 `yaml:"range_meters"`
	OptimalDetectionProbability float64 `yaml:"optimal_detection_probability"`
	EdgeDetectionProbability    float64 `yaml:"edge_detection_probability"`
	FalsePositiveRatePerMinute  float64 `yaml:"false_positive_rate_per_minute"`
	CheckIntervalMs             int     `yaml:"check_interval_ms"`
	LogLimit                    int     `yaml:"log_limit"`
}

// CoverageSettings are the default sweep parameters for StartCoverage.
type CoverageSettings struct {
	SpacingMeters float64 `yaml:"spacing_meters"`
	OverlapRatio  float64 `yaml:"overlap_ratio"`
}

// SimulationConfig is the root configuration for the simulator.
type SimulationConfig struct {
	Scenario ScenarioSettings `yaml:"scenario"`
	Models   []DroneModelSpec `yaml:"models"`
	Fleet    []FleetSpec      `yaml:"fleet"`
	Sensor   SensorSettings   `yaml:"sensor"`
	Coverage CoverageSettings `yaml:"coverage"`
	TickMs   int              `yaml:"tick_ms"`
}

// TickInterval returns the kinematics tick period, defaulting to 100ms.
func (c *SimulationConfig) TickInterval() time.Duration {
	if c.TickMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.TickMs) * time.Millisecond
}

// Default returns a runnable configuration without any file on disk.
func Default() *SimulationConfig {
	return &SimulationConfig{
		Scenario: ScenarioSettings{
			Seed:     "BEACON-SEA-001",
			WidthKm:  5,
			HeightKm: 5,
			Preset:   "basic",
		},
		Fleet: []FleetSpec{
			{Name: "alpha", Model: "vtol-scout", Count: 3},
		},
		Coverage: CoverageSettings{SpacingMeters: 250, OverlapRatio: 0.1},
	}
}

// Load loads YAML config and validates it against a CUE schema. An empty
// schema path skips schema validation.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return &cfg, nil
}
