// Scenario model: the sector, its conditions, and the anomalies drones hunt.
package scenario

import (
	"time"

	"sarsim/internal/geo"
)

// ScenarioVersion is the only payload version ValidateScenario accepts.
const ScenarioVersion = 1

// AnomalyType classifies a detectable point of interest.
type AnomalyType string

const (
	AnomalyPersonInWater AnomalyType = "person-in-water"
	AnomalyLifeboat      AnomalyType = "lifeboat"
	AnomalyDebrisField   AnomalyType = "debris-field"
	AnomalyFalsePositive AnomalyType = "false-positive"
)

// AnomalyTypes lists all types in the canonical generation order.
var AnomalyTypes = []AnomalyType{
	AnomalyPersonInWater,
	AnomalyLifeboat,
	AnomalyDebrisField,
	AnomalyFalsePositive,
}

// Conditions holds the environmental state sampled at generation time.
type Conditions struct {
	SeaState     int     `json:"seaState"`
	WindKts      float64 `json:"windKts"`
	VisibilityKm float64 `json:"visibilityKm"`
	SurfaceTempC float64 `json:"surfaceTempC"`
	Description  string  `json:"description,omitempty"`
}

// RGB is an 8-bit color triple used by the water texture.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// WaterSettings tunes the procedural water texture. Rendering-only: none of
// these values feed back into simulation behavior.
type WaterSettings struct {
	TileSizePx      int     `json:"tileSizePx"`
	NoiseScale      float64 `json:"noiseScale"`
	DetailScale     float64 `json:"detailScale"`
	ColorDeep       RGB     `json:"colorDeep"`
	ColorShallow    RGB     `json:"colorShallow"`
	TextureStrength float64 `json:"textureStrength"`
}

// Sector is the rectangular playing field for one scenario.
type Sector struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Seed       string           `json:"seed"`
	Bounds     geo.SectorBounds `json:"bounds"`
	Conditions Conditions       `json:"conditions"`
	Water      WaterSettings    `json:"water"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// AnomalyTypeConfig controls generation for one anomaly type.
type AnomalyTypeConfig struct {
	Count                 int     `json:"count"`
	DetectionRadiusMeters float64 `json:"detectionRadiusMeters"`
}

// AnomalyConfig maps each type to its generation parameters.
type AnomalyConfig map[AnomalyType]AnomalyTypeConfig

// Anomaly is a single detectable instance placed in the sector. Only the
// Detected flag mutates after creation; false positives are additionally
// synthesized at runtime by the detection loop.
type Anomaly struct {
	ID                    string      `json:"id"`
	Type                  AnomalyType `json:"type"`
	Position              geo.Vec2    `json:"position"`
	Detected              bool        `json:"detected"`
	DetectionRadiusMeters float64     `json:"detectionRadiusMeters"`
	Note                  string      `json:"note,omitempty"`
}

// AnomalySet couples the generation config with the generated items.
type AnomalySet struct {
	Config AnomalyConfig `json:"config"`
	Items  []Anomaly     `json:"items"`
}

// Scenario is the versioned, copy-on-write snapshot the simulator runs on.
// Mutations replace the Items slice (or the whole snapshot), never nested
// values in place.
type Scenario struct {
	Version   int               `json:"version"`
	Name      string            `json:"name"`
	Seed      string            `json:"seed"`
	Sector    Sector            `json:"sector"`
	Anomalies AnomalySet        `json:"anomalies"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// WithItems returns a copy of the scenario with Items replaced. This is the
// only sanctioned way for runtime code to alter the anomaly list.
func (s *Scenario) WithItems(items []Anomaly) *Scenario {
	next := *s
	next.Anomalies.Items = items
	return &next
}

// TotalCount returns the number of items the config implies.
func (c AnomalyConfig) TotalCount() int {
	total := 0
	for _, tc := range c {
		if tc.Count > 0 {
			total += tc.Count
		}
	}
	return total
}

// DefaultAnomalyConfig returns the built-in per-type generation table.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		AnomalyPersonInWater: {Count: 3, DetectionRadiusMeters: 120},
		AnomalyLifeboat:      {Count: 1, DetectionRadiusMeters: 200},
		AnomalyDebrisField:   {Count: 2, DetectionRadiusMeters: 250},
		AnomalyFalsePositive: {Count: 1, DetectionRadiusMeters: 100},
	}
}
