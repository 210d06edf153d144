package scenario

import (
	"encoding/json"
	"fmt"
	"time"

	"sarsim/internal/geo"
)

// Payload shapes with pointer fields so missing keys are distinguishable
// from zero values.
type scenarioPayload struct {
	Version   *int               `json:"version"`
	Name      string             `json:"name"`
	Seed      string             `json:"seed"`
	Sector    *sectorPayload     `json:"sector"`
	Anomalies *anomalySetPayload `json:"anomalies"`
	Metadata  map[string]string  `json:"metadata"`
}

type sectorPayload struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Seed       string            `json:"seed"`
	Bounds     *geo.SectorBounds `json:"bounds"`
	Conditions *Conditions       `json:"conditions"`
	Water      *WaterSettings    `json:"water"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type anomalySetPayload struct {
	Config AnomalyConfig `json:"config"`
	Items  []Anomaly     `json:"items"`
}

// ValidateScenario is the required entry point for externally supplied
// scenario JSON. It fails fast on a wrong version or a missing seed, sector,
// bounds, or conditions; everything else is recovered with defaults. When the
// item list does not match the count implied by the validated config, the
// anomaly list is regenerated deterministically from the seed instead of
// trusting the payload.
func ValidateScenario(raw []byte) (*Scenario, error) {
	var p scenarioPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("scenario payload is not valid JSON: %w", err)
	}
	if p.Version == nil {
		return nil, fmt.Errorf("scenario payload is missing a version")
	}
	if *p.Version != ScenarioVersion {
		return nil, fmt.Errorf("unsupported scenario version %d (want %d)", *p.Version, ScenarioVersion)
	}
	if p.Seed == "" {
		return nil, fmt.Errorf("scenario payload is missing a seed")
	}
	if p.Sector == nil {
		return nil, fmt.Errorf("scenario payload is missing a sector")
	}
	if p.Sector.Bounds == nil {
		return nil, fmt.Errorf("scenario sector is missing bounds")
	}
	if p.Sector.Bounds.WidthMeters <= 0 || p.Sector.Bounds.HeightMeters <= 0 {
		return nil, fmt.Errorf("scenario sector bounds must be positive, got %.1fx%.1f",
			p.Sector.Bounds.WidthMeters, p.Sector.Bounds.HeightMeters)
	}
	if p.Sector.Conditions == nil {
		return nil, fmt.Errorf("scenario sector is missing environmental conditions")
	}

	bounds := *p.Sector.Bounds
	cond := *p.Sector.Conditions
	cond.SeaState = clampInt(cond.SeaState, 0, 9)

	water := defaultWaterSettings()
	if p.Sector.Water != nil {
		water = *p.Sector.Water
		if water.TileSizePx <= 0 {
			water.TileSizePx = defaultWaterSettings().TileSizePx
		}
	}

	name := p.Name
	if name == "" {
		name = fmt.Sprintf("Sector %s", p.Seed)
	}
	sectorName := p.Sector.Name
	if sectorName == "" {
		sectorName = name
	}
	sectorID := p.Sector.ID
	if sectorID == "" {
		sectorID = fmt.Sprintf("SEC-%08X", uint32(hashSeed(p.Seed)))
	}
	sectorSeed := p.Sector.Seed
	if sectorSeed == "" {
		sectorSeed = p.Seed
	}

	var cfg AnomalyConfig
	var items []Anomaly
	if p.Anomalies != nil {
		cfg = normalizeAnomalyConfig(p.Anomalies.Config)
		items = p.Anomalies.Items
	} else {
		cfg = normalizeAnomalyConfig(nil)
	}

	if len(items) != cfg.TotalCount() {
		// Mismatched or absent item list: regenerate deterministically rather
		// than trust a possibly corrupted payload.
		items = generateAnomalies(p.Seed, bounds, cfg)
	} else {
		items = sanitizeItems(items, bounds, cfg)
	}

	return &Scenario{
		Version: ScenarioVersion,
		Name:    name,
		Seed:    p.Seed,
		Sector: Sector{
			ID:         sectorID,
			Name:       sectorName,
			Seed:       sectorSeed,
			Bounds:     bounds,
			Conditions: cond,
			Water:      water,
			CreatedAt:  p.Sector.CreatedAt,
		},
		Anomalies: AnomalySet{Config: cfg, Items: items},
		Metadata:  p.Metadata,
	}, nil
}

// sanitizeItems clamps positions into bounds and repairs per-item detection
// radii from the config table.
func sanitizeItems(items []Anomaly, bounds geo.SectorBounds, cfg AnomalyConfig) []Anomaly {
	out := make([]Anomaly, len(items))
	for i, it := range items {
		it.Position = bounds.Clamp(it.Position)
		if it.DetectionRadiusMeters < MinDetectionRadiusMeters {
			if tc, ok := cfg[it.Type]; ok && tc.DetectionRadiusMeters >= MinDetectionRadiusMeters {
				it.DetectionRadiusMeters = tc.DetectionRadiusMeters
			} else {
				it.DetectionRadiusMeters = MinDetectionRadiusMeters
			}
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("ANM-%03d", i+1)
		}
		out[i] = it
	}
	return out
}

func defaultWaterSettings() WaterSettings {
	return WaterSettings{
		TileSizePx:      256,
		NoiseScale:      1.2,
		DetailScale:     3.5,
		ColorDeep:       RGB{R: 10, G: 46, B: 88},
		ColorShallow:    RGB{R: 38, G: 112, B: 142},
		TextureStrength: 0.4,
	}
}
