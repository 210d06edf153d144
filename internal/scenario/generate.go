package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"sarsim/internal/geo"
)

const (
	// MinSectorMeters floors each sector dimension.
	MinSectorMeters = 100
	// DefaultHubRadiusMeters is the anomaly exclusion zone around the hub.
	DefaultHubRadiusMeters = 400
	// placementAttempts bounds rejection sampling before the edge fallback.
	placementAttempts = 32
	// hubFallbackMargin pushes the fallback placement just past the hub edge.
	hubFallbackMargin = 5
	// MinDetectionRadiusMeters floors per-type detection radii.
	MinDetectionRadiusMeters = 10
)

// conditionPhrases is the fixed descriptor list sampled by Generate. Order
// matters: changing it changes every seeded scenario.
var conditionPhrases = []string{
	"calm seas, light chop near the shipping lane",
	"moderate swell with scattered whitecaps",
	"long rolling swell, haze on the horizon",
	"short steep waves, spray reducing visibility",
	"glassy water with patchy morning fog",
	"confused seas following an overnight squall",
}

// KmBounds is the operator-facing sector size request.
type KmBounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Option adjusts scenario generation without widening the Generate signature.
type Option func(*genParams)

type genParams struct {
	origin    *geo.Vec2
	name      string
	notes     string
	config    AnomalyConfig
	createdAt time.Time
}

// WithOrigin pins the sector's south-west corner instead of centering the
// rectangle on the world origin.
func WithOrigin(origin geo.Vec2) Option {
	return func(p *genParams) { p.origin = &origin }
}

// WithName overrides the generated scenario name.
func WithName(name string) Option {
	return func(p *genParams) { p.name = name }
}

// WithNotes attaches free-form operator notes to the scenario metadata.
func WithNotes(notes string) Option {
	return func(p *genParams) { p.notes = notes }
}

// WithAnomalyConfig overrides the built-in anomaly table. Missing types are
// still filled from defaults.
func WithAnomalyConfig(cfg AnomalyConfig) Option {
	return func(p *genParams) { p.config = cfg }
}

// WithCreatedAt stamps the sector creation time. Left unset, the timestamp is
// zero so that two Generate calls with equal inputs serialize identically.
func WithCreatedAt(t time.Time) Option {
	return func(p *genParams) { p.createdAt = t }
}

// Generate builds a scenario deterministically from the seed. The same seed,
// bounds, and options always produce the same sector conditions and the same
// anomaly positions.
func Generate(seed string, boundsKm KmBounds, opts ...Option) *Scenario {
	var p genParams
	for _, opt := range opts {
		opt(&p)
	}

	width := math.Max(boundsKm.Width*1000, MinSectorMeters)
	height := math.Max(boundsKm.Height*1000, MinSectorMeters)
	origin := geo.Vec2{X: -width / 2, Y: -height / 2}
	if p.origin != nil {
		origin = *p.origin
	}
	bounds := geo.SectorBounds{Origin: origin, WidthMeters: width, HeightMeters: height}

	name := p.name
	if name == "" {
		name = fmt.Sprintf("Sector %s", seed)
	}

	// The environment stream is consumed in a fixed call order; every sample
	// below shifts the stream for the ones after it.
	r := newRand(seed)
	cond := Conditions{
		SeaState:     clampInt(int(math.Round(rangeFloat(r, 1, 6))), 0, 9),
		WindKts:      rangeFloat(r, 3, 38),
		VisibilityKm: rangeFloat(r, 4, 30),
		SurfaceTempC: rangeFloat(r, 12, 28),
	}
	cond.Description = conditionPhrases[r.Intn(len(conditionPhrases))]
	water := sampleWaterSettings(r)

	cfg := normalizeAnomalyConfig(p.config)
	items := generateAnomalies(seed, bounds, cfg)

	sc := &Scenario{
		Version: ScenarioVersion,
		Name:    name,
		Seed:    seed,
		Sector: Sector{
			ID:         fmt.Sprintf("SEC-%08X", uint32(hashSeed(seed))),
			Name:       name,
			Seed:       seed,
			Bounds:     bounds,
			Conditions: cond,
			Water:      water,
			CreatedAt:  p.createdAt,
		},
		Anomalies: AnomalySet{Config: cfg, Items: items},
	}
	if p.notes != "" {
		sc.Metadata = map[string]string{"notes": p.notes}
	}
	return sc
}

// sampleWaterSettings draws the render tuning values. Purely visual, but it
// shares the seeded stream so it stays part of the determinism contract.
func sampleWaterSettings(r *rand.Rand) WaterSettings {
	return WaterSettings{
		TileSizePx:  256,
		NoiseScale:  rangeFloat(r, 0.8, 1.6),
		DetailScale: rangeFloat(r, 2.5, 4.5),
		ColorDeep: RGB{
			R: uint8(8 + r.Intn(12)),
			G: uint8(40 + r.Intn(16)),
			B: uint8(78 + r.Intn(20)),
		},
		ColorShallow: RGB{
			R: uint8(30 + r.Intn(16)),
			G: uint8(100 + r.Intn(24)),
			B: uint8(130 + r.Intn(24)),
		},
		TextureStrength: rangeFloat(r, 0.25, 0.6),
	}
}

// HubRadius returns the anomaly exclusion radius for a sector. It shrinks on
// small sectors so placement always has room, and never goes negative.
func HubRadius(bounds geo.SectorBounds) float64 {
	limit := math.Min(bounds.WidthMeters, bounds.HeightMeters)/2 - 10
	return math.Max(0, math.Min(limit, DefaultHubRadiusMeters))
}

// generateAnomalies places the configured anomalies with a stream derived
// from seed+"-anomalies", independent of the environment stream. Candidates
// inside the hub exclusion circle are rejected up to placementAttempts times,
// then placed just outside the hub at a random angle and clamped to bounds.
func generateAnomalies(seed string, bounds geo.SectorBounds, cfg AnomalyConfig) []Anomaly {
	r := newRand(seed + "-anomalies")
	center := bounds.Center()
	hub := HubRadius(bounds)

	items := make([]Anomaly, 0, cfg.TotalCount())
	idx := 0
	for _, typ := range AnomalyTypes {
		tc, ok := cfg[typ]
		if !ok {
			continue
		}
		for i := 0; i < tc.Count; i++ {
			idx++
			items = append(items, Anomaly{
				ID:                    fmt.Sprintf("ANM-%03d", idx),
				Type:                  typ,
				Position:              placeAnomaly(r, bounds, center, hub),
				DetectionRadiusMeters: tc.DetectionRadiusMeters,
			})
		}
	}
	return items
}

func placeAnomaly(r *rand.Rand, bounds geo.SectorBounds, center geo.Vec2, hub float64) geo.Vec2 {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		p := geo.Vec2{
			X: rangeFloat(r, bounds.Origin.X, bounds.Origin.X+bounds.WidthMeters),
			Y: rangeFloat(r, bounds.Origin.Y, bounds.Origin.Y+bounds.HeightMeters),
		}
		if hub <= 0 || p.Dist(center) >= hub {
			return p
		}
	}
	angle := r.Float64() * 2 * math.Pi
	p := center.Add(geo.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(hub + hubFallbackMargin))
	return bounds.Clamp(p)
}

// normalizeAnomalyConfig fills missing types from the defaults, floors counts
// at zero, and floors detection radii at MinDetectionRadiusMeters.
func normalizeAnomalyConfig(cfg AnomalyConfig) AnomalyConfig {
	out := DefaultAnomalyConfig()
	for typ, tc := range cfg {
		norm := AnomalyTypeConfig{
			Count:                 tc.Count,
			DetectionRadiusMeters: math.Max(MinDetectionRadiusMeters, tc.DetectionRadiusMeters),
		}
		if norm.Count < 0 {
			norm.Count = 0
		}
		out[typ] = norm
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
