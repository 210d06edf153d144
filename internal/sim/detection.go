// Probabilistic sensor sweep, run on its own wall-clock interval.
package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"sarsim/internal/config"
	"sarsim/internal/geo"
	"sarsim/internal/logging"
	"sarsim/internal/scenario"
	"sarsim/internal/telemetry"
)

// confidenceFalloffExp shapes how detection probability decays toward the
// sensor range edge.
const confidenceFalloffExp = 1.4

// falsePositiveRangeFrac bounds where synthetic contacts appear relative to
// sensor range.
const falsePositiveRangeFrac = 0.9

// SensorConfig is the runtime sensor tuning. All fields may change between
// detection ticks; each tick reads the latest values.
type SensorConfig struct {
	RangeMeters                 float64       `json:"rangeMeters"`
	OptimalDetectionProbability float64       `json:"optimalDetectionProbability"`
	EdgeDetectionProbability    float64       `json:"edgeDetectionProbability"`
	FalsePositiveRatePerMinute  float64       `json:"falsePositiveRatePerMinute"`
	CheckInterval               time.Duration `json:"checkIntervalMs"`
	LogLimit                    int           `json:"logLimit"`
}

// DefaultSensorConfig returns the tuning used when the config omits values.
func DefaultSensorConfig() SensorConfig {
	return SensorConfig{
		RangeMeters:                 600,
		OptimalDetectionProbability: 0.9,
		EdgeDetectionProbability:    0.15,
		FalsePositiveRatePerMinute:  0.5,
		CheckInterval:               600 * time.Millisecond,
		LogLimit:                    DefaultLogLimit,
	}
}

// SensorConfigFromSettings merges YAML sensor settings over the defaults.
func SensorConfigFromSettings(ss config.SensorSettings) SensorConfig {
	out := DefaultSensorConfig()
	if ss.RangeMeters > 0 {
		out.RangeMeters = ss.RangeMeters
	}
	if ss.OptimalDetectionProbability > 0 {
		out.OptimalDetectionProbability = ss.OptimalDetectionProbability
	}
	if ss.EdgeDetectionProbability > 0 {
		out.EdgeDetectionProbability = ss.EdgeDetectionProbability
	}
	if ss.FalsePositiveRatePerMinute > 0 {
		out.FalsePositiveRatePerMinute = ss.FalsePositiveRatePerMinute
	}
	if ss.CheckIntervalMs > 0 {
		out.CheckInterval = time.Duration(ss.CheckIntervalMs) * time.Millisecond
	}
	if ss.LogLimit > 0 {
		out.LogLimit = ss.LogLimit
	}
	return out
}

// pairKey rate-limits false-negative events per (drone, anomaly) pair.
type pairKey struct {
	DroneID   string
	AnomalyID string
}

// SetSensorConfig replaces the sensor tuning; it takes effect on the next
// detection tick.
func (s *Simulator) SetSensorConfig(cfg SensorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def := DefaultSensorConfig()
	if cfg.RangeMeters <= 0 {
		cfg.RangeMeters = def.RangeMeters
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = def.CheckInterval
	}
	cfg.OptimalDetectionProbability = clampFloat(cfg.OptimalDetectionProbability, 0, 1)
	cfg.EdgeDetectionProbability = clampFloat(cfg.EdgeDetectionProbability, 0, cfg.OptimalDetectionProbability)
	if cfg.FalsePositiveRatePerMinute < 0 {
		cfg.FalsePositiveRatePerMinute = 0
	}
	if cfg.LogLimit > 0 {
		s.log.SetLimit(cfg.LogLimit)
	} else {
		cfg.LogLimit = s.sensor.LogLimit
	}
	s.sensor = cfg
}

// SensorConfigSnapshot returns the current sensor tuning.
func (s *Simulator) SensorConfigSnapshot() SensorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sensor
}

// RunDetection starts the detection loop and stops when the context is done.
// The loop body runs synchronously in this goroutine, so two detection ticks
// can never overlap; a tick that outruns the interval simply delays the next
// one. The timer is re-armed from the latest config each cycle so interval
// changes take effect immediately.
func (s *Simulator) RunDetection(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting detection loop", "interval", s.SensorConfigSnapshot().CheckInterval)
	timer := time.NewTimer(s.SensorConfigSnapshot().CheckInterval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.detectTick(ctx)
			timer.Reset(s.SensorConfigSnapshot().CheckInterval)
		case <-ctx.Done():
			log.Info("stopping detection loop")
			return
		}
	}
}

// detectTick evaluates every airborne drone against every anomaly in sensor
// range, then publishes the updated scenario snapshot copy-on-write.
func (s *Simulator) detectTick(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	cfg := s.sensor
	items := s.scn.Anomalies.Items
	mutated := false
	var events []telemetry.DetectionEventRow

	// Copy once, lazily, the first time this tick changes anything.
	ensureCopy := func() {
		if !mutated {
			items = append([]scenario.Anomaly(nil), items...)
			mutated = true
		}
	}

	for _, d := range s.drones {
		if d.Status == StatusLanded {
			continue
		}
		for i := range items {
			a := items[i]
			// A big target is spottable beyond nominal sensor range, so the
			// evaluation range combines both radii.
			rng := cfg.RangeMeters + a.DetectionRadiusMeters
			dist := d.Position.Dist(a.Position)
			if dist > rng || a.Detected {
				continue
			}
			conf := detectionConfidence(cfg, dist, rng)
			if s.rand.Float64() <= conf {
				ensureCopy()
				items[i].Detected = true
				events = append(events, telemetry.DetectionEventRow{
					Kind:        telemetry.EventDetected,
					DroneID:     d.ID,
					AnomalyID:   a.ID,
					AnomalyType: string(a.Type),
					Position:    a.Position,
					Confidence:  conf,
					Message:     fmt.Sprintf("%s detected %s %s (confidence %.0f%%)", d.Callsign, a.Type, a.ID, conf*100),
					Timestamp:   now,
				})
				continue
			}
			// Missed roll: log a false negative, at most once per pair per
			// two check intervals.
			key := pairKey{DroneID: d.ID, AnomalyID: a.ID}
			if last, ok := s.fnLimiter[key]; ok && now.Sub(last) < 2*cfg.CheckInterval {
				continue
			}
			s.fnLimiter[key] = now
			events = append(events, telemetry.DetectionEventRow{
				Kind:        telemetry.EventFalseNegative,
				DroneID:     d.ID,
				AnomalyID:   a.ID,
				AnomalyType: string(a.Type),
				Position:    a.Position,
				Confidence:  conf,
				Message:     fmt.Sprintf("%s passed %s %s without detection", d.Callsign, a.Type, a.ID),
				Timestamp:   now,
			})
		}

		// Independent false-positive synthesis per drone per interval.
		p := cfg.FalsePositiveRatePerMinute * cfg.CheckInterval.Minutes()
		if p > 0 && s.rand.Float64() < p {
			ensureCopy()
			fp := s.synthesizeFalsePositive(d, cfg, now)
			items = append(items, fp)
			events = append(events, telemetry.DetectionEventRow{
				Kind:        telemetry.EventFalsePositive,
				DroneID:     d.ID,
				AnomalyID:   fp.ID,
				AnomalyType: string(fp.Type),
				Position:    fp.Position,
				Message:     fmt.Sprintf("%s reported a contact that is likely a sensor artifact", d.Callsign),
				Timestamp:   now,
			})
		}
	}

	if mutated {
		s.scn = s.scn.WithItems(items)
	}
	for i := range events {
		events[i].SectorID = s.scn.Sector.ID
		s.log.Append(events[i])
	}
	s.mu.Unlock()

	s.writeEvents(ctx, events)
}

// detectionConfidence interpolates between the edge and optimal detection
// probabilities with a power falloff over distance.
func detectionConfidence(cfg SensorConfig, dist, rng float64) float64 {
	if rng <= 0 {
		return 0
	}
	edge := cfg.EdgeDetectionProbability
	peak := cfg.OptimalDetectionProbability
	frac := math.Pow(1-clampFloat(dist/rng, 0, 1), confidenceFalloffExp)
	return clampFloat(edge+(peak-edge)*frac, 0, 1)
}

func (s *Simulator) synthesizeFalsePositive(d DroneState, cfg SensorConfig, now time.Time) scenario.Anomaly {
	angle := s.rand.Float64() * 2 * math.Pi
	r := s.rand.Float64() * cfg.RangeMeters * falsePositiveRangeFrac
	pos := d.Position.Add(geo.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(r))
	return scenario.Anomaly{
		ID:                    "ANM-FP-" + randToken() + "-" + uuid.New().String()[:8],
		Type:                  scenario.AnomalyFalsePositive,
		Position:              s.scn.Sector.Bounds.Clamp(pos),
		Detected:              true,
		DetectionRadiusMeters: scenario.MinDetectionRadiusMeters,
		Note:                  "synthesized by detection loop at " + now.UTC().Format(time.RFC3339),
	}
}
