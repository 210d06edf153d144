// Simulator orchestrating the drone roster, scenario snapshot, and writers.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"sarsim/internal/config"
	"sarsim/internal/geo"
	"sarsim/internal/logging"
	"sarsim/internal/plan"
	"sarsim/internal/scenario"
	"sarsim/internal/telemetry"
)

// Simulator owns the only two pieces of shared mutable state: the drone
// roster and the scenario snapshot. Both are treated as copy-on-write values;
// the kinematics tick publishes a new roster, the detection tick publishes a
// new scenario snapshot. The mutex serializes the two loops and the control
// surface.
type Simulator struct {
	mu          sync.Mutex
	scn         *scenario.Scenario
	drones      []DroneState
	hub         geo.Vec2
	cells       []plan.Cell
	sensor      SensorConfig
	log         *DetectionLog
	writer      StateWriter
	eventWriter EventWriter

	tickInterval time.Duration
	lastTick     time.Time
	now          func() time.Time
	rand         *rand.Rand

	counter   int
	models    map[string]DroneModel
	fnLimiter map[pairKey]time.Time
}

// NewSimulator wires a simulator from config and an initial scenario.
// The hub sits at the sector center; the initial fleet from the config is
// spawned there.
func NewSimulator(cfg *config.SimulationConfig, scn *scenario.Scenario, writer StateWriter, eventWriter EventWriter) *Simulator {
	sensor := SensorConfigFromSettings(cfg.Sensor)
	s := &Simulator{
		scn:          scn,
		hub:          scn.Sector.Bounds.Center(),
		sensor:       sensor,
		log:          NewDetectionLog(sensor.LogLimit),
		writer:       writer,
		eventWriter:  eventWriter,
		tickInterval: cfg.TickInterval(),
		now:          time.Now,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		models:       map[string]DroneModel{},
		fnLimiter:    map[pairKey]time.Time{},
	}

	models := cfg.Models
	if len(models) == 0 {
		for _, m := range DefaultModels {
			models = append(models, config.DroneModelSpec(m))
		}
	}
	for _, m := range models {
		s.models[m.ID] = DroneModel(m)
	}

	for _, f := range cfg.Fleet {
		for i := 0; i < f.Count; i++ {
			s.spawnLocked(f.Model, s.hub)
		}
	}
	return s
}

// Run starts the kinematics loop and stops when the context is done. Each
// tick advances the roster by the measured wall-clock delta, so a delayed
// tick still integrates the full elapsed time.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.tickInterval, "drones", len(s.Drones()))
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.mu.Lock()
	s.lastTick = s.now()
	s.mu.Unlock()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// tick advances every drone and publishes the new roster.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	now := s.now()
	dt := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	if dt <= 0 {
		s.mu.Unlock()
		return
	}

	bounds := s.scn.Sector.Bounds
	next := make([]DroneState, len(s.drones))
	var batch []telemetry.DroneStateRow
	var events []telemetry.DetectionEventRow
	for i, d := range s.drones {
		nd, evs := AdvanceDrone(d, dt, s.hub, bounds, now)
		next[i] = nd
		events = append(events, evs...)
		batch = append(batch, s.stateRow(nd, now))
	}
	s.drones = next
	for i := range events {
		events[i].SectorID = s.scn.Sector.ID
		s.log.Append(events[i])
	}
	s.mu.Unlock()

	// Writers run outside the lock so a slow sink cannot stall the roster.
	if bw, ok := s.writer.(batchStateWriter); ok {
		if err := bw.WriteBatch(batch); err != nil {
			log.Error("batch write failed", "err", err)
		}
	} else {
		for _, row := range batch {
			if err := s.writer.Write(row); err != nil {
				log.Error("write failed", "drone_id", row.DroneID, "err", err)
			}
		}
	}
	s.writeEvents(ctx, events)
}

func (s *Simulator) writeEvents(ctx context.Context, events []telemetry.DetectionEventRow) {
	if len(events) == 0 || s.eventWriter == nil {
		return
	}
	log := logging.FromContext(ctx)
	if bw, ok := s.eventWriter.(batchEventWriter); ok {
		if err := bw.WriteEvents(events); err != nil {
			log.Error("event batch write failed", "err", err)
		}
		return
	}
	for _, e := range events {
		if err := s.eventWriter.WriteEvent(e); err != nil {
			log.Error("event write failed", "err", err)
		}
	}
}

func (s *Simulator) stateRow(d DroneState, now time.Time) telemetry.DroneStateRow {
	return telemetry.DroneStateRow{
		SectorID:     s.scn.Sector.ID,
		DroneID:      d.ID,
		Callsign:     d.Callsign,
		X:            d.Position.X,
		Y:            d.Position.Y,
		HeadingDeg:   d.HeadingDeg,
		SpeedKts:     d.SpeedKts,
		BatteryPct:   d.BatteryPct,
		BatteryMin:   d.BatteryMinutesRemaining,
		Status:       string(d.Status),
		ReturnMin:    d.ReturnMinutesRequired,
		ReserveMin:   d.EmergencyReserveMinutes,
		QueuedPoints: len(d.Waypoints),
		Timestamp:    now,
	}
}

// Spawn creates a drone of the given model at the given point and returns
// its initial state.
func (s *Simulator) Spawn(modelID string, at geo.Vec2) (DroneState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnLocked(modelID, at)
}

func (s *Simulator) spawnLocked(modelID string, at geo.Vec2) (DroneState, bool) {
	model, ok := s.models[modelID]
	if !ok {
		return DroneState{}, false
	}
	s.counter++
	d := NewDrone(model, s.scn.Sector.Bounds.Clamp(at), s.hub, s.scn.Seed, s.counter)
	s.drones = append(s.drones, d)
	return d.clone(), true
}

// Drones returns a deep copy of the roster.
func (s *Simulator) Drones() []DroneState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DroneState, len(s.drones))
	for i, d := range s.drones {
		out[i] = d.clone()
	}
	return out
}

// Scenario returns the current snapshot. Snapshots are immutable; callers
// may hold the pointer across ticks and only ever observe it whole.
func (s *Simulator) Scenario() *scenario.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scn
}

// Hub returns the drone launch/return point.
func (s *Simulator) Hub() geo.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub
}

// Models lists the available drone catalog entries.
func (s *Simulator) Models() []DroneModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DroneModel, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	return out
}

// DetectionLogEntries returns the capped event log, newest first.
func (s *Simulator) DetectionLogEntries() []telemetry.DetectionEventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// Reset swaps in a new scenario snapshot and clears all per-sortie tracking:
// partition cells, the detection log, the false-negative limiter, and the
// battery warning flags on every drone.
func (s *Simulator) Reset(scn *scenario.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scn = scn
	s.hub = scn.Sector.Bounds.Center()
	s.cells = nil
	s.log.Reset()
	s.fnLimiter = map[pairKey]time.Time{}
	for i := range s.drones {
		d := s.drones[i].clone()
		d.WarnedMask = 0
		d.EmergencyFired = false
		d.Position = scn.Sector.Bounds.Clamp(d.Position)
		s.drones[i] = d
	}
}
