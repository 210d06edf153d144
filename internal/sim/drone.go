// Drone catalog, runtime state, and spawn logic.
package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sarsim/internal/geo"
	"sarsim/internal/plan"
)

// Status is the drone state machine position.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusEnroute   Status = "enroute"
	StatusSearch    Status = "search"
	StatusReturning Status = "returning"
	StatusLanded    Status = "landed"
	// StatusError is reserved; nothing in the core sets it.
	StatusError Status = "error"
)

// DroneModel is a static catalog entry.
type DroneModel struct {
	ID                 string  `json:"id" yaml:"id"`
	Label              string  `json:"label" yaml:"label"`
	SpeedKts           float64 `json:"speedKts" yaml:"speed_kts"`
	BatteryLifeMinutes float64 `json:"batteryLifeMinutes" yaml:"battery_life_minutes"`
}

// DefaultModels is the built-in catalog used when the config defines none.
var DefaultModels = []DroneModel{
	{ID: "vtol-scout", Label: "Scout VTOL", SpeedKts: 35, BatteryLifeMinutes: 60},
	{ID: "fixed-wing-lr", Label: "Longreach Fixed-Wing", SpeedKts: 65, BatteryLifeMinutes: 240},
	{ID: "quad-inspect", Label: "Inspector Quad", SpeedKts: 18, BatteryLifeMinutes: 35},
}

// Battery warning thresholds in descending percent order. Each is announced
// at most once per sortie, tracked by a bit in DroneState.WarnedMask.
var batteryWarnThresholds = []float64{50, 25, 10}

// DroneState is the full runtime record for one drone. The kinematics tick
// replaces the whole roster each frame; nothing mutates a published state.
// Warning dedup flags live here, not in a side table, so roster resets clear
// them together with the rest of the state.
type DroneState struct {
	ID                      string             `json:"id"`
	Callsign                string             `json:"callsign"`
	ModelID                 string             `json:"modelId"`
	Position                geo.Vec2           `json:"position"`
	HeadingDeg              float64            `json:"headingDeg"`
	Status                  Status             `json:"status"`
	SpeedKts                float64            `json:"speedKts"`
	BatteryPct              float64            `json:"batteryPct"`
	BatteryLifeMinutes      float64            `json:"batteryLifeMinutes"`
	BatteryMinutesRemaining float64            `json:"batteryMinutesRemaining"`
	HomePosition            geo.Vec2           `json:"homePosition"`
	LastUpdate              time.Time          `json:"lastUpdate"`
	TargetPosition          *geo.Vec2          `json:"targetPosition,omitempty"`
	Waypoints               []geo.Vec2         `json:"waypoints"`
	Plan                    *plan.CoveragePlan `json:"plan,omitempty"`
	ReturnMinutesRequired   float64            `json:"returnMinutesRequired"`
	EmergencyReserveMinutes float64            `json:"emergencyReserveMinutes"`
	WarnedMask              uint8              `json:"warnedMask"`
	EmergencyFired          bool               `json:"emergencyFired"`
}

// NewDrone initializes a drone at the spawn point. home is the hub at spawn
// time; a drone spawned away from the hub still returns and lands there. The
// ID embeds four characters derived from the scenario seed, four random
// characters, and the session counter; the counter alone guarantees
// uniqueness.
func NewDrone(model DroneModel, at, home geo.Vec2, seed string, counter int) DroneState {
	id := fmt.Sprintf("DRN-%s%s-%d", seedToken(seed), randToken(), counter)
	return DroneState{
		ID:                      id,
		Callsign:                fmt.Sprintf("%s %d", callsignBase(model.Label), counter),
		ModelID:                 model.ID,
		Position:                at,
		Status:                  StatusIdle,
		SpeedKts:                model.SpeedKts,
		BatteryPct:              100,
		BatteryLifeMinutes:      model.BatteryLifeMinutes,
		BatteryMinutesRemaining: model.BatteryLifeMinutes,
		HomePosition:            home,
	}
}

// seedToken extracts the first four alphanumeric characters of the seed,
// uppercased and padded with X when the seed is short.
func seedToken(seed string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(seed) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	for b.Len() < 4 {
		b.WriteByte('X')
	}
	return b.String()
}

func randToken() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return raw[:4]
}

func callsignBase(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return "DRONE"
	}
	return strings.ToUpper(fields[0])
}

// clone returns a copy with its own waypoint slice, so the published roster
// snapshot and the next tick's working copy never share backing arrays.
func (d DroneState) clone() DroneState {
	next := d
	if d.Waypoints != nil {
		next.Waypoints = append([]geo.Vec2(nil), d.Waypoints...)
	}
	if d.TargetPosition != nil {
		tp := *d.TargetPosition
		next.TargetPosition = &tp
	}
	return next
}
