// Telemetry row types with greptime tags
package telemetry

import (
	"os"
	"time"

	"sarsim/internal/geo"
)

// DroneStateRow represents one drone state record for GreptimeDB.
type DroneStateRow struct {
	SectorID     string    `json:"sector_id"`     // TAG
	DroneID      string    `json:"drone_id"`      // TAG
	Callsign     string    `json:"callsign"`      // FIELD
	X            float64   `json:"x"`             // FIELD
	Y            float64   `json:"y"`             // FIELD
	HeadingDeg   float64   `json:"heading_deg"`   // FIELD
	SpeedKts     float64   `json:"speed_kts"`     // FIELD
	BatteryPct   float64   `json:"battery_pct"`   // FIELD
	BatteryMin   float64   `json:"battery_min"`   // FIELD
	Status       string    `json:"status"`        // FIELD
	ReturnMin    float64   `json:"return_min"`    // FIELD
	ReserveMin   float64   `json:"reserve_min"`   // FIELD
	QueuedPoints int       `json:"queued_points"` // FIELD
	Timestamp    time.Time `json:"ts"`            // TIME INDEX
}

// StateTableName holds the table name used when writing drone state to
// GreptimeDB. It defaults to "drone_state" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var StateTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "drone_state"
}()

func (DroneStateRow) TableName() string {
	return StateTableName
}

// Detection event kinds.
const (
	EventDetected         = "detected"
	EventFalseNegative    = "false-negative"
	EventFalsePositive    = "false-positive"
	EventBatteryWarning   = "battery-warning"
	EventBatteryEmergency = "battery-emergency"
)

// DetectionEventRow is one append-only detection-log entry.
type DetectionEventRow struct {
	SectorID    string      `json:"sector_id"` // TAG
	Kind        string      `json:"kind"`      // TAG
	DroneID     string      `json:"drone_id,omitempty"`
	AnomalyID   string      `json:"anomaly_id,omitempty"`
	AnomalyType string      `json:"anomaly_type,omitempty"`
	Position    geo.Vec2    `json:"position"`
	Confidence  float64     `json:"confidence,omitempty"`
	BatteryPct  float64     `json:"battery_pct,omitempty"`
	ReturnMin   float64     `json:"return_min,omitempty"`
	Message     string      `json:"message"`
	Timestamp   time.Time   `json:"ts"` // TIME INDEX
}

// EventTableName is the GreptimeDB table for detection events, overridable
// via the DETECTION_EVENT_TABLE environment variable.
var EventTableName = func() string {
	if env := os.Getenv("DETECTION_EVENT_TABLE"); env != "" {
		return env
	}
	return "detection_events"
}()

func (DetectionEventRow) TableName() string {
	return EventTableName
}
