package sim

import "sarsim/internal/telemetry"

// StateWriter is an interface to support different drone-state output writers.
type StateWriter interface {
	Write(telemetry.DroneStateRow) error
}

// EventWriter handles detection-log events.
type EventWriter interface {
	WriteEvent(telemetry.DetectionEventRow) error
}

// Optional: writers can also support batch mode.
type batchStateWriter interface {
	WriteBatch([]telemetry.DroneStateRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]telemetry.DetectionEventRow) error
}
