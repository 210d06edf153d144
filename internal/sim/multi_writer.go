package sim

import (
	"sarsim/internal/telemetry"
)

// MultiWriter fan-outs drone state and detection event rows to multiple writers.
type MultiWriter struct {
	stateWriters []StateWriter
	eventWriters []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(sws []StateWriter, ews []EventWriter) *MultiWriter {
	return &MultiWriter{stateWriters: sws, eventWriters: ews}
}

// Write sends a drone state row to all writers.
func (mw *MultiWriter) Write(row telemetry.DroneStateRow) error {
	for _, w := range mw.stateWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple drone state rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	for _, w := range mw.stateWriters {
		if bw, ok := w.(batchStateWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteEvent sends a detection event to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.DetectionEventRow) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple detection events to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	for _, w := range mw.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteEvent(r); err != nil {
				return err
			}
		}
	}
	return nil
}
