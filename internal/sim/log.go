package sim

import "sarsim/internal/telemetry"

// DefaultLogLimit caps the detection log when the config does not.
const DefaultLogLimit = 200

// DetectionLog is a capped, newest-first event list. Not safe for concurrent
// use on its own; the simulator serializes access under its mutex.
type DetectionLog struct {
	limit   int
	entries []telemetry.DetectionEventRow
}

// NewDetectionLog creates a log holding at most limit entries.
func NewDetectionLog(limit int) *DetectionLog {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &DetectionLog{limit: limit}
}

// Append inserts the event at the front, dropping the oldest past the cap.
func (l *DetectionLog) Append(e telemetry.DetectionEventRow) {
	l.entries = append([]telemetry.DetectionEventRow{e}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
}

// SetLimit adjusts the cap, trimming immediately when it shrinks.
func (l *DetectionLog) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	l.limit = limit
	if len(l.entries) > limit {
		l.entries = l.entries[:limit]
	}
}

// Entries returns a copy of the log, newest first.
func (l *DetectionLog) Entries() []telemetry.DetectionEventRow {
	out := make([]telemetry.DetectionEventRow, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset clears the log, e.g. on scenario reload.
func (l *DetectionLog) Reset() {
	l.entries = nil
}
