package sim

import (
	"testing"

	"sarsim/internal/telemetry"
)

// batchMockWriter records whether the batch path was taken.
type batchMockWriter struct {
	MockWriter
	Batches int
}

func (w *batchMockWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	w.Batches++
	w.Rows = append(w.Rows, rows...)
	return nil
}

type batchMockEventWriter struct {
	MockEventWriter
	Batches int
}

func (w *batchMockEventWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	w.Batches++
	w.Events = append(w.Events, rows...)
	return nil
}

func TestMultiWriter_FanOutStates(t *testing.T) {
	plain := &MockWriter{}
	batched := &batchMockWriter{}
	mw := NewMultiWriter([]StateWriter{plain, batched}, nil)

	rows := []telemetry.DroneStateRow{{DroneID: "DRN-1"}, {DroneID: "DRN-2"}}
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}

	if len(plain.Rows) != 2 {
		t.Errorf("plain writer got %d rows, want 2", len(plain.Rows))
	}
	if len(batched.Rows) != 2 {
		t.Errorf("batch writer got %d rows, want 2", len(batched.Rows))
	}
	if batched.Batches != 1 {
		t.Errorf("batch-capable writer should receive one batch call, got %d", batched.Batches)
	}
}

func TestMultiWriter_FanOutEvents(t *testing.T) {
	plain := &MockEventWriter{}
	batched := &batchMockEventWriter{}
	mw := NewMultiWriter(nil, []EventWriter{plain, batched})

	events := []telemetry.DetectionEventRow{
		{Kind: telemetry.EventDetected},
		{Kind: telemetry.EventFalseNegative},
	}
	if err := mw.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	if len(plain.Events) != 2 || len(batched.Events) != 2 {
		t.Errorf("fan-out mismatch: plain=%d batched=%d", len(plain.Events), len(batched.Events))
	}
	if batched.Batches != 1 {
		t.Errorf("expected one batch call, got %d", batched.Batches)
	}

	if err := mw.WriteEvent(telemetry.DetectionEventRow{Kind: telemetry.EventFalsePositive}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if len(plain.Events) != 3 {
		t.Errorf("single event not fanned out, plain=%d", len(plain.Events))
	}
}
