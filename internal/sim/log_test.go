package sim

import (
	"strconv"
	"testing"

	"sarsim/internal/telemetry"
)

func TestDetectionLog_NewestFirstAndCapped(t *testing.T) {
	l := NewDetectionLog(3)
	for i := 0; i < 5; i++ {
		l.Append(telemetry.DetectionEventRow{AnomalyID: "ANM-" + strconv.Itoa(i)})
	}
	got := l.Entries()
	if len(got) != 3 {
		t.Fatalf("expected cap of 3, got %d entries", len(got))
	}
	for i, want := range []string{"ANM-4", "ANM-3", "ANM-2"} {
		if got[i].AnomalyID != want {
			t.Errorf("entry %d = %s, want %s", i, got[i].AnomalyID, want)
		}
	}
}

func TestDetectionLog_SetLimitTrims(t *testing.T) {
	l := NewDetectionLog(10)
	for i := 0; i < 5; i++ {
		l.Append(telemetry.DetectionEventRow{AnomalyID: "ANM-" + strconv.Itoa(i)})
	}
	l.SetLimit(2)
	if got := len(l.Entries()); got != 2 {
		t.Fatalf("shrinking the limit should trim, got %d", got)
	}
	l.SetLimit(0)
	if got := len(l.Entries()); got != 2 {
		t.Errorf("non-positive limit should be ignored, got %d", got)
	}
}

func TestDetectionLog_DefaultLimit(t *testing.T) {
	l := NewDetectionLog(0)
	for i := 0; i < DefaultLogLimit+10; i++ {
		l.Append(telemetry.DetectionEventRow{})
	}
	if got := len(l.Entries()); got != DefaultLogLimit {
		t.Errorf("expected default cap %d, got %d", DefaultLogLimit, got)
	}
}

func TestDetectionLog_Reset(t *testing.T) {
	l := NewDetectionLog(5)
	l.Append(telemetry.DetectionEventRow{})
	l.Reset()
	if len(l.Entries()) != 0 {
		t.Error("reset should clear all entries")
	}
}
