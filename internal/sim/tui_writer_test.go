package sim

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sarsim/internal/geo"
	"sarsim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}

	row := telemetry.DroneStateRow{DroneID: "DRN-1", SectorID: "SEC-1", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.Write(row); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[0].(stateMsg); !ok {
		t.Fatalf("expected stateMsg, got %T", p.msgs[0])
	}

	e := telemetry.DetectionEventRow{Kind: telemetry.EventDetected, DroneID: "DRN-1", AnomalyID: "ANM-001", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteEvent(e); err != nil {
		t.Fatalf("event: %v", err)
	}
	em, ok := p.msgs[1].(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", p.msgs[1])
	}
	if em.row.AnomalyID != "ANM-001" {
		t.Errorf("event row anomaly = %s", em.row.AnomalyID)
	}

	w.SetAdminStatus(true)
	if _, ok := p.msgs[2].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[2])
	}
}

func TestTUIModel_RosterUpdatesFromState(t *testing.T) {
	m := newTUIModel(testScenario())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mi.(tuiModel)

	mi, _ = m.Update(stateMsg{telemetry.DroneStateRow{DroneID: "DRN-B", BatteryPct: 80}})
	m = mi.(tuiModel)
	mi, _ = m.Update(stateMsg{telemetry.DroneStateRow{DroneID: "DRN-A", BatteryPct: 90}})
	m = mi.(tuiModel)

	rows := m.roster.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 roster rows, got %d", len(rows))
	}
	if rows[0][0] != "DRN-A" {
		t.Errorf("roster should be sorted by ID, first row %s", rows[0][0])
	}
}

func TestTUIModel_WaypointDialogInvokesCallback(t *testing.T) {
	m := newTUIModel(testScenario())
	done := make(chan struct{})
	var gotIDs []string
	var gotPt geo.Vec2
	mi, _ := m.Update(setWaypointFnMsg{fn: func(ids []string, pt geo.Vec2, appendWp bool) {
		gotIDs = ids
		gotPt = pt
		close(done)
	}})
	m = mi.(tuiModel)

	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = mi.(tuiModel)
	if !m.waypointDialog {
		t.Fatal("g should open the waypoint dialog")
	}
	m.waypointInput.SetValue("DRN-1,150,-75")
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mi.(tuiModel)
	if m.waypointDialog {
		t.Fatal("enter should close the dialog")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waypoint callback not invoked")
	}
	if len(gotIDs) != 1 || gotIDs[0] != "DRN-1" {
		t.Errorf("callback ids = %v", gotIDs)
	}
	if gotPt != (geo.Vec2{X: 150, Y: -75}) {
		t.Errorf("callback point = %+v", gotPt)
	}
}

func TestParseWaypointInput(t *testing.T) {
	ids, pt, err := parseWaypointInput("all,10,20")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("'all' should yield an empty selection, got %v", ids)
	}
	if pt != (geo.Vec2{X: 10, Y: 20}) {
		t.Errorf("point = %+v", pt)
	}

	ids, _, err = parseWaypointInput("DRN-1, DRN-2, 5, 6")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %v", ids)
	}

	if _, _, err := parseWaypointInput("10,20"); err == nil {
		t.Error("too few fields should error")
	}
	if _, _, err := parseWaypointInput("all,x,y"); err == nil {
		t.Error("non-numeric coordinates should error")
	}
}

func TestTUIModel_MapToggleAndRender(t *testing.T) {
	m := newTUIModel(testScenario())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 24})
	m = mi.(tuiModel)
	mi, _ = m.Update(stateMsg{telemetry.DroneStateRow{DroneID: "DRN-1", X: 0, Y: 0, BatteryPct: 90}})
	m = mi.(tuiModel)

	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m = mi.(tuiModel)
	if !m.showMap {
		t.Fatal("m should toggle the map view")
	}
	view := m.View()
	if view == "" {
		t.Fatal("map view should render")
	}
}
