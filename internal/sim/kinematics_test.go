package sim

import (
	"math"
	"testing"
	"time"

	"sarsim/internal/geo"
	"sarsim/internal/telemetry"
)

var testBounds = geo.SectorBounds{Origin: geo.Vec2{X: -2500, Y: -2500}, WidthMeters: 5000, HeightMeters: 5000}

func testDrone() DroneState {
	return DroneState{
		ID:                      "DRN-TEST0001-1",
		Callsign:                "SCOUT 1",
		Position:                geo.Vec2{},
		Status:                  StatusIdle,
		SpeedKts:                10,
		BatteryPct:              100,
		BatteryLifeMinutes:      60,
		BatteryMinutesRemaining: 60,
		HomePosition:            geo.Vec2{},
	}
}

func TestAdvanceDrone_WaypointTravelAndSnap(t *testing.T) {
	d := testDrone()
	// Park the hub away from the waypoint so arrival settles to idle.
	hub := geo.Vec2{X: -1000, Y: -1000}
	d.HomePosition = hub
	target := geo.Vec2{X: 100, Y: 0}
	d.TargetPosition = &target
	d.Status = StatusEnroute
	now := time.Now()

	// 10 kts is ~5.144 m/s, so a 10 s tick covers ~51.4 m.
	next, _ := AdvanceDrone(d, 10, hub, testBounds, now)
	if math.Abs(next.Position.X-51.4444) > 0.01 || math.Abs(next.Position.Y) > 1e-9 {
		t.Fatalf("after 10s expected ~(51.44, 0), got (%.4f, %.4f)", next.Position.X, next.Position.Y)
	}
	if next.Status != StatusEnroute {
		t.Errorf("mid-leg status = %q, want enroute", next.Status)
	}
	if math.Abs(next.HeadingDeg) > 1e-6 {
		t.Errorf("heading toward +X should be 0 deg, got %.2f", next.HeadingDeg)
	}

	// Remaining distance is below the next step, so the drone snaps exactly.
	next, _ = AdvanceDrone(next, 10, hub, testBounds, now)
	if next.Position != target {
		t.Fatalf("expected exact snap to (100,0), got (%.6f, %.6f)", next.Position.X, next.Position.Y)
	}
	if next.TargetPosition != nil {
		t.Error("target should clear on arrival with an empty queue")
	}
	if next.Status != StatusIdle {
		t.Errorf("arrival away from hub should be idle, got %q", next.Status)
	}
}

func TestAdvanceDrone_QueuePopsOnArrival(t *testing.T) {
	d := testDrone()
	d.SpeedKts = 100
	d.Waypoints = []geo.Vec2{{X: 10, Y: 0}, {X: 10, Y: 10}}
	hub := geo.Vec2{X: -1000, Y: -1000}
	d.HomePosition = hub

	next, _ := AdvanceDrone(d, 5, hub, testBounds, time.Now())
	if next.TargetPosition == nil || *next.TargetPosition != (geo.Vec2{X: 10, Y: 10}) {
		t.Fatalf("expected promotion to the next queued point, got %+v", next.TargetPosition)
	}
	if len(next.Waypoints) != 0 {
		t.Errorf("queue should be drained, %d points left", len(next.Waypoints))
	}
}

func TestAdvanceDrone_LandsAtHub(t *testing.T) {
	d := testDrone()
	d.SpeedKts = 100
	d.Position = geo.Vec2{X: 5, Y: 0}
	hub := geo.Vec2{}
	home := hub
	d.TargetPosition = &home
	d.Status = StatusReturning

	next, _ := AdvanceDrone(d, 60, hub, testBounds, time.Now())
	if next.Status != StatusLanded {
		t.Fatalf("arrival at hub should land, got %q", next.Status)
	}

	// Landed drones stop draining battery.
	before := next.BatteryMinutesRemaining
	next, _ = AdvanceDrone(next, 60, hub, testBounds, time.Now())
	if next.BatteryMinutesRemaining != before {
		t.Error("landed drone should not drain battery")
	}
}

func TestAdvanceDrone_BatteryDrainsMonotonically(t *testing.T) {
	d := testDrone()
	hub := geo.Vec2{X: -1000, Y: -1000}
	d.HomePosition = hub
	prev := d.BatteryMinutesRemaining
	for i := 0; i < 100; i++ {
		d, _ = AdvanceDrone(d, 1, hub, testBounds, time.Now())
		if d.BatteryMinutesRemaining > prev {
			t.Fatalf("battery increased at step %d", i)
		}
		prev = d.BatteryMinutesRemaining
	}
	// 100 ticks of 1 s drain 100/60 minutes.
	want := 60 - 100.0/60
	if math.Abs(d.BatteryMinutesRemaining-want) > 1e-9 {
		t.Errorf("battery after 100s = %.4f, want %.4f", d.BatteryMinutesRemaining, want)
	}
}

func TestAdvanceDrone_RemoteDroneLandsAtHub(t *testing.T) {
	d := testDrone()
	hub := geo.Vec2{}
	d.Position = geo.Vec2{X: 2000, Y: 0}
	d.BatteryMinutesRemaining = 10
	d.BatteryPct = d.BatteryMinutesRemaining / d.BatteryLifeMinutes * 100
	now := time.Now()

	// ~91 s until the reserve breach, then ~389 s of flight back.
	for i := 0; i < 600 && d.Status != StatusLanded; i++ {
		d, _ = AdvanceDrone(d, 1.0, hub, testBounds, now)
		now = now.Add(time.Second)
	}
	if d.Status != StatusLanded {
		t.Fatalf("status = %q at %v, want landed at hub", d.Status, d.Position)
	}
	if d.Position.Dist(hub) > hubArrivalMeters {
		t.Errorf("landed %.1f m from hub", d.Position.Dist(hub))
	}
	if d.BatteryMinutesRemaining <= 0 {
		t.Error("drone should land before the battery empties")
	}
}

func TestAdvanceDrone_EmergencyRTBFiresOnce(t *testing.T) {
	d := testDrone()
	hub := geo.Vec2{}
	d.Position = geo.Vec2{X: 2000, Y: 0}
	d.BatteryMinutesRemaining = 5
	d.BatteryPct = d.BatteryMinutesRemaining / d.BatteryLifeMinutes * 100
	d.Waypoints = []geo.Vec2{{X: 2400, Y: 0}}
	d.Status = StatusSearch
	now := time.Now()

	next, events := AdvanceDrone(d, 0.1, hub, testBounds, now)
	if next.Status != StatusReturning {
		t.Fatalf("reserve breach should force returning, got %q", next.Status)
	}
	if len(next.Waypoints) != 0 {
		t.Error("emergency RTB should clear the waypoint queue")
	}
	if next.TargetPosition == nil || *next.TargetPosition != hub {
		t.Error("emergency RTB should target the hub")
	}
	if !next.EmergencyFired {
		t.Error("emergency flag should latch")
	}
	found := 0
	for _, e := range events {
		if e.Kind == telemetry.EventBatteryEmergency {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one emergency event, got %d", found)
	}

	// Subsequent ticks keep returning but never re-emit the emergency.
	next, events = AdvanceDrone(next, 0.1, hub, testBounds, now)
	for _, e := range events {
		if e.Kind == telemetry.EventBatteryEmergency {
			t.Fatal("emergency event emitted twice for one sortie")
		}
	}
	if next.Status != StatusReturning {
		t.Errorf("emergency return must hold until landing, got %q", next.Status)
	}
}

func TestAdvanceDrone_BatteryWarningsDeduplicated(t *testing.T) {
	d := testDrone()
	hub := geo.Vec2{}
	d.Position = geo.Vec2{X: 10, Y: 0}
	now := time.Now()

	warnings := map[string]int{}
	// Drain from 100% to ~0% in one-minute ticks.
	for i := 0; i < 70; i++ {
		var events []telemetry.DetectionEventRow
		d, events = AdvanceDrone(d, 60, hub, testBounds, now)
		for _, e := range events {
			if e.Kind == telemetry.EventBatteryWarning {
				warnings[e.Message]++
			}
		}
		if d.Status == StatusLanded {
			break
		}
	}
	total := 0
	for msg, n := range warnings {
		if n != 1 {
			t.Errorf("warning %q emitted %d times", msg, n)
		}
		total += n
	}
	if total == 0 {
		t.Error("expected at least one battery warning across the drain")
	}
}

func TestAdvanceDrone_ClampsToBounds(t *testing.T) {
	d := testDrone()
	d.SpeedKts = 10000
	hub := geo.Vec2{X: -1000, Y: -1000}
	d.HomePosition = hub
	target := geo.Vec2{X: 9000, Y: 9000}
	d.TargetPosition = &target

	next, _ := AdvanceDrone(d, 10, hub, testBounds, time.Now())
	if !testBounds.Contains(next.Position) {
		t.Errorf("position escaped the sector: %+v", next.Position)
	}
}

func TestAdvanceDrone_ZeroSpeedHoldsPosition(t *testing.T) {
	d := testDrone()
	d.SpeedKts = 0
	hub := geo.Vec2{X: -1000, Y: -1000}
	d.HomePosition = hub
	target := geo.Vec2{X: 100, Y: 100}
	d.TargetPosition = &target
	start := d.Position

	next, _ := AdvanceDrone(d, 10, hub, testBounds, time.Now())
	if next.Position != start {
		t.Errorf("zero-speed drone moved to %+v", next.Position)
	}
	if next.TargetPosition == nil {
		t.Error("target should stay pending while parked")
	}
}
