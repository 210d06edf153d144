package sim

import (
	"fmt"
	"math"
	"time"

	"sarsim/internal/geo"
	"sarsim/internal/telemetry"
)

const (
	knotsToMps = 0.514444
	// arrivalEps is the snap distance for waypoint arrival.
	arrivalEps = 0.05
	// hubArrivalMeters decides whether an arrival counts as landing at home.
	hubArrivalMeters = 1.0
	// emergencyBufferMinutes pads the computed return time.
	emergencyBufferMinutes = 2.0
	// minReserveMinutes floors the emergency reserve.
	minReserveMinutes = 3.0
	// reserveSpeedFloorKts keeps the return-time math finite for a parked drone.
	reserveSpeedFloorKts = 0.1
)

// AdvanceDrone computes the next state for one drone after dt seconds. It is
// a pure function of the previous state plus (dt, hub, bounds, now); battery
// warning and emergency events it produces are returned, not written.
func AdvanceDrone(prev DroneState, dt float64, hub geo.Vec2, bounds geo.SectorBounds, now time.Time) (DroneState, []telemetry.DetectionEventRow) {
	d := prev.clone()
	var events []telemetry.DetectionEventRow

	// Active target: explicit target first, else the head of the queue.
	if d.TargetPosition == nil && len(d.Waypoints) > 0 {
		head := d.Waypoints[0]
		d.TargetPosition = &head
		d.Waypoints = d.Waypoints[1:]
	}

	// Battery drains one minute of life per minute of wall clock while
	// anything but landed.
	if d.Status != StatusLanded {
		d.BatteryMinutesRemaining = math.Max(0, d.BatteryMinutesRemaining-dt/60)
	}
	if d.BatteryLifeMinutes > 0 {
		d.BatteryPct = clampFloat(d.BatteryMinutesRemaining/d.BatteryLifeMinutes*100, 0, 100)
	} else {
		d.BatteryPct = 0
	}

	// Return time and reserve depend on current position and speed, both of
	// which the operator may change between ticks, so recompute every tick.
	effSpeed := math.Max(d.SpeedKts, reserveSpeedFloorKts) * knotsToMps
	d.ReturnMinutesRequired = d.Position.Dist(d.HomePosition) / effSpeed / 60
	d.EmergencyReserveMinutes = math.Max(d.ReturnMinutesRequired+emergencyBufferMinutes, minReserveMinutes)

	events = append(events, batteryWarnings(&d, now)...)

	// Emergency RTB pre-empts any queued mission and holds until landing.
	if d.Status != StatusLanded && d.Status != StatusReturning &&
		d.BatteryMinutesRemaining <= d.EmergencyReserveMinutes {
		home := d.HomePosition
		d.TargetPosition = &home
		d.Waypoints = nil
		d.Status = StatusReturning
		if !d.EmergencyFired {
			d.EmergencyFired = true
			events = append(events, telemetry.DetectionEventRow{
				Kind:       telemetry.EventBatteryEmergency,
				DroneID:    d.ID,
				Position:   d.Position,
				BatteryPct: d.BatteryPct,
				ReturnMin:  d.ReturnMinutesRequired,
				Message: fmt.Sprintf("%s battery reserve reached (%.1f min left, %.1f min to return), returning to base",
					d.Callsign, d.BatteryMinutesRemaining, d.ReturnMinutesRequired),
				Timestamp: now,
			})
		}
	}

	moveAndArrive(&d, dt, hub)

	d.Position = bounds.Clamp(d.Position)
	d.LastUpdate = now
	return d, events
}

// moveAndArrive advances toward the active target and resolves arrival.
func moveAndArrive(d *DroneState, dt float64, hub geo.Vec2) {
	if d.TargetPosition == nil {
		return
	}
	target := *d.TargetPosition
	speedMps := d.SpeedKts * knotsToMps
	if speedMps > 0 && dt > 0 {
		delta := target.Sub(d.Position)
		dist := delta.Length()
		step := math.Min(dist, speedMps*dt)
		if step > 0 && dist > 0 {
			d.Position = d.Position.Add(delta.Scale(step / dist))
			if step > arrivalEps {
				d.HeadingDeg = delta.HeadingDeg()
			}
		}
	}

	if d.Position.Dist(target) > arrivalEps {
		return
	}
	// Arrived: snap exactly, then pop the next waypoint or settle.
	d.Position = target
	if len(d.Waypoints) > 0 {
		next := d.Waypoints[0]
		d.TargetPosition = &next
		d.Waypoints = d.Waypoints[1:]
		return
	}
	d.TargetPosition = nil
	if d.Position.Dist(hub) <= hubArrivalMeters {
		d.Status = StatusLanded
	} else {
		d.Status = StatusIdle
	}
}

// batteryWarnings emits one event per crossed threshold per sortie. The
// crossing bits live in the drone record itself.
func batteryWarnings(d *DroneState, now time.Time) []telemetry.DetectionEventRow {
	if d.Status == StatusLanded {
		return nil
	}
	var events []telemetry.DetectionEventRow
	for i, threshold := range batteryWarnThresholds {
		bit := uint8(1) << i
		if d.BatteryPct <= threshold && d.WarnedMask&bit == 0 {
			d.WarnedMask |= bit
			events = append(events, telemetry.DetectionEventRow{
				Kind:       telemetry.EventBatteryWarning,
				DroneID:    d.ID,
				Position:   d.Position,
				BatteryPct: d.BatteryPct,
				ReturnMin:  d.ReturnMinutesRequired,
				Message: fmt.Sprintf("%s battery at %.0f%% (%.1f min remaining)",
					d.Callsign, d.BatteryPct, d.BatteryMinutesRemaining),
				Timestamp: now,
			})
		}
	}
	return events
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
