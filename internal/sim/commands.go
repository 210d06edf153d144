// Operator command surface: waypoints, RTB, partitioning, coverage.
package sim

import (
	"sarsim/internal/geo"
	"sarsim/internal/plan"
)

// SetWaypoint replaces or appends to each selected drone's queue. Replacing
// clears the queue and puts the drone enroute; appending promotes the point
// to the active target only when none is set. Drones holding an emergency
// return ignore waypoint commands until they land.
func (s *Simulator) SetWaypoint(ids []string, pt geo.Vec2, appendWp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt = s.scn.Sector.Bounds.Clamp(pt)
	for i := range s.drones {
		if !idSelected(ids, s.drones[i].ID) {
			continue
		}
		d := s.drones[i].clone()
		if d.EmergencyFired && d.Status == StatusReturning {
			continue
		}
		if appendWp {
			if d.TargetPosition == nil {
				target := pt
				d.TargetPosition = &target
				if d.Status == StatusIdle || d.Status == StatusLanded {
					d.Status = StatusEnroute
				}
			} else {
				d.Waypoints = append(d.Waypoints, pt)
			}
		} else {
			target := pt
			d.TargetPosition = &target
			d.Waypoints = nil
			d.Status = StatusEnroute
		}
		s.drones[i] = d
	}
}

// ReturnToBase orders drones home. Immediate overrides the current target and
// clears the queue; otherwise the hub is appended to the tail of the queue
// unless it is already the last stop.
func (s *Simulator) ReturnToBase(ids []string, immediate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drones {
		if !idSelected(ids, s.drones[i].ID) {
			continue
		}
		d := s.drones[i].clone()
		home := d.HomePosition
		if immediate {
			d.TargetPosition = &home
			d.Waypoints = nil
			d.Status = StatusReturning
		} else {
			if d.TargetPosition == nil {
				d.TargetPosition = &home
				d.Status = StatusReturning
			} else if len(d.Waypoints) == 0 || d.Waypoints[len(d.Waypoints)-1] != home {
				d.Waypoints = append(d.Waypoints, home)
			}
		}
		s.drones[i] = d
	}
}

// SetSpeed adjusts a drone's commanded speed in knots. Non-positive values
// are floored at zero (the drone holds position).
func (s *Simulator) SetSpeed(id string, kts float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drones {
		if s.drones[i].ID != id {
			continue
		}
		d := s.drones[i].clone()
		if kts < 0 {
			kts = 0
		}
		d.SpeedKts = kts
		s.drones[i] = d
		return
	}
}

// RunPartition divides the sector among the selected drones (all drones when
// the selection is empty) and caches the cells for StartCoverage.
func (s *Simulator) RunPartition(selected []string) []plan.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sites []plan.Site
	for _, d := range s.drones {
		if len(selected) > 0 && !idSelected(selected, d.ID) {
			continue
		}
		sites = append(sites, plan.Site{DroneID: d.ID, Position: d.Position, Weight: d.SpeedKts})
	}
	s.cells = plan.ComputeCells(sites, s.scn.Sector.Bounds)
	return s.cellsCopyLocked()
}

// ClearPartition drops the cached cells.
func (s *Simulator) ClearPartition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = nil
}

// Cells returns a copy of the cached partition.
func (s *Simulator) Cells() []plan.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellsCopyLocked()
}

func (s *Simulator) cellsCopyLocked() []plan.Cell {
	out := make([]plan.Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// StartCoverage plans sweep paths over the cached partition (computing one
// over all drones when none is cached) and loads each drone's queue with its
// plan. Drones receiving a plan go to search status; drones holding an
// emergency return are skipped.
func (s *Simulator) StartCoverage(spacingMeters, overlapRatio float64) []plan.CoveragePlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := s.cells
	if len(cells) == 0 {
		var sites []plan.Site
		for _, d := range s.drones {
			sites = append(sites, plan.Site{DroneID: d.ID, Position: d.Position, Weight: d.SpeedKts})
		}
		cells = plan.ComputeCells(sites, s.scn.Sector.Bounds)
		s.cells = cells
	}
	plans := plan.PlanCoveragePaths(cells, spacingMeters, overlapRatio)

	for _, p := range plans {
		for i := range s.drones {
			if s.drones[i].ID != p.DroneID {
				continue
			}
			d := s.drones[i].clone()
			if d.EmergencyFired && d.Status == StatusReturning {
				break
			}
			pc := p
			d.Plan = &pc
			d.TargetPosition = nil
			d.Waypoints = append([]geo.Vec2(nil), p.Waypoints...)
			d.Status = StatusSearch
			s.drones[i] = d
			break
		}
	}
	return plans
}

func idSelected(ids []string, id string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
