package plan

import (
	"math"
	"testing"

	"sarsim/internal/geo"
)

func rectCell(id string, w, h float64) Cell {
	poly := []geo.Vec2{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	return Cell{DroneID: id, Polygon: poly, Centroid: geo.Centroid(poly)}
}

func TestPlanCoverageRejectsZeroSpacing(t *testing.T) {
	cells := []Cell{rectCell("d1", 1000, 500)}
	if plans := PlanCoveragePaths(cells, 0, 0.1); plans != nil {
		t.Errorf("zero spacing should yield nil, got %v", plans)
	}
	if plans := PlanCoveragePaths(cells, -5, 0.1); plans != nil {
		t.Errorf("negative spacing should yield nil, got %v", plans)
	}
}

func TestPlanCoverageLanesFollowLongSide(t *testing.T) {
	// Wide cell: lanes run horizontally, marching up the short side.
	plans := PlanCoveragePaths([]Cell{rectCell("d1", 1000, 300)}, 100, 0)
	if len(plans) != 1 {
		t.Fatalf("expected one plan, got %d", len(plans))
	}
	p := plans[0]
	if len(p.Lanes) != 3 {
		t.Fatalf("expected 3 lanes at 100m spacing over 300m, got %d", len(p.Lanes))
	}
	for i, l := range p.Lanes {
		if math.Abs(l.Start.Y-l.End.Y) > 1e-9 {
			t.Errorf("lane %d is not horizontal: %v", i, l)
		}
		wantY := 50 + float64(i)*100
		if math.Abs(l.Start.Y-wantY) > 1e-6 {
			t.Errorf("lane %d at y=%.2f, want %.2f", i, l.Start.Y, wantY)
		}
	}
	// Boustrophedon alternation: consecutive lanes reverse direction.
	for i := 1; i < len(p.Lanes); i++ {
		prev := p.Lanes[i-1].End.X - p.Lanes[i-1].Start.X
		cur := p.Lanes[i].End.X - p.Lanes[i].Start.X
		if prev*cur >= 0 {
			t.Errorf("lanes %d and %d sweep the same direction", i-1, i)
		}
	}
	if len(p.Waypoints) != len(p.Lanes)*2 {
		t.Errorf("waypoints = %d, want %d", len(p.Waypoints), len(p.Lanes)*2)
	}
}

func TestPlanCoverageTallCellUsesVerticalLanes(t *testing.T) {
	plans := PlanCoveragePaths([]Cell{rectCell("d1", 200, 900)}, 100, 0)
	if len(plans) != 1 {
		t.Fatalf("expected one plan, got %d", len(plans))
	}
	for i, l := range plans[0].Lanes {
		if math.Abs(l.Start.X-l.End.X) > 1e-9 {
			t.Errorf("lane %d is not vertical: %v", i, l)
		}
	}
}

func TestPlanCoverageCompletenessBounds(t *testing.T) {
	cells := []Cell{
		rectCell("big", 2000, 1500),
		rectCell("small", 120, 90),
	}
	for _, spacing := range []float64{30, 75, 300} {
		for _, overlap := range []float64{0, 0.25, 2.0} {
			for _, p := range PlanCoveragePaths(cells, spacing, overlap) {
				if p.CompletenessPct < 0 || p.CompletenessPct > 100 {
					t.Errorf("completeness %.1f out of [0,100] (spacing=%.0f overlap=%.2f)",
						p.CompletenessPct, spacing, overlap)
				}
			}
		}
	}
}

func TestPlanCoverageFiltersDegenerateCells(t *testing.T) {
	cells := []Cell{
		{DroneID: "line", Polygon: []geo.Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0}}},
		rectCell("ok", 500, 500),
	}
	plans := PlanCoveragePaths(cells, 50, 0)
	if len(plans) != 1 || plans[0].DroneID != "ok" {
		t.Fatalf("expected only the rectangular cell to plan, got %+v", plans)
	}
}

func TestPlanCoverageOverlapReportsFullCoverage(t *testing.T) {
	// 13 lanes, 75m apart with a 100m footprint: every strip is swept,
	// so the estimate must saturate rather than count only the lane pitch.
	plans := PlanCoveragePaths([]Cell{rectCell("d1", 1000, 1000)}, 100, 0.25)
	if got := plans[0].CompletenessPct; got != 100 {
		t.Errorf("completeness = %.1f, want 100", got)
	}
}

func TestPlanCoverageOverlapTightensLanes(t *testing.T) {
	cell := []Cell{rectCell("d1", 1000, 400)}
	loose := PlanCoveragePaths(cell, 100, 0)
	tight := PlanCoveragePaths(cell, 100, 0.5)
	if len(tight[0].Lanes) <= len(loose[0].Lanes) {
		t.Errorf("overlap should add lanes: %d vs %d", len(tight[0].Lanes), len(loose[0].Lanes))
	}
}

func TestPlanCoverageWaypointsInsideCell(t *testing.T) {
	b := geo.SectorBounds{Origin: geo.Vec2{X: 0, Y: 0}, WidthMeters: 1000, HeightMeters: 400}
	plans := PlanCoveragePaths([]Cell{rectCell("d1", 1000, 400)}, 120, 0.1)
	for _, wp := range plans[0].Waypoints {
		if !b.Contains(wp) {
			t.Errorf("waypoint %v outside the cell rectangle", wp)
		}
	}
}
