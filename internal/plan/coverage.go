package plan

import (
	"math"
	"sort"

	"sarsim/internal/geo"
)

// Lane is one straight sweep segment, flown Start to End.
type Lane struct {
	Start geo.Vec2 `json:"start"`
	End   geo.Vec2 `json:"end"`
}

// CoveragePlan carries the boustrophedon lanes and derived waypoint list for
// one cell. CompletenessPct estimates swept area over cell area; it does not
// subtract the double-swept strips at turns.
type CoveragePlan struct {
	DroneID         string     `json:"droneId"`
	CellID          string     `json:"cellId"`
	Polygon         []geo.Vec2 `json:"polygon"`
	SpacingMeters   float64    `json:"spacingMeters"`
	OverlapRatio    float64    `json:"overlapRatio"`
	Lanes           []Lane     `json:"lanes"`
	Waypoints       []geo.Vec2 `json:"waypoints"`
	CompletenessPct float64    `json:"completenessPct"`
}

// PlanCoveragePaths converts partition cells into sweep plans. Spacing is the
// sensor footprint width; overlap (clamped to [0, 0.9]) shrinks the effective
// lane distance. A non-positive spacing returns nil immediately, and cells
// too small to produce any lane are filtered out rather than erroring.
func PlanCoveragePaths(cells []Cell, spacingMeters, overlapRatio float64) []CoveragePlan {
	if spacingMeters <= 0 {
		return nil
	}
	overlap := math.Min(math.Max(overlapRatio, 0), 0.9)
	step := spacingMeters * (1 - overlap)

	var plans []CoveragePlan
	for _, cell := range cells {
		lanes := sweepLanes(cell.Polygon, step)
		if len(lanes) == 0 {
			continue
		}
		plans = append(plans, CoveragePlan{
			DroneID:         cell.DroneID,
			CellID:          "cell-" + cell.DroneID,
			Polygon:         cell.Polygon,
			SpacingMeters:   spacingMeters,
			OverlapRatio:    overlap,
			Lanes:           lanes,
			Waypoints:       flattenLanes(lanes),
			CompletenessPct: completeness(lanes, spacingMeters, geo.Area(cell.Polygon)),
		})
	}
	return plans
}

// sweepLanes marches a scan line across the cell's bounding box at fixed
// step intervals, offset by half a step, and pairs the polygon boundary
// intersections into interior segments. Lanes run parallel to the longer
// bounding-box side so the sweep needs fewer turns, and alternate direction
// per lane index to form a continuous boustrophedon.
func sweepLanes(poly []geo.Vec2, step float64) []Lane {
	if len(poly) < 3 || geo.Area(poly) < 1e-6 {
		return nil
	}
	min, max := geo.BoundingBox(poly)
	horizontal := (max.X - min.X) >= (max.Y - min.Y)

	var lanes []Lane
	lo, hi := min.Y, max.Y
	if !horizontal {
		lo, hi = min.X, max.X
	}
	for scan := lo + step/2; scan < hi; scan += step {
		var hits []float64
		if horizontal {
			hits = scanIntersections(poly, scan, true)
		} else {
			hits = scanIntersections(poly, scan, false)
		}
		sort.Float64s(hits)
		for i := 0; i+1 < len(hits); i += 2 {
			a, b := hits[i], hits[i+1]
			if b-a < 1e-9 {
				continue
			}
			var lane Lane
			if horizontal {
				lane = Lane{Start: geo.Vec2{X: a, Y: scan}, End: geo.Vec2{X: b, Y: scan}}
			} else {
				lane = Lane{Start: geo.Vec2{X: scan, Y: a}, End: geo.Vec2{X: scan, Y: b}}
			}
			if len(lanes)%2 == 1 {
				lane.Start, lane.End = lane.End, lane.Start
			}
			lanes = append(lanes, lane)
		}
	}
	return lanes
}

// scanIntersections returns the coordinates where the scan line crosses the
// polygon boundary. For a horizontal scan the line is y=scan and the returned
// values are x coordinates; for a vertical scan the roles swap.
func scanIntersections(poly []geo.Vec2, scan float64, horizontal bool) []float64 {
	var hits []float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		var pa, pb, oa, ob float64
		if horizontal {
			pa, pb, oa, ob = p.Y, q.Y, p.X, q.X
		} else {
			pa, pb, oa, ob = p.X, q.X, p.Y, q.Y
		}
		// Half-open interval avoids double-counting shared vertices.
		if (pa <= scan && pb > scan) || (pb <= scan && pa > scan) {
			t := (scan - pa) / (pb - pa)
			hits = append(hits, oa+(ob-oa)*t)
		}
	}
	return hits
}

// flattenLanes builds the waypoint polyline: each lane contributes its start
// and end, so the end of one lane and the start of the next form the explicit
// connector segment waypoint-following logic flies between sweeps.
func flattenLanes(lanes []Lane) []geo.Vec2 {
	wps := make([]geo.Vec2, 0, len(lanes)*2)
	for _, l := range lanes {
		wps = append(wps, l.Start, l.End)
	}
	return wps
}

// completeness estimates swept area as total lane length times the full
// sensor footprint width. Lanes sit one overlap-reduced step apart, so the
// footprint, not the step, is what each lane actually covers.
func completeness(lanes []Lane, spacing, area float64) float64 {
	if area <= 0 {
		return 0
	}
	var length float64
	for _, l := range lanes {
		length += l.Start.Dist(l.End)
	}
	frac := math.Min(1, length*spacing/area)
	return math.Round(frac * 100)
}
