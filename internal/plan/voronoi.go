// Area partitioning and coverage path planning for the drone fleet.
package plan

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"sarsim/internal/geo"
)

const (
	// maxRebalanceIterations caps the weight adaptation loop.
	maxRebalanceIterations = 24
	// areaTolerance is the max relative area deviation accepted as converged.
	areaTolerance = 0.15
	// minSiteWeight floors a site's weight so a parked drone still gets a cell.
	minSiteWeight = 0.1
	// perturbRadiusFrac sizes the separation circle for coincident sites,
	// as a fraction of the smaller sector dimension.
	perturbRadiusFrac = 0.001
	// offsetGain converts an area error (m²) into a power-offset step.
	// gainGrow and gainShrink adapt it: a step that reduces the worst
	// deviation is accepted and the gain grows; a step that doesn't is
	// discarded and retried from the best offsets with a smaller gain.
	offsetGain = 0.5
	gainGrow   = 1.3
	gainShrink = 0.25
)

// Site is one partition seed: a drone position weighted by its speed.
type Site struct {
	DroneID  string
	Position geo.Vec2
	Weight   float64
}

// Cell is the sector region assigned to one drone. Derived data: recomputed
// on demand, never persisted.
type Cell struct {
	DroneID  string     `json:"droneId"`
	Polygon  []geo.Vec2 `json:"polygon"`
	Centroid geo.Vec2   `json:"centroid"`
}

// ComputeCells partitions the sector among the sites, with cell areas
// converging toward each site's weight share. The partition is a power
// diagram: sites stay fixed and each carries an additive offset on its
// bisector constants, grown when its cell is undersized and shrunk when
// oversized. Adapting the offsets instead of moving the sites keeps the
// correction direction right regardless of where a site sits in the sector.
// After at most maxRebalanceIterations the last partition is returned even
// if the deviation still exceeds areaTolerance. Fewer than two sites yields
// nil.
func ComputeCells(sites []Site, bounds geo.SectorBounds) []Cell {
	if len(sites) < 2 {
		return nil
	}

	positions := preparePositions(sites, bounds)
	weights := make([]float64, len(sites))
	for i, s := range sites {
		weights[i] = math.Max(s.Weight, minSiteWeight)
	}
	totalWeight := floats.Sum(weights)
	totalArea := bounds.WidthMeters * bounds.HeightMeters

	targets := make([]float64, len(sites))
	for i := range targets {
		targets[i] = totalArea * weights[i] / totalWeight
	}

	n := len(sites)
	bestOffsets := make([]float64, n)
	bestCells := clipAll(sites, positions, bestOffsets, bounds)
	bestAreas := make([]float64, n)
	devs := make([]float64, n)
	for i, c := range bestCells {
		bestAreas[i] = geo.Area(c.Polygon)
		devs[i] = math.Abs(bestAreas[i]-targets[i]) / targets[i]
	}
	bestWorst := floats.Max(devs)

	// Trust-region loop on the offsets. A trial step can overshoot when two
	// sites sit close together and share a long bisector, so worsening steps
	// are rolled back rather than compounded.
	gain := offsetGain
	trial := make([]float64, n)
	areas := make([]float64, n)
	for iter := 0; iter < maxRebalanceIterations && bestWorst > areaTolerance; iter++ {
		for i := range trial {
			trial[i] = bestOffsets[i] + gain*(targets[i]-bestAreas[i])
		}
		cells := clipAll(sites, positions, trial, bounds)
		for i, c := range cells {
			areas[i] = geo.Area(c.Polygon)
			devs[i] = math.Abs(areas[i]-targets[i]) / targets[i]
		}
		if worst := floats.Max(devs); worst < bestWorst {
			copy(bestOffsets, trial)
			copy(bestAreas, areas)
			bestCells = cells
			bestWorst = worst
			gain *= gainGrow
		} else {
			gain *= gainShrink
		}
	}
	return bestCells
}

// preparePositions clamps sites into bounds and spreads coincident or
// near-coincident sites on a small circle so the bisector clipping cannot
// degenerate.
func preparePositions(sites []Site, bounds geo.SectorBounds) []geo.Vec2 {
	minDim := math.Min(bounds.WidthMeters, bounds.HeightMeters)
	sep := minDim * perturbRadiusFrac
	positions := make([]geo.Vec2, len(sites))
	for i, s := range sites {
		p := bounds.Clamp(s.Position)
		for j := 0; j < i; j++ {
			if p.Dist(positions[j]) < sep {
				angle := 2 * math.Pi * float64(i) / float64(len(sites))
				p = bounds.Clamp(p.Add(geo.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(sep)))
				break
			}
		}
		positions[i] = p
	}
	return positions
}

// clipAll builds each site's cell by clipping the sector rectangle against
// the power-bisector half-plane toward every other site. With equal offsets
// this is the plain perpendicular bisector; a larger offset for site i moves
// every shared bisector toward its neighbors, growing cell i.
func clipAll(sites []Site, positions []geo.Vec2, offsets []float64, bounds geo.SectorBounds) []Cell {
	cells := make([]Cell, len(sites))
	for i := range sites {
		poly := bounds.Corners()
		si := positions[i]
		for j := range sites {
			if i == j || len(poly) == 0 {
				continue
			}
			sj := positions[j]
			// Points p with |p-si|^2 - oi <= |p-sj|^2 - oj satisfy n.p <= c for:
			n := sj.Sub(si)
			c := (sj.X*sj.X+sj.Y*sj.Y-si.X*si.X-si.Y*si.Y)/2 + (offsets[i]-offsets[j])/2
			poly = geo.ClipHalfPlane(poly, n, c)
		}
		cells[i] = Cell{
			DroneID:  sites[i].DroneID,
			Polygon:  poly,
			Centroid: geo.Centroid(poly),
		}
	}
	return cells
}
