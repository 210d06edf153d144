// Planar geometry primitives shared by the generator, planner, and simulator.
package geo

import "math"

// Vec2 is a position or displacement in meters on the sector plane.
// Y increases northward; there is no geodesy in this simulation.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Length returns the Euclidean norm of v.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Length() }

// HeadingDeg returns the compass-style heading of the displacement in
// degrees, measured from east counterclockwise (atan2 convention).
func (v Vec2) HeadingDeg() float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// SectorBounds is the axis-aligned rectangle a scenario plays out in.
// Width and height are always positive.
type SectorBounds struct {
	Origin       Vec2    `json:"origin"`
	WidthMeters  float64 `json:"widthMeters"`
	HeightMeters float64 `json:"heightMeters"`
}

// Center returns the midpoint of the sector.
func (b SectorBounds) Center() Vec2 {
	return Vec2{b.Origin.X + b.WidthMeters/2, b.Origin.Y + b.HeightMeters/2}
}

// Contains reports whether p lies inside the sector (borders included).
func (b SectorBounds) Contains(p Vec2) bool {
	return p.X >= b.Origin.X && p.X <= b.Origin.X+b.WidthMeters &&
		p.Y >= b.Origin.Y && p.Y <= b.Origin.Y+b.HeightMeters
}

// Clamp returns p moved to the nearest point inside the sector.
func (b SectorBounds) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Min(math.Max(p.X, b.Origin.X), b.Origin.X+b.WidthMeters),
		Y: math.Min(math.Max(p.Y, b.Origin.Y), b.Origin.Y+b.HeightMeters),
	}
}

// Corners returns the rectangle as a counterclockwise polygon.
func (b SectorBounds) Corners() []Vec2 {
	return []Vec2{
		b.Origin,
		{b.Origin.X + b.WidthMeters, b.Origin.Y},
		{b.Origin.X + b.WidthMeters, b.Origin.Y + b.HeightMeters},
		{b.Origin.X, b.Origin.Y + b.HeightMeters},
	}
}
