package geo

import "math"

const degenerateAreaEps = 1e-9

// SignedArea computes the signed area of a simple polygon via the shoelace
// formula. Counterclockwise winding yields a positive area.
func SignedArea(poly []Vec2) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Area returns the absolute area of a simple polygon.
func Area(poly []Vec2) float64 {
	return math.Abs(SignedArea(poly))
}

// Centroid returns the area-weighted centroid of a simple polygon.
// Near-degenerate polygons fall back to the arithmetic mean of vertices.
func Centroid(poly []Vec2) Vec2 {
	if len(poly) == 0 {
		return Vec2{}
	}
	a := SignedArea(poly)
	if math.Abs(a) < degenerateAreaEps {
		var mean Vec2
		for _, p := range poly {
			mean = mean.Add(p)
		}
		return mean.Scale(1 / float64(len(poly)))
	}
	var cx, cy float64
	for i := range poly {
		j := (i + 1) % len(poly)
		cross := poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		cx += (poly[i].X + poly[j].X) * cross
		cy += (poly[i].Y + poly[j].Y) * cross
	}
	return Vec2{cx / (6 * a), cy / (6 * a)}
}

// BoundingBox returns the min and max corners of the polygon's AABB.
func BoundingBox(poly []Vec2) (min, max Vec2) {
	if len(poly) == 0 {
		return Vec2{}, Vec2{}
	}
	min, max = poly[0], poly[0]
	for _, p := range poly[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// ClipHalfPlane clips a convex polygon against the half-plane of points p
// satisfying dot(p, n) <= c, using Sutherland-Hodgman. The result stays
// convex; an empty slice means the polygon lies entirely outside.
func ClipHalfPlane(poly []Vec2, n Vec2, c float64) []Vec2 {
	if len(poly) == 0 {
		return nil
	}
	inside := func(p Vec2) bool { return n.X*p.X+n.Y*p.Y <= c }
	var out []Vec2
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		curIn, nextIn := inside(cur), inside(next)
		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			// Intersection of segment cur->next with the boundary line.
			d := next.Sub(cur)
			denom := n.X*d.X + n.Y*d.Y
			if math.Abs(denom) > degenerateAreaEps {
				t := (c - (n.X*cur.X + n.Y*cur.Y)) / denom
				out = append(out, cur.Add(d.Scale(t)))
			}
		}
	}
	return out
}
