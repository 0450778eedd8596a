// Package geom holds the shared 2D map vocabulary: vertices, directed wall
// segments, sectors and the half-plane tests everything above it runs on.
package geom

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec is a 2D point or direction in map units.
type Vec = mgl64.Vec2

// Epsilon is the signed-distance tolerance below which a point counts as
// lying exactly on a line. Map units are tens-to-hundreds scale, so 1e-6
// is far below any geometry the loader accepts.
const Epsilon = 1e-6

// ErrDegenerateWall is returned for a wall whose endpoints coincide.
var ErrDegenerateWall = errors.New("geom: wall endpoints coincide")

// Side is the result of classifying a point against a line.
type Side int

const (
	Back   Side = -1
	OnLine Side = 0
	Front  Side = 1
)

// Perp returns v rotated 90 degrees counter-clockwise.
func Perp(v Vec) Vec {
	return Vec{-v.Y(), v.X()}
}

// Lerp interpolates between a and b.
func Lerp(a, b Vec, t float64) Vec {
	return Vec{a.X() + (b.X()-a.X())*t, a.Y() + (b.Y()-a.Y())*t}
}

// Line is an infinite 2D line in normal/distance form: Normal·p = Distance.
type Line struct {
	Normal   Vec
	Distance float64
}

// LineThrough builds the line through a and b. The normal points to the left
// of the a→b direction, so a counter-clockwise vertex loop has its normals
// facing the room interior.
func LineThrough(a, b Vec) Line {
	n := Perp(b.Sub(a))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return Line{Normal: n, Distance: n.Dot(a)}
}

// SignedDist returns the signed distance from p to the line.
// Positive is the front (normal) side.
func (l Line) SignedDist(p Vec) float64 {
	return l.Normal.Dot(p) - l.Distance
}

// Classify returns which side of the line p is on, treating anything within
// Epsilon as on the line.
func (l Line) Classify(p Vec) Side {
	d := l.SignedDist(p)
	switch {
	case d > Epsilon:
		return Front
	case d < -Epsilon:
		return Back
	default:
		return OnLine
	}
}

// Sector is a closed polygon region with its own height band and textures.
// Solid is derived from the winding order of the vertex loop at load time:
// clockwise loops are interior obstructions, counter-clockwise loops are
// traversable rooms.
type Sector struct {
	Name     string
	Vertices []Vec
	Floor    float64
	Ceiling  float64

	WallTexture    string
	FloorTexture   string
	CeilingTexture string

	Solid bool
}

// Wall is a directed segment A→B bounding a sector. The cached line is the
// infinite extension used for half-plane tests during BSP build and
// traversal.
type Wall struct {
	A, B    Vec
	Sector  *Sector
	Texture string
	// UOffset is the texture U coordinate at A, in map units along the
	// original wall. Split fragments keep their offsets consistent with
	// the wall they came from.
	UOffset float64
	// Solid mirrors the owning sector's winding-derived solidity: true for
	// walls of interior obstructions, false for room boundaries.
	Solid bool
	// Blocking marks walls the collision resolver and ray casts must not
	// let the player cross. Room boundaries block from the outside too,
	// so this defaults to true for every wall.
	Blocking bool

	line Line
}

// NewWall builds a wall and caches its line coefficients. Zero-length walls
// are rejected; the loader reports them as malformed-map errors.
func NewWall(a, b Vec, sector *Sector, texture string) (Wall, error) {
	if a.Sub(b).Len() < Epsilon {
		return Wall{}, ErrDegenerateWall
	}
	w := Wall{A: a, B: b, Sector: sector, Texture: texture, Blocking: true, line: LineThrough(a, b)}
	if sector != nil {
		w.Solid = sector.Solid
		if texture == "" {
			w.Texture = sector.WallTexture
		}
	}
	return w, nil
}

// Line returns the wall's infinite-line extension.
func (w Wall) Line() Line { return w.line }

// Length returns the segment length.
func (w Wall) Length() float64 { return w.B.Sub(w.A).Len() }

// Dir returns the normalized A→B direction.
func (w Wall) Dir() Vec {
	d := w.B.Sub(w.A)
	if l := d.Len(); l > 0 {
		return d.Mul(1 / l)
	}
	return d
}

// Normal returns the wall's unit normal (left of A→B).
func (w Wall) Normal() Vec { return w.line.Normal }

// Classify tests a point against the wall's infinite line.
func (w Wall) Classify(p Vec) Side { return w.line.Classify(p) }

// SplitAt cuts the wall at a point on its line, returning the A→p and p→B
// fragments. Sector, texture and solidity carry over; the second fragment's
// UOffset advances by the length of the first so texturing stays continuous.
func (w Wall) SplitAt(p Vec) (Wall, Wall) {
	front := w
	front.B = p
	back := w
	back.A = p
	back.UOffset = w.UOffset + p.Sub(w.A).Len()
	// The line is unchanged: p lies on it.
	return front, back
}

// UAt projects p onto the wall and returns its texture U coordinate,
// clamped to the wall's extent.
func (w Wall) UAt(p Vec) float64 {
	d := w.B.Sub(w.A)
	l2 := d.Dot(d)
	if l2 == 0 {
		return w.UOffset
	}
	t := p.Sub(w.A).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return w.UOffset + t*math.Sqrt(l2)
}

// SignedArea computes the signed area of a vertex loop. Positive area is
// counter-clockwise in the map's coordinate convention.
func SignedArea(pts []Vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X()*pts[j].Y() - pts[j].X()*pts[i].Y()
	}
	return area / 2
}

// IsClockwise reports whether a vertex loop winds clockwise.
func IsClockwise(pts []Vec) bool {
	return SignedArea(pts) < 0
}

// ClosestOnSegment returns the point on segment ab nearest to p.
func ClosestOnSegment(p, a, b Vec) Vec {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Add(d.Mul(t))
}

// PointSegmentDistance returns the distance from p to segment ab, clamped to
// the segment's extent rather than its infinite line.
func PointSegmentDistance(p, a, b Vec) float64 {
	return p.Sub(ClosestOnSegment(p, a, b)).Len()
}

// SegmentIntersection intersects segments p1p2 and q1q2. The boolean is
// false when they are parallel or the crossing falls outside either extent.
func SegmentIntersection(p1, p2, q1, q2 Vec) (Vec, bool) {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)
	denom := d1.X()*d2.Y() - d1.Y()*d2.X()
	if math.Abs(denom) < Epsilon {
		return Vec{}, false
	}
	diff := q1.Sub(p1)
	t := (diff.X()*d2.Y() - diff.Y()*d2.X()) / denom
	u := (diff.X()*d1.Y() - diff.Y()*d1.X()) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec{}, false
	}
	return p1.Add(d1.Mul(t)), true
}

// DrawWall is one renderer-facing draw entry: world-space endpoints, the U
// range for texturing, and the owning sector's height band and textures.
// It is self-contained so the renderer never consults the BSP tree.
type DrawWall struct {
	A, B    Vec
	U0, U1  float64
	Floor   float64
	Ceiling float64
	Texture string
	Sector  *Sector
}

// DrawEntry derives the draw record for a whole wall.
func DrawEntry(w Wall) DrawWall {
	e := DrawWall{
		A:       w.A,
		B:       w.B,
		U0:      w.UOffset,
		U1:      w.UOffset + w.Length(),
		Texture: w.Texture,
		Sector:  w.Sector,
	}
	if w.Sector != nil {
		e.Floor = w.Sector.Floor
		e.Ceiling = w.Sector.Ceiling
	}
	return e
}
