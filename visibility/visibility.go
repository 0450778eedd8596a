// Package visibility filters the BSP traversal down to the wall fragments a
// viewpoint can actually see: walls are clipped to the field-of-view
// triangle, converted to angular intervals and occluded near-to-far.
package visibility

import (
	"math"

	"github.com/bloodmagesoftware/xoom/bsp"
	"github.com/bloodmagesoftware/xoom/geom"
)

// View is a transient per-frame viewpoint.
type View struct {
	Pos      geom.Vec
	AngleDeg float64
	FOVDeg   float64
	// FOVLength caps how far the view reaches, in map units.
	FOVLength float64
}

// AngleRad returns the facing angle in radians.
func (v View) AngleRad() float64 { return v.AngleDeg * math.Pi / 180 }

// Edges returns the two far corners of the FOV triangle.
func (v View) Edges() (geom.Vec, geom.Vec) {
	half := v.FOVDeg / 2 * math.Pi / 180
	a1 := v.AngleRad() - half
	a2 := v.AngleRad() + half
	return geom.Vec{
			v.Pos.X() + math.Cos(a1)*v.FOVLength,
			v.Pos.Y() + math.Sin(a1)*v.FOVLength,
		}, geom.Vec{
			v.Pos.X() + math.Cos(a2)*v.FOVLength,
			v.Pos.Y() + math.Sin(a2)*v.FOVLength,
		}
}

type interval struct {
	start, end float64
}

// Visible walks the tree near-to-far and returns the draw entries for every
// wall fragment inside the FOV that nearer walls have not already covered.
// The result is ordered nearest first; renderers drawing it with per-column
// occlusion already resolved may paint in any order.
func Visible(tree *bsp.Tree, view View) []geom.DrawWall {
	if tree == nil || tree.Empty() {
		return nil
	}

	half := view.FOVDeg / 2 * math.Pi / 180
	e1, e2 := view.Edges()
	tri := [3]geom.Vec{view.Pos, e1, e2}

	var (
		visible []geom.DrawWall
		covered []interval
	)

	tree.FrontToBack(view.Pos, func(w geom.Wall) bool {
		for _, frag := range clipToTriangle(w.A, w.B, tri) {
			a0 := angleDiff(math.Atan2(frag[0].Y()-view.Pos.Y(), frag[0].X()-view.Pos.X()), view.AngleRad())
			a1 := angleDiff(math.Atan2(frag[1].Y()-view.Pos.Y(), frag[1].X()-view.Pos.X()), view.AngleRad())
			lo := math.Max(math.Min(a0, a1), -half)
			hi := math.Min(math.Max(a0, a1), half)
			if hi <= lo {
				continue
			}
			for _, iv := range subtract(interval{lo, hi}, covered) {
				t0, t1 := 0.0, 1.0
				if a1 != a0 {
					t0 = (iv.start - a0) / (a1 - a0)
					t1 = (iv.end - a0) / (a1 - a0)
				}
				p0 := geom.Lerp(frag[0], frag[1], t0)
				p1 := geom.Lerp(frag[0], frag[1], t1)

				entry := geom.DrawEntry(w)
				entry.A, entry.B = p0, p1
				entry.U0 = w.UAt(p0)
				entry.U1 = w.UAt(p1)
				visible = append(visible, entry)
				covered = append(covered, iv)
			}
			covered = merge(covered)
		}
		// Stop once the whole FOV is covered.
		return coverage(covered) < 2*half-geom.Epsilon
	})

	return visible
}

// clipToTriangle clips segment ab against the FOV triangle and returns 0, 1
// or 2 fragments. Clipping a segment against three half-planes can yield up
// to three points; adjacent pairs are the surviving fragments.
func clipToTriangle(a, b geom.Vec, tri [3]geom.Vec) [][2]geom.Vec {
	poly := []geom.Vec{a, b}
	for i := 0; i < 3; i++ {
		poly = clipAgainstEdge(poly, tri[i], tri[(i+1)%3])
		if len(poly) < 2 {
			return nil
		}
	}
	frags := make([][2]geom.Vec, 0, len(poly)-1)
	for i := 0; i+1 < len(poly); i++ {
		if poly[i].Sub(poly[i+1]).Len() > geom.Epsilon {
			frags = append(frags, [2]geom.Vec{poly[i], poly[i+1]})
		}
	}
	return frags
}

// clipAgainstEdge keeps the part of a point chain on the left of edge ab.
func clipAgainstEdge(poly []geom.Vec, a, b geom.Vec) []geom.Vec {
	inside := func(p geom.Vec) bool {
		return (b.X()-a.X())*(p.Y()-a.Y())-(b.Y()-a.Y())*(p.X()-a.X()) >= 0
	}
	var out []geom.Vec
	for i := 0; i < len(poly); i++ {
		curr := poly[i]
		prev := poly[(i+len(poly)-1)%len(poly)]
		ic, ip := inside(curr), inside(prev)
		if ic {
			if !ip {
				out = append(out, lineCross(prev, curr, a, b))
			}
			out = append(out, curr)
		} else if ip {
			out = append(out, lineCross(prev, curr, a, b))
		}
	}
	return out
}

// lineCross intersects the infinite lines through p1p2 and q1q2. Parallel
// lines fall back to p1; the clipper only calls this when the endpoints
// straddle the edge, so a true parallel case is floating-point noise.
func lineCross(p1, p2, q1, q2 geom.Vec) geom.Vec {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)
	denom := d1.X()*d2.Y() - d1.Y()*d2.X()
	if math.Abs(denom) < geom.Epsilon {
		return p1
	}
	diff := q1.Sub(p1)
	t := (diff.X()*d2.Y() - diff.Y()*d2.X()) / denom
	return p1.Add(d1.Mul(t))
}

// subtract returns the parts of iv not covered by any interval in covered.
func subtract(iv interval, covered []interval) []interval {
	var out []interval
	curr := iv.start
	for _, c := range sorted(covered) {
		if c.end <= curr {
			continue
		}
		if c.start >= iv.end {
			break
		}
		if c.start > curr {
			out = append(out, interval{curr, math.Min(c.start, iv.end)})
		}
		curr = math.Max(curr, c.end)
		if curr >= iv.end {
			break
		}
	}
	if curr < iv.end {
		out = append(out, interval{curr, iv.end})
	}
	return out
}

// merge joins overlapping intervals.
func merge(intervals []interval) []interval {
	if len(intervals) == 0 {
		return nil
	}
	s := sorted(intervals)
	out := []interval{s[0]}
	for _, iv := range s[1:] {
		last := &out[len(out)-1]
		if iv.start <= last.end {
			last.end = math.Max(last.end, iv.end)
		} else {
			out = append(out, iv)
		}
	}
	return out
}

func sorted(intervals []interval) []interval {
	s := make([]interval, len(intervals))
	copy(s, intervals)
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].start < s[j-1].start; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s
}

func coverage(intervals []interval) float64 {
	total := 0.0
	for _, iv := range merge(intervals) {
		total += iv.end - iv.start
	}
	return total
}

// angleDiff wraps a-b into (-pi, pi].
func angleDiff(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
