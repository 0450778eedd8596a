// Package collision resolves player movement against map walls: the player
// is a circle of fixed radius that may slide along walls but never cross
// them.
package collision

import (
	"math"
	"sort"

	"github.com/bloodmagesoftware/xoom/geom"
)

// MaxPasses bounds the iterative correction loop. Corners need a couple of
// passes because resolving one wall can push the circle into another;
// exhausting the budget is not fatal, the resolver just clamps.
const MaxPasses = 4

// Resolver checks displacements against a wall set. The wall slice is read
// only and shared with the BSP builder.
type Resolver struct {
	walls  []geom.Wall
	radius float64
}

// NewResolver keeps only the blocking walls of the set.
func NewResolver(walls []geom.Wall, radius float64) *Resolver {
	blocking := make([]geom.Wall, 0, len(walls))
	for _, w := range walls {
		if w.Blocking {
			blocking = append(blocking, w)
		}
	}
	return &Resolver{walls: blocking, radius: radius}
}

// Radius returns the bounding radius the resolver was built with.
func (r *Resolver) Radius() float64 { return r.radius }

// Resolve corrects an intended displacement for one simulation step so the
// bounding circle at pos+delta penetrates no blocking wall. The correction
// is applied along wall normals only, so the tangential part of delta
// survives and the player slides along walls instead of stopping dead.
func (r *Resolver) Resolve(pos, delta geom.Vec) geom.Vec {
	candidate := pos.Add(delta)

	for pass := 0; pass < MaxPasses; pass++ {
		hits := r.penetrated(candidate)
		if len(hits) == 0 {
			return candidate.Sub(pos)
		}
		// Nearest wall first keeps corner resolution deterministic and
		// avoids oscillating between the two walls of a corner.
		sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
		for _, h := range hits {
			candidate = r.pushOut(pos, candidate, h.wall)
		}
	}

	if len(r.penetrated(candidate)) > 0 {
		// Budget exhausted without a clean position: stay put.
		return geom.Vec{}
	}
	return candidate.Sub(pos)
}

type hit struct {
	wall geom.Wall
	dist float64
}

func (r *Resolver) penetrated(candidate geom.Vec) []hit {
	var hits []hit
	for _, w := range r.walls {
		d := geom.PointSegmentDistance(candidate, w.A, w.B)
		if d < r.radius-geom.Epsilon {
			hits = append(hits, hit{wall: w, dist: d})
		}
	}
	return hits
}

// pushOut moves candidate to the nearest point outside the wall's radius
// band, on the side of the wall the player started from. Starting-side
// matters: a fast step can put the candidate past the wall's line entirely,
// and pushing out on the candidate's own side would tunnel the player
// through.
func (r *Resolver) pushOut(pos, candidate geom.Vec, w geom.Wall) geom.Vec {
	closest := geom.ClosestOnSegment(candidate, w.A, w.B)
	line := w.Line()

	side := 1.0
	if d := line.SignedDist(pos); d < 0 {
		side = -1
	} else if d <= geom.Epsilon {
		// Starting on the line: take the side the movement came from.
		if line.Normal.Dot(candidate.Sub(pos)) > 0 {
			side = -1
		}
	}

	away := candidate.Sub(closest)
	dist := away.Len()
	onStartSide := line.SignedDist(candidate)*side > 0
	if onStartSide && dist > geom.Epsilon {
		// Penetrating from the start side, including past an endpoint:
		// the minimum translation is straight away from the closest point.
		return closest.Add(away.Mul(r.radius / dist))
	}
	// Crossed the wall's line (or sitting exactly on it): place the circle
	// tangent to the wall back on the starting side.
	return closest.Add(line.Normal.Mul(side * r.radius))
}

// Clearance returns the smallest distance from p to any blocking wall, or
// +Inf when there are none. Useful for spawn validation.
func (r *Resolver) Clearance(p geom.Vec) float64 {
	min := math.Inf(1)
	for _, w := range r.walls {
		if d := geom.PointSegmentDistance(p, w.A, w.B); d < min {
			min = d
		}
	}
	return min
}
