package bsp

import (
	"github.com/bloodmagesoftware/xoom/geom"
)

// sideOf classifies the viewpoint against a node's partition. A viewpoint
// exactly on the splitting line deterministically counts as front, so
// emission order never flickers when the player stands on a partition.
func sideOf(partition geom.Line, p geom.Vec) geom.Side {
	if partition.Classify(p) == geom.Back {
		return geom.Back
	}
	return geom.Front
}

// PaintOrder walks the tree back-to-front relative to the viewpoint and
// returns the draw list in painter order: every wall behind a partition is
// emitted before any wall in front of it, so a renderer compositing in list
// order needs no depth buffer. An empty tree yields an empty list.
func (t *Tree) PaintOrder(viewpoint geom.Vec) []geom.DrawWall {
	var out []geom.DrawWall
	t.paint(t.rootIndex(), viewpoint, &out)
	return out
}

func (t *Tree) paint(idx int32, viewpoint geom.Vec, out *[]geom.DrawWall) {
	if idx == none {
		return
	}
	n := &t.nodes[idx]
	if n.leaf {
		return
	}
	near, far := n.front, n.back
	if sideOf(n.partition, viewpoint) == geom.Back {
		near, far = n.back, n.front
	}
	t.paint(far, viewpoint, out)
	for _, w := range n.walls {
		*out = append(*out, geom.DrawEntry(w))
	}
	t.paint(near, viewpoint, out)
}

// FrontToBack walks the tree near-to-far relative to the viewpoint, calling
// visit for each stored wall. Returning false from visit stops the walk,
// which lets an occlusion filter bail out once the view is fully covered.
func (t *Tree) FrontToBack(viewpoint geom.Vec, visit func(geom.Wall) bool) {
	t.frontToBack(t.rootIndex(), viewpoint, visit)
}

func (t *Tree) frontToBack(idx int32, viewpoint geom.Vec, visit func(geom.Wall) bool) bool {
	if idx == none {
		return true
	}
	n := &t.nodes[idx]
	if n.leaf {
		return true
	}
	near, far := n.front, n.back
	if sideOf(n.partition, viewpoint) == geom.Back {
		near, far = n.back, n.front
	}
	if !t.frontToBack(near, viewpoint, visit) {
		return false
	}
	for _, w := range n.walls {
		if !visit(w) {
			return false
		}
	}
	return t.frontToBack(far, viewpoint, visit)
}

func (t *Tree) rootIndex() int32 {
	if len(t.nodes) == 0 {
		return none
	}
	return t.root
}

// Hit is the result of a ray cast: the nearest blocking wall crossed by the
// segment and the crossing point.
type Hit struct {
	Point geom.Vec
	Wall  geom.Wall
}

// RayCast finds the nearest blocking-wall crossing of the segment from→to.
// The descent prunes subtrees the segment never enters and visits the near
// side first, so the first accepted crossing on a side is a candidate and
// the far side is only consulted when needed.
func (t *Tree) RayCast(from, to geom.Vec) (Hit, bool) {
	var best Hit
	bestD2 := -1.0
	t.rayCast(t.rootIndex(), from, to, &best, &bestD2)
	return best, bestD2 >= 0
}

func (t *Tree) rayCast(idx int32, from, to geom.Vec, best *Hit, bestD2 *float64) {
	if idx == none {
		return
	}
	n := &t.nodes[idx]
	if n.leaf {
		return
	}
	for _, w := range n.walls {
		if !w.Blocking {
			continue
		}
		p, ok := geom.SegmentIntersection(from, to, w.A, w.B)
		if !ok {
			continue
		}
		d2 := p.Sub(from).Dot(p.Sub(from))
		if *bestD2 < 0 || d2 < *bestD2 {
			*bestD2 = d2
			*best = Hit{Point: p, Wall: w}
		}
	}

	sa := n.partition.Classify(from)
	sb := n.partition.Classify(to)
	switch {
	case sa != geom.Back && sb != geom.Back:
		t.rayCast(n.front, from, to, best, bestD2)
	case sa != geom.Front && sb != geom.Front:
		t.rayCast(n.back, from, to, best, bestD2)
	default:
		near, far := n.front, n.back
		if sa == geom.Back {
			near, far = n.back, n.front
		}
		t.rayCast(near, from, to, best, bestD2)
		t.rayCast(far, from, to, best, bestD2)
	}
}
