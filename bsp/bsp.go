// Package bsp builds and walks the binary space partition tree the engine
// uses for visibility ordering and ray queries over map walls.
package bsp

import (
	"log"
	"math/rand"

	"github.com/bloodmagesoftware/xoom/geom"
)

// Strategy selects how the builder picks the splitting wall of a node.
type Strategy string

const (
	// StrategyFirst takes the first wall of the working set. Deterministic
	// and the reference behavior.
	StrategyFirst Strategy = "first"
	// StrategyRandom picks a random wall, which tends to balance the tree
	// on maps whose wall order is adversarial.
	StrategyRandom Strategy = "random"
)

// DefaultMaxDepth bounds recursion during build. Wall sets deeper than this
// stop splitting and keep their remaining walls on a single node, so no
// geometry is ever dropped.
const DefaultMaxDepth = 32

const none = int32(-1)

// Options configure a build.
type Options struct {
	Strategy Strategy
	MaxDepth int
	// Rand is used by StrategyRandom. Nil falls back to a fixed-seed
	// source so builds stay reproducible by default.
	Rand *rand.Rand
}

type node struct {
	partition geom.Line
	// walls collinear with the partition line, owned by this node.
	walls []geom.Wall
	front int32
	back  int32
	leaf  bool
}

// Tree is an immutable BSP over a wall set. Nodes live in a flat arena and
// reference children by index, so the tree is trivially acyclic and cheap to
// walk. Built once after map load; a map edit means a full rebuild.
type Tree struct {
	nodes  []node
	root   int32
	splits int
	depth  int
}

type builder struct {
	opts       Options
	tree       *Tree
	degenerate int
}

// Build partitions walls into a BSP tree. An empty input yields an empty
// tree, which is a valid terminal state, not an error.
func Build(walls []geom.Wall, opts Options) *Tree {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyFirst
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}

	b := &builder{opts: opts, tree: &Tree{}}
	working := make([]geom.Wall, len(walls))
	copy(working, walls)
	b.tree.root = b.build(working, 0)
	if b.degenerate > 0 {
		log.Printf("bsp: clamped %d near-degenerate split denominators", b.degenerate)
	}
	return b.tree
}

func (b *builder) addNode(n node) int32 {
	idx := int32(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, n)
	return idx
}

func (b *builder) build(walls []geom.Wall, depth int) int32 {
	if depth > b.tree.depth {
		b.tree.depth = depth
	}
	if len(walls) == 0 {
		return b.addNode(node{front: none, back: none, leaf: true})
	}
	if depth >= b.opts.MaxDepth {
		// Recursion guard: keep everything that is left on one node so
		// partition completeness still holds.
		log.Printf("bsp: max depth %d reached with %d walls remaining", b.opts.MaxDepth, len(walls))
		return b.addNode(node{
			partition: walls[0].Line(),
			walls:     walls,
			front:     none,
			back:      none,
		})
	}

	split := b.choosePartition(walls)
	partition := walls[split].Line()

	var own, front, back []geom.Wall
	own = append(own, walls[split])
	for i, w := range walls {
		if i == split {
			continue
		}
		sa := partition.Classify(w.A)
		sb := partition.Classify(w.B)
		switch {
		case sa == geom.OnLine && sb == geom.OnLine:
			own = append(own, w)
		case sa != geom.Back && sb != geom.Back:
			front = append(front, w)
		case sa != geom.Front && sb != geom.Front:
			back = append(back, w)
		default:
			f, k := b.splitWall(w, partition)
			if sa == geom.Front {
				front = append(front, f)
				back = append(back, k)
			} else {
				back = append(back, f)
				front = append(front, k)
			}
		}
	}

	// Children are appended after their parent, so child indices are always
	// larger and the arena cannot form a cycle.
	idx := b.addNode(node{partition: partition, walls: own, front: none, back: none})
	if len(front) > 0 {
		f := b.build(front, depth+1)
		b.tree.nodes[idx].front = f
	}
	if len(back) > 0 {
		k := b.build(back, depth+1)
		b.tree.nodes[idx].back = k
	}
	return idx
}

func (b *builder) choosePartition(walls []geom.Wall) int {
	if b.opts.Strategy == StrategyRandom {
		return b.opts.Rand.Intn(len(walls))
	}
	return 0
}

// splitWall cuts w where it crosses the partition line, returning the
// fragment containing w.A first.
func (b *builder) splitWall(w geom.Wall, partition geom.Line) (geom.Wall, geom.Wall) {
	da := partition.SignedDist(w.A)
	db := partition.SignedDist(w.B)
	denom := da - db
	if denom > -geom.Epsilon && denom < geom.Epsilon {
		// Can only happen under floating-point noise since the caller saw
		// strictly opposite signs. Clamp instead of failing.
		b.degenerate++
		denom = geom.Epsilon
	}
	t := da / denom
	p := geom.Lerp(w.A, w.B, t)
	b.tree.splits++
	return w.SplitAt(p)
}

// Empty reports whether the tree holds no walls.
func (t *Tree) Empty() bool {
	return len(t.nodes) == 0 || t.nodes[t.root].leaf
}

// NodeCount returns the number of arena nodes, leaves included.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Depth returns the deepest recursion level reached during build.
func (t *Tree) Depth() int { return t.depth }

// Splits returns how many walls the builder had to cut.
func (t *Tree) Splits() int { return t.splits }

// WallCount returns the number of wall fragments stored across all nodes.
func (t *Tree) WallCount() int {
	total := 0
	for _, n := range t.nodes {
		total += len(n.walls)
	}
	return total
}

// Walls appends every stored wall fragment to dst and returns it.
func (t *Tree) Walls(dst []geom.Wall) []geom.Wall {
	for _, n := range t.nodes {
		dst = append(dst, n.walls...)
	}
	return dst
}
