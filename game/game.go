// Package game runs the per-tick pipeline: input, collision-resolved
// movement, then the visibility pass that produces the frame's draw list.
package game

import (
	"log"
	"math/rand"
	"sync/atomic"

	"github.com/bloodmagesoftware/xoom/bsp"
	"github.com/bloodmagesoftware/xoom/collision"
	"github.com/bloodmagesoftware/xoom/config"
	"github.com/bloodmagesoftware/xoom/geom"
	"github.com/bloodmagesoftware/xoom/level"
	"github.com/bloodmagesoftware/xoom/visibility"
)

// Input is one tick's worth of player intent, already normalized to -1..1
// axes by the input layer.
type Input struct {
	// Move is forward (+) / backward (-).
	Move float64
	// Strafe is right (+) / left (-).
	Strafe float64
	// Turn is counter-clockwise (+) / clockwise (-).
	Turn float64
	Quit bool
}

// world bundles everything derived from one loaded map. Hot reloads build a
// fresh world off to the side and swap the pointer; in-flight traversals
// keep reading the old tree, which is never mutated.
type world struct {
	mapData  *level.Map
	tree     *bsp.Tree
	resolver *collision.Resolver
}

// Frame is what the renderer and the debug stream consume each tick.
type Frame struct {
	View  visibility.View
	Walls []geom.DrawWall
}

// Game owns the player and the current world.
type Game struct {
	cfg    config.Config
	player Player
	world  atomic.Pointer[world]

	running atomic.Bool
}

// New builds the BSP tree and collision resolver for the map and places the
// player at the map's start pose (or the origin when it has none).
func New(cfg config.Config, m *level.Map) *Game {
	g := &Game{cfg: cfg}
	g.player = Player{
		AngleDeg:  0,
		FOVDeg:    cfg.Player.FOVDeg,
		FOVLength: cfg.Player.FOVLength,
		Radius:    cfg.Player.Radius,
	}
	if m.HasStart {
		g.player.Pos = m.Start.Pos
		g.player.AngleDeg = m.Start.AngleDeg
	}
	g.world.Store(g.buildWorld(m))
	g.running.Store(true)
	return g
}

func (g *Game) buildWorld(m *level.Map) *world {
	tree := bsp.Build(m.Walls, bsp.Options{
		Strategy: bsp.Strategy(g.cfg.BSP.Strategy),
		MaxDepth: g.cfg.BSP.MaxDepth,
		Rand:     rand.New(rand.NewSource(1)),
	})
	log.Printf("game: built BSP: %d nodes, depth %d, %d splits", tree.NodeCount(), tree.Depth(), tree.Splits())
	return &world{
		mapData:  m,
		tree:     tree,
		resolver: collision.NewResolver(m.Walls, g.cfg.Player.Radius),
	}
}

// Reload swaps in a freshly built world for a new map. Safe to call while
// frames are being produced.
func (g *Game) Reload(m *level.Map) {
	g.world.Store(g.buildWorld(m))
	if m.HasStart {
		g.player.Pos = m.Start.Pos
		g.player.AngleDeg = m.Start.AngleDeg
	}
}

// Step advances one simulation tick of dt seconds.
func (g *Game) Step(in Input, dt float64) {
	if in.Quit {
		g.running.Store(false)
		return
	}
	if in.Turn != 0 {
		g.player.Rotate(in.Turn * g.cfg.Player.TurnSpeedDeg * dt)
	}
	if in.Move == 0 && in.Strafe == 0 {
		return
	}

	delta := g.player.Forward().Mul(in.Move).
		Add(g.player.Right().Mul(in.Strafe)).
		Mul(g.cfg.Player.Speed * dt)
	resolved := g.world.Load().resolver.Resolve(g.player.Pos, delta)
	g.player.Pos = g.player.Pos.Add(resolved)
}

// Frame computes the visible draw list for the current player pose.
func (g *Game) Frame() Frame {
	w := g.world.Load()
	view := g.player.View()
	return Frame{View: view, Walls: visibility.Visible(w.tree, view)}
}

// Running reports whether the loop should keep going.
func (g *Game) Running() bool { return g.running.Load() }

// Stop ends the loop.
func (g *Game) Stop() { g.running.Store(false) }

// Player returns the current player state.
func (g *Game) Player() Player { return g.player }

// Map returns the currently loaded map.
func (g *Game) Map() *level.Map { return g.world.Load().mapData }

// Tree exposes the current BSP for ray queries and inspection.
func (g *Game) Tree() *bsp.Tree { return g.world.Load().tree }
