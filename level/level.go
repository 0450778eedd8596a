// Package level loads .xmap text maps into validated sector and wall
// geometry. Everything downstream of this package may assume the geometry is
// well-formed: no zero-length walls, no inverted height bands, no
// self-intersecting loops.
package level

import (
	"fmt"
	"math"

	"github.com/bloodmagesoftware/xoom/geom"
)

// Defaults applied when a map does not specify them.
const (
	DefaultFloor   = 0
	DefaultCeiling = 50
	DefaultTexture = "wall_placeholder"
)

// PlayerStart is the spawn pose read from a PLAYER_START line.
type PlayerStart struct {
	Pos      geom.Vec
	AngleDeg float64
}

// Map is a fully loaded and validated map.
type Map struct {
	Sectors []*geom.Sector
	Walls   []geom.Wall

	Start    PlayerStart
	HasStart bool
}

// Bounds returns the axis-aligned extent of all walls as (minX, minY, maxX,
// maxY). An empty map reports zeros.
func (m *Map) Bounds() (float64, float64, float64, float64) {
	if len(m.Walls) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, w := range m.Walls {
		for _, p := range [2]geom.Vec{w.A, w.B} {
			minX = math.Min(minX, p.X())
			minY = math.Min(minY, p.Y())
			maxX = math.Max(maxX, p.X())
			maxY = math.Max(maxY, p.Y())
		}
	}
	return minX, minY, maxX, maxY
}

// LoadError describes a malformed map with the source line that caused it.
type LoadError struct {
	Name string
	Line int
	Msg  string
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("map %s:%d: %s", e.Name, e.Line, e.Msg)
	}
	return fmt.Sprintf("map %s: %s", e.Name, e.Msg)
}

func errf(name string, line int, format string, args ...any) error {
	return &LoadError{Name: name, Line: line, Msg: fmt.Sprintf(format, args...)}
}
