package game

import (
	"math"

	"github.com/bloodmagesoftware/xoom/geom"
	"github.com/bloodmagesoftware/xoom/visibility"
)

// Player is the first-person viewpoint and collision subject.
type Player struct {
	Pos      geom.Vec
	AngleDeg float64

	FOVDeg    float64
	FOVLength float64
	Radius    float64
}

// Rotate turns the player, keeping the angle in [0, 360).
func (p *Player) Rotate(deltaDeg float64) {
	p.AngleDeg = math.Mod(p.AngleDeg+deltaDeg, 360)
	if p.AngleDeg < 0 {
		p.AngleDeg += 360
	}
}

// Forward returns the unit facing direction.
func (p *Player) Forward() geom.Vec {
	rad := p.AngleDeg * math.Pi / 180
	return geom.Vec{math.Cos(rad), math.Sin(rad)}
}

// Right returns the unit strafe direction, perpendicular to forward.
func (p *Player) Right() geom.Vec {
	rad := (p.AngleDeg + 90) * math.Pi / 180
	return geom.Vec{math.Cos(rad), math.Sin(rad)}
}

// View snapshots the player as a visibility viewpoint.
func (p *Player) View() visibility.View {
	return visibility.View{
		Pos:       p.Pos,
		AngleDeg:  p.AngleDeg,
		FOVDeg:    p.FOVDeg,
		FOVLength: p.FOVLength,
	}
}
