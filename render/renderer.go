// Package render draws the first-person view and the minimap overlay with
// gioui, consuming the ordered draw list the game produces each frame. It
// never touches the BSP tree.
package render

import (
	"image"
	"image/color"
	"math"
	"time"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/bloodmagesoftware/xoom/config"
	"github.com/bloodmagesoftware/xoom/game"
	"github.com/bloodmagesoftware/xoom/geom"
	"github.com/bloodmagesoftware/xoom/texture"
)

// eyeHeight is the camera height above a sector floor, in map units.
const eyeHeight = 25

// minimap overlay parameters.
const (
	minimapScale  = 1.5
	minimapMargin = 16
)

var (
	ceilingColor = color.NRGBA{R: 32, G: 32, B: 48, A: 255}
	floorColor   = color.NRGBA{R: 48, G: 40, B: 32, A: 255}
)

// Renderer holds the per-window drawing and input state.
type Renderer struct {
	cfg  config.Config
	tex  *texture.Manager
	held map[key.Name]bool

	// OnFrame, when set, receives every produced frame. The debug stream
	// hooks in here.
	OnFrame func(game.Frame)
}

func New(cfg config.Config, tex *texture.Manager) *Renderer {
	return &Renderer{cfg: cfg, tex: tex, held: make(map[key.Name]bool)}
}

// Run drives the window event loop until the game stops or the window
// closes.
func (r *Renderer) Run(window *app.Window, g *game.Game) error {
	var ops op.Ops
	frameBudget := time.Second / time.Duration(r.cfg.Window.FPS)
	last := time.Now()
	for {
		switch e := window.Event().(type) {
		case app.DestroyEvent:
			g.Stop()
			return e.Err
		case app.FrameEvent:
			now := time.Now()
			dt := now.Sub(last).Seconds()
			last = now

			gtx := app.NewContext(&ops, e)

			in := r.collectInput(gtx)
			g.Step(in, dt)
			if !g.Running() {
				window.Perform(system.ActionClose)
				e.Frame(gtx.Ops)
				continue
			}

			frame := g.Frame()
			if r.OnFrame != nil {
				r.OnFrame(frame)
			}
			r.drawWorld(gtx, frame)
			r.drawMinimap(gtx, g, frame)

			e.Frame(gtx.Ops)
			// Gio only redraws on invalidation; pace the next one to the
			// configured frame rate.
			if spent := time.Since(now); spent < frameBudget {
				time.Sleep(frameBudget - spent)
			}
			window.Invalidate()
		}
	}
}

// collectInput folds held-key state into one tick's input axes.
func (r *Renderer) collectInput(gtx layout.Context) game.Input {
	event.Op(gtx.Ops, r)
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "W"}, key.Filter{Name: "A"},
			key.Filter{Name: "S"}, key.Filter{Name: "D"},
			key.Filter{Name: key.NameUpArrow}, key.Filter{Name: key.NameDownArrow},
			key.Filter{Name: key.NameLeftArrow}, key.Filter{Name: key.NameRightArrow},
			key.Filter{Name: key.NameEscape},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok {
			continue
		}
		r.held[ke.Name] = ke.State == key.Press
	}

	var in game.Input
	if r.held["W"] || r.held[key.NameUpArrow] {
		in.Move += 1
	}
	if r.held["S"] || r.held[key.NameDownArrow] {
		in.Move -= 1
	}
	if r.held["D"] {
		in.Strafe += 1
	}
	if r.held["A"] {
		in.Strafe -= 1
	}
	if r.held[key.NameLeftArrow] {
		in.Turn += 1
	}
	if r.held[key.NameRightArrow] {
		in.Turn -= 1
	}
	in.Quit = r.held[key.NameEscape]
	return in
}

// drawWorld paints the ceiling and floor halves, then the wall quads. The
// visibility pass already resolved occlusion per angular span, so the quads
// are painted far-to-front for safety at span boundaries only.
func (r *Renderer) drawWorld(gtx layout.Context, frame game.Frame) {
	size := gtx.Constraints.Max
	w := float64(size.X)
	h := float64(size.Y)

	paint.FillShape(gtx.Ops, ceilingColor, clip.Rect{Max: image.Pt(size.X, size.Y/2)}.Op())
	paint.FillShape(gtx.Ops, floorColor,
		clip.Rect{Min: image.Pt(0, size.Y/2), Max: size}.Op())

	halfFOV := frame.View.FOVDeg / 2 * math.Pi / 180
	focal := (w / 2) / math.Tan(halfFOV)
	fwd := geom.Vec{math.Cos(frame.View.AngleRad()), math.Sin(frame.View.AngleRad())}
	left := geom.Perp(fwd)

	for i := len(frame.Walls) - 1; i >= 0; i-- {
		r.drawWallQuad(gtx, frame.Walls[i], frame.View.Pos, fwd, left, w, h, focal)
	}
}

func (r *Renderer) drawWallQuad(gtx layout.Context, dw geom.DrawWall, pos, fwd, left geom.Vec, w, h, focal float64) {
	project := func(p geom.Vec) (sx, depth float64) {
		rel := p.Sub(pos)
		depth = rel.Dot(fwd)
		if depth < 1e-3 {
			depth = 1e-3
		}
		lateral := rel.Dot(left)
		return w/2 - lateral/depth*focal, depth
	}

	x1, d1 := project(dw.A)
	x2, d2 := project(dw.B)
	if x2 < x1 {
		x1, x2 = x2, x1
		d1, d2 = d2, d1
	}

	eye := dw.Floor + eyeHeight
	top := func(depth float64) float64 { return h/2 - (dw.Ceiling-eye)/depth*focal }
	bot := func(depth float64) float64 { return h/2 + (eye-dw.Floor)/depth*focal }

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(float32(x1), float32(top(d1))))
	path.LineTo(f32.Pt(float32(x2), float32(top(d2))))
	path.LineTo(f32.Pt(float32(x2), float32(bot(d2))))
	path.LineTo(f32.Pt(float32(x1), float32(bot(d1))))
	path.Close()
	paint.FillShape(gtx.Ops, r.shade(dw, (d1+d2)/2), clip.Outline{Path: path.End()}.Op())
}

// shade tints the wall's texture color by a point light at the player:
// quadratic falloff with distance, clamped to an ambient minimum.
func (r *Renderer) shade(dw geom.DrawWall, distance float64) color.NRGBA {
	tint := r.tex.Tint(dw.Texture)
	falloff := r.cfg.Player.FOVLength / 3
	intensity := 1 / (1 + (distance/falloff)*(distance/falloff))
	if intensity < 0.15 {
		intensity = 0.15
	}
	return color.NRGBA{
		R: uint8(float64(tint.R) * intensity),
		G: uint8(float64(tint.G) * intensity),
		B: uint8(float64(tint.B) * intensity),
		A: 255,
	}
}

// drawMinimap overlays the whole map, the player dot and the FOV edges in
// the top-left corner.
func (r *Renderer) drawMinimap(gtx layout.Context, g *game.Game, frame game.Frame) {
	m := g.Map()
	minX, minY, _, _ := m.Bounds()
	toScreen := func(p geom.Vec) f32.Point {
		return f32.Pt(
			float32(minimapMargin+(p.X()-minX)*minimapScale),
			float32(minimapMargin+(p.Y()-minY)*minimapScale),
		)
	}

	wallColor := color.NRGBA{R: 200, G: 200, B: 200, A: 200}
	solidColor := color.NRGBA{R: 220, G: 120, B: 120, A: 200}
	for _, wall := range m.Walls {
		c := wallColor
		if wall.Solid {
			c = solidColor
		}
		strokeLine(gtx.Ops, toScreen(wall.A), toScreen(wall.B), 1, c)
	}

	// FOV edges, then the player on top.
	e1, e2 := frame.View.Edges()
	fovColor := color.NRGBA{R: 240, G: 220, B: 100, A: 120}
	strokeLine(gtx.Ops, toScreen(frame.View.Pos), toScreen(e1), 1, fovColor)
	strokeLine(gtx.Ops, toScreen(frame.View.Pos), toScreen(e2), 1, fovColor)

	pp := toScreen(frame.View.Pos)
	dot := clip.Ellipse{
		Min: image.Pt(int(pp.X)-3, int(pp.Y)-3),
		Max: image.Pt(int(pp.X)+3, int(pp.Y)+3),
	}
	paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 220, B: 100, A: 255}, dot.Op(gtx.Ops))
}

func strokeLine(ops *op.Ops, a, b f32.Point, width float32, c color.NRGBA) {
	var path clip.Path
	path.Begin(ops)
	path.MoveTo(a)
	path.LineTo(b)
	paint.FillShape(ops, c, clip.Stroke{Path: path.End(), Width: width}.Op())
}
