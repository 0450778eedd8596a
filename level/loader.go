package level

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/bloodmagesoftware/xoom/geom"
)

// Load reads and parses a .xmap file.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map: %w", err)
	}
	defer f.Close()
	log.Printf("level: loading map %s", path)
	return Parse(f, path)
}

// line is one significant source line with its original number.
type line struct {
	num    int
	fields []string
}

// Parse reads the line-oriented .xmap format:
//
//	# comment to end of line
//	PLAYER_START <x> <y> <angle>
//	SEG <x1> <y1> <x2> <y2> [texture] [height]
//	POLY <name> [texture] [height]  ...vertices...  END
//	SECTOR <floor> <ceil>  [TEXTURES wall [floor] [ceil]]  ...vertices...  END
//
// Winding order of a loop is load-bearing: clockwise marks a solid interior
// obstruction, counter-clockwise a traversable room.
func Parse(r io.Reader, name string) (*Map, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, line{num: num, fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading map %s: %w", name, err)
	}

	p := &parser{name: name, lines: lines, m: &Map{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	log.Printf("level: map %s: %d sectors, %d walls", name, len(p.m.Sectors), len(p.m.Walls))
	return p.m, nil
}

type parser struct {
	name  string
	lines []line
	pos   int
	m     *Map
}

func (p *parser) run() error {
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		switch strings.ToUpper(ln.fields[0]) {
		case "PLAYER_START":
			if err := p.playerStart(ln); err != nil {
				return err
			}
			p.pos++
		case "SEG":
			if err := p.seg(ln); err != nil {
				return err
			}
			p.pos++
		case "POLY":
			if err := p.poly(ln); err != nil {
				return err
			}
		case "SECTOR":
			if err := p.sector(ln); err != nil {
				return err
			}
		default:
			return errf(p.name, ln.num, "unknown token %q", ln.fields[0])
		}
	}
	return nil
}

func (p *parser) playerStart(ln line) error {
	if len(ln.fields) != 4 {
		return errf(p.name, ln.num, "PLAYER_START wants <x> <y> <angle>")
	}
	vals, err := floats(ln.fields[1:])
	if err != nil {
		return errf(p.name, ln.num, "PLAYER_START: %v", err)
	}
	p.m.Start = PlayerStart{Pos: geom.Vec{vals[0], vals[1]}, AngleDeg: vals[2]}
	p.m.HasStart = true
	return nil
}

// seg parses a standalone wall segment. It blocks from both sides and gets
// its own single-wall sector so draw entries still carry a height band.
func (p *parser) seg(ln line) error {
	if len(ln.fields) < 5 || len(ln.fields) > 7 {
		return errf(p.name, ln.num, "SEG wants <x1> <y1> <x2> <y2> [texture] [height]")
	}
	vals, err := floats(ln.fields[1:5])
	if err != nil {
		return errf(p.name, ln.num, "SEG: %v", err)
	}
	texture := DefaultTexture
	height := float64(DefaultCeiling)
	if len(ln.fields) >= 6 {
		texture = ln.fields[5]
	}
	if len(ln.fields) == 7 {
		height, err = strconv.ParseFloat(ln.fields[6], 64)
		if err != nil {
			return errf(p.name, ln.num, "SEG height: %v", err)
		}
	}

	a := geom.Vec{vals[0], vals[1]}
	b := geom.Vec{vals[2], vals[3]}
	sector := &geom.Sector{
		Name:           "seg",
		Vertices:       []geom.Vec{a, b},
		Floor:          DefaultFloor,
		Ceiling:        height,
		WallTexture:    texture,
		FloorTexture:   texture,
		CeilingTexture: texture,
		Solid:          true,
	}
	if err := p.checkBand(ln.num, sector); err != nil {
		return err
	}
	w, err := geom.NewWall(a, b, sector, texture)
	if err != nil {
		return errf(p.name, ln.num, "SEG: zero-length wall")
	}
	p.m.Sectors = append(p.m.Sectors, sector)
	p.m.Walls = append(p.m.Walls, w)
	return nil
}

func (p *parser) poly(ln line) error {
	if len(ln.fields) < 2 || len(ln.fields) > 4 {
		return errf(p.name, ln.num, "POLY wants <name> [texture] [height]")
	}
	sector := &geom.Sector{
		Name:    ln.fields[1],
		Floor:   DefaultFloor,
		Ceiling: DefaultCeiling,
	}
	texture := DefaultTexture
	if len(ln.fields) >= 3 {
		texture = ln.fields[2]
	}
	if len(ln.fields) == 4 {
		h, err := strconv.ParseFloat(ln.fields[3], 64)
		if err != nil {
			return errf(p.name, ln.num, "POLY height: %v", err)
		}
		sector.Ceiling = h
	}
	sector.WallTexture = texture
	sector.FloorTexture = texture
	sector.CeilingTexture = texture

	p.pos++
	verts, endLine, err := p.vertexBlock(ln.num, sector.Name, nil)
	if err != nil {
		return err
	}
	return p.closeLoop(ln.num, endLine, sector, verts)
}

func (p *parser) sector(ln line) error {
	if len(ln.fields) != 3 {
		return errf(p.name, ln.num, "SECTOR wants <floor> <ceil>")
	}
	vals, err := floats(ln.fields[1:])
	if err != nil {
		return errf(p.name, ln.num, "SECTOR: %v", err)
	}
	sector := &geom.Sector{
		Name:    fmt.Sprintf("sector%d", len(p.m.Sectors)),
		Floor:   vals[0],
		Ceiling: vals[1],
	}
	if err := p.checkBand(ln.num, sector); err != nil {
		return err
	}

	p.pos++
	verts, endLine, err := p.vertexBlock(ln.num, sector.Name, sector)
	if err != nil {
		return err
	}
	if sector.WallTexture == "" {
		sector.WallTexture = DefaultTexture
	}
	// Floor and ceiling fall back to the wall texture.
	if sector.FloorTexture == "" {
		sector.FloorTexture = sector.WallTexture
	}
	if sector.CeilingTexture == "" {
		sector.CeilingTexture = sector.WallTexture
	}
	return p.closeLoop(ln.num, endLine, sector, verts)
}

// vertexBlock consumes `<x> <y>` lines (and, inside SECTOR blocks, one
// optional TEXTURES line) until END. It returns the vertices and the END
// line number.
func (p *parser) vertexBlock(startLine int, name string, sector *geom.Sector) ([]geom.Vec, int, error) {
	var verts []geom.Vec
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		switch strings.ToUpper(ln.fields[0]) {
		case "END":
			p.pos++
			return verts, ln.num, nil
		case "TEXTURES":
			if sector == nil {
				return nil, 0, errf(p.name, ln.num, "TEXTURES only allowed inside SECTOR blocks")
			}
			if len(ln.fields) < 2 || len(ln.fields) > 4 {
				return nil, 0, errf(p.name, ln.num, "TEXTURES wants <wall> [floor] [ceil]")
			}
			sector.WallTexture = ln.fields[1]
			if len(ln.fields) >= 3 {
				sector.FloorTexture = ln.fields[2]
			}
			if len(ln.fields) == 4 {
				sector.CeilingTexture = ln.fields[3]
			}
			p.pos++
		default:
			if len(ln.fields) != 2 {
				return nil, 0, errf(p.name, ln.num, "bad vertex line in %s: %v", name, strings.Join(ln.fields, " "))
			}
			vals, err := floats(ln.fields)
			if err != nil {
				return nil, 0, errf(p.name, ln.num, "vertex in %s: %v", name, err)
			}
			verts = append(verts, geom.Vec{vals[0], vals[1]})
			p.pos++
		}
	}
	return nil, 0, errf(p.name, startLine, "%s has no END", name)
}

// closeLoop validates a vertex loop, derives solidity from its winding and
// emits one wall per edge, implicitly closing last→first.
func (p *parser) closeLoop(startLine, endLine int, sector *geom.Sector, verts []geom.Vec) error {
	if len(verts) < 3 {
		return errf(p.name, startLine, "%s has %d vertices, need at least 3", sector.Name, len(verts))
	}
	if i, j, ok := selfIntersects(verts); ok {
		return errf(p.name, endLine, "%s is self-intersecting (edges %d and %d cross)", sector.Name, i, j)
	}
	sector.Vertices = verts
	sector.Solid = geom.IsClockwise(verts)

	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		w, err := geom.NewWall(a, b, sector, sector.WallTexture)
		if err != nil {
			return errf(p.name, endLine, "%s: zero-length wall at vertex %d", sector.Name, i)
		}
		p.m.Walls = append(p.m.Walls, w)
	}
	p.m.Sectors = append(p.m.Sectors, sector)
	return nil
}

func (p *parser) checkBand(num int, s *geom.Sector) error {
	if s.Floor >= s.Ceiling {
		return errf(p.name, num, "%s: floor %g must be below ceiling %g", s.Name, s.Floor, s.Ceiling)
	}
	return nil
}

// selfIntersects reports whether any two non-adjacent edges of the loop
// cross. Shared endpoints of adjacent edges do not count.
func selfIntersects(verts []geom.Vec) (int, int, bool) {
	n := len(verts)
	for i := 0; i < n; i++ {
		a1 := verts[i]
		a2 := verts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent around the loop closure
			}
			b1 := verts[j]
			b2 := verts[(j+1)%n]
			if _, ok := geom.SegmentIntersection(a1, a2, b1, b2); ok {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func floats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out[i] = v
	}
	return out, nil
}
