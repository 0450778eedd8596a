// Package texture loads QOI wall textures and caches the per-texture average
// tint the renderer shades walls with.
package texture

import (
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xfmoulet/qoi"
)

// placeholder is the tint returned for unknown texture names. A missing
// texture is never fatal; it just renders gray.
var placeholder = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// Manager caches decoded textures by base name (file name without the .qoi
// extension).
type Manager struct {
	images map[string]image.Image
	tints  map[string]color.NRGBA
}

func NewManager() *Manager {
	return &Manager{
		images: make(map[string]image.Image),
		tints:  make(map[string]color.NRGBA),
	}
}

// LoadDir decodes every .qoi file directly inside dir. A missing directory
// leaves the manager empty, which is fine for headless runs and tests.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("texture: no texture directory at %s, using tints only", dir)
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".qoi") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		img, err := decode(path)
		if err != nil {
			log.Printf("texture: skipping %s: %v", path, err)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".qoi")
		m.images[name] = img
		m.tints[name] = averageColor(img)
	}
	log.Printf("texture: loaded %d textures from %s", len(m.images), dir)
	return nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return qoi.Decode(f)
}

// Image returns the decoded texture, if present.
func (m *Manager) Image(name string) (image.Image, bool) {
	img, ok := m.images[name]
	return img, ok
}

// Tint returns the texture's average color, or a neutral placeholder for
// unknown names.
func (m *Manager) Tint(name string) color.NRGBA {
	if tint, ok := m.tints[name]; ok {
		return tint
	}
	return placeholder
}

// averageColor samples the image on a coarse grid; textures are shading
// hints here, not pixel-exact surfaces.
func averageColor(img image.Image) color.NRGBA {
	bounds := img.Bounds()
	if bounds.Empty() {
		return placeholder
	}
	stepX := max(1, bounds.Dx()/16)
	stepY := max(1, bounds.Dy()/16)
	var r, g, b, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			b += uint64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return placeholder
	}
	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 255}
}
