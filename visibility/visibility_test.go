package visibility

import (
	"math"
	"testing"

	"github.com/bloodmagesoftware/xoom/bsp"
	"github.com/bloodmagesoftware/xoom/geom"
)

func mustWall(t *testing.T, a, b geom.Vec, texture string) geom.Wall {
	t.Helper()
	w, err := geom.NewWall(a, b, nil, texture)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func defaultView(pos geom.Vec, angle float64) View {
	return View{Pos: pos, AngleDeg: angle, FOVDeg: 60, FOVLength: 250}
}

func TestVisibleEmptyTree(t *testing.T) {
	tree := bsp.Build(nil, bsp.Options{})
	if got := Visible(tree, defaultView(geom.Vec{0, 0}, 0)); len(got) != 0 {
		t.Errorf("empty tree produced %d entries", len(got))
	}
	if got := Visible(nil, defaultView(geom.Vec{0, 0}, 0)); len(got) != 0 {
		t.Errorf("nil tree produced %d entries", len(got))
	}
}

func TestVisibleWallAhead(t *testing.T) {
	tree := bsp.Build([]geom.Wall{
		mustWall(t, geom.Vec{50, -40}, geom.Vec{50, 40}, "ahead"),
	}, bsp.Options{})

	entries := Visible(tree, defaultView(geom.Vec{0, 0}, 0))
	if len(entries) == 0 {
		t.Fatal("wall directly ahead not visible")
	}
	for _, e := range entries {
		if e.Texture != "ahead" {
			t.Errorf("unexpected texture %q", e.Texture)
		}
	}
}

func TestVisibleWallBehind(t *testing.T) {
	tree := bsp.Build([]geom.Wall{
		mustWall(t, geom.Vec{-50, -40}, geom.Vec{-50, 40}, "behind"),
	}, bsp.Options{})

	if entries := Visible(tree, defaultView(geom.Vec{0, 0}, 0)); len(entries) != 0 {
		t.Errorf("wall behind the viewer produced %d entries", len(entries))
	}
}

func TestVisibleBeyondRange(t *testing.T) {
	tree := bsp.Build([]geom.Wall{
		mustWall(t, geom.Vec{500, -40}, geom.Vec{500, 40}, "far"),
	}, bsp.Options{})

	// FOV length 250 cannot reach a wall at x=500.
	if entries := Visible(tree, defaultView(geom.Vec{0, 0}, 0)); len(entries) != 0 {
		t.Errorf("wall beyond FOV length produced %d entries", len(entries))
	}
}

// TestOcclusion puts a short wall in front of a long one: the far wall may
// only contribute fragments outside the near wall's angular span.
func TestOcclusion(t *testing.T) {
	near := mustWall(t, geom.Vec{40, -15}, geom.Vec{40, 15}, "near")
	far := mustWall(t, geom.Vec{80, -60}, geom.Vec{80, 60}, "far")
	tree := bsp.Build([]geom.Wall{near, far}, bsp.Options{})

	view := defaultView(geom.Vec{0, 0}, 0)
	entries := Visible(tree, view)

	var nearLen, farLen float64
	for _, e := range entries {
		switch e.Texture {
		case "near":
			nearLen += e.B.Sub(e.A).Len()
		case "far":
			farLen += e.B.Sub(e.A).Len()
			// No far fragment may sit inside the near wall's angular
			// shadow: every visible far point must project outside
			// the near span's angle range.
			for _, p := range [2]geom.Vec{e.A, e.B} {
				ang := math.Atan2(p.Y()-view.Pos.Y(), p.X()-view.Pos.X())
				limit := math.Atan2(15, 40)
				if ang > -limit+1e-9 && ang < limit-1e-9 {
					t.Errorf("far fragment point %v at angle %g is inside the near wall's shadow", p, ang)
				}
			}
		}
	}

	if nearLen < 30-1e-6 {
		t.Errorf("near wall coverage %g, want its full 30 units", nearLen)
	}
	if farLen == 0 {
		t.Error("far wall should peek out on both sides of the near wall")
	}
}

// TestFullyOccluded puts the far wall entirely inside the near wall's
// shadow.
func TestFullyOccluded(t *testing.T) {
	near := mustWall(t, geom.Vec{40, -30}, geom.Vec{40, 30}, "near")
	far := mustWall(t, geom.Vec{80, -10}, geom.Vec{80, 10}, "far")
	tree := bsp.Build([]geom.Wall{near, far}, bsp.Options{})

	for _, e := range Visible(tree, defaultView(geom.Vec{0, 0}, 0)) {
		if e.Texture == "far" {
			t.Errorf("fully occluded wall emitted fragment %v-%v", e.A, e.B)
		}
	}
}

// TestRoomVisibility views an L-shaped six-wall room from (-90, 90)
// facing east.
func TestRoomVisibility(t *testing.T) {
	verts := []geom.Vec{
		{-150, -100}, {100, -100}, {100, 0}, {0, 0}, {0, 100}, {-150, 100},
	}
	sector := &geom.Sector{Name: "room", Floor: 0, Ceiling: 50, WallTexture: "brick"}
	var walls []geom.Wall
	for i := range verts {
		w, err := geom.NewWall(verts[i], verts[(i+1)%len(verts)], sector, "")
		if err != nil {
			t.Fatal(err)
		}
		walls = append(walls, w)
	}
	tree := bsp.Build(walls, bsp.Options{})

	entries := Visible(tree, defaultView(geom.Vec{-90, 90}, 0))
	if len(entries) == 0 {
		t.Fatal("no visible walls in the room scenario")
	}
	for _, e := range entries {
		if e.Floor != 0 || e.Ceiling != 50 {
			t.Errorf("entry height band (%g, %g), want (0, 50)", e.Floor, e.Ceiling)
		}
	}
}

func TestVisibleUOffsets(t *testing.T) {
	tree := bsp.Build([]geom.Wall{
		mustWall(t, geom.Vec{50, -100}, geom.Vec{50, 100}, "ahead"),
	}, bsp.Options{})

	for _, e := range Visible(tree, defaultView(geom.Vec{0, 0}, 0)) {
		span := e.B.Sub(e.A).Len()
		if math.Abs(math.Abs(e.U1-e.U0)-span) > 1e-6 {
			t.Errorf("U range %g..%g does not match fragment length %g", e.U0, e.U1, span)
		}
	}
}

func TestIntervalSubtract(t *testing.T) {
	testCases := []struct {
		Name    string
		In      interval
		Covered []interval
		Want    []interval
	}{
		{
			Name: "no coverage",
			In:   interval{0, 1},
			Want: []interval{{0, 1}},
		},
		{
			Name:    "hole in the middle",
			In:      interval{0, 1},
			Covered: []interval{{0.4, 0.6}},
			Want:    []interval{{0, 0.4}, {0.6, 1}},
		},
		{
			Name:    "fully covered",
			In:      interval{0, 1},
			Covered: []interval{{-1, 2}},
			Want:    nil,
		},
		{
			Name:    "covered tail",
			In:      interval{0, 1},
			Covered: []interval{{0.5, 2}},
			Want:    []interval{{0, 0.5}},
		},
		{
			Name:    "two disjoint holes",
			In:      interval{0, 1},
			Covered: []interval{{0.1, 0.2}, {0.5, 0.6}},
			Want:    []interval{{0, 0.1}, {0.2, 0.5}, {0.6, 1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got := subtract(tc.In, tc.Covered)
			if len(got) != len(tc.Want) {
				t.Fatalf("got %v, want %v", got, tc.Want)
			}
			for i := range got {
				if math.Abs(got[i].start-tc.Want[i].start) > 1e-12 ||
					math.Abs(got[i].end-tc.Want[i].end) > 1e-12 {
					t.Errorf("interval %d = %v, want %v", i, got[i], tc.Want[i])
				}
			}
		})
	}
}

func TestIntervalMerge(t *testing.T) {
	got := merge([]interval{{0.5, 0.7}, {0, 0.2}, {0.1, 0.4}})
	want := []interval{{0, 0.4}, {0.5, 0.7}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("interval %d = %v, want %v", i, got[i], want[i])
		}
	}
}
