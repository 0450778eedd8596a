package geom

import (
	"math"
	"testing"
)

func TestWindingOrder(t *testing.T) {
	testCases := []struct {
		Name      string
		Vertices  []Vec
		Clockwise bool
	}{
		{
			Name:      "counter-clockwise square",
			Vertices:  []Vec{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
			Clockwise: false,
		},
		{
			Name:      "clockwise square",
			Vertices:  []Vec{{0, 0}, {0, 10}, {10, 10}, {10, 0}},
			Clockwise: true,
		},
		{
			Name:      "counter-clockwise concave room",
			Vertices:  []Vec{{-150, -100}, {100, -100}, {100, 0}, {0, 0}, {0, 100}, {-150, 100}},
			Clockwise: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if got := IsClockwise(tc.Vertices); got != tc.Clockwise {
				t.Errorf("IsClockwise = %v, want %v", got, tc.Clockwise)
			}
		})
	}
}

func TestLineClassify(t *testing.T) {
	// Vertical line x = 5, normal pointing toward -x.
	line := LineThrough(Vec{5, -1}, Vec{5, 1})

	testCases := []struct {
		Name  string
		Point Vec
		Want  Side
	}{
		{"left of the line", Vec{0, 0}, Front},
		{"right of the line", Vec{10, 3}, Back},
		{"exactly on the line", Vec{5, 100}, OnLine},
		{"within epsilon", Vec{5 + 1e-9, 0}, OnLine},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if got := line.Classify(tc.Point); got != tc.Want {
				t.Errorf("Classify(%v) = %v, want %v", tc.Point, got, tc.Want)
			}
		})
	}
}

func TestNewWallRejectsZeroLength(t *testing.T) {
	if _, err := NewWall(Vec{3, 3}, Vec{3, 3}, nil, "brick"); err == nil {
		t.Fatal("expected an error for coincident endpoints")
	}
}

func TestWallSplitPreservesMetadata(t *testing.T) {
	sector := &Sector{Name: "room", Floor: 0, Ceiling: 50, WallTexture: "brick"}
	w, err := NewWall(Vec{0, 0}, Vec{10, 0}, sector, "")
	if err != nil {
		t.Fatal(err)
	}
	w.UOffset = 7

	front, back := w.SplitAt(Vec{4, 0})

	if front.Sector != sector || back.Sector != sector {
		t.Error("fragments must keep the sector reference")
	}
	if front.Texture != "brick" || back.Texture != "brick" {
		t.Errorf("fragments must keep the texture, got %q and %q", front.Texture, back.Texture)
	}
	if front.UOffset != 7 {
		t.Errorf("front UOffset = %g, want 7", front.UOffset)
	}
	if back.UOffset != 11 {
		t.Errorf("back UOffset = %g, want 11 (7 + front length 4)", back.UOffset)
	}
	if got := front.Length() + back.Length(); math.Abs(got-w.Length()) > Epsilon {
		t.Errorf("fragment lengths sum to %g, want %g", got, w.Length())
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := Vec{0, 0}, Vec{10, 0}

	testCases := []struct {
		Name  string
		Point Vec
		Want  float64
	}{
		{"above the middle", Vec{5, 3}, 3},
		{"beyond endpoint clamps to endpoint", Vec{14, 3}, 5},
		{"before start clamps to start", Vec{-3, 4}, 5},
		{"on the segment", Vec{2, 0}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if got := PointSegmentDistance(tc.Point, a, b); math.Abs(got-tc.Want) > Epsilon {
				t.Errorf("distance = %g, want %g", got, tc.Want)
			}
		})
	}
}

func TestSegmentIntersection(t *testing.T) {
	testCases := []struct {
		Name           string
		P1, P2, Q1, Q2 Vec
		Want           Vec
		Hit            bool
	}{
		{
			Name: "perpendicular crossing",
			P1:   Vec{0, 0}, P2: Vec{10, 0},
			Q1: Vec{5, -5}, Q2: Vec{5, 5},
			Want: Vec{5, 0}, Hit: true,
		},
		{
			Name: "crossing outside extent",
			P1:   Vec{0, 0}, P2: Vec{2, 0},
			Q1: Vec{5, -5}, Q2: Vec{5, 5},
			Hit: false,
		},
		{
			Name: "parallel",
			P1:   Vec{0, 0}, P2: Vec{10, 0},
			Q1: Vec{0, 1}, Q2: Vec{10, 1},
			Hit: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got, hit := SegmentIntersection(tc.P1, tc.P2, tc.Q1, tc.Q2)
			if hit != tc.Hit {
				t.Fatalf("hit = %v, want %v", hit, tc.Hit)
			}
			if hit && got.Sub(tc.Want).Len() > Epsilon {
				t.Errorf("intersection = %v, want %v", got, tc.Want)
			}
		})
	}
}

func TestWallUAt(t *testing.T) {
	w, err := NewWall(Vec{0, 0}, Vec{10, 0}, nil, "brick")
	if err != nil {
		t.Fatal(err)
	}
	w.UOffset = 3

	if got := w.UAt(Vec{4, 0}); math.Abs(got-7) > Epsilon {
		t.Errorf("UAt(4,0) = %g, want 7", got)
	}
	// Projection clamps to the wall's extent.
	if got := w.UAt(Vec{20, 5}); math.Abs(got-13) > Epsilon {
		t.Errorf("UAt past the end = %g, want 13", got)
	}
}

func TestDrawEntryCarriesSectorBand(t *testing.T) {
	sector := &Sector{Name: "room", Floor: 10, Ceiling: 60, WallTexture: "brick"}
	w, err := NewWall(Vec{0, 0}, Vec{8, 0}, sector, "")
	if err != nil {
		t.Fatal(err)
	}

	e := DrawEntry(w)
	if e.Floor != 10 || e.Ceiling != 60 {
		t.Errorf("height band = (%g, %g), want (10, 60)", e.Floor, e.Ceiling)
	}
	if e.Texture != "brick" {
		t.Errorf("texture = %q, want brick", e.Texture)
	}
	if e.U1-e.U0 != w.Length() {
		t.Errorf("U range %g..%g does not cover wall length %g", e.U0, e.U1, w.Length())
	}
}
