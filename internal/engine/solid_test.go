package engine

import (
	"errors"
	"math"
	"testing"
)

func mustSphere(t *testing.T, center Vector3, radius, color, refl float64) *Sphere {
	t.Helper()
	s, err := NewSphere(center, radius, color, refl)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustCheckerboard(t *testing.T, b1, b2 Ray, refl float64) *Checkerboard {
	t.Helper()
	c, err := NewCheckerboard(b1, b2, refl)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// floor of the demo scene: y = -5, cells of size 1, period 5
func demoFloor(t *testing.T) *Checkerboard {
	return mustCheckerboard(t,
		Ray{V(0, -5, 0), V(0, -5, 5)},
		Ray{V(0, -5, 0), V(5, -5, 0)},
		0)
}

func TestNewSphereValidation(t *testing.T) {
	tests := []struct {
		name                string
		radius, color, refl float64
	}{
		{"zero radius", 0, 0.5, 0},
		{"negative radius", -1, 0.5, 0},
		{"nan radius", math.NaN(), 0.5, 0},
		{"color above one", 1, 1.5, 0},
		{"negative reflectivity", 1, 0.5, -0.1},
		{"reflectivity above one", 1, 0.5, 1.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSphere(V(0, 0, 0), tt.radius, tt.color, tt.refl)
			if !errors.Is(err, ErrInvalidSolid) {
				t.Errorf("err = %v, want ErrInvalidSolid", err)
			}
		})
	}
}

func TestSphereFirstIntersection(t *testing.T) {
	s := mustSphere(t, V(0, 0, 0), 1, 1, 0)
	p, ok := s.FirstIntersection(Ray{V(4, 0, 0), V(3, 0, 0)})
	if !ok || !vecAlmostEqual(p, V(1, 0, 0)) {
		t.Errorf("first intersection = %v, %v; want (1, 0, 0)", p, ok)
	}
	if _, ok := s.FirstIntersection(Ray{V(4, 2, 0), V(3, 2, 0)}); ok {
		t.Error("miss reported a hit")
	}
}

func TestSphereNormalRay(t *testing.T) {
	s := mustSphere(t, V(1, 1, 1), 1, 1, 0)
	n := s.NormalRay(V(1, 2, 1))
	if n.P1 != V(1, 1, 1) || n.Direction() != V(0, 1, 0) {
		t.Errorf("normal ray = %v", n)
	}
}

func TestSphereBounceLimit(t *testing.T) {
	s := mustSphere(t, V(0, 0, 0), 1, 0.7, 1)
	w := NewWorld()
	w.AddSolid(s)

	var tr Trace
	got := s.RenderIntersection(V(1, 0, 0), Ray{V(4, 0, 0), V(3, 0, 0)}, w, BounceLimit+1, &tr)
	if got != 0.7 {
		t.Errorf("value past the limit = %v, want base color 0.7", got)
	}
	if !tr.Truncated {
		t.Error("trace not marked truncated")
	}
}

func TestSphereShading(t *testing.T) {
	w := NewWorld()
	s := mustSphere(t, V(0, 0, 0), 1, 0.4, 0.5)
	w.AddSolid(s)
	w.AddLight(NewLight(V(0, 10, 0)))

	// top of the sphere seen from above: full light, reflection escapes to ambient
	got := s.RenderIntersection(V(0, 1, 0), Ray{V(0, 5, 0), V(0, 4, 0)}, w, 1, nil)
	want := 0.5*Ambient + 0.5*1
	if !almostEqual(got, want) {
		t.Errorf("value = %v, want %v", got, want)
	}
}

func TestNewCheckerboardErrors(t *testing.T) {
	_, err := NewCheckerboard(Ray{V(0, 0, 0), V(1, 0, 0)}, Ray{V(1, 0, 0), V(1, 0, 1)}, 0)
	if !errors.Is(err, ErrOriginMismatch) {
		t.Errorf("mismatched origins: err = %v", err)
	}
	_, err = NewCheckerboard(Ray{V(0, 0, 0), V(1, 0, 0)}, Ray{V(0, 0, 0), V(2, 0, 0)}, 0)
	if !errors.Is(err, ErrDegenerateBasis) {
		t.Errorf("parallel basis: err = %v", err)
	}
	_, err = NewCheckerboard(Ray{V(0, 0, 0), V(1, 0, 0)}, Ray{V(0, 0, 0), V(0, 0, 1)}, 2)
	if !errors.Is(err, ErrInvalidSolid) {
		t.Errorf("reflectivity 2: err = %v", err)
	}
}

func TestCheckerboardIntersections(t *testing.T) {
	c := demoFloor(t)
	pts := c.Intersections(Ray{V(1, 0, 1), V(1, -1, 1)})
	if len(pts) != 1 || !vecAlmostEqual(pts[0], V(1, -5, 1)) {
		t.Errorf("intersections = %v", pts)
	}
	if pts := c.Intersections(Ray{V(0, 0, 0), V(1, 0, 0)}); len(pts) != 0 {
		t.Errorf("parallel ray hit %v", pts)
	}
}

func TestCheckerboardUV(t *testing.T) {
	c := demoFloor(t)
	u, v := c.UV(V(2, -5, 3))
	// basis1 runs along z, basis2 along x
	if !almostEqual(u, 3) || !almostEqual(v, 2) {
		t.Errorf("UV = (%v, %v), want (3, 2)", u, v)
	}
}

func TestCheckerboardCellColor(t *testing.T) {
	c := demoFloor(t)
	tests := []struct {
		u, v, want float64
	}{
		{0.5, 0.5, 0},
		{1.5, 0.5, 1},
		{0.5, 1.5, 1},
		{1.5, 1.5, 0},
		{-0.5, 0.5, 0}, // -0.5 mod 5 = 4.5
		{5, 5, 0},
	}
	for _, tt := range tests {
		if got := c.CellColor(tt.u, tt.v); got != tt.want {
			t.Errorf("CellColor(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
		}
	}
}

func TestCheckerboardPeriodic(t *testing.T) {
	c := demoFloor(t)
	coords := []float64{-3.25, -0.5, 0.25, 1.5, 2.75, 3.5, 4.9}
	for _, u := range coords {
		for _, v := range coords {
			base := c.CellColor(u, v)
			if got := c.CellColor(u+5, v); got != base {
				t.Errorf("CellColor(%v+5, %v) = %v, want %v", u, v, got, base)
			}
			if got := c.CellColor(u, v+5); got != base {
				t.Errorf("CellColor(%v, %v+5) = %v, want %v", u, v, got, base)
			}
		}
	}
}

func TestCheckerboardShading(t *testing.T) {
	c := demoFloor(t)
	w := NewWorld()
	w.AddSolid(c)
	w.AddLight(NewLight(V(1.5, 5, 0.5)))

	// (u, v) = (0.5, 1.5) is a white cell lit straight from above
	p := V(1.5, -5, 0.5)
	got := c.RenderIntersection(p, Ray{V(1.5, 0, 0.5), p}, w, 1, nil)
	if !almostEqual(got, 1) {
		t.Errorf("white cell = %v, want 1 (0.5 + 1 clamped)", got)
	}

	p = V(0.5, -5, 0.5)
	got = c.RenderIntersection(p, Ray{V(0.5, 0, 0.5), p}, w, 1, nil)
	if got != 0 {
		t.Errorf("black cell = %v, want 0", got)
	}
}
