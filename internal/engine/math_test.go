package engine

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func vecAlmostEqual(a, b Vector3) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z)
}

func TestVectorOps(t *testing.T) {
	a, b := V(1, 2, 3), V(4, 5, 6)
	if got := a.Add(b); got != V(5, 7, 9) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != V(3, 3, 3) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v", got)
	}
	if got := V(1, 0, 0).Cross(V(0, 1, 0)); got != V(0, 0, 1) {
		t.Errorf("Cross = %v", got)
	}
	if got := V(3, 4, 0).Length(); got != 5 {
		t.Errorf("Length = %v", got)
	}
	if got := V(0, 0, 0).Unit(); got != V(0, 0, 0) {
		t.Errorf("zero Unit = %v", got)
	}
}

func TestRaySphereIntersections(t *testing.T) {
	tests := []struct {
		name   string
		ray    Ray
		center Vector3
		radius float64
		want   []Vector3
	}{
		{"through", Ray{V(4, 0, 0), V(3, 0, 0)}, V(0, 0, 0), 1, []Vector3{V(-1, 0, 0), V(1, 0, 0)}},
		{"tangent", Ray{V(0, 1, -5), V(0, 1, 0)}, V(0, 0, 0), 1, []Vector3{V(0, 1, 0)}},
		{"miss", Ray{V(0, 2, -5), V(0, 2, 0)}, V(0, 0, 0), 1, nil},
		{"degenerate ray", Ray{V(1, 1, 1), V(1, 1, 1)}, V(0, 0, 0), 1, nil},
		{"offset sphere", Ray{V(0, 0, 0), V(0, 0, 1)}, V(0, 0, 10), 2, []Vector3{V(0, 0, 12), V(0, 0, 8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RaySphereIntersections(tt.ray, tt.center, tt.radius)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d points %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if !vecAlmostEqual(got[i], tt.want[i]) {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
				if r := EuclideanDistance(got[i], tt.center) - tt.radius; math.Abs(r) > 1e-6 {
					t.Errorf("point %d off the surface by %g", i, r)
				}
			}
		})
	}
}

func TestRaySphereIntersectionsOnSurface(t *testing.T) {
	center := V(1, -2, 3)
	radius := 2.5
	for i := 0; i < 50; i++ {
		a := float64(i) * 0.37
		r := Ray{P1: V(10*math.Cos(a), 3*math.Sin(a), -8), P2: V(math.Sin(a), -1, 2)}
		for _, p := range RaySphereIntersections(r, center, radius) {
			if d := math.Abs(EuclideanDistance(p, center) - radius); d > 1e-6 {
				t.Fatalf("ray %v: point %v off the surface by %g", r, p, d)
			}
		}
	}
}

func TestRayPlaneIntersection(t *testing.T) {
	p1, p2, p3 := V(0, -5, 0), V(0, -5, 5), V(5, -5, 0)

	p, ok := RayPlaneIntersection(Ray{V(0, 5, 0), V(0, 4, 0)}, p1, p2, p3)
	if !ok || !vecAlmostEqual(p, V(0, -5, 0)) {
		t.Errorf("vertical ray = %v, %v", p, ok)
	}

	// behind the origin still intersects the line
	p, ok = RayPlaneIntersection(Ray{V(1, 0, 1), V(1, 1, 1)}, p1, p2, p3)
	if !ok || !vecAlmostEqual(p, V(1, -5, 1)) {
		t.Errorf("ray away from plane = %v, %v", p, ok)
	}

	if _, ok := RayPlaneIntersection(Ray{V(0, 0, 0), V(1, 0, 0)}, p1, p2, p3); ok {
		t.Error("parallel ray reported an intersection")
	}
}

func TestProjectionOnto(t *testing.T) {
	got, err := ProjectionOnto(Ray{V(0, 0, 0), V(3, 4, 0)}, Ray{V(0, 0, 0), V(2, 0, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(got, 3) {
		t.Errorf("projection = %v, want 3", got)
	}

	_, err = ProjectionOnto(Ray{V(0, 0, 0), V(1, 0, 0)}, Ray{V(1, 0, 0), V(2, 0, 0)})
	if !errors.Is(err, ErrOriginMismatch) {
		t.Errorf("err = %v, want ErrOriginMismatch", err)
	}
}

func TestEuclideanDistance(t *testing.T) {
	if d := EuclideanDistance(V(1, 1, 1), V(4, 5, 1)); d != 5 {
		t.Errorf("distance = %v, want 5", d)
	}
}

func TestCameraPosition(t *testing.T) {
	width := Ray{V(0, 0, 3), V(1, 0, 3)}
	height := Ray{V(0, 0, 3), V(0, 1, 3)}
	if got := CameraPosition(width, height, 2); !vecAlmostEqual(got, V(0, 0, 5)) {
		t.Errorf("camera = %v, want (0, 0, 5)", got)
	}
	if got := CameraPosition(width, height, -4); !vecAlmostEqual(got, V(0, 0, -1)) {
		t.Errorf("camera = %v, want (0, 0, -1)", got)
	}
}

func TestReflect(t *testing.T) {
	normal := Ray{V(0, 0, 0), V(0, 0, 1)}
	tests := []struct {
		name string
		in   Ray
		want Ray
	}{
		{"head on", Ray{V(0, 0, 4), V(0, 0, 3)}, Ray{V(0, 0, 1), V(0, 0, 2)}},
		{"oblique", Ray{V(0, 3, 4), V(0, 2, 3)}, Ray{V(0, 0, 1), V(0, -math.Sqrt2/2, 1+math.Sqrt2/2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reflect(tt.in, normal, V(0, 0, 1))
			if !vecAlmostEqual(got.P1, tt.want.P1) || !vecAlmostEqual(got.P2, tt.want.P2) {
				t.Errorf("Reflect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReflectTwiceIsIdentity(t *testing.T) {
	at := V(0.3, 0.4, 0.866)
	normal := Ray{V(0, 0, 0), at}
	for _, dir := range []Vector3{V(1, 2, 3), V(-1, 0, 0.5), V(0, -3, -1), V(2, 2, -7)} {
		in := Ray{at.Sub(dir), at}
		twice := Reflect(Reflect(in, normal, at), normal, at)
		if !vecAlmostEqual(twice.Direction(), dir.Unit()) {
			t.Errorf("dir %v: reflected twice = %v", dir, twice.Direction())
		}
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFloorMod(t *testing.T) {
	tests := []struct {
		x, m, want float64
	}{
		{3.5, 2, 1.5},
		{-0.5, 2, 1.5},
		{4, 2, 0},
		{-1e-17, 1, 0},
		{0, 5, 0},
	}
	for _, tt := range tests {
		got := floorMod(tt.x, tt.m)
		if !almostEqual(got, tt.want) {
			t.Errorf("floorMod(%v, %v) = %v, want %v", tt.x, tt.m, got, tt.want)
		}
		if got < 0 || got >= tt.m {
			t.Errorf("floorMod(%v, %v) = %v out of [0, m)", tt.x, tt.m, got)
		}
	}
}
