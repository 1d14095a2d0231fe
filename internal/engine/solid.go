package engine

import (
	"fmt"
	"math"
)

// BounceLimit caps the reflection depth of a traced ray. A solid reached at
// a deeper level returns its base value without gathering light or
// reflecting further, so closed mirror cavities still terminate.
const BounceLimit = 15

// Solid is a renderable surface.
type Solid interface {
	// Intersections returns every point where the line through r meets the
	// surface, including points behind the ray origin.
	Intersections(r Ray) []Vector3
	// NormalRay returns a ray whose direction is the surface normal at p.
	NormalRay(p Vector3) Ray
	// RenderIntersection shades the hit point p seen along r. depth is the
	// reflection depth of r (1 for primary rays).
	RenderIntersection(p Vector3, r Ray, w *World, depth int, tr *Trace) float64
}

var (
	_ Solid = (*Sphere)(nil)
	_ Solid = (*Checkerboard)(nil)
)

func in01(x float64) bool { return x >= 0 && x <= 1 }

// Sphere primitive.
type Sphere struct {
	Center       Vector3
	Radius       float64
	Color        float64 // base intensity in [0,1]
	Reflectivity float64 // share of the reflected ray in [0,1]
}

// NewSphere validates the parameters and returns a sphere.
func NewSphere(center Vector3, radius, color, reflectivity float64) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return nil, fmt.Errorf("sphere radius must be > 0, got %g: %w", radius, ErrInvalidSolid)
	}
	if !in01(color) {
		return nil, fmt.Errorf("sphere color must be in [0,1], got %g: %w", color, ErrInvalidSolid)
	}
	if !in01(reflectivity) {
		return nil, fmt.Errorf("sphere reflectivity must be in [0,1], got %g: %w", reflectivity, ErrInvalidSolid)
	}
	return &Sphere{
		Center:       center,
		Radius:       radius,
		Color:        color,
		Reflectivity: reflectivity,
	}, nil
}

func (s *Sphere) Intersections(r Ray) []Vector3 {
	return RaySphereIntersections(r, s.Center, s.Radius)
}

// FirstIntersection returns the intersection closest to the ray origin,
// in either direction along the line.
func (s *Sphere) FirstIntersection(r Ray) (Vector3, bool) {
	pts := s.Intersections(r)
	if len(pts) == 0 {
		return Vector3{}, false
	}
	best := pts[0]
	for _, p := range pts[1:] {
		if EuclideanDistance(r.P1, p) < EuclideanDistance(r.P1, best) {
			best = p
		}
	}
	return best, true
}

func (s *Sphere) NormalRay(p Vector3) Ray {
	return Ray{P1: s.Center, P2: p}
}

func (s *Sphere) RenderIntersection(p Vector3, r Ray, w *World, depth int, tr *Trace) float64 {
	if depth > BounceLimit {
		tr.truncate()
		return s.Color
	}
	bounce := Reflect(r, s.NormalRay(p), p)
	value := s.Reflectivity*w.RenderRay(bounce, depth+1, tr) +
		(1-s.Reflectivity)*w.RenderLight(s, p, r)
	return clamp01(value)
}

func (s *Sphere) String() string {
	return fmt.Sprintf("Sphere of radius %g at %v", s.Radius, s.Center)
}

// Checkerboard is an infinite plane tiled with alternating black and white
// cells. The plane is spanned by two basis rays sharing an origin.
type Checkerboard struct {
	Basis1, Basis2 Ray
	Reflectivity   float64

	// cached
	origin     Vector3
	d1, d2     Vector3
	len1, len2 float64
	normal     Vector3
}

// NewCheckerboard validates the basis rays and returns a checkerboard.
func NewCheckerboard(basis1, basis2 Ray, reflectivity float64) (*Checkerboard, error) {
	if basis1.P1 != basis2.P1 {
		return nil, fmt.Errorf("checkerboard basis %v and %v: %w", basis1, basis2, ErrOriginMismatch)
	}
	if !in01(reflectivity) {
		return nil, fmt.Errorf("checkerboard reflectivity must be in [0,1], got %g: %w", reflectivity, ErrInvalidSolid)
	}
	d1, d2 := basis1.Direction(), basis2.Direction()
	normal := d1.Cross(d2)
	if normal.Length() == 0 {
		return nil, fmt.Errorf("checkerboard basis %v and %v: %w", basis1, basis2, ErrDegenerateBasis)
	}
	return &Checkerboard{
		Basis1:       basis1,
		Basis2:       basis2,
		Reflectivity: reflectivity,
		origin:       basis1.P1,
		d1:           d1,
		d2:           d2,
		len1:         d1.Length(),
		len2:         d2.Length(),
		normal:       normal,
	}, nil
}

func (c *Checkerboard) Intersections(r Ray) []Vector3 {
	p, ok := RayPlaneIntersection(r, c.origin, c.origin.Add(c.d1), c.origin.Add(c.d2))
	if !ok {
		return nil
	}
	return []Vector3{p}
}

func (c *Checkerboard) NormalRay(p Vector3) Ray {
	return Ray{P1: p, P2: p.Add(c.normal)}
}

// Frame returns the shared origin of the basis rays and their directions.
func (c *Checkerboard) Frame() (origin, d1, d2 Vector3) {
	return c.origin, c.d1, c.d2
}

// UV returns the plane coordinates of p measured along the two basis
// directions from the shared origin.
func (c *Checkerboard) UV(p Vector3) (u, v float64) {
	rel := p.Sub(c.origin)
	return project(rel, c.d1), project(rel, c.d2)
}

// CellColor returns 0 or 1 for the cell containing plane coordinates
// (u, v). It is periodic in u with period |basis1| and in v with |basis2|.
func (c *Checkerboard) CellColor(u, v float64) float64 {
	fu := math.Floor(floorMod(u, c.len1))
	fv := math.Floor(floorMod(v, c.len2))
	if int64(fu+fv)%2 == 0 {
		return 0
	}
	return 1
}

func (c *Checkerboard) RenderIntersection(p Vector3, r Ray, w *World, depth int, tr *Trace) float64 {
	cell := c.CellColor(c.UV(p))
	if depth > BounceLimit {
		tr.truncate()
		return cell
	}
	half := c.Reflectivity / 2
	bounce := Reflect(r, c.NormalRay(p), p)
	value := 0.5*cell +
		half*w.RenderRay(bounce, depth+1, tr) +
		cell*(1-half)*w.RenderLight(c, p, r)
	return clamp01(value)
}

func (c *Checkerboard) String() string {
	return fmt.Sprintf("Checkerboard at %v spanned by %v and %v", c.origin, c.d1, c.d2)
}
