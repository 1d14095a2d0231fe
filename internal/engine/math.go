package engine

import (
	"fmt"
	"math"
)

// Vector3 is a point or direction in 3-D space.
type Vector3 struct {
	X, Y, Z float64
}

// V is shorthand for Vector3{x, y, z}.
func V(x, y, z float64) Vector3 { return Vector3{x, y, z} }

func (a Vector3) Add(b Vector3) Vector3 { return Vector3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }
func (a Vector3) Sub(b Vector3) Vector3 { return Vector3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func (a Vector3) Mul(t float64) Vector3 { return Vector3{X: a.X * t, Y: a.Y * t, Z: a.Z * t} }
func (a Vector3) Dot(b Vector3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vector3) Length() float64       { return math.Sqrt(a.Dot(a)) }
func (a Vector3) String() string        { return fmt.Sprintf("(%g, %g, %g)", a.X, a.Y, a.Z) }

func (a Vector3) Cross(b Vector3) Vector3 {
	return V(
		a.Y*b.Z-a.Z*b.Y,
		a.Z*b.X-a.X*b.Z,
		a.X*b.Y-a.Y*b.X,
	)
}

// Unit returns a unit-length copy. The zero vector is returned unchanged.
func (a Vector3) Unit() Vector3 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Mul(1 / l)
}

// Ray is a directed line through P1 and P2. P1 is the origin.
type Ray struct {
	P1, P2 Vector3
}

// Direction returns P2 - P1 (not normalized).
func (r Ray) Direction() Vector3 { return r.P2.Sub(r.P1) }

func (r Ray) at(t float64) Vector3 {
	return r.P1.Add(r.Direction().Mul(t))
}

func (r Ray) String() string { return fmt.Sprintf("[%v -> %v]", r.P1, r.P2) }

// RaySphereIntersections returns the points where the line through r meets
// the sphere: none, one tangent point, or two points (larger root first).
// Points behind the ray origin are included; callers filter them.
func RaySphereIntersections(r Ray, center Vector3, radius float64) []Vector3 {
	d := r.Direction()
	oc := r.P1.Sub(center)

	a := d.Dot(d)
	if a == 0 {
		return nil
	}
	b := 2 * d.Dot(oc)
	c := oc.Dot(oc) - radius*radius

	disc := b*b - 4*a*c
	switch {
	case disc < 0:
		return nil
	case disc == 0:
		return []Vector3{r.at(-b / (2 * a))}
	default:
		sq := math.Sqrt(disc)
		return []Vector3{
			r.at((-b + sq) / (2 * a)),
			r.at((-b - sq) / (2 * a)),
		}
	}
}

// parallelEps is the smallest |n·d| for which a ray is considered to cross a plane.
const parallelEps = 1e-12

// RayPlaneIntersection intersects the line through r with the plane through
// p1, p2 and p3. ok is false when the ray runs parallel to the plane.
func RayPlaneIntersection(r Ray, p1, p2, p3 Vector3) (p Vector3, ok bool) {
	n := p1.Sub(p2).Cross(p1.Sub(p3)).Unit()
	d := r.Direction()
	denom := n.Dot(d)
	if math.Abs(denom) < parallelEps {
		return Vector3{}, false
	}
	t := n.Dot(p1.Sub(r.P1)) / denom
	return r.at(t), true
}

// ProjectionOnto returns the signed length of r1's direction projected onto
// r2's direction. Both rays must share an origin.
func ProjectionOnto(r1, r2 Ray) (float64, error) {
	if r1.P1 != r2.P1 {
		return 0, fmt.Errorf("projection of %v onto %v: %w", r1, r2, ErrOriginMismatch)
	}
	return project(r1.Direction(), r2.Direction()), nil
}

// project is ProjectionOnto on bare directions.
func project(d, onto Vector3) float64 {
	l := onto.Length()
	if l == 0 {
		return 0
	}
	return d.Dot(onto) / l
}

// EuclideanDistance returns |p1 - p2|.
func EuclideanDistance(p1, p2 Vector3) float64 {
	return p1.Sub(p2).Length()
}

// CameraPosition returns the point distance units from the shared origin of
// the two basis rays, along the unit normal cross(width, height).
func CameraPosition(width, height Ray, distance float64) Vector3 {
	n := width.Direction().Cross(height.Direction()).Unit()
	return width.P1.Add(n.Mul(distance))
}

// Reflect mirrors the direction of in across normal and returns the
// reflected ray starting at the hit point at.
func Reflect(in, normal Ray, at Vector3) Ray {
	u := in.Direction().Unit()
	n := normal.Direction().Unit()
	bounce := u.Sub(n.Mul(2 * u.Dot(n)))
	return Ray{P1: at, P2: at.Add(bounce)}
}

func clamp(x, minVal, maxVal float64) float64 {
	if x < minVal {
		return minVal
	}
	if x > maxVal {
		return maxVal
	}
	return x
}

// clamp01 also maps NaN to 0.
func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return clamp(x, 0, 1)
}

// floorMod is x mod m with the result in [0, m) for m > 0.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}
