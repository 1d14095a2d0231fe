package engine

import (
	"fmt"
	"iter"
)

// View is a pinhole camera looking through a rectangle on a view plane.
// The plane is given by two basis rays sharing an origin (the centre of the
// rectangle); the camera sits Distance away along the plane normal.
type View struct {
	WidthRay, HeightRay Ray
	Distance            float64

	Position   Vector3 // camera position
	UnitWidth  Vector3
	UnitHeight Vector3
}

// NewView derives the camera frame from the basis rays.
func NewView(widthRay, heightRay Ray, distance float64) (*View, error) {
	if widthRay.P1 != heightRay.P1 {
		return nil, fmt.Errorf("view basis %v and %v: %w", widthRay, heightRay, ErrOriginMismatch)
	}
	w, h := widthRay.Direction(), heightRay.Direction()
	if w.Cross(h).Length() == 0 {
		return nil, fmt.Errorf("view basis %v and %v: %w", widthRay, heightRay, ErrDegenerateBasis)
	}
	return &View{
		WidthRay:   widthRay,
		HeightRay:  heightRay,
		Distance:   distance,
		Position:   CameraPosition(widthRay, heightRay, distance),
		UnitWidth:  w.Unit(),
		UnitHeight: h.Unit(),
	}, nil
}

// Origin is the centre of the view rectangle.
func (v *View) Origin() Vector3 { return v.WidthRay.P1 }

// Rays returns a generator of nx*ny primary rays evenly spaced over the
// width x height rectangle centred on the view origin.
func (v *View) Rays(nx, ny int, width, height float64) (*RayGenerator, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("sampling %dx%d: %w", nx, ny, ErrDegenerateSampling)
	}
	start := v.Origin().
		Sub(v.UnitWidth.Mul(width / 2)).
		Sub(v.UnitHeight.Mul(height / 2))
	return &RayGenerator{
		NX:     nx,
		NY:     ny,
		camera: v.Position,
		start:  start,
		stepW:  v.UnitWidth.Mul(width / float64(nx-1)),
		stepH:  v.UnitHeight.Mul(height / float64(ny-1)),
	}, nil
}

func (v *View) String() string {
	return fmt.Sprintf("View at %v pointed at %v\n with horizontal vector %v\n and up vector %v",
		v.Position, v.Origin(), v.UnitWidth, v.UnitHeight)
}

// RayGenerator produces the primary rays of a view in row-major order:
// rows run along the height direction, columns along the width direction.
// It holds no iteration state, so it can be restarted or indexed freely.
type RayGenerator struct {
	NX, NY int

	camera       Vector3
	start        Vector3
	stepW, stepH Vector3
}

// Len returns the number of rays.
func (g *RayGenerator) Len() int { return g.NX * g.NY }

// Camera is the shared origin of all rays.
func (g *RayGenerator) Camera() Vector3 { return g.camera }

// Grid returns the sample point of (0, 0) and the offsets between
// neighbouring columns and rows.
func (g *RayGenerator) Grid() (start, stepW, stepH Vector3) {
	return g.start, g.stepW, g.stepH
}

// Ray returns the ray through sample (col, row).
func (g *RayGenerator) Ray(col, row int) Ray {
	p := g.start.
		Add(g.stepW.Mul(float64(col))).
		Add(g.stepH.Mul(float64(row)))
	return Ray{P1: g.camera, P2: p}
}

// At returns the i-th ray in row-major order.
func (g *RayGenerator) At(i int) Ray {
	return g.Ray(i%g.NX, i/g.NX)
}

// All yields (index, ray) pairs in row-major order.
func (g *RayGenerator) All() iter.Seq2[int, Ray] {
	return func(yield func(int, Ray) bool) {
		for i := 0; i < g.Len(); i++ {
			if !yield(i, g.At(i)) {
				return
			}
		}
	}
}
