package scene

// Vec3 represents a simple 3D vector or point.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Ray is a directed segment from From towards To. Basis rays of views and
// checkerboards are written this way.
type Ray struct {
	From Vec3 `json:"from"`
	To   Vec3 `json:"to"`
}

// SolidType enumerates supported geometric primitives.
type SolidType string

const (
	SolidSphere       SolidType = "sphere"
	SolidCheckerboard SolidType = "checkerboard"
)

// Solid is a single surface in the scene. Which fields apply depends on Type:
// spheres use Center, Radius and Color; checkerboards use Basis1 and Basis2.
type Solid struct {
	ID   string    `json:"id,omitempty"`
	Type SolidType `json:"type"`

	Center Vec3    `json:"center"`
	Radius float64 `json:"radius,omitempty"`
	Color  float64 `json:"color,omitempty"`

	Basis1 Ray `json:"basis1"`
	Basis2 Ray `json:"basis2"`

	Reflectivity float64 `json:"reflectivity"`
}

// Light is a point light.
type Light struct {
	Position Vec3 `json:"position"`
}

// View describes a camera: two basis rays spanning the view plane from its
// centre and the camera's distance from that plane.
type View struct {
	Name     string  `json:"name,omitempty"`
	Width    Ray     `json:"width"`
	Height   Ray     `json:"height"`
	Distance float64 `json:"distance"`
}

// RenderSettings defines the sample grid. Zero fields are filled from the
// render mode defaults.
type RenderSettings struct {
	XSamples    int     `json:"x_samples,omitempty"`
	YSamples    int     `json:"y_samples,omitempty"`
	PlaneWidth  float64 `json:"plane_width,omitempty"`
	PlaneHeight float64 `json:"plane_height,omitempty"`
}

// Scene holds everything needed to render an image.
type Scene struct {
	Name     string         `json:"name"`
	Solids   []Solid        `json:"solids"`
	Lights   []Light        `json:"lights"`
	Views    []View         `json:"views"`
	Settings RenderSettings `json:"settings"`
}

// Sphere is shorthand for a sphere entry.
func Sphere(center Vec3, radius, color, reflectivity float64) Solid {
	return Solid{
		Type:         SolidSphere,
		Center:       center,
		Radius:       radius,
		Color:        color,
		Reflectivity: reflectivity,
	}
}

// Checkerboard is shorthand for a checkerboard entry.
func Checkerboard(basis1, basis2 Ray, reflectivity float64) Solid {
	return Solid{
		Type:         SolidCheckerboard,
		Basis1:       basis1,
		Basis2:       basis2,
		Reflectivity: reflectivity,
	}
}

// Demo returns the stock scene: five spheres over a checkerboard floor, lit
// from above and seen by one camera.
func Demo() *Scene {
	return &Scene{
		Name: "demo",
		Solids: []Solid{
			Sphere(Vec3{0, 0, 0}, 1, 0.9, 0),
			Sphere(Vec3{3, 0, 0}, 1, 0.6, 0),
			Sphere(Vec3{0, 4, 0}, 2, 0.75, 0),
			Sphere(Vec3{3, 0, 2}, 2, 0.5, 0.3),
			Sphere(Vec3{-3, -3, -3}, 2, 1, 1),
			Checkerboard(
				Ray{From: Vec3{0, -5, 0}, To: Vec3{0, -5, 5}},
				Ray{From: Vec3{0, -5, 0}, To: Vec3{5, -5, 0}},
				0,
			),
		},
		Lights: []Light{{Position: Vec3{100, 100, 0}}},
		Views: []View{{
			Name:     "main",
			Width:    Ray{From: Vec3{0, 0, -5}, To: Vec3{2, 0, -6}},
			Height:   Ray{From: Vec3{0, 0, -5}, To: Vec3{0, 2, -5}},
			Distance: -4,
		}},
		Settings: RenderSettings{
			XSamples:    100,
			YSamples:    100,
			PlaneWidth:  5,
			PlaneHeight: 5,
		},
	}
}
