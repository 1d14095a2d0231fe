package engine

import (
	"fmt"

	"github.com/user/raycaster/internal/scene"
)

func vec(v scene.Vec3) Vector3 { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }
func ray(r scene.Ray) Ray      { return Ray{P1: vec(r.From), P2: vec(r.To)} }

// Build assembles a world from a scene description. The first invalid
// solid or view aborts the build.
func Build(sc *scene.Scene) (*World, error) {
	w := NewWorld()
	for i, s := range sc.Solids {
		solid, err := buildSolid(s)
		if err != nil {
			return nil, fmt.Errorf("solid %d (%s): %w", i, label(s.ID, string(s.Type)), err)
		}
		w.AddSolid(solid)
	}
	for _, l := range sc.Lights {
		w.AddLight(NewLight(vec(l.Position)))
	}
	for i, v := range sc.Views {
		view, err := NewView(ray(v.Width), ray(v.Height), v.Distance)
		if err != nil {
			return nil, fmt.Errorf("view %d (%s): %w", i, label(v.Name, "unnamed"), err)
		}
		w.AddView(view)
	}
	return w, nil
}

func buildSolid(s scene.Solid) (Solid, error) {
	switch s.Type {
	case scene.SolidSphere:
		return NewSphere(vec(s.Center), s.Radius, s.Color, s.Reflectivity)
	case scene.SolidCheckerboard:
		return NewCheckerboard(ray(s.Basis1), ray(s.Basis2), s.Reflectivity)
	default:
		return nil, fmt.Errorf("unknown solid type %q: %w", s.Type, ErrInvalidSolid)
	}
}

func label(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
