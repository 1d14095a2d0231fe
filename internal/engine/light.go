package engine

import (
	"fmt"
	"math"
)

const (
	// OcclusionTolerance is how much closer than the light an occluder must
	// be to cast a shadow.
	OcclusionTolerance = 1e-5
	// ShadowBias moves the origin of occlusion rays off the shading point.
	ShadowBias = 1e-6
)

// Light is a point light.
type Light struct {
	Position   Vector3
	Brightness float64
}

// NewLight returns a point light of unit brightness.
func NewLight(position Vector3) *Light {
	return &Light{Position: position, Brightness: 1}
}

// Contribution returns the Lambertian contribution of the light at point p
// on solid s, seen along incoming. An occlusion ray is cast from p toward
// the light; if it hits anything before the light, p is in shadow. A probe
// that hits nothing counts as unshadowed.
func (l *Light) Contribution(s Solid, p Vector3, incoming Ray, w *World) float64 {
	toLight := l.Position.Sub(p)
	dist := toLight.Length()
	if dist == 0 {
		return 0
	}
	dir := toLight.Mul(1 / dist)

	probe := Ray{P1: p.Add(dir.Mul(ShadowBias)), P2: l.Position}
	if hit, ok := w.FirstIntersection(probe); ok {
		if EuclideanDistance(probe.P1, hit.Point) < EuclideanDistance(probe.P1, l.Position)-OcclusionTolerance {
			return 0
		}
	}

	n := s.NormalRay(p).Direction().Unit()
	// Light the side the viewer is on.
	if n.Dot(incoming.Direction()) > 0 {
		n = n.Mul(-1)
	}
	cosTheta := n.Dot(dir)
	return math.Max(0, cosTheta) * l.Brightness
}

func (l *Light) String() string {
	return fmt.Sprintf("Light at %v", l.Position)
}
