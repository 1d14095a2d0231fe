package engine

import (
	"sort"
	"strings"
)

const (
	// Ambient is the value of a ray that hits nothing.
	Ambient = 0.05
	// MinProjection discards hits at or behind the ray origin; it also keeps
	// reflected and occlusion rays from re-hitting their own surface.
	MinProjection = 1e-4
)

// World holds the scene. It is assembled with the Add methods before
// rendering and is only read while rendering, so one World may serve any
// number of concurrent renders.
type World struct {
	Solids []Solid
	Lights []*Light
	Views  []*View
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{}
}

func (w *World) AddSolid(s Solid)  { w.Solids = append(w.Solids, s) }
func (w *World) AddLight(l *Light) { w.Lights = append(w.Lights, l) }
func (w *World) AddView(v *View)   { w.Views = append(w.Views, v) }

// Hit is a point on a solid reached by a ray.
type Hit struct {
	Solid      Solid
	Point      Vector3
	Projection float64 // distance along the ray direction from its origin
}

// Hits returns every hit in front of the ray origin ordered by distance
// along the ray. Equal distances keep the order solids were added in.
func (w *World) Hits(r Ray) []Hit {
	dir := r.Direction()
	var hits []Hit
	for _, s := range w.Solids {
		for _, p := range s.Intersections(r) {
			proj := project(p.Sub(r.P1), dir)
			if proj < MinProjection {
				continue
			}
			hits = append(hits, Hit{Solid: s, Point: p, Projection: proj})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Projection < hits[j].Projection
	})
	return hits
}

// FirstIntersection returns the nearest hit in front of the ray origin.
func (w *World) FirstIntersection(r Ray) (Hit, bool) {
	dir := r.Direction()
	var (
		best Hit
		ok   bool
	)
	for _, s := range w.Solids {
		for _, p := range s.Intersections(r) {
			proj := project(p.Sub(r.P1), dir)
			if proj < MinProjection {
				continue
			}
			// strict: the earliest added solid wins ties
			if !ok || proj < best.Projection {
				best, ok = Hit{Solid: s, Point: p, Projection: proj}, true
			}
		}
	}
	return best, ok
}

// RenderRay returns the intensity seen along r at reflection depth depth.
func (w *World) RenderRay(r Ray, depth int, tr *Trace) float64 {
	hit, ok := w.FirstIntersection(r)
	if !ok {
		return Ambient
	}
	tr.hit(hit.Solid)
	return hit.Solid.RenderIntersection(hit.Point, r, w, depth, tr)
}

// RenderLight sums the contributions of all lights at point p on s.
func (w *World) RenderLight(s Solid, p Vector3, incoming Ray) float64 {
	total := 0.0
	for _, l := range w.Lights {
		total += l.Contribution(s, p, incoming, w)
	}
	return total
}

func (w *World) String() string {
	var b strings.Builder
	b.WriteString("World with views:")
	for _, v := range w.Views {
		b.WriteString("\n ")
		b.WriteString(v.String())
	}
	b.WriteString("\nand containing objects:")
	for _, s := range w.Solids {
		b.WriteString("\n ")
		if st, ok := s.(interface{ String() string }); ok {
			b.WriteString(st.String())
		}
	}
	b.WriteString("\nlit by:")
	for _, l := range w.Lights {
		b.WriteString("\n ")
		b.WriteString(l.String())
	}
	return b.String()
}
