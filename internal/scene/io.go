package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoViews is returned by Validate for a scene without a camera.
var ErrNoViews = errors.New("scene has no views")

// Load reads a Scene from a JSON file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	sc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return sc, nil
}

// Decode reads a JSON scene from r. Unknown fields are rejected so typos in
// hand-written scene files surface early.
func Decode(r io.Reader) (*Scene, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var sc Scene
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Save writes a Scene to a JSON file.
func Save(path string, sc *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sc); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Validate checks the parts of a scene that do not need geometry: solid
// types and that there is a camera. Geometric checks happen when the scene
// is built into a world.
func (sc *Scene) Validate() error {
	if len(sc.Views) == 0 {
		return ErrNoViews
	}
	for i, s := range sc.Solids {
		switch s.Type {
		case SolidSphere, SolidCheckerboard:
		default:
			return fmt.Errorf("solid %d: unknown type %q", i, s.Type)
		}
	}
	return nil
}

// ViewIndex returns the index of the view called name, or -1.
func (sc *Scene) ViewIndex(name string) int {
	for i, v := range sc.Views {
		if v.Name == name {
			return i
		}
	}
	return -1
}
