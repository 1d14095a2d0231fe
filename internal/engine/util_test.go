package engine

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/user/raycaster/internal/scene"
)

func TestSamplingFor(t *testing.T) {
	tests := []struct {
		name     string
		settings scene.RenderSettings
		mode     string
		want     Sampling
	}{
		{"preview defaults", scene.RenderSettings{}, "preview", Sampling{100, 100, 5, 5}},
		{"final defaults", scene.RenderSettings{}, "final", Sampling{400, 400, 5, 5}},
		{"scene counts", scene.RenderSettings{XSamples: 30, YSamples: 20, PlaneWidth: 8}, "preview", Sampling{30, 20, 8, 5}},
		{"final density", scene.RenderSettings{XSamples: 30, YSamples: 20}, "final", Sampling{120, 80, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SamplingFor(tt.settings, tt.mode); got != tt.want {
				t.Errorf("SamplingFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUpscale(t *testing.T) {
	f := NewFrame(3, 2)
	f.Values[0][0] = 1
	img := f.Image()

	if got := Upscale(img, 1); got != image.Image(img) {
		t.Error("factor 1 should return the input")
	}
	up := Upscale(img, 4)
	if b := up.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Fatalf("bounds = %v, want 12x8", b)
	}
	r, _, _, _ := up.At(1, 1).RGBA()
	if r>>8 != 255 {
		t.Errorf("upscaled corner = %d, want 255", r>>8)
	}
	r, _, _, _ = up.At(6, 1).RGBA()
	if r>>8 != 0 {
		t.Errorf("neighbour cell = %d, want 0", r>>8)
	}
}

func TestSaveImage(t *testing.T) {
	f := NewFrame(4, 4)
	f.Values[1][2] = 1
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.jpg"} {
		path := filepath.Join(dir, name)
		if err := SaveImage(path, f.Image()); err != nil {
			t.Fatal(err)
		}
		img, err := imaging.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
			t.Errorf("%s bounds = %v", name, b)
		}
	}

	if err := SaveImage(filepath.Join(dir, "out.unknown"), f.Image()); err == nil {
		t.Error("unknown extension saved without error")
	}
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.txt")
	if err := WriteText(path, []string{" .-", "#&0"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != " .-\n#&0\n" {
		t.Errorf("file = %q", got)
	}
	if err := WriteText(filepath.Join(t.TempDir(), "missing", "x.txt"), nil); err == nil || !strings.Contains(err.Error(), "create text") {
		t.Errorf("err = %v", err)
	}
}
