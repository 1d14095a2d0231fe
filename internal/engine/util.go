package engine

import (
	"bufio"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/user/raycaster/internal/scene"
)

// RenderSettingsForMode returns reasonable defaults for preview/final modes.
func RenderSettingsForMode(mode string) scene.RenderSettings {
	switch mode {
	case "final":
		return scene.RenderSettings{
			XSamples:    400,
			YSamples:    400,
			PlaneWidth:  5,
			PlaneHeight: 5,
		}
	default:
		return scene.RenderSettings{
			XSamples:    100,
			YSamples:    100,
			PlaneWidth:  5,
			PlaneHeight: 5,
		}
	}
}

// finalDensity multiplies the sample counts of a scene in final mode.
const finalDensity = 4

// SamplingFor fills unset scene settings from the mode defaults. In final
// mode sample counts given by the scene are multiplied by finalDensity.
func SamplingFor(settings scene.RenderSettings, mode string) Sampling {
	def := RenderSettingsForMode(mode)
	density := 1
	if mode == "final" {
		density = finalDensity
	}
	s := Sampling{
		XSamples:    def.XSamples,
		YSamples:    def.YSamples,
		PlaneWidth:  def.PlaneWidth,
		PlaneHeight: def.PlaneHeight,
	}
	if settings.XSamples > 0 {
		s.XSamples = settings.XSamples * density
	}
	if settings.YSamples > 0 {
		s.YSamples = settings.YSamples * density
	}
	if settings.PlaneWidth > 0 {
		s.PlaneWidth = settings.PlaneWidth
	}
	if settings.PlaneHeight > 0 {
		s.PlaneHeight = settings.PlaneHeight
	}
	return s
}

// Upscale enlarges img by an integer factor with nearest-neighbour
// sampling, so each sample stays a crisp square. factor <= 1 returns img.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	return resize.Resize(uint(b.Dx()*factor), uint(b.Dy()*factor), img, resize.NearestNeighbor)
}

// SaveImage writes an image to path. The format follows the file extension
// (png, jpg, gif, tif, bmp).
func SaveImage(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save image %s: %w", path, err)
	}
	return nil
}

// WriteText writes glyph lines to path, one per line.
func WriteText(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create text: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := fmt.Fprintln(bw, l); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}
