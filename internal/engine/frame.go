package engine

import (
	"image"
	"image/color"
	"math"
	"strings"
	"time"
)

// RenderStats summarizes one render.
type RenderStats struct {
	Samples   int
	Truncated int // samples that reached the bounce limit
	Elapsed   time.Duration
}

// Frame is a rendered raster. Values[row][col] is in [0,1]; row 0 is the top
// of the image (the largest height coordinate).
type Frame struct {
	Values [][]float64
	Stats  RenderStats
}

// NewFrame allocates a zeroed width x height frame.
func NewFrame(width, height int) *Frame {
	rows := make([][]float64, height)
	backing := make([]float64, width*height)
	for i := range rows {
		rows[i] = backing[i*width : (i+1)*width : (i+1)*width]
	}
	return &Frame{Values: rows}
}

func (f *Frame) Height() int { return len(f.Values) }

func (f *Frame) Width() int {
	if len(f.Values) == 0 {
		return 0
	}
	return len(f.Values[0])
}

// Image converts the frame to an 8-bit grayscale image.
func (f *Frame) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width(), f.Height()))
	for y, row := range f.Values {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(clamp01(v) * 255))})
		}
	}
	return img
}

// Text converts the frame to glyph lines, top row first.
func (f *Frame) Text() []string {
	lines := make([]string, len(f.Values))
	var b strings.Builder
	for i, row := range f.Values {
		b.Reset()
		for _, v := range row {
			b.WriteRune(Glyph(v))
		}
		lines[i] = b.String()
	}
	return lines
}

// glyphRamp orders glyphs from dark to bright.
const glyphRamp = " .-~oeO0&#"

// Glyph maps an intensity to a character of the brightness ramp.
func Glyph(v float64) rune {
	ramp := []rune(glyphRamp)
	v = clamp01(v)
	i := int(math.Floor((v + 0.0499) * 10))
	if i > len(ramp)-1 {
		i = len(ramp) - 1
	}
	return ramp[i]
}
