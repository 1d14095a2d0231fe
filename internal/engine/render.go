package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxWorkers caps RAYCAST_WORKERS.
const maxWorkers = 128

// workerCount returns how many rows are traced at once: one per CPU unless
// RAYCAST_WORKERS overrides it.
func workerCount() int {
	n := runtime.NumCPU()
	if env := os.Getenv("RAYCAST_WORKERS"); env != "" {
		if v, err := strconv.Atoi(env); err == nil && v > 0 && v <= maxWorkers {
			n = v
		}
	}
	return max(n, 1)
}

// Sampling is the number of primary rays per axis and the size of the view
// rectangle they cover.
type Sampling struct {
	XSamples    int
	YSamples    int
	PlaneWidth  float64
	PlaneHeight float64
}

// Validate reports whether the sampling can produce a ray grid.
func (s Sampling) Validate() error {
	if s.XSamples < 2 || s.YSamples < 2 {
		return fmt.Errorf("sampling %dx%d: %w", s.XSamples, s.YSamples, ErrDegenerateSampling)
	}
	return nil
}

// RenderToRaster traces one ray per sample through view and returns the
// resulting frame. Rows are traced concurrently; the context is checked
// before each row.
func RenderToRaster(ctx context.Context, w *World, view *View, s Sampling) (*Frame, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	gen, err := view.Rays(s.XSamples, s.YSamples, s.PlaneWidth, s.PlaneHeight)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	frame := NewFrame(s.XSamples, s.YSamples)
	var truncated atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount())
	for row := 0; row < gen.NY; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("render aborted at row %d: %w", row, err)
			}
			// row 0 of the generator is the bottom edge of the view
			out := frame.Values[gen.NY-1-row]
			var tr Trace
			for col := 0; col < gen.NX; col++ {
				tr.reset()
				out[col] = clamp01(w.RenderRay(gen.Ray(col, row), 1, &tr))
				if tr.Truncated {
					truncated.Add(1)
					debugf("sample (%d,%d) truncated after %d bounces: %s", col, row, len(tr.Bounces), &tr)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	frame.Stats.Samples = gen.Len()
	frame.Stats.Truncated = int(truncated.Load())
	frame.Stats.Elapsed = time.Since(start)
	return frame, nil
}

// RenderToText renders view and converts it to glyph lines.
func RenderToText(ctx context.Context, w *World, view *View, s Sampling) ([]string, error) {
	frame, err := RenderToRaster(ctx, w, view, s)
	if err != nil {
		return nil, err
	}
	return frame.Text(), nil
}

// DebugRenderView describes every sample ray of view with its value and
// the solids it bounced off. Meant for small samplings.
func DebugRenderView(w *World, view *View, s Sampling) ([]string, error) {
	gen, err := view.Rays(s.XSamples, s.YSamples, s.PlaneWidth, s.PlaneHeight)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, gen.Len())
	for i, r := range gen.All() {
		var tr Trace
		value := clamp01(w.RenderRay(r, 1, &tr))
		if len(tr.Bounces) == 0 {
			lines = append(lines, fmt.Sprintf("%d %v: miss %.4f", i, r, value))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d %v: %.4f via %s", i, r, value, &tr))
	}
	return lines, nil
}
