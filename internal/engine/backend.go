package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Backend defines where heavy rendering computations are executed.
type Backend int

const (
	BackendCPU Backend = iota
	BackendGPU
)

func (b Backend) String() string {
	switch b {
	case BackendGPU:
		return "gpu"
	default:
		return "cpu"
	}
}

// RasterRenderer renders one view of a world into a frame.
type RasterRenderer interface {
	RenderRaster(ctx context.Context, w *World, v *View, s Sampling) (*Frame, error)
}

// cpuRenderer is the reference tracer in this package.
type cpuRenderer struct{}

func (cpuRenderer) RenderRaster(ctx context.Context, w *World, v *View, s Sampling) (*Frame, error) {
	return RenderToRaster(ctx, w, v, s)
}

var (
	mu             sync.RWMutex
	currentBackend = BackendCPU
	renderers      = map[Backend]RasterRenderer{BackendCPU: cpuRenderer{}}
)

// RegisterBackend installs the renderer for b. Backend packages call it from
// init.
func RegisterBackend(b Backend, r RasterRenderer) {
	mu.Lock()
	defer mu.Unlock()
	renderers[b] = r
}

// SetBackend selects active render backend (CPU or GPU).
// If an unknown value is passed, CPU backend will be used.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	switch b {
	case BackendCPU, BackendGPU:
		currentBackend = b
	default:
		currentBackend = BackendCPU
	}
}

// GetBackend returns currently selected render backend.
func GetBackend() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return currentBackend
}

// Render renders v with the selected backend. If the GPU backend is missing
// or fails, the frame is rendered on the CPU instead.
func Render(ctx context.Context, w *World, v *View, s Sampling) (*Frame, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	mu.RLock()
	b := currentBackend
	r, ok := renderers[b]
	mu.RUnlock()

	if b == BackendCPU {
		return RenderToRaster(ctx, w, v, s)
	}
	if !ok {
		log.Printf("render: backend %s not available, using cpu", b)
		return RenderToRaster(ctx, w, v, s)
	}
	frame, err := r.RenderRaster(ctx, w, v, s)
	if err == nil {
		return frame, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("render on %s: %w", b, err)
	}
	log.Printf("render: %s backend failed (%v), falling back to cpu", b, err)
	return RenderToRaster(ctx, w, v, s)
}
