// Package gpu renders frames with an OpenGL 4.3 compute shader. It registers
// itself as engine.BackendGPU; import it for its side effect.
package gpu

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/user/raycaster/internal/engine"
)

func init() {
	engine.RegisterBackend(engine.BackendGPU, Renderer{})
}

// Go-side copies of solid type constants used in GLSL.
// Must stay in sync with values in the compute shader.
const (
	solidSphere       = 0
	solidCheckerboard = 1
)

const (
	solidStride = 16 // floats per packed solid
	lightStride = 4  // floats per packed light
	groupSize   = 16 // local_size_x and local_size_y of the shader
)

// gpuRenderer owns a hidden GLFW window and GL resources used for compute rendering.
type gpuRenderer struct {
	initOnce  sync.Once
	initErr   error
	window    *glfw.Window
	program   uint32
	solidSSBO uint32
	lightSSBO uint32
	outSSBO   uint32
	outLen    int

	uniforms map[string]int32
}

// renderRequest is sent from callers to the dedicated GL worker goroutine.
type renderRequest struct {
	job  job
	done chan result
}

type result struct {
	values []float32
	err    error
}

// job is everything the shader needs for one frame, already packed.
type job struct {
	solids []float32
	lights []float32

	nx, ny                      int
	camera, start, stepW, stepH engine.Vector3
	solidCount, lightCount      int
}

var (
	renderer   gpuRenderer
	renderCh   chan renderRequest
	workerOnce sync.Once
)

// ensureWorker starts the dedicated GL worker goroutine exactly once.
func ensureWorker() {
	workerOnce.Do(func() {
		renderCh = make(chan renderRequest)
		go renderWorker()
	})
}

// renderWorker owns the GL context and processes all GPU render requests.
// It always runs on a single locked OS thread, which is required by OpenGL.
func renderWorker() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := renderer.initGL(); err != nil {
		fmt.Fprintf(os.Stderr, "gpu: initialization failed: %v\n", err)
		for req := range renderCh {
			req.done <- result{err: err}
		}
		return
	}

	fmt.Fprintf(os.Stderr, "gpu: renderer initialized\n")

	for req := range renderCh {
		values, err := renderer.renderOnce(req.job)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gpu: render error: %v\n", err)
		}
		req.done <- result{values: values, err: err}
	}
}

// initGL must be called from the GL worker goroutine (locked OS thread).
func (r *gpuRenderer) initGL() error {
	r.initOnce.Do(func() {
		if err := glfw.Init(); err != nil {
			r.initErr = fmt.Errorf("glfw init: %w", err)
			return
		}

		glfw.WindowHint(glfw.Visible, glfw.False)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

		w, err := glfw.CreateWindow(1, 1, "raycaster-gpu-hidden", nil, nil)
		if err != nil {
			r.initErr = fmt.Errorf("glfw create window: %w", err)
			return
		}
		r.window = w
		w.MakeContextCurrent()

		if err := gl.Init(); err != nil {
			r.initErr = fmt.Errorf("gl init: %w", err)
			return
		}

		gl.GenBuffers(1, &r.solidSSBO)
		gl.GenBuffers(1, &r.lightSSBO)
		gl.GenBuffers(1, &r.outSSBO)

		cs, err := compileShader(computeSrc, gl.COMPUTE_SHADER)
		if err != nil {
			r.initErr = fmt.Errorf("compile compute shader: %w", err)
			return
		}
		r.program = gl.CreateProgram()
		gl.AttachShader(r.program, cs)
		gl.LinkProgram(r.program)
		gl.DeleteShader(cs)

		var status int32
		gl.GetProgramiv(r.program, gl.LINK_STATUS, &status)
		if status == gl.FALSE {
			var logLen int32
			gl.GetProgramiv(r.program, gl.INFO_LOG_LENGTH, &logLen)
			log := make([]byte, logLen+1)
			gl.GetProgramInfoLog(r.program, logLen, nil, &log[0])
			r.initErr = fmt.Errorf("link compute program: %s", string(log))
			return
		}

		r.uniforms = make(map[string]int32)
		for _, name := range uniformNames {
			r.uniforms[name] = gl.GetUniformLocation(r.program, gl.Str(name+"\x00"))
		}
	})

	return r.initErr
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		return 0, fmt.Errorf("shader compile: %s", string(log))
	}
	return shader, nil
}

// upload replaces the contents of an SSBO. Empty data still allocates one
// float so the binding stays valid.
func upload(buf, binding uint32, data []float32) {
	if len(data) == 0 {
		data = []float32{0}
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, buf)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
}

func (r *gpuRenderer) setVec3(name string, v engine.Vector3) {
	gl.Uniform3f(r.uniforms[name], float32(v.X), float32(v.Y), float32(v.Z))
}

// renderOnce runs the compute shader for one job and reads back the values
// using the GL context owned by the worker goroutine.
func (r *gpuRenderer) renderOnce(j job) ([]float32, error) {
	count := j.nx * j.ny
	if count <= 0 {
		return nil, nil
	}

	gl.UseProgram(r.program)

	upload(r.solidSSBO, 0, j.solids)
	upload(r.lightSSBO, 1, j.lights)

	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 2, r.outSSBO)
	if r.outLen != count {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, count*4, nil, gl.DYNAMIC_READ)
		r.outLen = count
	}

	r.setVec3("uCamera", j.camera)
	r.setVec3("uStart", j.start)
	r.setVec3("uStepW", j.stepW)
	r.setVec3("uStepH", j.stepH)
	gl.Uniform1i(r.uniforms["uNX"], int32(j.nx))
	gl.Uniform1i(r.uniforms["uNY"], int32(j.ny))
	gl.Uniform1i(r.uniforms["uSolidCount"], int32(j.solidCount))
	gl.Uniform1i(r.uniforms["uLightCount"], int32(j.lightCount))
	gl.Uniform1i(r.uniforms["uBounceLimit"], engine.BounceLimit)
	gl.Uniform1f(r.uniforms["uAmbient"], engine.Ambient)
	gl.Uniform1f(r.uniforms["uMinProjection"], engine.MinProjection)
	gl.Uniform1f(r.uniforms["uTolerance"], engine.OcclusionTolerance)
	gl.Uniform1f(r.uniforms["uBias"], engine.ShadowBias)

	groupsX := (j.nx + groupSize - 1) / groupSize
	groupsY := (j.ny + groupSize - 1) / groupSize
	gl.DispatchCompute(uint32(groupsX), uint32(groupsY), 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)

	values := make([]float32, count)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, r.outSSBO)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, count*4, gl.Ptr(values))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("gl error 0x%x", code)
	}
	return values, nil
}

// Renderer implements engine.RasterRenderer on the GPU.
type Renderer struct{}

// RenderRaster packs the world, schedules the frame on the GL worker and
// waits for it. Cancelling ctx stops the wait, not the dispatch.
func (Renderer) RenderRaster(ctx context.Context, w *engine.World, v *engine.View, s engine.Sampling) (*engine.Frame, error) {
	gen, err := v.Rays(s.XSamples, s.YSamples, s.PlaneWidth, s.PlaneHeight)
	if err != nil {
		return nil, err
	}
	j, err := newJob(w, gen)
	if err != nil {
		return nil, err
	}

	ensureWorker()
	done := make(chan result, 1)
	select {
	case renderCh <- renderRequest{job: j, done: done}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}
	return toFrame(res.values, j.nx, j.ny), nil
}

func newJob(w *engine.World, gen *engine.RayGenerator) (job, error) {
	solids, err := packSolids(w.Solids)
	if err != nil {
		return job{}, err
	}
	start, stepW, stepH := gen.Grid()
	return job{
		solids:     solids,
		lights:     packLights(w.Lights),
		nx:         gen.NX,
		ny:         gen.NY,
		camera:     gen.Camera(),
		start:      start,
		stepW:      stepW,
		stepH:      stepH,
		solidCount: len(w.Solids),
		lightCount: len(w.Lights),
	}, nil
}

// toFrame copies shader output, already in top-row-first order, into a frame.
func toFrame(values []float32, nx, ny int) *engine.Frame {
	frame := engine.NewFrame(nx, ny)
	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			frame.Values[row][col] = float64(values[row*nx+col])
		}
	}
	frame.Stats.Samples = nx * ny
	return frame
}

func putVec3(dst []float32, v engine.Vector3) {
	dst[0], dst[1], dst[2] = float32(v.X), float32(v.Y), float32(v.Z)
}

// packSolids lays solids out as solidStride floats each:
//
//	[0] type  [1] color  [2] reflectivity  [3] radius
//	[4:7] center or plane origin           [7] |basis1|
//	[8:11] basis1 direction                [11] |basis2|
//	[12:15] basis2 direction               [15] unused
func packSolids(solids []engine.Solid) ([]float32, error) {
	data := make([]float32, len(solids)*solidStride)
	for i, s := range solids {
		base := data[i*solidStride : (i+1)*solidStride]
		switch s := s.(type) {
		case *engine.Sphere:
			base[0] = solidSphere
			base[1] = float32(s.Color)
			base[2] = float32(s.Reflectivity)
			base[3] = float32(s.Radius)
			putVec3(base[4:], s.Center)
		case *engine.Checkerboard:
			origin, d1, d2 := s.Frame()
			base[0] = solidCheckerboard
			base[2] = float32(s.Reflectivity)
			putVec3(base[4:], origin)
			base[7] = float32(d1.Length())
			putVec3(base[8:], d1)
			base[11] = float32(d2.Length())
			putVec3(base[12:], d2)
		default:
			return nil, fmt.Errorf("gpu: solid %d of type %T not supported", i, s)
		}
	}
	return data, nil
}

func packLights(lights []*engine.Light) []float32 {
	data := make([]float32, len(lights)*lightStride)
	for i, l := range lights {
		base := data[i*lightStride:]
		putVec3(base, l.Position)
		base[3] = float32(l.Brightness)
	}
	return data
}
