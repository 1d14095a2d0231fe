package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/user/raycaster/internal/engine"
	"github.com/user/raycaster/internal/scene"
)

// debounce delays preview renders while settings are being edited.
const debounce = 200 * time.Millisecond

// logFilter drops the harmless GLFW "Invalid scancode" noise.
type logFilter struct {
	original io.Writer
}

func (f *logFilter) Write(p []byte) (n int, err error) {
	if strings.Contains(string(p), "Invalid scancode") {
		return len(p), nil
	}
	return f.original.Write(p)
}

// Run starts the interactive preview of the given scene file.
func Run(scenePath, mode string) error {
	log.Printf("ui: starting with scene %q, mode=%s\n", scenePath, mode)

	originalLogWriter := log.Writer()
	log.SetOutput(&logFilter{original: originalLogWriter})
	defer log.SetOutput(originalLogWriter)

	sc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}
	world, err := engine.Build(sc)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	a := app.New()
	w := a.NewWindow("Go Ray Caster")

	previewSampling := engine.SamplingFor(sc.Settings, "preview")
	finalSampling := engine.SamplingFor(sc.Settings, "final")
	if mode == "final" {
		previewSampling = finalSampling
	}
	viewIdx := 0

	img := image.Image(engine.NewFrame(previewSampling.XSamples, previewSampling.YSamples).Image())
	imgCanvas := canvas.NewImageFromImage(img)
	imgCanvas.FillMode = canvas.ImageFillContain
	imgCanvas.ScaleMode = canvas.ImageScalePixels
	imgCanvas.SetMinSize(fyne.NewSize(640, 640))

	status := widget.NewLabel("Idle")
	timing := widget.NewLabel("Last render: -")

	var (
		mu          sync.Mutex
		cancel      context.CancelFunc
		renderTimer *time.Timer
		lastFrame   *engine.Frame
	)

	doRender := func(s engine.Sampling) {
		mu.Lock()
		if cancel != nil {
			cancel()
		}
		ctx, c := context.WithCancel(context.Background())
		cancel = c
		wld, view := world, world.Views[viewIdx]
		mu.Unlock()

		go func() {
			status.SetText(fmt.Sprintf("Rendering %dx%d on %s...", s.XSamples, s.YSamples, engine.GetBackend()))
			frame, err := engine.Render(ctx, wld, view, s)
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				status.SetText(fmt.Sprintf("Render error: %v", err))
				return
			}
			mu.Lock()
			lastFrame = frame
			mu.Unlock()

			imgCanvas.Image = frame.Image()
			imgCanvas.Refresh()
			timing.SetText(fmt.Sprintf("Last render: %v, %d samples, %d truncated",
				frame.Stats.Elapsed.Round(time.Millisecond), frame.Stats.Samples, frame.Stats.Truncated))
			status.SetText("Done")
		}()
	}

	startRender := func(final bool) {
		mu.Lock()
		if renderTimer != nil {
			renderTimer.Stop()
			renderTimer = nil
		}
		if final {
			mu.Unlock()
			doRender(finalSampling)
			return
		}
		s := previewSampling
		renderTimer = time.AfterFunc(debounce, func() {
			mu.Lock()
			renderTimer = nil
			mu.Unlock()
			doRender(s)
		})
		mu.Unlock()
	}

	// rebuild swaps in a world built from the edited scene.
	rebuild := func() {
		nw, err := engine.Build(sc)
		if err != nil {
			status.SetText(fmt.Sprintf("Scene error: %v", err))
			return
		}
		mu.Lock()
		world = nw
		if viewIdx >= len(world.Views) {
			viewIdx = 0
		}
		mu.Unlock()
		startRender(false)
	}

	// Backend slider: 0 = CPU, 1 = GPU
	backendSlider := widget.NewSlider(0, 1)
	backendSlider.Step = 1
	backendSlider.Value = float64(engine.GetBackend())
	backendLabel := widget.NewLabel("Backend: " + strings.ToUpper(engine.GetBackend().String()))
	backendSlider.OnChanged = func(v float64) {
		b := engine.BackendCPU
		if v >= 0.5 {
			b = engine.BackendGPU
		}
		engine.SetBackend(b)
		backendLabel.SetText("Backend: " + strings.ToUpper(b.String()))
		startRender(false)
	}

	viewNames := make([]string, len(sc.Views))
	for i, v := range sc.Views {
		viewNames[i] = fmt.Sprintf("%d: %s", i, v.Name)
	}
	viewSelect := widget.NewSelect(viewNames, func(string) {})
	viewSelect.SetSelectedIndex(viewIdx)
	viewSelect.OnChanged = func(string) {
		mu.Lock()
		viewIdx = viewSelect.SelectedIndex()
		mu.Unlock()
		startRender(false)
	}

	// --- sampling ---
	parseI := func(e *widget.Entry, def int) int {
		v, err := strconv.Atoi(e.Text)
		if err != nil || v < 2 {
			return def
		}
		return v
	}
	parseF := func(e *widget.Entry, def float64) float64 {
		v, err := strconv.ParseFloat(e.Text, 64)
		if err != nil || v <= 0 {
			return def
		}
		return v
	}
	samplingEntries := func(s engine.Sampling) (x, y, pw, ph *widget.Entry) {
		x, y, pw, ph = widget.NewEntry(), widget.NewEntry(), widget.NewEntry(), widget.NewEntry()
		x.SetText(strconv.Itoa(s.XSamples))
		y.SetText(strconv.Itoa(s.YSamples))
		pw.SetText(fmt.Sprintf("%.2f", s.PlaneWidth))
		ph.SetText(fmt.Sprintf("%.2f", s.PlaneHeight))
		return
	}
	prevX, prevY, prevPW, prevPH := samplingEntries(previewSampling)
	finalX, finalY, _, _ := samplingEntries(finalSampling)

	applySettings := widget.NewButton("Apply render settings", func() {
		previewSampling.XSamples = parseI(prevX, previewSampling.XSamples)
		previewSampling.YSamples = parseI(prevY, previewSampling.YSamples)
		previewSampling.PlaneWidth = parseF(prevPW, previewSampling.PlaneWidth)
		previewSampling.PlaneHeight = parseF(prevPH, previewSampling.PlaneHeight)
		finalSampling.XSamples = parseI(finalX, finalSampling.XSamples)
		finalSampling.YSamples = parseI(finalY, finalSampling.YSamples)
		finalSampling.PlaneWidth = previewSampling.PlaneWidth
		finalSampling.PlaneHeight = previewSampling.PlaneHeight
		sc.Settings = scene.RenderSettings{
			XSamples:    previewSampling.XSamples,
			YSamples:    previewSampling.YSamples,
			PlaneWidth:  previewSampling.PlaneWidth,
			PlaneHeight: previewSampling.PlaneHeight,
		}
		status.SetText("Render settings updated")
		startRender(false)
	})

	settingsBox := container.NewVBox(
		widget.NewLabel("Render settings"),
		widget.NewLabel("Preview"),
		container.NewGridWithColumns(2,
			widget.NewLabel("X samples"), prevX,
			widget.NewLabel("Y samples"), prevY,
			widget.NewLabel("Plane width"), prevPW,
			widget.NewLabel("Plane height"), prevPH,
		),
		widget.NewLabel("Final"),
		container.NewGridWithColumns(2,
			widget.NewLabel("X samples"), finalX,
			widget.NewLabel("Y samples"), finalY,
		),
		applySettings,
	)

	// --- solids ---
	selected := -1
	reflEntry := widget.NewEntry()
	colorEntry := widget.NewEntry()
	solidList := widget.NewList(
		func() int { return len(sc.Solids) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			s := sc.Solids[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%d %s %s", i, s.Type, s.ID))
		},
	)
	solidList.OnSelected = func(i widget.ListItemID) {
		selected = i
		s := sc.Solids[i]
		reflEntry.SetText(fmt.Sprintf("%.2f", s.Reflectivity))
		colorEntry.SetText(fmt.Sprintf("%.2f", s.Color))
	}
	applySolid := widget.NewButton("Apply solid", func() {
		if selected < 0 || selected >= len(sc.Solids) {
			status.SetText("Select a solid first")
			return
		}
		s := &sc.Solids[selected]
		if v, err := strconv.ParseFloat(reflEntry.Text, 64); err == nil {
			s.Reflectivity = v
		}
		if v, err := strconv.ParseFloat(colorEntry.Text, 64); err == nil && s.Type == scene.SolidSphere {
			s.Color = v
		}
		rebuild()
	})
	solidScroll := container.NewScroll(solidList)
	solidScroll.SetMinSize(fyne.NewSize(0, 160))
	solidsBox := container.NewVBox(
		widget.NewLabel("Solids"),
		solidScroll,
		container.NewGridWithColumns(2,
			widget.NewLabel("Reflectivity"), reflEntry,
			widget.NewLabel("Color (sphere)"), colorEntry,
		),
		applySolid,
	)

	// --- output ---
	outputPath := widget.NewEntry()
	outputPath.SetText("ui_render.png")
	scaleEntry := widget.NewEntry()
	scaleEntry.SetText("4")

	previewBtn := widget.NewButton("Preview render", func() { startRender(false) })
	finalBtn := widget.NewButton("Final render", func() { startRender(true) })

	saveBtn := widget.NewButton("Save scene", func() {
		if err := scene.Save(scenePath, sc); err != nil {
			status.SetText(fmt.Sprintf("Save error: %v", err))
		} else {
			status.SetText("Scene saved")
		}
	})

	saveImageBtn := widget.NewButton("Save image", func() {
		mu.Lock()
		frame := lastFrame
		mu.Unlock()
		if frame == nil {
			status.SetText("Nothing rendered yet")
			return
		}
		path := outputPath.Text
		if path == "" {
			path = "ui_render.png"
		}
		factor, _ := strconv.Atoi(scaleEntry.Text)
		go func() {
			if err := engine.SaveImage(path, engine.Upscale(frame.Image(), factor)); err != nil {
				status.SetText(fmt.Sprintf("Save image error: %v", err))
				return
			}
			status.SetText(fmt.Sprintf("Image saved to %s (%dx%d samples)", path, frame.Width(), frame.Height()))
		}()
	})

	saveTextBtn := widget.NewButton("Save text", func() {
		mu.Lock()
		frame := lastFrame
		mu.Unlock()
		if frame == nil {
			status.SetText("Nothing rendered yet")
			return
		}
		path := strings.TrimSuffix(outputPath.Text, ".png") + ".txt"
		if err := engine.WriteText(path, frame.Text()); err != nil {
			status.SetText(fmt.Sprintf("Save text error: %v", err))
			return
		}
		status.SetText("Text saved to " + path)
	})

	controls := container.NewVBox(
		widget.NewLabel("Controls"),
		container.NewVBox(
			widget.NewLabel("Compute backend"),
			backendLabel,
			backendSlider,
		),
		container.NewGridWithColumns(2, widget.NewLabel("View"), viewSelect),
		container.NewHBox(previewBtn, finalBtn),
		container.NewGridWithColumns(2,
			widget.NewLabel("Image path"), outputPath,
			widget.NewLabel("Upscale"), scaleEntry,
		),
		container.NewHBox(saveBtn, saveImageBtn, saveTextBtn),
		status,
		timing,
		settingsBox,
		solidsBox,
	)

	content := container.NewHSplit(
		container.NewVScroll(controls),
		container.NewStack(imgCanvas),
	)
	content.SetOffset(0.35)

	w.SetContent(content)
	w.Resize(fyne.NewSize(1280, 800))
	w.SetOnClosed(func() {
		mu.Lock()
		if cancel != nil {
			cancel()
		}
		mu.Unlock()
	})

	startRender(false)
	w.ShowAndRun()
	return nil
}
