package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/user/raycaster/internal/config"
	"github.com/user/raycaster/internal/engine"
	_ "github.com/user/raycaster/internal/engine/gpu"
	"github.com/user/raycaster/internal/publish"
	"github.com/user/raycaster/internal/scene"
	"github.com/user/raycaster/internal/tui"
	"github.com/user/raycaster/internal/ui"
)

type options struct {
	scenePath string
	mode      string
	view      int
	output    string
	text      bool
	scale     int
	upload    bool
	debugView bool
}

func main() {
	log.Println("raycaster: starting main()")
	cfg := config.Load()

	var opts options
	flag.StringVar(&opts.scenePath, "scene", "scenes/demo.json", "path to scene JSON file")
	flag.StringVar(&opts.mode, "mode", "preview", "render mode: preview or final")
	flag.IntVar(&opts.view, "view", -1, "index of the view to render, -1 for all views")
	useGPU := flag.Bool("gpu", false, "use GPU backend for rendering (if available)")
	headless := flag.Bool("headless", false, "render without UI and save images")
	terminal := flag.Bool("tui", false, "interactive text preview in the terminal")
	flag.StringVar(&opts.output, "out", "output.png", "output image file for headless render; the extension picks the format")
	flag.BoolVar(&opts.text, "text", false, "headless: write glyph text instead of images ('-' for -out prints to stdout)")
	flag.IntVar(&opts.scale, "scale", 1, "headless: upscale images by this factor")
	flag.BoolVar(&opts.upload, "upload", false, "headless: upload images to S3 (needs S3_* environment)")
	flag.BoolVar(&opts.debugView, "debug-view", false, "headless: print every sample ray of the view instead of rendering")
	debug := flag.Bool("debug", cfg.Debug, "verbose render diagnostics")

	flag.Parse()
	log.Printf("flags: scene=%s mode=%s view=%d headless=%v out=%s\n", opts.scenePath, opts.mode, opts.view, *headless, opts.output)

	engine.Debug = *debug
	if *useGPU {
		engine.SetBackend(engine.BackendGPU)
	} else {
		engine.SetBackend(engine.BackendCPU)
	}

	switch {
	case *headless:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := renderHeadless(ctx, cfg, opts); err != nil {
			log.Println("headless render error:", err)
			stop()
			os.Exit(1)
		}
	case *terminal:
		if err := runTUI(opts); err != nil {
			log.Println("tui error:", err)
			os.Exit(1)
		}
	default:
		if err := ui.Run(opts.scenePath, opts.mode); err != nil {
			log.Println("ui error:", err)
			os.Exit(1)
		}
	}
}

func loadWorld(path string) (*scene.Scene, *engine.World, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load scene: %w", err)
	}
	w, err := engine.Build(sc)
	if err != nil {
		return nil, nil, fmt.Errorf("build scene: %w", err)
	}
	return sc, w, nil
}

// selectViews returns the indices of the views to render.
func selectViews(w *engine.World, view int) ([]int, error) {
	if view >= len(w.Views) {
		return nil, fmt.Errorf("view %d out of range, scene has %d", view, len(w.Views))
	}
	if view >= 0 {
		return []int{view}, nil
	}
	idx := make([]int, len(w.Views))
	for i := range idx {
		idx[i] = i
	}
	return idx, nil
}

// outputPath returns the file for view i. With several views the index is
// inserted before the extension: out.png -> out_1.png.
func outputPath(out string, i, n int) string {
	if n == 1 || out == "-" {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(out, ext), i, ext)
}

func renderHeadless(ctx context.Context, cfg *config.Config, opts options) error {
	sc, w, err := loadWorld(opts.scenePath)
	if err != nil {
		return err
	}
	log.Println(w)

	views, err := selectViews(w, opts.view)
	if err != nil {
		return err
	}
	s := engine.SamplingFor(sc.Settings, opts.mode)

	if opts.debugView {
		for _, i := range views {
			lines, err := engine.DebugRenderView(w, w.Views[i], s)
			if err != nil {
				return fmt.Errorf("debug view %d: %w", i, err)
			}
			for _, l := range lines {
				fmt.Println(l)
			}
		}
		return nil
	}

	var (
		names []string
		imgs  []image.Image
	)
	for _, i := range views {
		frame, err := engine.Render(ctx, w, w.Views[i], s)
		if err != nil {
			return fmt.Errorf("render view %d: %w", i, err)
		}
		log.Printf("render: view %d done in %v (%d samples, %d truncated)",
			i, frame.Stats.Elapsed, frame.Stats.Samples, frame.Stats.Truncated)

		path := outputPath(opts.output, i, len(views))
		if opts.text {
			if err := writeText(path, frame.Text()); err != nil {
				return err
			}
			continue
		}

		img := engine.Upscale(frame.Image(), opts.scale)
		if err := engine.SaveImage(path, img); err != nil {
			return err
		}
		log.Printf("render: saved %s", path)
		names = append(names, viewName(sc, i))
		imgs = append(imgs, img)
	}

	if !opts.upload || len(imgs) == 0 {
		return nil
	}
	pub, err := publish.New(cfg)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	keys, err := pub.UploadAll(ctx, names, imgs)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func writeText(path string, lines []string) error {
	if path == "-" {
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	}
	return engine.WriteText(path, lines)
}

func viewName(sc *scene.Scene, i int) string {
	name := sc.Name
	if name == "" {
		name = "scene"
	}
	if v := sc.Views[i].Name; v != "" {
		return name + "-" + v
	}
	return fmt.Sprintf("%s-view%d", name, i)
}

func runTUI(opts options) error {
	sc, w, err := loadWorld(opts.scenePath)
	if err != nil {
		return err
	}
	view := opts.view
	if view < 0 {
		view = 0
	}
	s := engine.SamplingFor(sc.Settings, opts.mode)
	// keep the scene's plane, let the terminal size pick the grid
	return tui.Run(w, view, s, true)
}
