package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oxy-viewer: %v\n", err)
		var layoutErr *shadertypes.LayoutError
		if errors.As(err, &layoutErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML config file (default: built-in settings)")
	modelPath := flag.String("model", "", "PLY model to open at startup")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides the config)")
	profile := flag.Bool("profile", false, "Log frame rate and memory statistics every second")
	layout := flag.Bool("layout", false, "Print the uniform buffer layout, verify it and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [model.ply]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Drag with the left mouse button to rotate, with the right button or shift to move,\n")
		fmt.Fprintf(os.Stderr, "scroll to zoom, press R to reset and drop a .ply file onto the window to open it.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *layout {
		return printLayout(os.Stdout)
	}
	if *modelPath == "" && flag.NArg() > 0 {
		*modelPath = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := common.NewLogger(common.Coalesce(*logLevel, cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	defer logger.Sync()
	common.SetLogger(logger)

	if err := shadertypes.Verify(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(cfg, *profile)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		eng.Quit()
	}()

	if *modelPath != "" {
		if _, err := eng.LoadModel(ctx, *modelPath); err != nil {
			logger.Error("model not loaded", zap.String("path", *modelPath), zap.Error(err))
		}
	}

	eng.Run()
	return nil
}

// newEngine builds the window, renderer, viewer and loader described by cfg.
func newEngine(cfg config.Config, profile bool) (engine.Engine, error) {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return nil, err
	}

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(cfg.PresentMode()),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Render.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Render.Software),
	)
	if err != nil {
		_ = win.Close()
		return nil, err
	}

	v := viewer.NewViewer(
		viewer.WithCamera(camera.NewCamera(cfg.CameraOptions()...)),
		viewer.WithTrackball(camera.NewTrackball(cfg.TrackballOptions()...)),
		viewer.WithLighting(cfg.ViewerLighting()),
		viewer.WithScaleSpeed(cfg.Interaction.ScaleSpeed),
		viewer.WithScreenSize(float32(win.Width()), float32(win.Height())),
	)

	progress := newLoadProgress(os.Stderr)
	l := loader.NewLoader(loader.BackendTypePLY, append(cfg.LoaderOptions(), loader.WithProgress(progress.Update))...)

	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithViewer(v),
		engine.WithLoader(l),
		engine.WithTitle(cfg.Window.Title),
		engine.WithProfiling(profile),
		engine.WithRenderFrameLimit(cfg.Render.FrameLimit),
	)
	if err != nil {
		r.Release()
		_ = win.Close()
		return nil, err
	}
	return eng, nil
}
