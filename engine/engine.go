package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"go.uber.org/zap"
)

var (
	// ErrNoWindow is returned by NewEngine when no window was supplied.
	ErrNoWindow = errors.New("engine requires a window")
	// ErrNoRenderer is returned by NewEngine when no renderer was supplied.
	ErrNoRenderer = errors.New("engine requires a renderer")
)

// mainQueueSize bounds the work waiting to run on the window thread.
const mainQueueSize = 16

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	ctx         context.Context
	cancel      context.CancelFunc
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	// mainQueue holds work that must run on the window thread, such as title changes.
	mainQueue chan func()

	title    string
	window   window.Window
	renderer renderer.Renderer
	viewer   viewer.Viewer
	loader   loader.Loader

	ring       renderer.UniformRing
	uniforms   bind_group_provider.BindGroupProvider
	uniformBuf []byte

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point of the viewer.
// It owns the window, the renderer and the viewer state, maps window input onto the viewer
// and draws the model on display once per render frame.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Viewer returns the interactive viewer state.
	//
	// Returns:
	//   - viewer.Viewer: the viewer
	Viewer() viewer.Viewer

	// Loader returns the model loader.
	//
	// Returns:
	//   - loader.Loader: the loader
	Loader() loader.Loader

	// LoadModel loads a model file and puts it on display.
	//
	// Parameters:
	//   - ctx: cancels the import
	//   - path: the model file path
	//
	// Returns:
	//   - model.Model: the model now on display
	//   - error: error if loading fails; the previous model stays on display
	LoadModel(ctx context.Context, path string) (model.Model, error)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the engine and render goroutines and runs the window message loop.
	// Blocks until the window closes or Quit is called, then releases GPU resources.
	Run()

	// Quit signals all engine goroutines to stop and closes the window.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
// A window and a renderer are required. The viewer pipeline is registered with the
// renderer if it is not already, and the uniform ring and its bind group are created.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if a required component is missing or GPU setup fails
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		ctx:             ctx,
		cancel:          cancel,
		quitChannel:     make(chan struct{}),
		mainQueue:       make(chan func(), mainQueueSize),
		title:           "oxy-viewer",
		profiler:        profiler.NewProfiler(time.Second),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		cancel()
		return nil, ErrNoWindow
	}
	if e.renderer == nil {
		cancel()
		return nil, ErrNoRenderer
	}
	if e.viewer == nil {
		e.viewer = viewer.NewViewer(viewer.WithScreenSize(float32(e.window.Width()), float32(e.window.Height())))
	}
	if e.loader == nil {
		e.loader = loader.NewLoader(loader.BackendTypePLY)
	}
	e.loader.SetUploader(e.renderer)

	if err := e.initGPU(); err != nil {
		cancel()
		return nil, err
	}
	e.bindInput()
	return e, nil
}

// initGPU registers the viewer pipeline and creates the uniform ring's buffer and bind group.
func (e *engine) initGPU() error {
	if e.renderer.Pipeline(viewer.PipelineKey) == nil {
		vs, fs, err := viewer.LoadShaders()
		if err != nil {
			return fmt.Errorf("load viewer shaders: %w", err)
		}
		p := pipeline.NewPipeline(viewer.PipelineKey,
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
			pipeline.WithDynamicOffsets(shadertypes.UniformsGroup),
		)
		if err := e.renderer.RegisterPipelines(p); err != nil {
			return err
		}
	}

	e.ring = renderer.NewUniformRing(shadertypes.GPUUniformsSize, renderer.MaxBuffersInFlight)
	e.uniforms = bind_group_provider.NewBindGroupProvider("uniforms")
	if err := e.renderer.InitUniformBindGroup(e.uniforms, viewer.PipelineKey, shadertypes.UniformsGroup, e.ring.BufferSize()); err != nil {
		return fmt.Errorf("init uniform bind group: %w", err)
	}
	e.uniformBuf = make([]byte, shadertypes.GPUUniformsSize)
	return nil
}

// bindInput maps window events onto the viewer.
func (e *engine) bindInput() {
	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		e.viewer.Resize(float32(width), float32(height))
	})

	e.window.SetMouseDownCallback(func(button int, mods window.Modifier, x, y float32) {
		e.viewer.BeginDrag(dragModeFor(button, mods), x, y)
	})
	e.window.SetMouseUpCallback(func(button int, mods window.Modifier, x, y float32) {
		e.viewer.EndDrag()
	})
	e.window.SetMouseMoveCallback(func(x, y float32) {
		if e.viewer.Dragging() != viewer.DragNone {
			e.viewer.DragTo(x, y)
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.viewer.Scroll(delta)
	})

	e.window.SetKeyDownCallback(func(keyCode uint32, mods window.Modifier) {
		if keyCode == common.KeyR {
			e.viewer.Reset()
		}
	})

	// Only the first dropped file is opened; the viewer shows one model at a time.
	e.window.SetDropCallback(func(paths []string) {
		if len(paths) == 0 {
			return
		}
		path := paths[0]
		if len(paths) > 1 {
			common.Logger().Debug("extra dropped files ignored", zap.String("opened", path), zap.Strings("ignored", paths[1:]))
		}
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if _, err := e.LoadModel(e.ctx, path); err != nil {
				common.Logger().Error("dropped file not loaded", zap.String("path", path), zap.Error(err))
			}
		}()
	})

	e.window.SetUpdateCallback(e.drainMainQueue)
}

// dragModeFor maps a mouse button and its modifiers to a drag mode.
// Left drag rotates, shift-left or right drag translates.
//
// Parameters:
//   - button: the pressed mouse button
//   - mods: the held modifier keys
//
// Returns:
//   - viewer.DragMode: the drag started by the press
func dragModeFor(button int, mods window.Modifier) viewer.DragMode {
	switch button {
	case common.MouseButtonLeft:
		if mods.Has(window.ModShift) {
			return viewer.DragTranslate
		}
		return viewer.DragRotate
	case common.MouseButtonRight:
		return viewer.DragTranslate
	default:
		return viewer.DragNone
	}
}

// windowTitle formats the title bar text for the model on display.
func windowTitle(base string, m model.Model) string {
	if m == nil {
		return base
	}
	faces := m.DrawCount() / 3
	if mesh := m.Mesh(); mesh != nil {
		faces = mesh.FaceCount()
	}
	return fmt.Sprintf("%s - %s (%d triangles)", base, filepath.Base(m.Name()), faces)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewer() viewer.Viewer {
	return e.viewer
}

func (e *engine) Loader() loader.Loader {
	return e.loader
}

func (e *engine) LoadModel(ctx context.Context, path string) (model.Model, error) {
	m, err := e.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	e.viewer.SetModel(m)
	title := windowTitle(e.title, m)
	e.runOnMain(func() { e.window.SetTitle(title) })
	return m, nil
}

// runOnMain queues fn for the window thread. It is dropped once the engine has quit.
func (e *engine) runOnMain(fn func()) {
	select {
	case e.mainQueue <- fn:
	case <-e.quitChannel:
	}
}

// drainMainQueue runs queued window-thread work and stops the message loop after Quit.
func (e *engine) drainMainQueue() {
	for {
		select {
		case fn := <-e.mainQueue:
			fn()
		case <-e.quitChannel:
			e.window.RequestClose()
			return
		default:
			return
		}
	}
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.release()
}

// release waits for submitted frames, then frees GPU resources in dependency order:
// models, then the renderer, then the window.
func (e *engine) release() {
	e.renderer.Poll(true)
	e.loader.Release()
	if e.uniforms != nil {
		e.uniforms.Release()
	}
	e.renderer.Release()
	if err := e.window.Close(); err != nil {
		common.Logger().Debug("window close", zap.Error(err))
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		e.cancel()
		close(e.quitChannel)
		e.window.RequestClose()
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if err := e.renderFrame(e.ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				common.Logger().Debug("frame skipped", zap.Error(err))
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame draws one frame. With no model on display the frame only clears.
// A uniform slot is held from the buffer write until the GPU reports the frame's work done,
// so up to MaxBuffersInFlight frames may be queued before Acquire waits.
func (e *engine) renderFrame(ctx context.Context) error {
	// Fire finished-work callbacks; block for the GPU only when every slot is in flight.
	e.renderer.Poll(e.ring.InFlight() >= e.ring.Slots())

	u, ok := e.viewer.Uniforms()
	if !ok {
		if err := e.renderer.BeginFrame(); err != nil {
			return err
		}
		e.renderer.EndFrame()
		e.renderer.Present()
		return nil
	}

	m := e.viewer.Model()
	mesh := m.MeshProvider()
	if mesh == nil {
		return fmt.Errorf("model %q has no GPU buffers", m.Name())
	}

	offset, err := e.ring.Acquire(ctx)
	if err != nil {
		return err
	}
	submitted := false
	defer func() {
		if !submitted {
			e.ring.Release()
		}
	}()

	if err := u.MarshalTo(e.uniformBuf); err != nil {
		return err
	}
	e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: e.uniforms,
		Binding:  int(shadertypes.BufferIndexUniforms),
		Offset:   offset,
		Data:     e.uniformBuf,
	}})

	if err := e.renderer.BeginFrame(); err != nil {
		return err
	}
	drawErr := e.renderer.Draw(viewer.PipelineKey, mesh, e.uniforms, offset)
	e.renderer.EndFrame()
	e.renderer.Present()
	e.renderer.OnSubmittedWorkDone(e.ring.Release)
	submitted = true
	return drawErr
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
