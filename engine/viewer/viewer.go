package viewer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"go.uber.org/zap"
)

// DefaultScaleSpeed is the distance change per scroll step.
const DefaultScaleSpeed = 0.5

// DragMode identifies what a pointer drag does to the model.
type DragMode int

const (
	// DragNone means no drag is in progress.
	DragNone DragMode = iota
	// DragRotate rotates the model with the trackball.
	DragRotate
	// DragTranslate moves the model in the plane of the orbit centre.
	DragTranslate
)

// viewer is the implementation of the Viewer interface.
type viewer struct {
	mu *sync.Mutex

	cam       camera.Camera
	trackball camera.Trackball
	model     model.Model
	lighting  Lighting

	width, height float32
	scaleSpeed    float32

	drag        DragMode
	startX      float32
	startY      float32
	startMatrix [16]float32
}

// Viewer holds the interactive state of the model viewer: camera, trackball, the model
// on display and its lighting. Input handlers mutate it; the render loop reads the frame
// uniforms from it.
type Viewer interface {
	// Camera returns the viewer's camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Trackball returns the viewer's trackball.
	//
	// Returns:
	//   - camera.Trackball: the trackball
	Trackball() camera.Trackball

	// Model returns the model on display, or nil before the first load.
	//
	// Returns:
	//   - model.Model: the model or nil
	Model() model.Model

	// SetModel displays m, centring it at the origin and cancelling any drag.
	//
	// Parameters:
	//   - m: the model to display
	SetModel(m model.Model)

	// Lighting returns the light and materials used for every frame.
	//
	// Returns:
	//   - Lighting: the lighting
	Lighting() Lighting

	// SetLighting replaces the light and materials.
	//
	// Parameters:
	//   - l: the lighting
	SetLighting(l Lighting)

	// Resize updates the drawable size, the trackball screen size and the camera aspect.
	// Sizes of zero are recorded but leave the aspect unchanged.
	//
	// Parameters:
	//   - width, height: the drawable size in pixels
	Resize(width, height float32)

	// Size returns the drawable size last passed to Resize.
	//
	// Returns:
	//   - float32: width in pixels
	//   - float32: height in pixels
	Size() (float32, float32)

	// BeginDrag starts a drag at window position (x, y) and captures the model matrix.
	// It does nothing when no model is displayed.
	//
	// Parameters:
	//   - mode: rotate or translate
	//   - x, y: cursor position in window coordinates
	BeginDrag(mode DragMode, x, y float32)

	// DragTo updates the model matrix for the cursor at (x, y). Rotation drags set
	// model = R(start, current)·start; translation drags set model = T(delta)·start.
	//
	// Parameters:
	//   - x, y: cursor position in window coordinates
	DragTo(x, y float32)

	// EndDrag finishes the current drag, keeping the model matrix it produced.
	EndDrag()

	// Dragging reports the current drag mode.
	//
	// Returns:
	//   - DragMode: DragNone when idle
	Dragging() DragMode

	// Scroll zooms the camera by steps × scale speed; positive steps move closer.
	//
	// Parameters:
	//   - steps: scroll offset
	Scroll(steps float32)

	// Reset restores the camera defaults and re-centres the model.
	Reset()

	// Uniforms assembles the frame uniforms for the current state.
	//
	// Returns:
	//   - shadertypes.GPUUniforms: the uniform block
	//   - bool: false when no model is displayed
	Uniforms() (shadertypes.GPUUniforms, bool)
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer with a default camera, trackball and lighting.
//
// Parameters:
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the newly created viewer
func NewViewer(options ...ViewerBuilderOption) Viewer {
	v := &viewer{
		mu:         &sync.Mutex{},
		lighting:   DefaultLighting(),
		scaleSpeed: DefaultScaleSpeed,
	}
	for _, option := range options {
		option(v)
	}
	if v.cam == nil {
		v.cam = camera.NewCamera()
	}
	if v.trackball == nil {
		v.trackball = camera.NewTrackball()
	}
	if v.width > 0 && v.height > 0 {
		v.resize(v.width, v.height)
	}
	return v
}

func (v *viewer) Camera() camera.Camera {
	return v.cam
}

func (v *viewer) Trackball() camera.Trackball {
	return v.trackball
}

func (v *viewer) Model() model.Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.model
}

func (v *viewer) SetModel(m model.Model) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.model = m
	v.drag = DragNone
	if m != nil {
		m.ResetTransform()
		common.Logger().Debug("displaying model", zap.String("name", m.Name()), zap.Int("vertices", m.DrawCount()))
	}
}

func (v *viewer) Lighting() Lighting {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lighting
}

func (v *viewer) SetLighting(l Lighting) {
	v.mu.Lock()
	v.lighting = l
	v.mu.Unlock()
}

func (v *viewer) Resize(width, height float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resize(width, height)
}

// resize applies a new drawable size. Caller must hold the mutex.
func (v *viewer) resize(width, height float32) {
	v.width, v.height = width, height
	v.trackball.SetScreenSize(width, height)
	if width > 0 && height > 0 {
		v.cam.SetAspect(width / height)
	}
}

func (v *viewer) Size() (float32, float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

func (v *viewer) BeginDrag(mode DragMode, x, y float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.model == nil || mode == DragNone {
		return
	}
	v.drag = mode
	v.startX, v.startY = x, y
	v.startMatrix = v.model.ModelMatrix()
}

func (v *viewer) DragTo(x, y float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.model == nil {
		return
	}

	var delta [16]float32
	switch v.drag {
	case DragRotate:
		delta = v.trackball.RotationMatrix(v.startX, v.startY, x, y)
	case DragTranslate:
		t := v.trackball.Translation(v.cam, v.startX, v.startY, x, y)
		common.Translation(delta[:], t[0], t[1], t[2])
	default:
		return
	}

	var next [16]float32
	common.Mul4(next[:], delta[:], v.startMatrix[:])
	v.model.SetModelMatrix(next)
}

func (v *viewer) EndDrag() {
	v.mu.Lock()
	v.drag = DragNone
	v.mu.Unlock()
}

func (v *viewer) Dragging() DragMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drag
}

func (v *viewer) Scroll(steps float32) {
	v.mu.Lock()
	speed := v.scaleSpeed
	v.mu.Unlock()
	v.cam.Zoom(steps * speed)
}

func (v *viewer) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cam.Reset()
	v.drag = DragNone
	if v.model != nil {
		v.model.ResetTransform()
	}
}

func (v *viewer) Uniforms() (shadertypes.GPUUniforms, bool) {
	v.mu.Lock()
	m, w, h, l := v.model, v.width, v.height, v.lighting
	v.mu.Unlock()
	if m == nil {
		return shadertypes.GPUUniforms{}, false
	}
	return BuildUniforms(v.cam, m.ModelMatrix(), w, h, l), true
}
