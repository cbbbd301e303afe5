package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// Default trackball settings.
const (
	DefaultTrackballSize    = 1.0
	DefaultRotationSpeed    = 3.0
	DefaultTranslationSpeed = 1.0
)

// trackballImpl is the implementation of Trackball.
type trackballImpl struct {
	mu *sync.Mutex

	size             float32
	rotationSpeed    float32
	translationSpeed float32

	width, height float32
}

// Trackball maps 2D cursor drags in window coordinates (origin top-left, y down) to
// rotations and translations of the model.
type Trackball interface {
	// SetScreenSize sets the window size used to normalise cursor coordinates.
	//
	// Parameters:
	//   - width, height: window size in pixels
	SetScreenSize(width, height float32)

	// Project maps a cursor position onto the virtual trackball: a sphere of the
	// trackball size near the centre that blends into a hyperbolic sheet outside it.
	//
	// Parameters:
	//   - x, y: cursor position in window coordinates
	//
	// Returns:
	//   - [3]float32: the projected point, x right, y up, z toward the viewer
	Project(x, y float32) [3]float32

	// Rotation computes the rotation that carries the projection of (x0, y0) onto the
	// projection of (x1, y1), scaled by the rotation speed. Degenerate drags return
	// a zero angle.
	//
	// Parameters:
	//   - x0, y0: drag start in window coordinates
	//   - x1, y1: drag end in window coordinates
	//
	// Returns:
	//   - angle: rotation in radians
	//   - axis: unit rotation axis
	Rotation(x0, y0, x1, y1 float32) (angle float32, axis [3]float32)

	// RotationMatrix is Rotation expressed as a 4x4 matrix. Degenerate drags yield the identity.
	//
	// Parameters:
	//   - x0, y0: drag start in window coordinates
	//   - x1, y1: drag end in window coordinates
	//
	// Returns:
	//   - [16]float32: the rotation (column-major)
	RotationMatrix(x0, y0, x1, y1 float32) [16]float32

	// Translation computes the world-space translation that follows the cursor from
	// (x0, y0) to (x1, y1) on the plane through the orbit centre, scaled by the
	// translation speed.
	//
	// Parameters:
	//   - cam: the camera whose view and projection are un-projected
	//   - x0, y0: drag start in window coordinates
	//   - x1, y1: drag end in window coordinates
	//
	// Returns:
	//   - [3]float32: world-space translation
	Translation(cam Camera, x0, y0, x1, y1 float32) [3]float32
}

var _ Trackball = &trackballImpl{}

// NewTrackball creates a Trackball with size 1, rotation speed 3 and translation speed 1.
// The screen size must be set before any drag produces motion.
//
// Parameters:
//   - options: functional options to configure the trackball
//
// Returns:
//   - Trackball: the newly created trackball
func NewTrackball(options ...TrackballBuilderOption) Trackball {
	t := &trackballImpl{
		mu:               &sync.Mutex{},
		size:             DefaultTrackballSize,
		rotationSpeed:    DefaultRotationSpeed,
		translationSpeed: DefaultTranslationSpeed,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *trackballImpl) SetScreenSize(width, height float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width, t.height = width, height
}

func (t *trackballImpl) Project(x, y float32) [3]float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.project(x, y)
}

func (t *trackballImpl) Rotation(x0, y0, x1, y1 float32) (float32, [3]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.width <= 0 || t.height <= 0 {
		return 0, [3]float32{0, 0, 1}
	}

	a, okA := common.Normalize3(t.project(x0, y0))
	b, okB := common.Normalize3(t.project(x1, y1))
	if !okA || !okB {
		return 0, [3]float32{0, 0, 1}
	}
	axis, ok := common.Normalize3(common.Cross3(a, b))
	if !ok {
		return 0, [3]float32{0, 0, 1}
	}
	angle := float32(math.Acos(float64(common.Clamp(common.Dot3(a, b), -1, 1))))
	return angle * t.rotationSpeed, axis
}

func (t *trackballImpl) RotationMatrix(x0, y0, x1, y1 float32) [16]float32 {
	angle, axis := t.Rotation(x0, y0, x1, y1)
	var m [16]float32
	if angle == 0 {
		common.Identity(m[:])
		return m
	}
	common.Rotation(m[:], angle, axis)
	return m
}

func (t *trackballImpl) Translation(cam Camera, x0, y0, x1, y1 float32) [3]float32 {
	t.mu.Lock()
	w, h, speed := t.width, t.height, t.translationSpeed
	t.mu.Unlock()
	if w <= 0 || h <= 0 || cam == nil {
		return [3]float32{}
	}

	proj := cam.ProjectionMatrix()
	vp := cam.ViewProjectionMatrix()
	var inv [16]float32
	if !common.Invert4(inv[:], vp[:]) {
		return [3]float32{}
	}

	// depth of the orbit centre in normalised device coordinates
	centre := common.MulVec4(proj[:], [4]float32{0, 0, -cam.Distance(), 1})
	if centre[3] == 0 {
		return [3]float32{}
	}
	depth := centre[2] / centre[3]

	p0, ok0 := unproject(inv, 2*x0/w-1, 1-2*y0/h, depth)
	p1, ok1 := unproject(inv, 2*x1/w-1, 1-2*y1/h, depth)
	if !ok0 || !ok1 {
		return [3]float32{}
	}
	d := common.Sub3(p1, p0)
	return [3]float32{d[0] * speed, d[1] * speed, d[2] * speed}
}

// project maps window coordinates onto the trackball surface.
// Caller must hold the mutex.
func (t *trackballImpl) project(x, y float32) [3]float32 {
	if t.width <= 0 || t.height <= 0 {
		return [3]float32{0, 0, t.size}
	}
	px := x/t.width - 0.5
	py := (t.height-y)/t.height - 0.5

	r2 := t.size * t.size
	l2 := px*px + py*py
	var z float32
	if l2 <= r2*0.5 {
		z = float32(math.Sqrt(float64(r2 - l2)))
	} else {
		z = r2 * 0.5 / float32(math.Sqrt(float64(l2)))
	}
	return [3]float32{px, py, z}
}

// unproject carries a point in normalised device coordinates back through inv.
func unproject(inv [16]float32, x, y, z float32) ([3]float32, bool) {
	p := common.MulVec4(inv[:], [4]float32{x, y, z, 1})
	if p[3] == 0 {
		return [3]float32{}, false
	}
	return [3]float32{p[0] / p[3], p[1] / p[3], p[2] / p[3]}, true
}
