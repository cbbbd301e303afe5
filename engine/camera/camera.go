package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// Default camera settings.
const (
	DefaultDistance    = 8.0
	DefaultFovDegrees  = 65.0
	DefaultNear        = 0.01
	DefaultFar         = 100.0
	DefaultMinDistance = 0.05
	DefaultMaxDistance = 90.0
)

type cameraImpl struct {
	mu *sync.Mutex

	distance        float32
	initialDistance float32
	minDistance     float32
	maxDistance float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	rotation         [16]float32
	viewMatrix       [16]float32
	projectionMatrix [16]float32
}

// Camera is an orbit camera looking down -Z at the origin from a fixed distance.
// The view matrix is translation(0, 0, -distance) · rotation and the projection is a
// right-handed perspective mapping depth to [0, 1].
type Camera interface {
	// Distance returns the distance from the eye to the orbit centre.
	//
	// Returns:
	//   - float32: the current distance
	Distance() float32

	// SetDistance sets the orbit distance, clamped to the camera's distance limits, and rebuilds the view.
	//
	// Parameters:
	//   - d: the requested distance
	SetDistance(d float32)

	// Zoom moves the eye toward (positive delta) or away from the centre.
	//
	// Parameters:
	//   - delta: distance change, subtracted from the current distance
	Zoom(delta float32)

	// Rotation returns the camera's rotation matrix.
	//
	// Returns:
	//   - [16]float32: the rotation (column-major)
	Rotation() [16]float32

	// SetRotation replaces the camera's rotation matrix and rebuilds the view.
	//
	// Parameters:
	//   - r: the rotation (column-major)
	SetRotation(r [16]float32)

	// Rotate composes r in front of the current rotation.
	//
	// Parameters:
	//   - r: the incremental rotation (column-major)
	Rotate(r [16]float32)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// SetFov sets the vertical field of view in radians and rebuilds the projection.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio and rebuilds the projection. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - [16]float32: the view matrix (column-major)
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - [16]float32: the projection matrix (column-major)
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection · view.
	//
	// Returns:
	//   - [16]float32: the combined matrix (column-major)
	ViewProjectionMatrix() [16]float32

	// Reset restores the construction-time distance and an identity rotation.
	Reset()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the viewer's default settings: distance 8,
// a 65 degree field of view, near 0.01 and far 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		distance:    DefaultDistance,
		minDistance: DefaultMinDistance,
		maxDistance: DefaultMaxDistance,
		fov:         common.RadiansFromDegrees(DefaultFovDegrees),
		aspect:      1.0,
		near:        DefaultNear,
		far:         DefaultFar,
		rotation:    common.Identity4(),
	}
	for _, option := range options {
		option(c)
	}
	c.distance = common.Clamp(c.distance, c.minDistance, c.maxDistance)
	c.initialDistance = c.distance
	c.updateView()
	c.updateProjection()
	return c
}

func (c *cameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

func (c *cameraImpl) SetDistance(d float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = common.Clamp(d, c.minDistance, c.maxDistance)
	c.updateView()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = common.Clamp(c.distance-delta, c.minDistance, c.maxDistance)
	c.updateView()
}

func (c *cameraImpl) Rotation() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

func (c *cameraImpl) SetRotation(r [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = r
	c.updateView()
}

func (c *cameraImpl) Rotate(r [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	common.Mul4(c.rotation[:], r[:], c.rotation[:])
	c.updateView()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var vp [16]float32
	common.Mul4(vp[:], c.projectionMatrix[:], c.viewMatrix[:])
	return vp
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = c.initialDistance
	c.rotation = common.Identity4()
	c.updateView()
}

// updateView rebuilds the view matrix from distance and rotation.
// Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	var t [16]float32
	common.Translation(t[:], 0, 0, -c.distance)
	common.Mul4(c.viewMatrix[:], t[:], c.rotation[:])
}

// updateProjection rebuilds the projection matrix.
// Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
}
