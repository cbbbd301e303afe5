package camera

type CameraBuilderOption func(*cameraImpl)

// WithDistance sets the initial orbit distance.
//
// Parameters:
//   - d: the distance from the eye to the orbit centre
//
// Returns:
//   - CameraBuilderOption: a function that sets the distance
func WithDistance(d float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.distance = d
	}
}

// WithDistanceLimits bounds the orbit distance. Limits with min > max are ignored.
//
// Parameters:
//   - minDistance: the closest the eye may get
//   - maxDistance: the farthest the eye may get
//
// Returns:
//   - CameraBuilderOption: a function that sets the limits
func WithDistanceLimits(minDistance, maxDistance float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if minDistance > maxDistance {
			return
		}
		c.minDistance = minDistance
		c.maxDistance = maxDistance
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}
