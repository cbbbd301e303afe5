package viewer

import "github.com/Carmen-Shannon/oxy-viewer/engine/camera"

// ViewerBuilderOption is a functional option for configuring a Viewer via NewViewer.
type ViewerBuilderOption func(*viewer)

// WithCamera is an option builder that sets the camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - ViewerBuilderOption: a function that applies the camera option to a viewer
func WithCamera(c camera.Camera) ViewerBuilderOption {
	return func(v *viewer) {
		v.cam = c
	}
}

// WithTrackball is an option builder that sets the trackball.
//
// Parameters:
//   - t: the trackball
//
// Returns:
//   - ViewerBuilderOption: a function that applies the trackball option to a viewer
func WithTrackball(t camera.Trackball) ViewerBuilderOption {
	return func(v *viewer) {
		v.trackball = t
	}
}

// WithLighting is an option builder that sets the light and materials.
//
// Parameters:
//   - l: the lighting
//
// Returns:
//   - ViewerBuilderOption: a function that applies the lighting option to a viewer
func WithLighting(l Lighting) ViewerBuilderOption {
	return func(v *viewer) {
		v.lighting = l
	}
}

// WithScaleSpeed is an option builder that sets the distance change per scroll step.
// Non-positive values are ignored.
//
// Parameters:
//   - s: the scale speed
//
// Returns:
//   - ViewerBuilderOption: a function that applies the scale speed option to a viewer
func WithScaleSpeed(s float32) ViewerBuilderOption {
	return func(v *viewer) {
		if s > 0 {
			v.scaleSpeed = s
		}
	}
}

// WithScreenSize is an option builder that sets the initial drawable size.
//
// Parameters:
//   - width, height: the drawable size in pixels
//
// Returns:
//   - ViewerBuilderOption: a function that applies the size option to a viewer
func WithScreenSize(width, height float32) ViewerBuilderOption {
	return func(v *viewer) {
		v.width, v.height = width, height
	}
}
