package camera

type TrackballBuilderOption func(*trackballImpl)

// WithTrackballSize sets the radius of the virtual trackball in normalised screen units.
//
// Parameters:
//   - size: trackball radius, must be positive
//
// Returns:
//   - TrackballBuilderOption: a function that sets the size
func WithTrackballSize(size float32) TrackballBuilderOption {
	return func(t *trackballImpl) {
		if size > 0 {
			t.size = size
		}
	}
}

// WithRotationSpeed sets the multiplier applied to drag rotation angles.
//
// Parameters:
//   - speed: rotation multiplier
//
// Returns:
//   - TrackballBuilderOption: a function that sets the rotation speed
func WithRotationSpeed(speed float32) TrackballBuilderOption {
	return func(t *trackballImpl) {
		t.rotationSpeed = speed
	}
}

// WithTranslationSpeed sets the multiplier applied to drag translations.
//
// Parameters:
//   - speed: translation multiplier
//
// Returns:
//   - TrackballBuilderOption: a function that sets the translation speed
func WithTranslationSpeed(speed float32) TrackballBuilderOption {
	return func(t *trackballImpl) {
		t.translationSpeed = speed
	}
}

// WithScreenSize sets the initial window size.
//
// Parameters:
//   - width, height: window size in pixels
//
// Returns:
//   - TrackballBuilderOption: a function that sets the screen size
func WithScreenSize(width, height float32) TrackballBuilderOption {
	return func(t *trackballImpl) {
		t.width, t.height = width, height
	}
}
