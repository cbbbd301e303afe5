package loader

import "github.com/Carmen-Shannon/oxy-viewer/engine/model"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithUploader is an option builder that sets the MeshUploader (normally the Renderer)
// used to create GPU vertex buffers for loaded models. Without one, models stay CPU-only.
//
// Parameters:
//   - u: the uploader instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the uploader option to a loader
func WithUploader(u MeshUploader) LoaderBuilderOption {
	return func(l *loader) {
		l.uploader = u
	}
}

// WithProgress is an option builder that sets a callback receiving per-chunk progress.
//
// Parameters:
//   - fn: the progress callback
//
// Returns:
//   - LoaderBuilderOption: a function that applies the progress option to a loader
func WithProgress(fn ProgressFunc) LoaderBuilderOption {
	return func(l *loader) {
		l.progress = fn
	}
}

// WithShading is an option builder that selects the normals uploaded for loaded models.
//
// Parameters:
//   - shading: flat or smooth
//
// Returns:
//   - LoaderBuilderOption: a function that applies the shading option to a loader
func WithShading(shading model.Shading) LoaderBuilderOption {
	return func(l *loader) {
		l.shading = shading
	}
}

// WithWorkers is an option builder that sets the size of the face-processing pool.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the maximum number of workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithChunkSize is an option builder that sets the number of faces per worker task.
// Values below 1 are ignored.
//
// Parameters:
//   - n: faces per task
//
// Returns:
//   - LoaderBuilderOption: a function that applies the chunk size option to a loader
func WithChunkSize(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.chunk = n
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = m
	}
}
