package loader

import (
	"context"
	"errors"
	"io"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// ErrReleased is returned by loads started after the Loader was released.
var ErrReleased = errors.New("loader released")

// ProgressFunc receives loading progress as the number of completed steps out of total.
// It may be called from worker goroutines, but never concurrently.
type ProgressFunc func(done, total int)

// loaderBackend defines the generic interface for decoding a mesh from a stream.
// Concrete implementations (e.g., plyLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes a mesh from r.
	//
	// Parameters:
	//   - ctx: cancels the decode between processing chunks
	//   - r: the reader providing the file contents
	//   - progress: optional progress callback
	//
	// Returns:
	//   - *model.Mesh: the decoded mesh
	//   - error: error if decoding fails
	Load(ctx context.Context, r io.Reader, progress ProgressFunc) (*model.Mesh, error)

	// release stops the backend's workers. Later loads fail with ErrReleased.
	release()
}
