package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"go.uber.org/zap"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypePLY selects the binary little-endian PLY loader backend.
	BackendTypePLY LoaderBackendType = iota
)

// MeshUploader creates GPU vertex buffers for a mesh. The Renderer satisfies it.
type MeshUploader interface {
	// InitMesh uploads positions and normals into two vertex buffers owned by provider.
	//
	// Parameters:
	//   - provider: receives the vertex buffers and vertex count
	//   - positions: packed float32x3 positions
	//   - normals: packed float32x3 normals
	//   - vertexCount: the number of vertices drawn
	//
	// Returns:
	//   - error: error if buffer creation fails
	InitMesh(provider bind_group_provider.BindGroupProvider, positions, normals []byte, vertexCount int) error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	uploader MeshUploader
	progress ProgressFunc
	shading  model.Shading
	workers  int
	chunk    int

	modelCache map[string]model.Model

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format behind a generic backend and manages a cache of
// previously loaded models keyed by path.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.ply → PLY backend).
	//
	// Parameters:
	//   - ctx: cancels the import
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading fails
	Load(ctx context.Context, path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - ctx: cancels the import
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(ctx context.Context, name string, r io.Reader) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model

	// Evict removes a model from the cache and releases its GPU resources.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - bool: true if a model was removed
	Evict(name string) bool

	// SetUploader sets the MeshUploader used for models loaded from now on.
	//
	// Parameters:
	//   - u: the uploader, typically the Renderer
	SetUploader(u MeshUploader)

	// Release evicts every cached model and stops the loader's worker pool.
	// Loads started afterwards return ErrReleased.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypePLY)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		workers:    max(runtime.NumCPU()-1, 1),
		chunk:      DefaultChunkSize,
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypePLY:
		l.backend = newPLYLoaderBackend(l.workers, l.chunk)
	}
	return l
}

func (l *loader) Load(ctx context.Context, path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return l.load(ctx, path, f, backend)
}

func (l *loader) LoadReader(ctx context.Context, name string, r io.Reader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	return l.load(ctx, name, r, l.backend)
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	m, ok := l.modelCache[name]
	delete(l.modelCache, name)
	l.mu.Unlock()

	if ok {
		m.Release()
	}
	return ok
}

func (l *loader) SetUploader(u MeshUploader) {
	l.mu.Lock()
	l.uploader = u
	l.mu.Unlock()
}

func (l *loader) Release() {
	l.mu.Lock()
	cache := l.modelCache
	l.modelCache = make(map[string]model.Model)
	l.mu.Unlock()

	for _, m := range cache {
		m.Release()
	}
	if l.backend != nil {
		l.backend.release()
	}
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only PLY is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ply":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

// load decodes, uploads and caches one model. When another caller cached the same name
// first, that model wins and the freshly decoded one is released.
func (l *loader) load(ctx context.Context, name string, r io.Reader, backend loaderBackend) (model.Model, error) {
	start := time.Now()

	mesh, err := backend.Load(ctx, r, l.progress)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	m := model.NewModel(
		model.WithName(name),
		model.WithMesh(mesh),
		model.WithShading(l.shading),
	)

	l.mu.RLock()
	uploader := l.uploader
	l.mu.RUnlock()

	// Upload to GPU if an uploader is available
	if uploader != nil {
		provider := bind_group_provider.NewBindGroupProvider(filepath.Base(name) + "_mesh")
		if err := uploader.InitMesh(provider, m.PositionData(), m.NormalData(), m.DrawCount()); err != nil {
			provider.Release()
			return nil, fmt.Errorf("failed to init mesh buffers for %q: %w", name, err)
		}
		m.SetMeshProvider(provider)
	}

	l.mu.Lock()
	if existing, ok := l.modelCache[name]; ok {
		l.mu.Unlock()
		m.Release()
		return existing, nil
	}
	l.modelCache[name] = m
	l.mu.Unlock()

	common.Logger().Info("model loaded",
		zap.String("name", name),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("faces", mesh.FaceCount()),
		zap.Stringer("shading", l.shading),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}
