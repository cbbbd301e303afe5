package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceSource is the part of a window the renderer draws into.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
}

// Renderer draws triangle meshes with a single uniform block through a GPU backend.
//
// The Renderer keeps a cache of registered pipelines keyed by PipelineKey. Each frame is
// BeginFrame, one or more Draw calls, EndFrame and Present. Uniforms live in one buffer
// split into slots; Draw selects a slot with a dynamic offset.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline via the backend and caches them
	// by PipelineKey. Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// InitMesh uploads positions and normals into vertex buffers at BufferIndexMeshPositions
	// and BufferIndexMeshNormals of provider and records the vertex count.
	//
	// Parameters:
	//   - provider: receives the vertex buffers and vertex count
	//   - positions: packed float32x3 positions
	//   - normals: packed float32x3 normals
	//   - vertexCount: the number of vertices drawn
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMesh(provider bind_group_provider.BindGroupProvider, positions, normals []byte, vertexCount int) error

	// InitUniformBindGroup creates the uniform buffers and bind group for group of a registered
	// pipeline, reusing the pipeline's layout so the two stay compatible. Every buffer of the
	// group is created with bufferSize bytes.
	//
	// Parameters:
	//   - provider: receives the buffers and bind group
	//   - pipelineKey: the registered pipeline
	//   - group: the bind group index
	//   - bufferSize: the size of each buffer, typically UniformRing.BufferSize
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or creation fails
	InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, bufferSize uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Draw encodes a non-indexed draw of mesh with the uniform bind group at UniformsGroup.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline
	//   - mesh: holds the vertex buffers and vertex count
	//   - uniforms: holds the uniform bind group
	//   - dynamicOffset: the byte offset of the uniform slot, ignored for static groups
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or no frame is in progress
	Draw(pipelineKey string, mesh, uniforms bind_group_provider.BindGroupProvider, dynamicOffset uint64) error

	// EndFrame ends the render pass and submits the frame's commands.
	EndFrame()

	// Present displays the frame and releases the swapchain texture.
	Present()

	// OnSubmittedWorkDone calls fn once the GPU has finished every frame submitted so far.
	// Callbacks fire from Poll.
	//
	// Parameters:
	//   - fn: the completion callback, typically UniformRing.Release
	OnSubmittedWorkDone(fn func())

	// Poll fires the callbacks of finished GPU work.
	//
	// Parameters:
	//   - wait: block until all submitted work has finished
	Poll(wait bool)

	// Release frees the backend's GPU objects.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into surface with the given backend.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - surface: the window providing the surface descriptor and initial size
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device could be obtained
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	r.backend.ConfigureSurface(surface.Width(), surface.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMesh(provider bind_group_provider.BindGroupProvider, positions, normals []byte, vertexCount int) error {
	if err := r.backend.InitVertexBuffer(provider, int(shadertypes.BufferIndexMeshPositions), positions); err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	if err := r.backend.InitVertexBuffer(provider, int(shadertypes.BufferIndexMeshNormals), normals); err != nil {
		return fmt.Errorf("normals: %w", err)
	}
	provider.SetVertexCount(vertexCount)
	return nil
}

func (r *renderer) InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, bufferSize uint64) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("%q: %w", pipelineKey, ErrNotRegistered)
	}

	descriptor, ok := p.BindGroupLayoutDescriptors()[group]
	if !ok {
		return fmt.Errorf("pipeline %q has no bind group %d", pipelineKey, group)
	}
	if layout := p.BindGroupLayout(group); layout != nil && provider.BindGroupLayout() == nil {
		provider.SetBindGroupLayout(layout)
	}

	sizes := make(map[int]uint64, len(descriptor.Entries))
	for _, e := range descriptor.Entries {
		sizes[int(e.Binding)] = max(bufferSize, e.Buffer.MinBindingSize)
	}
	return r.backend.InitBindGroup(provider, descriptor, sizes)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Draw(pipelineKey string, mesh, uniforms bind_group_provider.BindGroupProvider, dynamicOffset uint64) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q: %w", pipelineKey, ErrNotRegistered)
	}

	bindGroups := make([]bind_group_provider.BindGroupProvider, shadertypes.UniformsGroup+1)
	bindGroups[shadertypes.UniformsGroup] = uniforms

	var offsets map[int][]uint32
	if p.HasDynamicOffsets(shadertypes.UniformsGroup) {
		offsets = map[int][]uint32{shadertypes.UniformsGroup: {uint32(dynamicOffset)}}
	}
	return r.backend.DrawCall(p, mesh, bindGroups, offsets)
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) OnSubmittedWorkDone(fn func()) {
	r.backend.OnWorkDone(fn)
}

func (r *renderer) Poll(wait bool) {
	r.backend.Poll(wait)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Bind group layouts are released by the providers they were handed to.
	for _, p := range r.pipelineCache {
		if rp := p.RenderPipeline(); rp != nil {
			rp.Release()
			p.SetRenderPipeline(nil)
		}
	}
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	r.backend.Release()
}
