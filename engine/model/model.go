package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
)

// model is the implementation of the Model interface.
type model struct {
	mu sync.RWMutex

	name         string
	mesh         *Mesh
	shading      Shading
	modelMatrix  [16]float32
	meshProvider bind_group_provider.BindGroupProvider
}

// Model defines the interface for a loaded 3D model.
// A Model pairs the CPU mesh produced by the Loader with its model matrix and, once
// uploaded by the Renderer, the BindGroupProvider holding its vertex buffers.
type Model interface {
	// Name retrieves the model identifier, normally the path it was loaded from.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Mesh retrieves the CPU-side mesh.
	//
	// Returns:
	//   - *Mesh: the mesh, never nil
	Mesh() *Mesh

	// Shading reports which normals are uploaded for this model.
	//
	// Returns:
	//   - Shading: the shading mode
	Shading() Shading

	// PositionData returns the de-indexed positions packed for the position vertex buffer.
	//
	// Returns:
	//   - []byte: DrawCount()*GPUVec3Stride bytes
	PositionData() []byte

	// NormalData returns the normals selected by Shading packed for the normal vertex buffer.
	//
	// Returns:
	//   - []byte: DrawCount()*GPUVec3Stride bytes
	NormalData() []byte

	// DrawCount returns the number of vertices of a non-indexed draw of the model.
	//
	// Returns:
	//   - int: three per face
	DrawCount() int

	// ModelMatrix returns the current model matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// SetModelMatrix replaces the model matrix.
	//
	// Parameters:
	//   - m: the new model matrix (column-major)
	SetModelMatrix(m [16]float32)

	// ResetTransform moves the mesh centre to the origin: the model matrix becomes the
	// translation by -Center.
	ResetTransform()

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	// Returns nil before the model has been uploaded.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider assigns the GPU mesh resources.
	//
	// Parameters:
	//   - provider: the mesh provider
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// Release releases the GPU mesh resources, if any.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// The model matrix starts centred on the mesh (see ResetTransform).
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mesh:        &Mesh{},
		modelMatrix: common.Identity4(),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.mesh == nil {
		m.mesh = &Mesh{}
	}
	m.resetTransform()
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() *Mesh {
	return m.mesh
}

func (m *model) Shading() Shading {
	return m.shading
}

func (m *model) PositionData() []byte {
	return MarshalVec3(m.mesh.Positions)
}

func (m *model) NormalData() []byte {
	return MarshalVec3(m.mesh.Normals(m.shading))
}

func (m *model) DrawCount() int {
	return m.mesh.DrawCount()
}

func (m *model) ModelMatrix() [16]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modelMatrix
}

func (m *model) SetModelMatrix(mat [16]float32) {
	m.mu.Lock()
	m.modelMatrix = mat
	m.mu.Unlock()
}

func (m *model) ResetTransform() {
	m.mu.Lock()
	m.resetTransform()
	m.mu.Unlock()
}

// resetTransform writes the centring translation. Caller holds the write lock.
func (m *model) resetTransform() {
	c := m.mesh.Center
	common.Translation(m.modelMatrix[:], -c[0], -c[1], -c[2])
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	m.meshProvider = provider
	m.mu.Unlock()
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meshProvider != nil {
		m.meshProvider.Release()
		m.meshProvider = nil
	}
}
