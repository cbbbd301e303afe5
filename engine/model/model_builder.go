package model

import "github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh is an option builder that sets the CPU mesh of the Model.
//
// Parameters:
//   - mesh: the mesh produced by the loader
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(mesh *Mesh) ModelBuilderOption {
	return func(m *model) {
		m.mesh = mesh
	}
}

// WithShading is an option builder that selects flat or smooth normals.
//
// Parameters:
//   - shading: the shading mode
//
// Returns:
//   - ModelBuilderOption: a function that applies the shading option to a model
func WithShading(shading Shading) ModelBuilderOption {
	return func(m *model) {
		m.shading = shading
	}
}

// WithMeshProvider is an option builder that sets the GPU mesh resources of the Model.
//
// Parameters:
//   - provider: the BindGroupProvider holding the vertex buffers
//
// Returns:
//   - ModelBuilderOption: a function that applies the provider option to a model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}
