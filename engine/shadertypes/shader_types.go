// Package shadertypes holds the uniform layout and binding indices shared between the
// host and the viewer's WGSL program. Every Go type here mirrors a WGSL declaration in
// assets/shader_types.wgsl byte for byte; Verify checks that agreement.
package shadertypes

// BufferIndex identifies the slot a buffer occupies when handed to the render pipeline.
// Mesh buffers use it as the vertex buffer slot and the uniform block uses it as its
// @binding index. The values are part of the host/shader contract and must not change.
type BufferIndex int32

const (
	BufferIndexMeshPositions BufferIndex = 0
	BufferIndexMeshNormals   BufferIndex = 1
	BufferIndexUniforms      BufferIndex = 2
)

// VertexAttribute identifies a per-vertex attribute channel, used as the WGSL @location.
type VertexAttribute int32

const (
	VertexAttributePosition VertexAttribute = 0
	VertexAttributeNormal   VertexAttribute = 1
)

// UniformsGroup is the bind group index of the uniform block.
const UniformsGroup = 0

// Keys under which the WGSL declarations are registered with the shader pre-processor.
const (
	StructKeyUniforms = "uniforms"
)

// String returns the symbolic name of the buffer index.
func (b BufferIndex) String() string {
	switch b {
	case BufferIndexMeshPositions:
		return "BufferIndexMeshPositions"
	case BufferIndexMeshNormals:
		return "BufferIndexMeshNormals"
	case BufferIndexUniforms:
		return "BufferIndexUniforms"
	default:
		return "BufferIndex(?)"
	}
}

// String returns the symbolic name of the vertex attribute.
func (v VertexAttribute) String() string {
	switch v {
	case VertexAttributePosition:
		return "VertexAttributePosition"
	case VertexAttributeNormal:
		return "VertexAttributeNormal"
	default:
		return "VertexAttribute(?)"
	}
}
