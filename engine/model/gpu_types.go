package model

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUVertexSource is the canonical WGSL definition of the VertexIn struct consumed by the
// viewer's vertex stage. Each attribute lives in its own vertex buffer; the location of an
// attribute is also the slot of the buffer that feeds it.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

const (
	// StructKeyVertex is the pre-processor key under which GPUVertexSource is registered.
	StructKeyVertex = "vertex"

	// GPUVec3Stride is the byte stride of one vec3<f32> element in a vertex buffer.
	GPUVec3Stride = 12
)

// MarshalVec3 packs vectors as consecutive little-endian float32 triples, the layout of a
// float32x3 vertex buffer.
//
// Parameters:
//   - vs: the vectors to pack
//
// Returns:
//   - []byte: len(vs)*GPUVec3Stride bytes
func MarshalVec3(vs [][3]float32) []byte {
	buf := make([]byte, len(vs)*GPUVec3Stride)
	for i, v := range vs {
		o := i * GPUVec3Stride
		binary.LittleEndian.PutUint32(buf[o:o+4], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(buf[o+4:o+8], math.Float32bits(v[1]))
		binary.LittleEndian.PutUint32(buf[o+8:o+12], math.Float32bits(v[2]))
	}
	return buf
}
