package model

// Shading selects which normals are uploaded to the normal vertex buffer.
type Shading int

const (
	// ShadingFlat uses one normal per face, repeated for its three corners.
	ShadingFlat Shading = iota
	// ShadingSmooth uses the per-vertex average of the normals of every face sharing the vertex.
	ShadingSmooth
)

// String returns the configuration name of the shading mode.
func (s Shading) String() string {
	switch s {
	case ShadingFlat:
		return "flat"
	case ShadingSmooth:
		return "smooth"
	default:
		return "unknown"
	}
}

// ParseShading maps a configuration name to a Shading value.
//
// Parameters:
//   - name: "flat" or "smooth"
//
// Returns:
//   - Shading: the shading mode
//   - bool: false if the name is not recognised
func ParseShading(name string) (Shading, bool) {
	switch name {
	case "flat", "":
		return ShadingFlat, true
	case "smooth":
		return ShadingSmooth, true
	default:
		return ShadingFlat, false
	}
}

// Mesh is the CPU-side triangle mesh produced by the loader.
type Mesh struct {
	// Vertices are the indexed vertex positions as stored in the file.
	Vertices [][3]float32

	// Faces are the triangle vertex indices into Vertices.
	Faces [][3]uint32

	// Center is the arithmetic mean of Vertices.
	Center [3]float32

	// Positions are the de-indexed triangle corners, three per face in face order.
	Positions [][3]float32

	// FlatNormals holds one normal per entry of Positions: the face normal
	// normalize(cross(p1-p0, p2-p0)) repeated for the three corners of the face.
	// Degenerate faces get a zero normal.
	FlatNormals [][3]float32

	// VertexNormals holds one normal per entry of Vertices: the mean of the normals of
	// the faces that reference the vertex. Unreferenced vertices keep a zero normal.
	VertexNormals [][3]float32
}

// VertexCount returns the number of indexed vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// DrawCount returns the number of vertices submitted by a non-indexed draw of the mesh.
func (m *Mesh) DrawCount() int {
	return len(m.Positions)
}

// Normals returns the per-corner normals aligned with Positions for the requested shading.
//
// Parameters:
//   - shading: flat or smooth
//
// Returns:
//   - [][3]float32: one normal per entry of Positions
func (m *Mesh) Normals(shading Shading) [][3]float32 {
	if shading != ShadingSmooth {
		return m.FlatNormals
	}
	out := make([][3]float32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		out = append(out, m.VertexNormals[f[0]], m.VertexNormals[f[1]], m.VertexNormals[f[2]])
	}
	return out
}
