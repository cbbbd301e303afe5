package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size for stride calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to compute MinBindingSize for buffer bindings and per-field offsets.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// FieldLayout is the placement of one struct member inside a host-shareable WGSL struct.
type FieldLayout struct {
	// Name is the WGSL member name.
	Name string
	// Type is the WGSL type name as written in the source.
	Type string
	// Offset is the byte offset of the member from the start of the struct.
	Offset uint64
	// Size is the byte size of the member type.
	Size uint64
	// Align is the required alignment of the member type.
	Align uint64
}

// StructLayout is the computed memory layout of a WGSL struct.
type StructLayout struct {
	// Name is the WGSL struct name.
	Name string
	// Size is the struct size rounded up to its alignment.
	Size uint64
	// Align is the largest member alignment.
	Align uint64
	// Fields holds the member placements in declaration order. Builtin members are omitted.
	Fields []FieldLayout
}

// Field looks up a member by name.
//
// Parameters:
//   - name: the WGSL member name
//
// Returns:
//   - FieldLayout: the member placement
//   - bool: false if the struct has no such member
func (s StructLayout) Field(name string) (FieldLayout, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}
