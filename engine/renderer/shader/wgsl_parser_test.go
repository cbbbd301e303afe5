package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutSource = `
struct Inner {
    position: vec3<f32>,
    colour: vec4<f32>,
}

struct Outer {
    a: f32,
    b: vec3<f32>, /* block comment */
    m: mat3x3<f32>,
    v: mat4x2<f32>,
    s: f32,
    inner: Inner,
    arr: array<vec2<f32>, 3>,
}
`

func TestStructLayouts(t *testing.T) {
	layouts := StructLayouts(layoutSource)
	require.Contains(t, layouts, "Inner")
	require.Contains(t, layouts, "Outer")

	inner := layouts["Inner"]
	assert.Equal(t, uint64(32), inner.Size)
	assert.Equal(t, uint64(16), inner.Align)

	tests := []struct {
		field  string
		offset uint64
		size   uint64
	}{
		{"a", 0, 4},
		{"b", 16, 12},
		{"m", 32, 48},
		{"v", 80, 32},
		{"s", 112, 4},
		{"inner", 128, 32},
		{"arr", 160, 24},
	}

	outer := layouts["Outer"]
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := outer.Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.offset, f.Offset)
			assert.Equal(t, tt.size, f.Size)
		})
	}
	assert.Equal(t, uint64(192), outer.Size)

	_, ok := outer.Field("missing")
	assert.False(t, ok)
}

func TestStructLayoutsUnresolvable(t *testing.T) {
	layouts := StructLayouts(`struct Broken { x: Nope, }`)
	assert.NotContains(t, layouts, "Broken")
}

func TestParseVertexLayouts(t *testing.T) {
	src := `
struct VertexIn {
    @location(1) normal: vec3<f32>,
    @location(0) position: vec3<f32>,
}
struct VertexOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) n: vec3<f32>,
}
`
	layouts := parseVertexLayouts(src)
	require.Len(t, layouts, 2)
	for slot, l := range layouts {
		assert.Equal(t, uint64(12), l.ArrayStride)
		require.Len(t, l.Attributes, 1)
		assert.Equal(t, uint32(slot), l.Attributes[0].ShaderLocation)
		assert.Equal(t, wgpu.VertexFormatFloat32x3, l.Attributes[0].Format)
	}

	assert.Nil(t, parseVertexLayouts(`struct VertexOut { @builtin(position) p: vec4<f32>, }`))
}

func TestParseBindGroupLayouts(t *testing.T) {
	src := layoutSource + `
@group(0) @binding(2) var<uniform> outer: Outer;
@group(0) @binding(0) var<storage, read> inners: array<Inner, 4>;
@group(1) @binding(0) var tex: texture_2d<f32>;
`
	descs, names := parseBindGroupLayouts(src, wgpu.ShaderStageVertex)
	require.Len(t, descs, 1)

	entries := descs[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[0].Buffer.Type)
	assert.Equal(t, uint64(128), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint32(2), entries[1].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[1].Buffer.Type)
	assert.Equal(t, uint64(192), entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, entries[1].Visibility)

	assert.Equal(t, "outer", names[0][2])
}

func TestParseEntryPoint(t *testing.T) {
	src := `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(); }
`
	assert.Equal(t, "vs_main", parseEntryPoint(src, ShaderTypeVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(src, ShaderTypeFragment))
	assert.Equal(t, "", parseEntryPoint("// @vertex fn commented() {}", ShaderTypeVertex))
}

func TestStripBlockCommentsNested(t *testing.T) {
	assert.Equal(t, "a  b", stripBlockComments("a /* x /* y */ z */ b"))
}

func TestSplitAtTopLevelCommas(t *testing.T) {
	parts := splitAtTopLevelCommas("a: array<f32, 4>, b: f32")
	assert.Equal(t, []string{"a: array<f32, 4>", " b: f32"}, parts)
}
