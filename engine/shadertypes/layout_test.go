package shadertypes

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	require.NoError(t, Verify())
}

func TestLayoutsMatchConstants(t *testing.T) {
	layouts := Layouts()
	require.Len(t, layouts, 3)

	assert.Equal(t, "LightSource", layouts[0].Name)
	assert.Equal(t, uint64(GPULightSourceSize), layouts[0].Size)
	assert.Equal(t, uint64(GPUMaterialSize), layouts[1].Size)
	assert.Equal(t, uint64(GPUUniformsSize), layouts[2].Size)

	tests := []struct {
		field  string
		offset uint64
	}{
		{"projection_matrix", 0},
		{"model_view_matrix", 64},
		{"normal_matrix", 128},
		{"viewport_matrix", 176},
		{"distance", 208},
		{"light_source", 224},
		{"front_material", 288},
		{"back_material", 352},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := layouts[2].Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.offset, f.Offset)
		})
	}
}

func TestVerifySourceMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
		field  string
	}{
		{
			name:   "member type widened",
			mutate: func(s string) string { return strings.Replace(s, "distance: f32", "distance: vec2<f32>", 1) },
			field:  "distance",
		},
		{
			name: "members reordered",
			mutate: func(s string) string {
				return strings.Replace(s, "    diffuse: vec4<f32>,\n    specular: vec4<f32>,\n    shininess", "    specular: vec4<f32>,\n    diffuse: vec4<f32>,\n    shininess", 1)
			},
			field: "diffuse",
		},
		{
			name:   "member renamed",
			mutate: func(s string) string { return strings.Replace(s, "shininess: f32", "exponent: f32", 1) },
			field:  "shininess",
		},
		{
			name:   "struct missing",
			mutate: func(s string) string { return strings.Replace(s, "struct LightSource", "struct Light", 1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySource(tt.mutate(GPUUniformsSource))
			require.Error(t, err)

			var le *LayoutError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.field, le.Field)
			assert.NotEmpty(t, le.Error())
		})
	}
}

func TestVerifyExtraShaderMember(t *testing.T) {
	src := strings.Replace(GPUUniformsSource, "    shininess: f32,\n}", "    shininess: f32,\n    roughness: f32,\n}", 1)
	var le *LayoutError
	require.ErrorAs(t, VerifySource(src), &le)
	assert.Equal(t, "Material", le.Struct)
	assert.Empty(t, le.Field)
}

func TestPreProcessorOptions(t *testing.T) {
	pp := shader.NewPreProcessor(PreProcessorOptions()...)
	out, err := pp.Process("//@viewer:include uniforms\n//@viewer:uniform 0 2 uniforms uniforms")
	require.NoError(t, err)
	assert.Contains(t, out, "struct Uniforms")
	assert.Contains(t, out, "@group(0) @binding(2) var<uniform> uniforms: Uniforms;")
}
