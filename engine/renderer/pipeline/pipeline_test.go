package pipeline_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeline_Defaults(t *testing.T) {
	p := pipeline.NewPipeline("viewer")

	assert.Equal(t, "viewer", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLess, p.DepthCompare())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.RenderPipeline())
}

func TestNewPipeline_Options(t *testing.T) {
	blend := &wgpu.BlendState{}
	p := pipeline.NewPipeline("custom",
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCW),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithDepthCompare(wgpu.CompareFunctionLessEqual),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskRed),
		pipeline.WithBlendState(blend),
	)

	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLessEqual, p.DepthCompare())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Same(t, blend, p.BlendState())

	off := pipeline.NewPipeline("no-depth", pipeline.WithDepthTestEnabled(false))
	assert.Equal(t, wgpu.CompareFunctionAlways, off.DepthCompare())
}

func TestPipeline_Validate(t *testing.T) {
	vs, fs, err := viewer.LoadShaders()
	require.NoError(t, err)

	assert.ErrorIs(t, pipeline.NewPipeline("empty").Validate(), pipeline.ErrMissingShader)
	assert.ErrorIs(t, pipeline.NewPipeline("vs only", pipeline.WithVertexShader(vs)).Validate(), pipeline.ErrMissingShader)

	p := pipeline.NewPipeline(viewer.PipelineKey, pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))
	require.NoError(t, p.Validate())
	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))
}

func TestPipeline_BindGroupLayoutDescriptors(t *testing.T) {
	vs, fs, err := viewer.LoadShaders()
	require.NoError(t, err)

	static := pipeline.NewPipeline("static", pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))
	merged := static.BindGroupLayoutDescriptors()
	require.Contains(t, merged, shadertypes.UniformsGroup)
	entries := merged[shadertypes.UniformsGroup].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(shadertypes.BufferIndexUniforms), entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, entries[0].Visibility)
	assert.False(t, entries[0].Buffer.HasDynamicOffset)
	assert.False(t, static.HasDynamicOffsets(shadertypes.UniformsGroup))

	dynamic := pipeline.NewPipeline("dynamic",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithDynamicOffsets(shadertypes.UniformsGroup),
	)
	assert.True(t, dynamic.HasDynamicOffsets(shadertypes.UniformsGroup))
	entry := dynamic.BindGroupLayoutDescriptors()[shadertypes.UniformsGroup].Entries[0]
	assert.True(t, entry.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(shadertypes.GPUUniformsSize), entry.Buffer.MinBindingSize)

	// the shader's own descriptor is left untouched
	assert.False(t, vs.BindGroupLayoutDescriptor(shadertypes.UniformsGroup).Entries[0].Buffer.HasDynamicOffset)
	assert.Nil(t, dynamic.BindGroupLayout(shadertypes.UniformsGroup))
}
