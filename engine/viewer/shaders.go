package viewer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
)

// ShaderSource is the viewer's WGSL program before pre-processing.
//
//go:embed assets/model_viewer.wgsl
var ShaderSource string

// Shader and pipeline keys.
const (
	VertexShaderKey   = "model_viewer_vs"
	FragmentShaderKey = "model_viewer_fs"
	PipelineKey       = "model_viewer"
)

// NewPreProcessor returns a pre-processor that knows the uniform block and the vertex
// input declarations.
//
// Returns:
//   - shader.PreProcessor: the configured pre-processor
func NewPreProcessor() shader.PreProcessor {
	options := shadertypes.PreProcessorOptions()
	options = append(options, shader.WithStruct(model.StructKeyVertex, "VertexIn", model.GPUVertexSource))
	return shader.NewPreProcessor(options...)
}

// LoadShaders pre-processes ShaderSource and parses its vertex and fragment stages.
//
// Returns:
//   - shader.Shader: the vertex stage
//   - shader.Shader: the fragment stage
//   - error: pre-processing or parse errors
func LoadShaders() (shader.Shader, shader.Shader, error) {
	vs, err := shader.NewShader(VertexShaderKey, shader.ShaderTypeVertex, ShaderSource, shader.WithPreProcessor(NewPreProcessor()))
	if err != nil {
		return nil, nil, err
	}
	fs, err := shader.NewShader(FragmentShaderKey, shader.ShaderTypeFragment, ShaderSource, shader.WithPreProcessor(NewPreProcessor()))
	if err != nil {
		return nil, nil, err
	}
	return vs, fs, nil
}
