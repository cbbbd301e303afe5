package viewer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
)

// BuildUniforms assembles the per-frame uniform block.
//
// The model-view matrix is view·model. The normal matrix is the inverse-transpose of its
// upper-left 3x3 block, or the identity when that block is singular. The viewport matrix
// maps NDC x/y to window pixels: rows (w/2, 0, 0, w/2) and (0, h/2, 0, h/2), stored
// column-major as a mat4x2.
//
// Parameters:
//   - cam: supplies projection, view and distance
//   - modelMatrix: the model matrix (column-major)
//   - width, height: the drawable size in pixels
//   - lighting: the light and materials
//
// Returns:
//   - shadertypes.GPUUniforms: the filled block
func BuildUniforms(cam camera.Camera, modelMatrix [16]float32, width, height float32, lighting Lighting) shadertypes.GPUUniforms {
	var u shadertypes.GPUUniforms

	u.ProjectionMatrix = cam.ProjectionMatrix()
	view := cam.ViewMatrix()
	common.Mul4(u.ModelViewMatrix[:], view[:], modelMatrix[:])

	var normal [9]float32
	common.NormalMatrix(normal[:], u.ModelViewMatrix[:])
	u.SetNormalMatrix(normal)

	u.ViewportMatrix = ViewportMatrix(width, height)
	u.Distance = cam.Distance()

	u.LightSource = lighting.Light
	u.FrontMaterial = lighting.FrontMaterial
	u.BackMaterial = lighting.BackMaterial
	return u
}

// ViewportMatrix returns the column-major mat4x2 mapping NDC to window pixels.
//
// Parameters:
//   - width, height: the drawable size in pixels
//
// Returns:
//   - [4][2]float32: columns (w/2, 0), (0, h/2), (0, 0), (w/2, h/2)
func ViewportMatrix(width, height float32) [4][2]float32 {
	hw, hh := width/2, height/2
	return [4][2]float32{
		{hw, 0},
		{0, hh},
		{0, 0},
		{hw, hh},
	}
}
