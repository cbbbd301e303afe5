package viewer

import "github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"

// Lighting is the light and the two-sided material written into every frame's uniforms.
type Lighting struct {
	Light         shadertypes.GPULightSource
	FrontMaterial shadertypes.GPUMaterial
	BackMaterial  shadertypes.GPUMaterial
}

// DefaultLighting returns a white light above and to the right of the eye, a blue front
// material and a dark back material so that inside faces of open meshes stand out.
//
// Returns:
//   - Lighting: the default light and materials
func DefaultLighting() Lighting {
	front := [4]float32{0.19216, 0.52941, 0.80784, 1}
	return Lighting{
		Light: shadertypes.GPULightSource{
			Position: [3]float32{0.6, 0.6, 1.0},
			Ambient:  [4]float32{0.175, 0.175, 0.175, 1},
			Diffuse:  [4]float32{0.6, 0.6, 0.6, 1},
			Specular: [4]float32{0.95, 0.95, 0.95, 1},
		},
		FrontMaterial: shadertypes.GPUMaterial{
			Ambient:   front,
			Diffuse:   front,
			Specular:  front,
			Shininess: 9,
		},
		BackMaterial: shadertypes.GPUMaterial{
			Ambient:   [4]float32{0.02745, 0.08627, 0.13725, 1},
			Diffuse:   [4]float32{0.2, 0.2, 0.2, 1},
			Specular:  [4]float32{0.398, 0.398, 0.398, 1},
			Shininess: 5,
		},
	}
}
