package viewer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func centeredModel(center [3]float32) model.Model {
	return model.NewModel(model.WithName("test.ply"), model.WithMesh(&model.Mesh{Center: center}))
}

func TestDefaultLighting(t *testing.T) {
	l := DefaultLighting()

	assert.Equal(t, [3]float32{0.6, 0.6, 1.0}, l.Light.Position)
	assert.Equal(t, [4]float32{0.175, 0.175, 0.175, 1}, l.Light.Ambient)
	assert.Equal(t, [4]float32{0.6, 0.6, 0.6, 1}, l.Light.Diffuse)
	assert.Equal(t, [4]float32{0.95, 0.95, 0.95, 1}, l.Light.Specular)

	front := [4]float32{0.19216, 0.52941, 0.80784, 1}
	assert.Equal(t, front, l.FrontMaterial.Ambient)
	assert.Equal(t, front, l.FrontMaterial.Diffuse)
	assert.Equal(t, front, l.FrontMaterial.Specular)
	assert.Equal(t, float32(9), l.FrontMaterial.Shininess)

	assert.Equal(t, [4]float32{0.02745, 0.08627, 0.13725, 1}, l.BackMaterial.Ambient)
	assert.Equal(t, [4]float32{0.2, 0.2, 0.2, 1}, l.BackMaterial.Diffuse)
	assert.Equal(t, [4]float32{0.398, 0.398, 0.398, 1}, l.BackMaterial.Specular)
	assert.Equal(t, float32(5), l.BackMaterial.Shininess)
}

func TestViewportMatrix(t *testing.T) {
	m := ViewportMatrix(800, 600)
	assert.Equal(t, [4][2]float32{{400, 0}, {0, 300}, {0, 0}, {400, 300}}, m)

	// NDC corner (1, 1) lands on the top-right pixel corner
	x := m[0][0]*1 + m[1][0]*1 + m[3][0]
	y := m[0][1]*1 + m[1][1]*1 + m[3][1]
	assert.Equal(t, float32(800), x)
	assert.Equal(t, float32(600), y)
}

func TestBuildUniforms_Identity(t *testing.T) {
	cam := camera.NewCamera(camera.WithAspect(4.0 / 3.0))
	l := DefaultLighting()

	u := BuildUniforms(cam, common.Identity4(), 800, 600, l)

	assert.Equal(t, cam.ProjectionMatrix(), u.ProjectionMatrix)
	assert.Equal(t, cam.ViewMatrix(), u.ModelViewMatrix)
	assert.Equal(t, float32(-8), u.ModelViewMatrix[14])
	assert.Equal(t, [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, u.NormalMatrix3())
	assert.Equal(t, ViewportMatrix(800, 600), u.ViewportMatrix)
	assert.Equal(t, float32(8), u.Distance)
	assert.Equal(t, l.Light, u.LightSource)
	assert.Equal(t, l.FrontMaterial, u.FrontMaterial)
	assert.Equal(t, l.BackMaterial, u.BackMaterial)

	buf := u.Marshal()
	require.Len(t, buf, shadertypes.GPUUniformsSize)
	assert.Equal(t, float32(8), math.Float32frombits(binary.LittleEndian.Uint32(buf[208:212])))
	assert.Equal(t, float32(400), math.Float32frombits(binary.LittleEndian.Uint32(buf[176:180])))
	assert.Equal(t, float32(9), math.Float32frombits(binary.LittleEndian.Uint32(buf[288+48:288+52])))
}

func TestBuildUniforms_NormalMatrix(t *testing.T) {
	cam := camera.NewCamera()

	t.Run("uniform scale", func(t *testing.T) {
		var scale [16]float32
		scale[0], scale[5], scale[10], scale[15] = 2, 2, 2, 1
		u := BuildUniforms(cam, scale, 100, 100, DefaultLighting())
		n := u.NormalMatrix3()
		for i, want := range [9]float32{0.5, 0, 0, 0, 0.5, 0, 0, 0, 0.5} {
			assert.InDelta(t, want, n[i], eps)
		}
	})

	t.Run("non-uniform scale keeps normals perpendicular", func(t *testing.T) {
		var scale [16]float32
		scale[0], scale[5], scale[10], scale[15] = 1, 4, 1, 1
		u := BuildUniforms(cam, scale, 100, 100, DefaultLighting())
		n := u.NormalMatrix3()
		assert.InDelta(t, 1, n[0], eps)
		assert.InDelta(t, 0.25, n[4], eps)
		assert.InDelta(t, 1, n[8], eps)
	})

	t.Run("singular falls back to identity", func(t *testing.T) {
		var zero [16]float32
		u := BuildUniforms(cam, zero, 100, 100, DefaultLighting())
		assert.Equal(t, [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, u.NormalMatrix3())
	})
}

func TestViewer_NoModel(t *testing.T) {
	v := NewViewer(WithScreenSize(640, 480))

	_, ok := v.Uniforms()
	assert.False(t, ok)

	v.BeginDrag(DragRotate, 10, 10)
	assert.Equal(t, DragNone, v.Dragging())
	v.DragTo(20, 20)
	v.Reset()
}

func TestViewer_SetModelCentres(t *testing.T) {
	v := NewViewer(WithScreenSize(640, 480))
	m := centeredModel([3]float32{1, 2, 3})
	var moved [16]float32
	m.SetModelMatrix(moved)

	v.SetModel(m)
	require.Same(t, m, v.Model())

	mat := m.ModelMatrix()
	assert.Equal(t, [3]float32{-1, -2, -3}, [3]float32{mat[12], mat[13], mat[14]})

	u, ok := v.Uniforms()
	require.True(t, ok)
	assert.InDelta(t, -1, u.ModelViewMatrix[12], eps)
	assert.InDelta(t, -2, u.ModelViewMatrix[13], eps)
	assert.InDelta(t, -3-8, u.ModelViewMatrix[14], eps)
}

func TestViewer_Resize(t *testing.T) {
	cam := camera.NewCamera()
	v := NewViewer(WithCamera(cam))

	v.Resize(800, 400)
	w, h := v.Size()
	assert.Equal(t, float32(800), w)
	assert.Equal(t, float32(400), h)
	assert.Equal(t, float32(2), cam.Aspect())

	v.Resize(0, 0)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestViewer_RotateDrag(t *testing.T) {
	tb := camera.NewTrackball()
	v := NewViewer(WithTrackball(tb), WithScreenSize(400, 400))
	m := centeredModel([3]float32{0, 0, 0})
	v.SetModel(m)

	v.BeginDrag(DragRotate, 200, 200)
	assert.Equal(t, DragRotate, v.Dragging())
	v.DragTo(260, 200)

	want := tb.RotationMatrix(200, 200, 260, 200)
	got := m.ModelMatrix()
	for i := range 16 {
		assert.InDelta(t, want[i], got[i], eps, "element %d", i)
	}

	// the drag is relative to the start matrix, not cumulative
	v.DragTo(260, 200)
	got = m.ModelMatrix()
	for i := range 16 {
		assert.InDelta(t, want[i], got[i], eps, "element %d", i)
	}

	v.EndDrag()
	assert.Equal(t, DragNone, v.Dragging())
	v.DragTo(380, 20)
	assert.Equal(t, got, m.ModelMatrix())
}

func TestViewer_TranslateDrag(t *testing.T) {
	tb := camera.NewTrackball()
	cam := camera.NewCamera()
	v := NewViewer(WithTrackball(tb), WithCamera(cam), WithScreenSize(400, 400))
	m := centeredModel([3]float32{1, 0, 0})
	v.SetModel(m)

	v.BeginDrag(DragTranslate, 200, 200)
	v.DragTo(300, 150)
	v.EndDrag()

	d := tb.Translation(cam, 200, 200, 300, 150)
	assert.Greater(t, d[0], float32(0))
	assert.Greater(t, d[1], float32(0))

	got := m.ModelMatrix()
	assert.InDelta(t, -1+d[0], got[12], eps)
	assert.InDelta(t, d[1], got[13], eps)
	assert.InDelta(t, d[2], got[14], eps)
	assert.Equal(t, float32(1), got[0])
}

func TestViewer_ScrollAndReset(t *testing.T) {
	cam := camera.NewCamera()
	v := NewViewer(WithCamera(cam), WithScreenSize(400, 400))
	m := centeredModel([3]float32{0, 0, 2})
	v.SetModel(m)

	v.Scroll(2)
	assert.InDelta(t, 7, cam.Distance(), eps)
	v.Scroll(-4)
	assert.InDelta(t, 9, cam.Distance(), eps)

	v.BeginDrag(DragRotate, 100, 100)
	v.DragTo(300, 300)
	v.Reset()

	assert.InDelta(t, 8, cam.Distance(), eps)
	assert.Equal(t, DragNone, v.Dragging())
	mat := m.ModelMatrix()
	assert.Equal(t, float32(1), mat[0])
	assert.Equal(t, float32(-2), mat[14])
}

func TestWithScaleSpeed(t *testing.T) {
	cam := camera.NewCamera()
	v := NewViewer(WithCamera(cam), WithScaleSpeed(2), WithScaleSpeed(-1))
	v.Scroll(1)
	assert.InDelta(t, 6, cam.Distance(), eps)
}

func TestLoadShaders(t *testing.T) {
	vs, fs, err := LoadShaders()
	require.NoError(t, err)

	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.NotContains(t, vs.Source(), "@viewer:")

	layouts := vs.VertexLayouts()
	require.Len(t, layouts, 2)
	assert.Equal(t, uint32(shadertypes.VertexAttributePosition), layouts[shadertypes.BufferIndexMeshPositions].Attributes[0].ShaderLocation)
	assert.Equal(t, uint32(shadertypes.VertexAttributeNormal), layouts[shadertypes.BufferIndexMeshNormals].Attributes[0].ShaderLocation)
	for _, l := range layouts {
		assert.Equal(t, uint64(model.GPUVec3Stride), l.ArrayStride)
	}

	for _, s := range []interface {
		BindGroupVarName(group, binding int) string
	}{vs, fs} {
		assert.Equal(t, "uniforms", s.BindGroupVarName(shadertypes.UniformsGroup, int(shadertypes.BufferIndexUniforms)))
	}
	desc := vs.BindGroupLayoutDescriptor(shadertypes.UniformsGroup)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, uint32(shadertypes.BufferIndexUniforms), desc.Entries[0].Binding)
	assert.Equal(t, uint64(shadertypes.GPUUniformsSize), desc.Entries[0].Buffer.MinBindingSize)

	require.NoError(t, shadertypes.VerifySource(vs.Source()))
}
