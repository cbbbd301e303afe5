package shadertypes

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumLiterals(t *testing.T) {
	assert.Equal(t, int32(0), int32(BufferIndexMeshPositions))
	assert.Equal(t, int32(1), int32(BufferIndexMeshNormals))
	assert.Equal(t, int32(2), int32(BufferIndexUniforms))
	assert.Equal(t, int32(0), int32(VertexAttributePosition))
	assert.Equal(t, int32(1), int32(VertexAttributeNormal))

	assert.Equal(t, "BufferIndexUniforms", BufferIndexUniforms.String())
	assert.Equal(t, "VertexAttributeNormal", VertexAttributeNormal.String())
}

func TestSizes(t *testing.T) {
	assert.Equal(t, GPULightSourceSize, (&GPULightSource{}).Size())
	assert.Equal(t, GPUMaterialSize, (&GPUMaterial{}).Size())
	assert.Equal(t, GPUUniformsSize, (&GPUUniforms{}).Size())

	assert.Equal(t, 50, ScalarCountBase)
	assert.Equal(t, 15, ScalarCountLightSource)
	assert.Equal(t, 13, ScalarCountMaterial)
	assert.Equal(t, 91, ScalarCountUniforms)
}

func TestZeroUniforms(t *testing.T) {
	var u GPUUniforms
	buf := u.Marshal()
	require.Len(t, buf, GPUUniformsSize)
	for i, b := range buf {
		require.Zero(t, b, "byte %d", i)
	}

	floats := u.Floats()
	assert.Len(t, floats, ScalarCountUniforms)
	assert.Len(t, floats[:ScalarCountBase], 50)
	for _, f := range floats {
		assert.Zero(t, f)
	}
}

// sampleUniforms fills every scalar with a distinct value.
func sampleUniforms() GPUUniforms {
	var u GPUUniforms
	next := float32(1)
	fill := func(dst []float32) {
		for i := range dst {
			dst[i] = next
			next += 0.5
		}
	}
	fill(u.ProjectionMatrix[:])
	fill(u.ModelViewMatrix[:])
	var n [9]float32
	fill(n[:])
	u.SetNormalMatrix(n)
	for col := range u.ViewportMatrix {
		fill(u.ViewportMatrix[col][:])
	}
	u.Distance = -8
	fill(u.LightSource.Position[:])
	fill(u.LightSource.Ambient[:])
	fill(u.LightSource.Diffuse[:])
	fill(u.LightSource.Specular[:])
	for _, m := range []*GPUMaterial{&u.FrontMaterial, &u.BackMaterial} {
		fill(m.Ambient[:])
		fill(m.Diffuse[:])
		fill(m.Specular[:])
		m.Shininess = next
		next++
	}
	return u
}

func TestUniformsRoundTrip(t *testing.T) {
	u := sampleUniforms()
	buf := u.Marshal()

	var got GPUUniforms
	require.NoError(t, got.Unmarshal(buf))
	assert.Equal(t, u, got)

	// bitwise equality, including negative zero and NaN payloads
	u.Distance = float32(math.Copysign(0, -1))
	u.ProjectionMatrix[3] = math.Float32frombits(0x7fc00001)
	require.NoError(t, got.Unmarshal(u.Marshal()))
	assert.Equal(t, math.Float32bits(u.Distance), math.Float32bits(got.Distance))
	assert.Equal(t, uint32(0x7fc00001), math.Float32bits(got.ProjectionMatrix[3]))
}

func TestUniformsFieldOffsets(t *testing.T) {
	u := sampleUniforms()
	buf := u.Marshal()
	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}

	assert.Equal(t, u.ProjectionMatrix[0], at(0))
	assert.Equal(t, u.ModelViewMatrix[0], at(64))
	assert.Equal(t, u.NormalMatrix[1][0], at(128+16))
	assert.Zero(t, at(128+12), "normal matrix column padding")
	assert.Equal(t, u.ViewportMatrix[3][1], at(176+28))
	assert.Equal(t, u.Distance, at(208))
	assert.Equal(t, u.LightSource.Position[2], at(224+8))
	assert.Equal(t, u.LightSource.Ambient[0], at(224+16))
	assert.Equal(t, u.FrontMaterial.Shininess, at(288+48))
	assert.Equal(t, u.BackMaterial.Specular[3], at(352+44))
}

func TestMarshalMatchesHostMemory(t *testing.T) {
	if binary.NativeEndian.Uint16([]byte{1, 0}) != 1 {
		t.Skip("host is not little-endian")
	}
	u := sampleUniforms()
	assert.Equal(t, common.StructToBytes(&u), u.Marshal())

	l := u.LightSource
	assert.Equal(t, common.StructToBytes(&l), l.Marshal())
	m := u.BackMaterial
	assert.Equal(t, common.StructToBytes(&m), m.Marshal())
}

func TestFloatsOrder(t *testing.T) {
	u := sampleUniforms()
	f := u.Floats()
	require.Len(t, f, ScalarCountUniforms)

	assert.Equal(t, u.ProjectionMatrix[:], f[0:16])
	assert.Equal(t, u.ModelViewMatrix[:], f[16:32])
	n := u.NormalMatrix3()
	assert.Equal(t, n[:], f[32:41])
	assert.Equal(t, u.ViewportMatrix[0][:], f[41:43])
	assert.Equal(t, u.Distance, f[49])
	assert.Equal(t, u.LightSource.Floats(), f[50:65])
	assert.Equal(t, u.FrontMaterial.Floats(), f[65:78])
	assert.Equal(t, u.BackMaterial.Floats(), f[78:91])
}

func TestPartRoundTrips(t *testing.T) {
	u := sampleUniforms()

	var l GPULightSource
	require.NoError(t, l.Unmarshal(u.LightSource.Marshal()))
	assert.Equal(t, u.LightSource, l)

	var m GPUMaterial
	require.NoError(t, m.Unmarshal(u.FrontMaterial.Marshal()))
	assert.Equal(t, u.FrontMaterial, m)
}

func TestShortBuffers(t *testing.T) {
	var u GPUUniforms
	assert.ErrorIs(t, u.Unmarshal(make([]byte, GPUUniformsSize-1)), ErrShortBuffer)
	assert.ErrorIs(t, u.MarshalTo(make([]byte, 10)), ErrShortBuffer)

	var l GPULightSource
	assert.True(t, errors.Is(l.Unmarshal(nil), ErrShortBuffer))
	var m GPUMaterial
	assert.ErrorIs(t, m.Unmarshal(make([]byte, 63)), ErrShortBuffer)
}

func TestMarshalToSlot(t *testing.T) {
	u := sampleUniforms()
	dst := make([]byte, 2*512)
	for i := range dst {
		dst[i] = 0xff
	}
	require.NoError(t, u.MarshalTo(dst[512:]))
	assert.Equal(t, u.Marshal(), dst[512:512+GPUUniformsSize])
	assert.Equal(t, byte(0xff), dst[511])
	assert.Equal(t, byte(0xff), dst[512+GPUUniformsSize])
}

func TestSourceDeclaresAllStructs(t *testing.T) {
	for _, name := range []string{"struct LightSource", "struct Material", "struct Uniforms"} {
		assert.True(t, strings.Contains(GPUUniformsSource, name), name)
	}
}
