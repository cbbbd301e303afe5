package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func TestMul4Identity(t *testing.T) {
	id := Identity4()
	var tr [16]float32
	Translation(tr[:], 1, 2, 3)

	var out [16]float32
	Mul4(out[:], id[:], tr[:])
	assert.Equal(t, tr, out)

	Mul4(out[:], tr[:], id[:])
	assert.Equal(t, tr, out)
}

func TestMulVec4Translation(t *testing.T) {
	var tr [16]float32
	Translation(tr[:], 1, 2, 3)
	got := MulVec4(tr[:], [4]float32{1, 1, 1, 1})
	assert.Equal(t, [4]float32{2, 3, 4, 1}, got)
}

func TestRotation(t *testing.T) {
	var r [16]float32
	Rotation(r[:], math.Pi/2, [3]float32{0, 0, 1})
	got := MulVec4(r[:], [4]float32{1, 0, 0, 1})
	assert.InDelta(t, 0, got[0], eps)
	assert.InDelta(t, 1, got[1], eps)
	assert.InDelta(t, 0, got[2], eps)

	Rotation(r[:], 1, [3]float32{})
	assert.Equal(t, Identity4(), r)
}

func TestInvert4(t *testing.T) {
	var a, r, inv, prod [16]float32
	Translation(a[:], 3, -2, 5)
	Rotation(r[:], 0.7, [3]float32{1, 1, 0})
	Mul4(a[:], a[:], r[:])

	require.True(t, Invert4(inv[:], a[:]))
	Mul4(prod[:], a[:], inv[:])
	id := Identity4()
	for i := range prod {
		assert.InDelta(t, id[i], prod[i], eps, "element %d", i)
	}

	var zero [16]float32
	assert.False(t, Invert4(inv[:], zero[:]))
}

func TestPerspectiveDepthRange(t *testing.T) {
	var p [16]float32
	near, far := float32(0.01), float32(100)
	Perspective(p[:], RadiansFromDegrees(65), 1, near, far)

	clipNear := MulVec4(p[:], [4]float32{0, 0, -near, 1})
	clipFar := MulVec4(p[:], [4]float32{0, 0, -far, 1})
	assert.InDelta(t, 0, clipNear[2]/clipNear[3], eps)
	assert.InDelta(t, 1, clipFar[2]/clipFar[3], eps)
	assert.Equal(t, far/(near-far), p[10])
}

func TestNormalMatrix(t *testing.T) {
	t.Run("rotation is its own normal matrix", func(t *testing.T) {
		var r [16]float32
		Rotation(r[:], 0.4, [3]float32{0, 1, 0})
		var n [9]float32
		require.True(t, NormalMatrix(n[:], r[:]))
		for col := 0; col < 3; col++ {
			for row := 0; row < 3; row++ {
				assert.InDelta(t, r[col*4+row], n[col*3+row], eps)
			}
		}
	})

	t.Run("non-uniform scale inverts", func(t *testing.T) {
		m := Identity4()
		m[0], m[5], m[10] = 2, 4, 0.5
		var n [9]float32
		require.True(t, NormalMatrix(n[:], m[:]))
		assert.InDelta(t, 0.5, n[0], eps)
		assert.InDelta(t, 0.25, n[4], eps)
		assert.InDelta(t, 2, n[8], eps)
	})

	t.Run("singular yields identity", func(t *testing.T) {
		var zero [16]float32
		var n [9]float32
		assert.False(t, NormalMatrix(n[:], zero[:]))
		assert.Equal(t, [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, n)
	})
}

func TestVec3(t *testing.T) {
	assert.Equal(t, [3]float32{0, 0, 1}, Cross3([3]float32{1, 0, 0}, [3]float32{0, 1, 0}))
	assert.Equal(t, float32(32), Dot3([3]float32{1, 2, 3}, [3]float32{4, 5, 6}))

	n, ok := Normalize3([3]float32{3, 0, 4})
	assert.True(t, ok)
	assert.InDelta(t, 0.6, n[0], eps)
	assert.InDelta(t, 0.8, n[2], eps)

	_, ok = Normalize3([3]float32{})
	assert.False(t, ok)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[float32](nil))
	assert.Len(t, SliceToBytes([][3]float32{{1, 2, 3}, {4, 5, 6}}), 24)
}
