package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, float32(DefaultDistance), c.Distance())
	assert.InDelta(t, 65*math.Pi/180, c.Fov(), eps)
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, float32(DefaultNear), c.Near())
	assert.Equal(t, float32(DefaultFar), c.Far())
	assert.Equal(t, common.Identity4(), c.Rotation())

	view := c.ViewMatrix()
	assert.Equal(t, float32(-8), view[14])

	proj := c.ProjectionMatrix()
	assert.InDelta(t, DefaultFar/(DefaultNear-DefaultFar), proj[10], eps)
	assert.Equal(t, float32(-1), proj[11])
}

func TestCameraOptions(t *testing.T) {
	c := NewCamera(
		WithDistance(200),
		WithDistanceLimits(1, 50),
		WithFov(1),
		WithAspect(2),
		WithNear(0.5),
		WithFar(10),
	)
	assert.Equal(t, float32(50), c.Distance(), "initial distance clamps to limits")
	assert.Equal(t, float32(1), c.Fov())
	assert.Equal(t, float32(2), c.Aspect())
	assert.Equal(t, float32(0.5), c.Near())
	assert.Equal(t, float32(10), c.Far())

	ignored := NewCamera(WithDistanceLimits(5, 1), WithAspect(-1))
	assert.Equal(t, float32(DefaultDistance), ignored.Distance())
	assert.Equal(t, float32(1), ignored.Aspect())
}

func TestCameraDistance(t *testing.T) {
	c := NewCamera(WithDistanceLimits(1, 20))

	c.SetDistance(4)
	assert.Equal(t, float32(4), c.Distance())
	v := c.ViewMatrix()
	assert.Equal(t, float32(-4), v[14])

	c.Zoom(10)
	assert.Equal(t, float32(1), c.Distance())
	c.Zoom(-100)
	assert.Equal(t, float32(20), c.Distance())
}

func TestCameraRotate(t *testing.T) {
	c := NewCamera()
	var r [16]float32
	common.Rotation(r[:], math.Pi/2, [3]float32{0, 1, 0})

	c.Rotate(r)
	c.Rotate(r)
	rot := c.Rotation()
	// two quarter turns about y flip x
	assert.InDelta(t, -1, rot[0], eps)
	assert.InDelta(t, -1, rot[10], eps)

	view := c.ViewMatrix()
	p := common.MulVec4(view[:], [4]float32{1, 0, 0, 1})
	assert.InDelta(t, -1, p[0], eps)
	assert.InDelta(t, -8, p[2], eps)

	c.Reset()
	assert.Equal(t, common.Identity4(), c.Rotation())
	assert.Equal(t, float32(DefaultDistance), c.Distance())
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()
	c.SetAspect(0)
	assert.Equal(t, before, c.ProjectionMatrix())

	c.SetAspect(2)
	after := c.ProjectionMatrix()
	assert.InDelta(t, before[0]/2, after[0], eps)
	assert.Equal(t, before[5], after[5])
}

func TestViewProjectionMatrix(t *testing.T) {
	c := NewCamera()
	vp := c.ViewProjectionMatrix()
	require.True(t, common.Invert4(make([]float32, 16), vp[:]))

	// the orbit centre lands in the middle of the screen inside the depth range
	clip := common.MulVec4(vp[:], [4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0, clip[0]/clip[3], eps)
	assert.InDelta(t, 0, clip[1]/clip[3], eps)
	z := clip[2] / clip[3]
	assert.True(t, z > 0 && z < 1)
}
