package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFramebuffer(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float64
		winW, winH   int
		fbW, fbH     int
		wantX, wantY float32
	}{
		{"same size", 100, 50, 800, 600, 800, 600, 100, 50},
		{"retina", 100, 50, 800, 600, 1600, 1200, 200, 100},
		{"zero window", 10, 20, 0, 0, 1600, 1200, 10, 20},
		{"minimised framebuffer", 10, 20, 800, 600, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := toFramebuffer(tt.x, tt.y, tt.winW, tt.winH, tt.fbW, tt.fbH)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestModifier_Has(t *testing.T) {
	m := ModShift | ModControl
	assert.True(t, m.Has(ModShift))
	assert.True(t, m.Has(ModShift|ModControl))
	assert.False(t, m.Has(ModAlt))
	assert.False(t, Modifier(0).Has(ModSuper))
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{width: 1, height: 1}
	for _, opt := range []WindowBuilderOption{
		WithTitle("bunny.ply"),
		WithSize(640, 0),
		WithMinWidth(100),
		WithMinHeight(80),
		WithMaxWidth(2000),
		WithMaxHeight(1500),
	} {
		opt(w)
	}
	assert.Equal(t, "bunny.ply", w.title)
	assert.Equal(t, 640, w.width)
	assert.Equal(t, 1, w.height)
	assert.Equal(t, 100, w.minWidth)
	assert.Equal(t, 80, w.minHeight)
	assert.Equal(t, 2000, w.maxWidth)
	assert.Equal(t, 1500, w.maxHeight)
}
