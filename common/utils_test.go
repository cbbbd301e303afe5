package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   float32
	}{
		{name: "first non-zero", values: []float32{0, 2, 3}, want: 2},
		{name: "all zero", values: []float32{0, 0}, want: 0},
		{name: "empty", values: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coalesce(tt.values...))
		})
	}

	assert.Equal(t, "x", Coalesce("", "x"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(float32(5), 0, 1))
	assert.Equal(t, float32(0), Clamp(float32(-5), 0, 1))
	assert.Equal(t, 3, Clamp(3, 0, 10))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug")
	assert.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestSetLoggerNil(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, Logger())
}
