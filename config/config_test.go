package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, viewer.DefaultLighting(), cfg.ViewerLighting())
	assert.Equal(t, renderer.PresentModeVSync, cfg.PresentMode())
	assert.Equal(t, model.ShadingFlat, cfg.Shading())
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_MergesOntoDefaults(t *testing.T) {
	doc := `
log_level: debug
window:
  title: bunny
  width: 640
camera:
  fov: 45
  distance: 4
interaction:
  scale_speed: 0.25
render:
  present_mode: uncapped
  msaa: 1
  frame_limit: 120
model:
  shading: smooth
  workers: 2
lighting:
  light:
    position: [0, 0, 1]
  front_material:
    shininess: 20
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, WindowConfig{Title: "bunny", Width: 640, Height: d.Window.Height}, cfg.Window)
	assert.Equal(t, float32(45), cfg.Camera.FovDegrees)
	assert.Equal(t, float32(4), cfg.Camera.Distance)
	assert.Equal(t, d.Camera.Near, cfg.Camera.Near)
	assert.Equal(t, float32(0.25), cfg.Interaction.ScaleSpeed)
	assert.Equal(t, d.Interaction.RotationSpeed, cfg.Interaction.RotationSpeed)
	assert.Equal(t, renderer.PresentModeUncapped, cfg.PresentMode())
	assert.Equal(t, 1, cfg.Render.MSAA)
	assert.Equal(t, 120.0, cfg.Render.FrameLimit)
	assert.Equal(t, model.ShadingSmooth, cfg.Shading())
	assert.Equal(t, 2, cfg.Model.Workers)
	assert.Equal(t, d.Model.ChunkSize, cfg.Model.ChunkSize)

	l := cfg.ViewerLighting()
	def := viewer.DefaultLighting()
	assert.Equal(t, [3]float32{0, 0, 1}, l.Light.Position)
	assert.Equal(t, def.Light.Ambient, l.Light.Ambient)
	assert.Equal(t, float32(20), l.FrontMaterial.Shininess)
	assert.Equal(t, def.FrontMaterial.Diffuse, l.FrontMaterial.Diffuse)
	assert.Equal(t, def.BackMaterial, l.BackMaterial)

	assert.Len(t, cfg.LoaderOptions(), 3)
	assert.Len(t, cfg.CameraOptions(), 5)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("window:\n  depth: 3\n"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"log level", "log_level: loud\n"},
		{"negative width", "window:\n  width: -1\n"},
		{"fov", "camera:\n  fov: 180\n"},
		{"near beyond far", "camera:\n  near: 200\n"},
		{"distance outside limits", "camera:\n  distance: 500\n"},
		{"distance limits", "camera:\n  min_distance: 50\n  max_distance: 10\n  distance: 20\n"},
		{"present mode", "render:\n  present_mode: mailbox\n"},
		{"msaa", "render:\n  msaa: 2\n"},
		{"frame limit", "render:\n  frame_limit: -5\n"},
		{"shading", "model:\n  shading: gouraud\n"},
		{"workers", "model:\n  workers: -1\n"},
		{"speed", "interaction:\n  scale_speed: -1\n"},
		{"shininess", "lighting:\n  back_material:\n    shininess: -2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Render.MSAA = 3
	err := cfg.Validate()
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  height: 400\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Window.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
