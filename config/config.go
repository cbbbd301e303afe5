package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// maxConfigSize bounds the config file read into memory.
const maxConfigSize = 1024 * 1024

// Config is the viewer's file configuration. Zero fields fall back to Default.
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	Window      WindowConfig      `yaml:"window"`
	Camera      CameraConfig      `yaml:"camera"`
	Interaction InteractionConfig `yaml:"interaction"`
	Render      RenderConfig      `yaml:"render"`
	Model       ModelConfig       `yaml:"model"`
	Lighting    *LightingConfig   `yaml:"lighting"`
}

// WindowConfig sets the initial window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// CameraConfig sets the projection and the orbit distance.
type CameraConfig struct {
	FovDegrees  float32 `yaml:"fov"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Distance    float32 `yaml:"distance"`
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`
}

// InteractionConfig sets how strongly input moves the model.
type InteractionConfig struct {
	ScaleSpeed       float32 `yaml:"scale_speed"`
	RotationSpeed    float32 `yaml:"rotation_speed"`
	TranslationSpeed float32 `yaml:"translation_speed"`
}

// RenderConfig selects presentation settings.
type RenderConfig struct {
	PresentMode string  `yaml:"present_mode"`
	MSAA        int     `yaml:"msaa"`
	FrameLimit  float64 `yaml:"frame_limit"`
	Software    bool    `yaml:"software"`
}

// ModelConfig controls model import.
type ModelConfig struct {
	Shading   string `yaml:"shading"`
	Workers   int    `yaml:"workers"`
	ChunkSize int    `yaml:"chunk_size"`
}

// LightConfig is a point light. Colours are RGBA.
type LightConfig struct {
	Position [3]float32 `yaml:"position"`
	Ambient  [4]float32 `yaml:"ambient"`
	Diffuse  [4]float32 `yaml:"diffuse"`
	Specular [4]float32 `yaml:"specular"`
}

// MaterialConfig is a Phong material. Colours are RGBA.
type MaterialConfig struct {
	Ambient   [4]float32 `yaml:"ambient"`
	Diffuse   [4]float32 `yaml:"diffuse"`
	Specular  [4]float32 `yaml:"specular"`
	Shininess float32    `yaml:"shininess"`
}

// LightingConfig overrides the light and the two materials.
type LightingConfig struct {
	Light LightConfig    `yaml:"light"`
	Front MaterialConfig `yaml:"front_material"`
	Back  MaterialConfig `yaml:"back_material"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Config: the defaults every loaded file is merged onto
func Default() Config {
	l := viewer.DefaultLighting()
	return Config{
		LogLevel: "info",
		Window:   WindowConfig{Title: "oxy-viewer", Width: 1024, Height: 768},
		Camera: CameraConfig{
			FovDegrees:  camera.DefaultFovDegrees,
			Near:        camera.DefaultNear,
			Far:         camera.DefaultFar,
			Distance:    camera.DefaultDistance,
			MinDistance: camera.DefaultMinDistance,
			MaxDistance: camera.DefaultMaxDistance,
		},
		Interaction: InteractionConfig{
			ScaleSpeed:       viewer.DefaultScaleSpeed,
			RotationSpeed:    camera.DefaultRotationSpeed,
			TranslationSpeed: camera.DefaultTranslationSpeed,
		},
		Render: RenderConfig{
			PresentMode: renderer.PresentModeVSync.String(),
			MSAA:        int(renderer.MSAA4x),
		},
		Model: ModelConfig{
			Shading:   model.ShadingFlat.String(),
			ChunkSize: loader.DefaultChunkSize,
		},
		Lighting: &LightingConfig{
			Light: LightConfig{
				Position: l.Light.Position,
				Ambient:  l.Light.Ambient,
				Diffuse:  l.Light.Diffuse,
				Specular: l.Light.Specular,
			},
			Front: materialConfig(l.FrontMaterial),
			Back:  materialConfig(l.BackMaterial),
		},
	}
}

func materialConfig(m shadertypes.GPUMaterial) MaterialConfig {
	return MaterialConfig{Ambient: m.Ambient, Diffuse: m.Diffuse, Specular: m.Specular, Shininess: m.Shininess}
}

// Load reads a YAML config file, merges it onto Default and validates the result.
// An empty path returns the defaults.
//
// Parameters:
//   - path: the config file path, or "" for none
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, has unknown fields or fails validation
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(io.LimitReader(f, maxConfigSize))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r, merges it onto Default and validates the result.
//
// Parameters:
//   - r: the YAML document
//
// Returns:
//   - Config: the merged configuration
//   - error: error if decoding or validation fails
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills every zero field from Default.
func (c Config) withDefaults() Config {
	d := Default()
	out := Config{
		LogLevel: common.Coalesce(c.LogLevel, d.LogLevel),
		Window: WindowConfig{
			Title:  common.Coalesce(c.Window.Title, d.Window.Title),
			Width:  common.Coalesce(c.Window.Width, d.Window.Width),
			Height: common.Coalesce(c.Window.Height, d.Window.Height),
		},
		Camera: CameraConfig{
			FovDegrees:  common.Coalesce(c.Camera.FovDegrees, d.Camera.FovDegrees),
			Near:        common.Coalesce(c.Camera.Near, d.Camera.Near),
			Far:         common.Coalesce(c.Camera.Far, d.Camera.Far),
			Distance:    common.Coalesce(c.Camera.Distance, d.Camera.Distance),
			MinDistance: common.Coalesce(c.Camera.MinDistance, d.Camera.MinDistance),
			MaxDistance: common.Coalesce(c.Camera.MaxDistance, d.Camera.MaxDistance),
		},
		Interaction: InteractionConfig{
			ScaleSpeed:       common.Coalesce(c.Interaction.ScaleSpeed, d.Interaction.ScaleSpeed),
			RotationSpeed:    common.Coalesce(c.Interaction.RotationSpeed, d.Interaction.RotationSpeed),
			TranslationSpeed: common.Coalesce(c.Interaction.TranslationSpeed, d.Interaction.TranslationSpeed),
		},
		Render: RenderConfig{
			PresentMode: common.Coalesce(c.Render.PresentMode, d.Render.PresentMode),
			MSAA:        common.Coalesce(c.Render.MSAA, d.Render.MSAA),
			FrameLimit:  c.Render.FrameLimit,
			Software:    c.Render.Software,
		},
		Model: ModelConfig{
			Shading:   common.Coalesce(c.Model.Shading, d.Model.Shading),
			Workers:   c.Model.Workers,
			ChunkSize: common.Coalesce(c.Model.ChunkSize, d.Model.ChunkSize),
		},
		Lighting: d.Lighting,
	}

	if c.Lighting != nil {
		dl := d.Lighting
		out.Lighting = &LightingConfig{
			Light: LightConfig{
				Position: common.Coalesce(c.Lighting.Light.Position, dl.Light.Position),
				Ambient:  common.Coalesce(c.Lighting.Light.Ambient, dl.Light.Ambient),
				Diffuse:  common.Coalesce(c.Lighting.Light.Diffuse, dl.Light.Diffuse),
				Specular: common.Coalesce(c.Lighting.Light.Specular, dl.Light.Specular),
			},
			Front: mergeMaterial(c.Lighting.Front, dl.Front),
			Back:  mergeMaterial(c.Lighting.Back, dl.Back),
		}
	}
	return out
}

func mergeMaterial(m, d MaterialConfig) MaterialConfig {
	return MaterialConfig{
		Ambient:   common.Coalesce(m.Ambient, d.Ambient),
		Diffuse:   common.Coalesce(m.Diffuse, d.Diffuse),
		Specular:  common.Coalesce(m.Specular, d.Specular),
		Shininess: common.Coalesce(m.Shininess, d.Shininess),
	}
}

// Validate checks value ranges. All problems are reported together.
//
// Returns:
//   - error: nil, or the joined problems each wrapping ErrInvalidConfig
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
		}
	}

	_, err := zapcore.ParseLevel(c.LogLevel)
	check(err == nil, "log_level %q", c.LogLevel)

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)

	cam := c.Camera
	check(cam.FovDegrees > 0 && cam.FovDegrees < 180, "camera fov %v must be in (0, 180)", cam.FovDegrees)
	check(cam.Near > 0 && cam.Near < cam.Far, "camera near %v must be positive and below far %v", cam.Near, cam.Far)
	check(cam.MinDistance > 0 && cam.MinDistance <= cam.MaxDistance, "camera distance limits [%v, %v]", cam.MinDistance, cam.MaxDistance)
	check(cam.Distance >= cam.MinDistance && cam.Distance <= cam.MaxDistance, "camera distance %v outside [%v, %v]", cam.Distance, cam.MinDistance, cam.MaxDistance)

	in := c.Interaction
	check(in.ScaleSpeed > 0 && in.RotationSpeed > 0 && in.TranslationSpeed > 0, "interaction speeds must be positive")

	_, err = renderer.ParsePresentMode(c.Render.PresentMode)
	check(err == nil, "render present_mode %q", c.Render.PresentMode)
	check(renderer.MSAASampleCount(c.Render.MSAA).Valid(), "render msaa %d must be 1, 4, 8 or 16", c.Render.MSAA)
	check(c.Render.FrameLimit >= 0, "render frame_limit %v must not be negative", c.Render.FrameLimit)

	_, ok := model.ParseShading(c.Model.Shading)
	check(ok, "model shading %q", c.Model.Shading)
	check(c.Model.Workers >= 0, "model workers %d must not be negative", c.Model.Workers)
	check(c.Model.ChunkSize > 0, "model chunk_size %d must be positive", c.Model.ChunkSize)

	if c.Lighting != nil {
		check(c.Lighting.Front.Shininess > 0 && c.Lighting.Back.Shininess > 0, "material shininess must be positive")
	}
	return errors.Join(errs...)
}

// PresentMode returns the parsed present mode. Call on a validated Config.
func (c Config) PresentMode() renderer.PresentMode {
	mode, _ := renderer.ParsePresentMode(c.Render.PresentMode)
	return mode
}

// Shading returns the parsed shading mode. Call on a validated Config.
func (c Config) Shading() model.Shading {
	s, _ := model.ParseShading(c.Model.Shading)
	return s
}

// ViewerLighting converts the lighting section to the viewer's uniform values.
//
// Returns:
//   - viewer.Lighting: the light and materials, or the defaults if the section is absent
func (c Config) ViewerLighting() viewer.Lighting {
	if c.Lighting == nil {
		return viewer.DefaultLighting()
	}
	l := c.Lighting
	material := func(m MaterialConfig) shadertypes.GPUMaterial {
		return shadertypes.GPUMaterial{Ambient: m.Ambient, Diffuse: m.Diffuse, Specular: m.Specular, Shininess: m.Shininess}
	}
	return viewer.Lighting{
		Light: shadertypes.GPULightSource{
			Position: l.Light.Position,
			Ambient:  l.Light.Ambient,
			Diffuse:  l.Light.Diffuse,
			Specular: l.Light.Specular,
		},
		FrontMaterial: material(l.Front),
		BackMaterial:  material(l.Back),
	}
}

// CameraOptions returns the camera builder options for the camera section.
func (c Config) CameraOptions() []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithFov(common.RadiansFromDegrees(c.Camera.FovDegrees)),
		camera.WithNear(c.Camera.Near),
		camera.WithFar(c.Camera.Far),
		camera.WithDistanceLimits(c.Camera.MinDistance, c.Camera.MaxDistance),
		camera.WithDistance(c.Camera.Distance),
	}
}

// TrackballOptions returns the trackball builder options for the interaction section.
func (c Config) TrackballOptions() []camera.TrackballBuilderOption {
	return []camera.TrackballBuilderOption{
		camera.WithRotationSpeed(c.Interaction.RotationSpeed),
		camera.WithTranslationSpeed(c.Interaction.TranslationSpeed),
	}
}

// LoaderOptions returns the loader builder options for the model section.
func (c Config) LoaderOptions() []loader.LoaderBuilderOption {
	opts := []loader.LoaderBuilderOption{
		loader.WithShading(c.Shading()),
		loader.WithChunkSize(c.Model.ChunkSize),
	}
	if c.Model.Workers > 0 {
		opts = append(opts, loader.WithWorkers(c.Model.Workers))
	}
	return opts
}
