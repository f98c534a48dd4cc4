package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. VTRACE_WORLD_VIEW_DISTANCE.
const EnvPrefix = "VTRACE_"

var (
	// ErrUnsupportedFormat is returned by Load for files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the complete runtime configuration of the demo.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window" envPrefix:"WINDOW_"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer" envPrefix:"RENDERER_"`
	World    WorldConfig    `toml:"world" yaml:"world" envPrefix:"WORLD_"`
	Terrain  TerrainConfig  `toml:"terrain" yaml:"terrain" envPrefix:"TERRAIN_"`
	Profiler ProfilerConfig `toml:"profiler" yaml:"profiler" envPrefix:"PROFILER_"`
}

// WindowConfig describes the host window.
type WindowConfig struct {
	Title         string `toml:"title" yaml:"title" env:"TITLE"`
	Width         int    `toml:"width" yaml:"width" env:"WIDTH"`
	Height        int    `toml:"height" yaml:"height" env:"HEIGHT"`
	CaptureCursor bool   `toml:"capture_cursor" yaml:"capture_cursor" env:"CAPTURE_CURSOR"`
}

// RendererConfig describes the GPU surface and projection.
type RendererConfig struct {
	VSync            bool    `toml:"vsync" yaml:"vsync" env:"VSYNC"`
	MSAA             int     `toml:"msaa" yaml:"msaa" env:"MSAA"`
	SoftwareFallback bool    `toml:"software_fallback" yaml:"software_fallback" env:"SOFTWARE_FALLBACK"`
	FrameLimit       float64 `toml:"frame_limit" yaml:"frame_limit" env:"FRAME_LIMIT"`
	// Fov is the vertical field of view in degrees.
	Fov  float32 `toml:"fov" yaml:"fov" env:"FOV"`
	Near float32 `toml:"near" yaml:"near" env:"NEAR"`
	Far  float32 `toml:"far" yaml:"far" env:"FAR"`
}

// FovRadians returns Fov converted to radians.
func (c RendererConfig) FovRadians() float32 {
	return mgl32.DegToRad(c.Fov)
}

// WorldConfig describes paging and camera movement.
type WorldConfig struct {
	ViewDistance   int32   `toml:"view_distance" yaml:"view_distance" env:"VIEW_DISTANCE"`
	TickRate       float64 `toml:"tick_rate" yaml:"tick_rate" env:"TICK_RATE"`
	Workers        int     `toml:"workers" yaml:"workers" env:"WORKERS"`
	Speed          float32 `toml:"speed" yaml:"speed" env:"SPEED"`
	Sensitivity    float32 `toml:"sensitivity" yaml:"sensitivity" env:"SENSITIVITY"`
	DisableCulling bool    `toml:"disable_culling" yaml:"disable_culling" env:"DISABLE_CULLING"`
}

// TerrainConfig describes the planetoid generator.
type TerrainConfig struct {
	Seed        int64   `toml:"seed" yaml:"seed" env:"SEED"`
	Radius      int     `toml:"radius" yaml:"radius" env:"RADIUS"`
	ShellDepth  int     `toml:"shell_depth" yaml:"shell_depth" env:"SHELL_DEPTH"`
	Frequency   float64 `toml:"frequency" yaml:"frequency" env:"FREQUENCY"`
	Octaves     int     `toml:"octaves" yaml:"octaves" env:"OCTAVES"`
	Persistence float64 `toml:"persistence" yaml:"persistence" env:"PERSISTENCE"`
	Lacunarity  float64 `toml:"lacunarity" yaml:"lacunarity" env:"LACUNARITY"`
}

// ProfilerConfig toggles the periodic stats line.
type ProfilerConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled" env:"ENABLED"`
	// Interval is the seconds between reports.
	Interval float64 `toml:"interval" yaml:"interval" env:"INTERVAL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:         "vtrace",
			Width:         1000,
			Height:        1000,
			CaptureCursor: true,
		},
		Renderer: RendererConfig{
			VSync: true,
			MSAA:  1,
			Fov:   80,
			Near:  0.01,
			Far:   10000,
		},
		World: WorldConfig{
			ViewDistance: 4,
			TickRate:     60,
			Speed:        20,
			Sensitivity:  0.0025,
		},
		Terrain: TerrainConfig{
			Seed:        0,
			Radius:      100,
			ShellDepth:  4,
			Frequency:   0.1,
			Octaves:     6,
			Persistence: 0.5,
			Lacunarity:  2,
		},
		Profiler: ProfilerConfig{
			Enabled:  true,
			Interval: 1,
		},
	}
}

// Load builds a Config from the defaults, the file at path and the environment, in that order.
// An empty path skips the file. The format is chosen by extension: .toml, .yaml or .yml.
// Unknown keys in the file are rejected.
//
// Parameters:
//   - path: the config file, or "" for none
//
// Returns:
//   - Config: the validated configuration
//   - error: read, decode, environment or validation failure
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
			return fmt.Errorf("decode toml %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document leaves the defaults untouched
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Validate reports every out-of-range value, joined, each wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Renderer.MSAA == 1 || c.Renderer.MSAA == 4, "msaa %d (want 1 or 4)", c.Renderer.MSAA)
	check(c.Renderer.FrameLimit >= 0, "frame limit %g", c.Renderer.FrameLimit)
	check(c.Renderer.Fov > 0 && c.Renderer.Fov < 180, "fov %g", c.Renderer.Fov)
	check(c.Renderer.Near > 0 && c.Renderer.Near < c.Renderer.Far, "clip range [%g, %g]", c.Renderer.Near, c.Renderer.Far)
	check(c.World.ViewDistance >= 0, "view distance %d", c.World.ViewDistance)
	check(c.World.TickRate > 0, "tick rate %g", c.World.TickRate)
	check(c.World.Workers >= 0, "workers %d", c.World.Workers)
	check(c.World.Speed > 0, "speed %g", c.World.Speed)
	check(c.World.Sensitivity > 0, "sensitivity %g", c.World.Sensitivity)
	check(c.Terrain.Radius >= 0, "radius %d", c.Terrain.Radius)
	check(c.Terrain.ShellDepth >= 0, "shell depth %d", c.Terrain.ShellDepth)
	check(c.Terrain.Frequency > 0, "frequency %g", c.Terrain.Frequency)
	check(c.Terrain.Octaves >= 1, "octaves %d", c.Terrain.Octaves)
	check(c.Profiler.Interval > 0, "profiler interval %g", c.Profiler.Interval)

	return errors.Join(errs...)
}
