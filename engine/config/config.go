package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/vireo3d/vireo/engine/core"
)

// Config is the engine configuration, loaded from a TOML file. Every field
// has a usable default so a missing file is not an error.
type Config struct {
	LogLevel core.LogLevel  `toml:"log_level"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
}

type RendererConfig struct {
	// Resolution of each cascade's square shadow map, in texels.
	ShadowMapSize uint32 `toml:"shadow_map_size"`
	// Cascade split boundaries as ascending fractions of the camera far depth.
	// The last entry must be 1.0 to cover the whole frustum.
	CascadeSplits []float32 `toml:"cascade_splits"`
	// Number of frames recorded ahead of GPU completion. 2 or 3.
	FramesInFlight int `toml:"frames_in_flight"`
	// Capacity of the image descriptor array.
	ImageSlotCapacity int     `toml:"image_slot_capacity"`
	Anisotropy        float32 `toml:"anisotropy"`
	ShadowBias        float32 `toml:"shadow_bias"`
}

type AssetsConfig struct {
	// Directory holding compiled SPIR-V shaders.
	ShaderDir string `toml:"shader_dir"`
	// Watch ShaderDir and reload pipelines when a shader binary changes.
	WatchShaders bool `toml:"watch_shaders"`
}

func Default() *Config {
	return &Config{
		LogLevel: core.LogLevelDebug,
		Renderer: RendererConfig{
			ShadowMapSize:     2048,
			CascadeSplits:     []float32{0.2, 0.45, 1.0},
			FramesInFlight:    3,
			ImageSlotCapacity: 100,
			Anisotropy:        4.0,
			ShadowBias:        0.004,
		},
		Assets: AssetsConfig{
			ShaderDir:    "assets/shaders",
			WatchShaders: false,
		},
	}
}

// Load reads the configuration at path, filling unset fields with defaults.
// A missing file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			core.LogInfo("no config file at '%s', using defaults", path)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	r := &c.Renderer
	if r.ShadowMapSize == 0 {
		return fmt.Errorf("renderer.shadow_map_size must be > 0")
	}
	if r.FramesInFlight < 2 || r.FramesInFlight > 3 {
		return fmt.Errorf("renderer.frames_in_flight must be 2 or 3, got %d", r.FramesInFlight)
	}
	if r.ImageSlotCapacity < 1 {
		return fmt.Errorf("renderer.image_slot_capacity must be >= 1, got %d", r.ImageSlotCapacity)
	}
	if len(r.CascadeSplits) == 0 || len(r.CascadeSplits) > 4 {
		return fmt.Errorf("renderer.cascade_splits must hold 1 to 4 entries, got %d", len(r.CascadeSplits))
	}
	prev := float32(0)
	for i, split := range r.CascadeSplits {
		if split <= prev || split > 1.0 {
			return fmt.Errorf("renderer.cascade_splits[%d] = %f: splits must ascend within (0, 1]", i, split)
		}
		prev = split
	}
	if r.CascadeSplits[len(r.CascadeSplits)-1] != 1.0 {
		return fmt.Errorf("renderer.cascade_splits must end at 1.0")
	}
	if r.ShadowBias <= 0 {
		return fmt.Errorf("renderer.shadow_bias must be > 0, got %f", r.ShadowBias)
	}
	return nil
}
