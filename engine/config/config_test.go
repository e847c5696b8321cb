package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	if cfg.LogLevel != want.LogLevel {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, want.LogLevel)
	}
	if cfg.Renderer.ShadowMapSize != want.Renderer.ShadowMapSize ||
		cfg.Renderer.FramesInFlight != want.Renderer.FramesInFlight ||
		cfg.Renderer.ImageSlotCapacity != want.Renderer.ImageSlotCapacity {
		t.Errorf("renderer config = %+v, want defaults %+v", cfg.Renderer, want.Renderer)
	}
	if len(cfg.Renderer.CascadeSplits) != len(want.Renderer.CascadeSplits) {
		t.Errorf("cascade splits = %v, want %v", cfg.Renderer.CascadeSplits, want.Renderer.CascadeSplits)
	}
	if cfg.Assets != want.Assets {
		t.Errorf("assets config = %+v, want %+v", cfg.Assets, want.Assets)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vireo.toml")
	content := `
log_level = "info"

[renderer]
shadow_map_size = 1024
frames_in_flight = 2
cascade_splits = [0.3, 1.0]

[assets]
shader_dir = "build/shaders"
watch_shaders = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Renderer.ShadowMapSize != 1024 {
		t.Errorf("shadow map size = %d, want 1024", cfg.Renderer.ShadowMapSize)
	}
	if cfg.Renderer.FramesInFlight != 2 {
		t.Errorf("frames in flight = %d, want 2", cfg.Renderer.FramesInFlight)
	}
	if len(cfg.Renderer.CascadeSplits) != 2 || cfg.Renderer.CascadeSplits[1] != 1.0 {
		t.Errorf("cascade splits = %v, want [0.3 1.0]", cfg.Renderer.CascadeSplits)
	}
	if !cfg.Assets.WatchShaders || cfg.Assets.ShaderDir != "build/shaders" {
		t.Errorf("assets config not applied: %+v", cfg.Assets)
	}

	// Fields the file never mentions keep their defaults.
	if cfg.Renderer.ImageSlotCapacity != Default().Renderer.ImageSlotCapacity {
		t.Errorf("image slot capacity = %d, want default", cfg.Renderer.ImageSlotCapacity)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vireo.toml")
	content := `
[renderer]
cascade_splits = [0.5, 0.4, 1.0]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted non-ascending cascade splits")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"single cascade", func(c *Config) { c.Renderer.CascadeSplits = []float32{1.0} }, true},
		{"zero shadow map", func(c *Config) { c.Renderer.ShadowMapSize = 0 }, false},
		{"one frame in flight", func(c *Config) { c.Renderer.FramesInFlight = 1 }, false},
		{"four frames in flight", func(c *Config) { c.Renderer.FramesInFlight = 4 }, false},
		{"no image slots", func(c *Config) { c.Renderer.ImageSlotCapacity = 0 }, false},
		{"no cascades", func(c *Config) { c.Renderer.CascadeSplits = nil }, false},
		{"five cascades", func(c *Config) { c.Renderer.CascadeSplits = []float32{0.1, 0.2, 0.3, 0.4, 1.0} }, false},
		{"splits not ending at one", func(c *Config) { c.Renderer.CascadeSplits = []float32{0.2, 0.9} }, false},
		{"split above one", func(c *Config) { c.Renderer.CascadeSplits = []float32{0.5, 1.5} }, false},
		{"zero split", func(c *Config) { c.Renderer.CascadeSplits = []float32{0, 1.0} }, false},
		{"zero shadow bias", func(c *Config) { c.Renderer.ShadowBias = 0 }, false},
		{"negative shadow bias", func(c *Config) { c.Renderer.ShadowBias = -0.004 }, false},
	}
	for _, tc := range tests {
		cfg := Default()
		tc.mutate(cfg)
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: validation passed, want error", tc.name)
		}
	}
}
