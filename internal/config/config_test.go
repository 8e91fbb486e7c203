package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/terranarrative/pkg/generator"
	"github.com/Faultbox/terranarrative/pkg/mesh"
	"github.com/Faultbox/terranarrative/pkg/noise"
	"github.com/Faultbox/terranarrative/pkg/terrain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.Width != 256 || cfg.Terrain.Height != 256 {
		t.Errorf("expected 256x256, got %dx%d", cfg.Terrain.Width, cfg.Terrain.Height)
	}
	if cfg.Terrain.YScale != 0.25 {
		t.Errorf("expected y scale 0.25, got %f", cfg.Terrain.YScale)
	}
	if cfg.Terrain.YShift != 16 {
		t.Errorf("expected y shift 16, got %f", cfg.Terrain.YShift)
	}
	if cfg.Terrain.Resolution != 1 {
		t.Errorf("expected resolution 1, got %d", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.Seed != noise.DefaultSeed {
		t.Errorf("expected seed %d, got %d", noise.DefaultSeed, cfg.Terrain.Seed)
	}
	if cfg.Terrain.Variant != generator.VariantPerlin {
		t.Errorf("expected perlin variant, got %s", cfg.Terrain.Variant)
	}

	// Test generator defaults
	if cfg.Params() != generator.DefaultParams() {
		t.Errorf("expected default generator params, got %+v", cfg.Params())
	}
	if cfg.Composite.Enabled {
		t.Error("expected composite to be disabled by default")
	}
	if len(cfg.Composite.Weights) != 3 {
		t.Errorf("expected 3 blend weights, got %v", cfg.Composite.Weights)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestDefaultWeightsAreCopied(t *testing.T) {
	cfg := Default()
	cfg.Composite.Weights[0] = 9

	if generator.DefaultBlendWeights[0] == 9 {
		t.Error("editing config weights changed the package default")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  width: 129
  height: 65
  y_scale: 2
  y_shift: 0.5
  resolution: 4
  seed: 42
  variant: fault_formation
  layout: position_normal_uv
  normals: true

perlin:
  frequency: 0.05
  octaves: 4
  noise: simplex

fault:
  iterations: 50
  mode: mountain_range
  remap: true

midpoint:
  roughness: 0.8

composite:
  enabled: true
  mode: weighted
  weights: [0.2, 0.3, 0.5]

source:
  heightmap: "maps/iceland.png"

logging:
  level: "debug"
  log_file: "terragen.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.Width != 129 || cfg.Terrain.Height != 65 {
		t.Errorf("expected 129x65, got %dx%d", cfg.Terrain.Width, cfg.Terrain.Height)
	}
	if cfg.Terrain.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Terrain.Seed)
	}
	if cfg.Terrain.Variant != generator.VariantFault {
		t.Errorf("expected fault variant, got %s", cfg.Terrain.Variant)
	}
	if cfg.Terrain.Layout != mesh.LayoutPositionNormalUV {
		t.Errorf("expected normal layout, got %s", cfg.Terrain.Layout)
	}

	if cfg.Perlin.Octaves != 4 || cfg.Perlin.Noise != noise.KindSimplex {
		t.Errorf("unexpected perlin section %+v", cfg.Perlin)
	}
	// Keys missing from the file keep their defaults
	if cfg.Perlin.Persistence != 0.5 {
		t.Errorf("expected default persistence 0.5, got %f", cfg.Perlin.Persistence)
	}
	if cfg.Fault.Iterations != 50 || cfg.Fault.Mode != generator.FaultMountainRange || !cfg.Fault.Remap {
		t.Errorf("unexpected fault section %+v", cfg.Fault)
	}
	if cfg.Fault.MaxDelta != 1 {
		t.Errorf("expected default max delta 1, got %f", cfg.Fault.MaxDelta)
	}
	if cfg.Midpoint.Roughness != 0.8 || cfg.Midpoint.InitialDisplacement != 1 {
		t.Errorf("unexpected midpoint section %+v", cfg.Midpoint)
	}

	if !cfg.Composite.Enabled || cfg.Composite.Mode != generator.BlendWeighted {
		t.Errorf("unexpected composite section %+v", cfg.Composite)
	}
	if len(cfg.Composite.Weights) != 3 || cfg.Composite.Weights[2] != 0.5 {
		t.Errorf("unexpected weights %v", cfg.Composite.Weights)
	}
	if cfg.Source.Heightmap != "maps/iceland.png" {
		t.Errorf("unexpected heightmap %q", cfg.Source.Heightmap)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "terragen.log" {
		t.Errorf("unexpected logging section %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "terrain:\n  width: not a number\n  invalid syntax here\n"},
		{"unknown variant", "terrain:\n  variant: voronoi\n"},
		{"unknown layout", "terrain:\n  layout: rgba\n"},
		{"unknown blend mode", "composite:\n  mode: multiply\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Variant = generator.VariantMidpoint
	cfg.Terrain.Layout = mesh.LayoutPosition
	cfg.Fault.Mode = generator.FaultMountainRange
	cfg.Composite.Mode = generator.BlendSum

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Terrain.Variant != generator.VariantMidpoint {
		t.Errorf("expected midpoint variant, got %s", loaded.Terrain.Variant)
	}
	if loaded.Terrain.Layout != mesh.LayoutPosition {
		t.Errorf("expected position layout, got %s", loaded.Terrain.Layout)
	}
	if loaded.Fault.Mode != generator.FaultMountainRange {
		t.Errorf("expected mountain range mode, got %s", loaded.Fault.Mode)
	}
	if loaded.Composite.Mode != generator.BlendSum {
		t.Errorf("expected sum blend, got %s", loaded.Composite.Mode)
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Width = 33
	cfg.Terrain.Resolution = 2
	cfg.Terrain.Normals = true

	opts := cfg.SessionOptions(nil)
	if opts.Width != 33 || opts.Height != 256 || opts.Resolution != 2 || !opts.Normals {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.YScale != cfg.Terrain.YScale || opts.Seed != cfg.Terrain.Seed {
		t.Errorf("scale or seed not carried over: %+v", opts)
	}

	if _, err := terrain.NewSession(opts); err != nil {
		t.Errorf("default config should produce valid options: %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "terragen.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  width: 64\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find terragen.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "variant flag",
			setup: func() {
				*flagVariant = "diamond_square"
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Variant != generator.VariantMidpoint {
					t.Errorf("expected midpoint variant, got %s", cfg.Terrain.Variant)
				}
			},
			teardown: func() {
				*flagVariant = ""
			},
		},
		{
			name: "composite flag",
			setup: func() {
				*flagComposite = "weighted"
			},
			verify: func(cfg *Config) {
				if !cfg.Composite.Enabled || cfg.Composite.Mode != generator.BlendWeighted {
					t.Errorf("expected weighted composite, got %+v", cfg.Composite)
				}
			},
			teardown: func() {
				*flagComposite = ""
			},
		},
		{
			name: "seed flag",
			setup: func() {
				*flagSeed = 0
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Seed != 0 {
					t.Errorf("expected seed 0, got %d", cfg.Terrain.Seed)
				}
			},
			teardown: func() {
				*flagSeed = -1
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 512
				*flagHeight = 128
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.Width != 512 {
					t.Errorf("expected width 512, got %d", cfg.Terrain.Width)
				}
				if cfg.Terrain.Height != 128 {
					t.Errorf("expected height 128, got %d", cfg.Terrain.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "heightmap flag",
			setup: func() {
				*flagHeightmap = "island.tga"
			},
			verify: func(cfg *Config) {
				if cfg.Source.Heightmap != "island.tga" {
					t.Errorf("expected heightmap island.tga, got %s", cfg.Source.Heightmap)
				}
			},
			teardown: func() {
				*flagHeightmap = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags failed: %v", err)
			}

			tt.verify(cfg)
		})
	}
}

func TestApplyFlagsInvalidVariant(t *testing.T) {
	*flagVariant = "voronoi"
	defer func() { *flagVariant = "" }()

	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestApplyFlagsSeedRange(t *testing.T) {
	tests := []struct {
		seed    int64
		want    uint32
		wantErr bool
	}{
		{-1, noise.DefaultSeed, false},
		{0, 0, false},
		{math.MaxUint32, math.MaxUint32, false},
		{math.MaxUint32 + 1, 0, true},
		{math.MaxInt64, 0, true},
	}

	for _, tt := range tests {
		*flagSeed = tt.seed
		cfg := Default()
		err := applyFlags(cfg)
		*flagSeed = -1

		if tt.wantErr {
			if err == nil {
				t.Errorf("seed %d: expected out of range error", tt.seed)
			}
			if cfg.Terrain.Seed != noise.DefaultSeed {
				t.Errorf("seed %d: config seed changed to %d", tt.seed, cfg.Terrain.Seed)
			}
			continue
		}
		if err != nil {
			t.Errorf("seed %d: unexpected error %v", tt.seed, err)
		}
		if cfg.Terrain.Seed != tt.want {
			t.Errorf("seed %d: expected %d, got %d", tt.seed, tt.want, cfg.Terrain.Seed)
		}
	}
}

func TestDefaultMatchesSessionDefaults(t *testing.T) {
	opts := terrain.DefaultOptions()
	got := Default().SessionOptions(nil)
	got.Logger = opts.Logger

	if got != opts {
		t.Errorf("config defaults drifted from session defaults:\n got %+v\nwant %+v", got, opts)
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  width: 300
  height: 200
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 400
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (400), not file (300)
	if cfg.Terrain.Width != 400 {
		t.Errorf("expected width 400 from flag, got %d", cfg.Terrain.Width)
	}

	// Height should be from file (200) since no flag override
	if cfg.Terrain.Height != 200 {
		t.Errorf("expected height 200 from file, got %d", cfg.Terrain.Height)
	}
}
