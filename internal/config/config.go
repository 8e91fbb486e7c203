// Package config handles terragen configuration loading and management.
package config

import (
	"go.uber.org/zap"

	"github.com/Faultbox/terranarrative/pkg/generator"
	"github.com/Faultbox/terranarrative/pkg/mesh"
	"github.com/Faultbox/terranarrative/pkg/terrain"
)

// Config holds all terragen settings.
type Config struct {
	Terrain   TerrainConfig            `yaml:"terrain"`
	Perlin    generator.PerlinParams   `yaml:"perlin"`
	Fault     generator.FaultParams    `yaml:"fault"`
	Midpoint  generator.MidpointParams `yaml:"midpoint"`
	Composite CompositeConfig          `yaml:"composite"`
	Source    SourceConfig             `yaml:"source"`
	Logging   LoggingConfig            `yaml:"logging"`
}

// TerrainConfig holds grid and mesh settings.
type TerrainConfig struct {
	Width      int               `yaml:"width"`
	Height     int               `yaml:"height"`
	YScale     float32           `yaml:"y_scale"`
	YShift     float32           `yaml:"y_shift"`
	Resolution int               `yaml:"resolution"`
	Seed       uint32            `yaml:"seed"`
	Variant    generator.Variant `yaml:"variant"`
	Layout     mesh.Layout       `yaml:"layout"`
	Normals    bool              `yaml:"normals"`
}

// CompositeConfig blends every variant instead of running one.
type CompositeConfig struct {
	Enabled bool                `yaml:"enabled"`
	Mode    generator.BlendMode `yaml:"mode"`
	Weights []float32           `yaml:"weights"` // weighted mode, one per variant
}

// SourceConfig points at an external heightmap that replaces generation.
type SourceConfig struct {
	Heightmap string `yaml:"heightmap"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values. The terrain
// section mirrors terrain.DefaultOptions.
func Default() *Config {
	params := generator.DefaultParams()
	opts := terrain.DefaultOptions()
	return &Config{
		Terrain: TerrainConfig{
			Width:      opts.Width,
			Height:     opts.Height,
			YScale:     opts.YScale,
			YShift:     opts.YShift,
			Resolution: opts.Resolution,
			Seed:       opts.Seed,
			Variant:    generator.VariantPerlin,
			Layout:     opts.Layout,
			Normals:    opts.Normals,
		},
		Perlin:   params.Perlin,
		Fault:    params.Fault,
		Midpoint: params.Midpoint,
		Composite: CompositeConfig{
			Mode:    generator.BlendMax,
			Weights: append([]float32(nil), generator.DefaultBlendWeights...),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Params returns the generator parameters of every variant.
func (c *Config) Params() generator.Params {
	return generator.Params{
		Perlin:   c.Perlin,
		Fault:    c.Fault,
		Midpoint: c.Midpoint,
	}
}

// SessionOptions converts the terrain section into session options.
func (c *Config) SessionOptions(log *zap.Logger) terrain.Options {
	return terrain.Options{
		Width:      c.Terrain.Width,
		Height:     c.Terrain.Height,
		YScale:     c.Terrain.YScale,
		YShift:     c.Terrain.YShift,
		Resolution: c.Terrain.Resolution,
		Seed:       c.Terrain.Seed,
		Layout:     c.Terrain.Layout,
		Normals:    c.Terrain.Normals,
		Logger:     log,
	}
}
