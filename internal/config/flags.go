package config

import (
	"flag"
	"fmt"
	"math"

	"github.com/Faultbox/terranarrative/pkg/generator"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagVariant   = flag.String("variant", "", "Generator variant (perlin, fault, midpoint)")
	flagComposite = flag.String("composite", "", "Blend all variants with mode (max, sum, weighted)")
	flagSeed      = flag.Int64("seed", -1, "Generation seed")
	flagWidth     = flag.Int("width", 0, "Grid width")
	flagHeight    = flag.Int("height", 0, "Grid height")
	flagHeightmap = flag.String("heightmap", "", "Load terrain from a grayscale heightmap")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagVariant != "" {
		v, err := generator.ParseVariant(*flagVariant)
		if err != nil {
			return err
		}
		cfg.Terrain.Variant = v
		cfg.Composite.Enabled = false
	}
	if *flagComposite != "" {
		mode, err := generator.ParseBlendMode(*flagComposite)
		if err != nil {
			return err
		}
		cfg.Composite.Enabled = true
		cfg.Composite.Mode = mode
	}
	if *flagSeed > math.MaxUint32 {
		return fmt.Errorf("seed %d out of range [0, %d]", *flagSeed, uint32(math.MaxUint32))
	}
	if *flagSeed >= 0 {
		cfg.Terrain.Seed = uint32(*flagSeed)
	}
	if *flagWidth > 0 {
		cfg.Terrain.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Terrain.Height = *flagHeight
	}
	if *flagHeightmap != "" {
		cfg.Source.Heightmap = *flagHeightmap
	}
	return nil
}
