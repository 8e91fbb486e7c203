// terragen is a CLI for generating procedural terrain height fields and
// triangle-strip meshes.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image/png"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/terranarrative/internal/config"
	"github.com/Faultbox/terranarrative/internal/logger"
	"github.com/Faultbox/terranarrative/pkg/generator"
	"github.com/Faultbox/terranarrative/pkg/heightsource"
	"github.com/Faultbox/terranarrative/pkg/terrain"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Named("terragen")
	command := args[0]
	args = args[1:]
	log.Debug("running command", zap.String("command", command), zap.Strings("args", args))

	switch command {
	case "generate", "gen":
		err = cmdGenerate(cfg, args)
	case "load":
		err = cmdLoad(cfg, args)
	case "variants":
		cmdVariants()
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terragen - procedural terrain generator

Usage:
  terragen [flags] <command> [options]

Commands:
  generate [-print N] [-png file] [-vertices file]   Generate terrain and show statistics
  load <heightmap> [-print N] [-png file]            Build terrain from a grayscale heightmap
  variants                                           List generator variants
  config [-save]                                     Print (or save) the effective config

Flags:
  -config <file>     Config file (default ./terragen.yaml, then user config dir)
  -variant <name>    perlin, fault or midpoint
  -composite <mode>  Blend every variant: max, sum or weighted
  -seed <n>          Generation seed
  -width, -height    Grid size
  -heightmap <file>  Use a heightmap instead of generating
  -debug             Enable debug logging

Examples:
  terragen generate
  terragen -variant fault -seed 7 generate -png fault.png
  terragen -composite weighted -width 129 -height 129 generate -print 2
  terragen load iceland.png`)
}

type outputFlags struct {
	precision *int
	pngPath   *string
	vertPath  *string
}

func newOutputFlags(fs *flag.FlagSet) outputFlags {
	return outputFlags{
		precision: fs.Int("print", -1, "Print the height field with N decimals"),
		pngPath:   fs.String("png", "", "Write the height field as a grayscale PNG"),
		vertPath:  fs.String("vertices", "", "Write the vertex buffer as little-endian float32"),
	}
}

func cmdGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := newOutputFlags(fs)
	fs.Parse(args)

	session, err := terrain.NewSession(cfg.SessionOptions(logger.Log))
	if err != nil {
		return err
	}

	switch {
	case cfg.Source.Heightmap != "":
		err = session.LoadHeightmap(cfg.Source.Heightmap)
	case cfg.Composite.Enabled:
		err = session.GenerateComposite(cfg.Composite.Mode, cfg.Composite.Weights, cfg.Params())
	default:
		err = session.GenerateTerrain(cfg.Terrain.Variant, cfg.Params())
	}
	if err != nil {
		return err
	}

	return report(session, out)
}

func cmdLoad(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	out := newOutputFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terragen load <heightmap> [-print N] [-png file]")
		os.Exit(1)
	}
	if cfg.Source.Heightmap != "" && cfg.Source.Heightmap != fs.Arg(0) {
		logger.Warn("ignoring configured heightmap",
			zap.String("configured", cfg.Source.Heightmap),
			zap.String("path", fs.Arg(0)))
	}

	session, err := terrain.NewSession(cfg.SessionOptions(logger.Log))
	if err != nil {
		return err
	}
	if err := session.LoadHeightmap(fs.Arg(0)); err != nil {
		return err
	}
	return report(session, out)
}

func report(s *terrain.Session, out outputFlags) error {
	printStats(s)

	lo, hi := s.HeightField().MinMax()
	logger.Named("terragen").Debug("terrain stats",
		zap.String("source", s.Source()),
		zap.Int("width", s.Width()),
		zap.Int("height", s.Height()),
		zap.Float32("rawMin", lo),
		zap.Float32("rawMax", hi),
		zap.Int("floats", len(s.VertexBuffer())),
		zap.Int("indices", len(s.Indices())),
	)

	if *out.precision >= 0 {
		fmt.Println()
		if err := s.HeightField().Format(os.Stdout, *out.precision); err != nil {
			return err
		}
	}
	if *out.pngPath != "" {
		if err := writePNG(s, *out.pngPath); err != nil {
			return err
		}
		logger.Info("wrote heightmap image", zap.String("path", *out.pngPath))
		fmt.Printf("Wrote %s\n", *out.pngPath)
	}
	if *out.vertPath != "" {
		if err := writeVertices(s, *out.vertPath); err != nil {
			return err
		}
		logger.Info("wrote vertex buffer", zap.String("path", *out.vertPath))
		fmt.Printf("Wrote %s\n", *out.vertPath)
	}
	return nil
}

func printStats(s *terrain.Session) {
	lo, hi := s.ScaledHeightRange()
	b := s.Bounds()

	fmt.Printf("Source:    %s\n", s.Source())
	fmt.Printf("Grid:      %dx%d\n", s.Width(), s.Height())
	fmt.Printf("Seed:      %d\n", s.Seed())
	fmt.Printf("Heights:   %.4f .. %.4f (scaled %.3f .. %.3f)\n", s.HeightMin(), s.HeightMax(), lo, hi)
	fmt.Printf("Vertices:  %d (%s, %d floats)\n", len(s.Vertices()), s.Layout(), len(s.VertexBuffer()))
	fmt.Printf("Indices:   %d\n", len(s.Indices()))
	fmt.Printf("Strips:    %d x %d triangles\n", s.NumStrips(), s.NumTrisPerStrip())
	fmt.Printf("Bounds:    (%.2f, %.2f, %.2f) .. (%.2f, %.2f, %.2f)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

func writePNG(s *terrain.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, heightsource.ToGray(s.HeightField())); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func writeVertices(s *terrain.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, s.VertexBuffer()); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func cmdVariants() {
	aliases := map[generator.Variant]string{
		generator.VariantPerlin:   "perlin_noise",
		generator.VariantFault:    "fault_formation",
		generator.VariantMidpoint: "midpoint_displacement, diamond_square",
	}
	for _, v := range generator.Variants() {
		fmt.Printf("  %-10s %s\n", v, aliases[v])
	}
	modes := []generator.BlendMode{generator.BlendMax, generator.BlendSum, generator.BlendWeighted}
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	fmt.Printf("\nComposite modes: %s\n", strings.Join(names, ", "))
}

func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save to the user config directory")
	fs.Parse(args)

	if *save {
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Sugar.Debugf("config saved under %s", config.ConfigDir())
		fmt.Printf("Saved to %s\n", config.ConfigDir())
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
