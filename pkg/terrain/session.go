// Package terrain orchestrates height field generation and mesh building
// for a renderer. A Session owns the current height field and the buffers
// derived from it.
package terrain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terranarrative/pkg/generator"
	"github.com/Faultbox/terranarrative/pkg/heightfield"
	"github.com/Faultbox/terranarrative/pkg/heightsource"
	"github.com/Faultbox/terranarrative/pkg/mesh"
	"github.com/Faultbox/terranarrative/pkg/noise"
)

// ErrInvalidOptions is returned when session options are out of range.
var ErrInvalidOptions = errors.New("invalid terrain options")

// State is the lifecycle state of a Session.
type State int

// Session states.
const (
	StateUninitialized State = iota
	StateGenerated
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateGenerated:
		return "generated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session.
type Options struct {
	Width      int     // grid columns
	Height     int     // grid rows
	YScale     float32 // vertex height multiplier
	YShift     float32 // subtracted after scaling
	Resolution int     // strip resolution, >= 1
	Seed       uint32
	Layout     mesh.Layout
	Normals    bool // compute vertex normals even when Layout does not carry them

	Logger *zap.Logger // nil disables logging
}

// DefaultOptions returns a 256x256 session with the reference vertical
// scale (64/256) and shift (16).
func DefaultOptions() Options {
	return Options{
		Width:      256,
		Height:     256,
		YScale:     64.0 / 256.0,
		YShift:     16,
		Resolution: 1,
		Seed:       noise.DefaultSeed,
		Layout:     mesh.LayoutPositionUV,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Width < 2 || o.Height < 2 {
		return fmt.Errorf("%w: grid %dx%d must be at least 2x2", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.Resolution < 1 {
		return fmt.Errorf("%w: resolution %d must be >= 1", ErrInvalidOptions, o.Resolution)
	}
	if !finite(o.YScale) || !finite(o.YShift) {
		return fmt.Errorf("%w: y scale %g and shift %g must be finite", ErrInvalidOptions, o.YScale, o.YShift)
	}
	switch o.Layout {
	case mesh.LayoutPositionUV, mesh.LayoutPosition, mesh.LayoutPositionNormalUV:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOptions, o.Layout)
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Session generates terrain and holds the buffers the renderer draws.
// Buffers returned by accessors are owned by the session and must be
// treated as read-only; they are replaced, never mutated, by the next
// generation. A Session is not safe for concurrent use.
type Session struct {
	opts Options
	log  *zap.Logger

	state   State
	variant generator.Variant
	source  string
	params  generator.Params

	field     *heightfield.HeightField
	mesh      *mesh.Mesh
	buffer    []float32
	heightMin float32
	heightMax float32
}

// NewSession creates an uninitialized session.
func NewSession(opts Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		opts:   opts,
		log:    log.Named("terrain"),
		params: generator.DefaultParams(),
	}, nil
}

// GenerateTerrain runs variant v with params and rebuilds the mesh. On
// error the previous terrain, if any, is left untouched.
func (s *Session) GenerateTerrain(v generator.Variant, params generator.Params) error {
	start := time.Now()

	hf, err := generator.Generate(v, s.opts.Width, s.opts.Height, params, s.opts.Seed)
	if err != nil {
		s.log.Warn("terrain generation failed",
			zap.Stringer("variant", v),
			zap.Error(err))
		return err
	}
	return s.commit(hf, v, v.String(), params, start)
}

// GenerateTag is GenerateTerrain with the variant given by name.
func (s *Session) GenerateTag(tag string, params generator.Params) error {
	v, err := generator.ParseVariant(tag)
	if err != nil {
		s.log.Warn("terrain generation failed", zap.String("variant", tag), zap.Error(err))
		return err
	}
	return s.GenerateTerrain(v, params)
}

// GenerateComposite runs every variant and blends the results. Weighted
// mode uses generator.DefaultBlendWeights when weights is nil.
func (s *Session) GenerateComposite(mode generator.BlendMode, weights []float32, params generator.Params) error {
	start := time.Now()
	if mode == generator.BlendWeighted && weights == nil {
		weights = generator.DefaultBlendWeights
	}

	variants := generator.Variants()
	fields := make([]*heightfield.HeightField, 0, len(variants))
	for _, v := range variants {
		hf, err := generator.Generate(v, s.opts.Width, s.opts.Height, params, s.opts.Seed)
		if err != nil {
			s.log.Warn("composite generation failed",
				zap.Stringer("variant", v),
				zap.Error(err))
			return err
		}
		fields = append(fields, hf)
	}

	hf, err := generator.Blend(fields, mode, weights)
	if err != nil {
		s.log.Warn("composite blend failed", zap.Stringer("mode", mode), zap.Error(err))
		return err
	}
	return s.commit(hf, s.variant, "composite:"+mode.String(), params, start)
}

// LoadHeightmap replaces generation with an 8-bit grayscale heightmap from
// disk. The heightmap defines the grid size.
func (s *Session) LoadHeightmap(path string) error {
	start := time.Now()

	hf, err := heightsource.LoadFile(path)
	if err != nil {
		s.log.Warn("heightmap load failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return s.commit(hf, s.variant, "heightmap:"+path, s.params, start)
}

// UseHeightField builds the mesh from an existing field. The session keeps
// a copy, so later changes to hf are not observed.
func (s *Session) UseHeightField(hf *heightfield.HeightField) error {
	if hf == nil {
		return fmt.Errorf("%w: nil height field", mesh.ErrEmptyMesh)
	}
	return s.commit(hf.Clone(), s.variant, "field", s.params, time.Now())
}

// commit builds every derived buffer and only then swaps them in.
func (s *Session) commit(hf *heightfield.HeightField, v generator.Variant, source string, params generator.Params, start time.Time) error {
	lo, hi := hf.MinMax()

	m, err := mesh.Build(hf, s.opts.YScale, s.opts.YShift, s.opts.Resolution)
	if err != nil {
		s.log.Warn("mesh build failed", zap.String("source", source), zap.Error(err))
		return err
	}
	if s.opts.Normals || s.opts.Layout == mesh.LayoutPositionNormalUV {
		if err := mesh.ComputeNormals(m.Vertices, hf.Width(), hf.Height()); err != nil {
			return err
		}
	}
	buffer := mesh.Flatten(m.Vertices, s.opts.Layout)

	s.field = hf
	s.mesh = m
	s.buffer = buffer
	s.heightMin = lo
	s.heightMax = hi
	s.variant = v
	s.source = source
	s.params = params
	s.state = StateGenerated

	s.log.Info("terrain generated",
		zap.String("source", source),
		zap.Int("width", hf.Width()),
		zap.Int("height", hf.Height()),
		zap.Uint32("seed", s.opts.Seed),
		zap.Float32("heightMin", lo),
		zap.Float32("heightMax", hi),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)),
		zap.Int("strips", m.NumStrips),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
