package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
	"github.com/Faultbox/terranarrative/pkg/noise"
)

// FaultMode selects how fault lines are oriented.
type FaultMode int

// Fault modes.
const (
	FaultGeneric       FaultMode = iota // uniformly random orientation
	FaultMountainRange                  // biased toward a preferred direction
)

// String returns the config name of the mode.
func (m FaultMode) String() string {
	switch m {
	case FaultGeneric:
		return "generic"
	case FaultMountainRange:
		return "mountain_range"
	default:
		return fmt.Sprintf("FaultMode(%d)", int(m))
	}
}

// ParseFaultMode converts a config name into a FaultMode. The empty string
// selects FaultGeneric.
func ParseFaultMode(s string) (FaultMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return FaultGeneric, nil
	case "mountain_range", "mountain", "mountains":
		return FaultMountainRange, nil
	default:
		return 0, invalid("fault mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m FaultMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FaultMode) UnmarshalText(text []byte) error {
	parsed, err := ParseFaultMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FaultParams configures fault formation.
type FaultParams struct {
	Iterations int       `yaml:"iterations"` // number of faults, >= 0
	MinDelta   float32   `yaml:"min_delta"`  // displacement of the last fault
	MaxDelta   float32   `yaml:"max_delta"`  // displacement of the first fault
	Mode       FaultMode `yaml:"mode"`

	// Refinements, all disabled at their zero value.
	Perturb           bool       `yaml:"perturb"` // bend fault lines and vary the falloff band with noise
	Noise             noise.Kind `yaml:"noise"`   // field used by Perturb and Detail
	Detail            float32    `yaml:"detail"`  // intensity of elevation-weighted detail noise
	ErosionIterations int        `yaml:"erosion_iterations"`
	Remap             bool       `yaml:"remap"` // flatten lowlands, steepen highlands
}

// DefaultFaultParams returns the reference fault configuration.
func DefaultFaultParams() FaultParams {
	return FaultParams{
		Iterations: 200,
		MinDelta:   0,
		MaxDelta:   1,
		Mode:       FaultGeneric,
		Noise:      noise.KindPerlin,
	}
}

// Validate checks the parameter ranges.
func (p FaultParams) Validate() error {
	if p.Iterations < 0 {
		return invalid("fault iterations %d must be >= 0", p.Iterations)
	}
	if !isFinite(float64(p.MinDelta)) || !isFinite(float64(p.MaxDelta)) {
		return invalid("fault deltas must be finite")
	}
	if p.MinDelta < 0 || p.MaxDelta < p.MinDelta {
		return invalid("fault deltas must satisfy 0 <= min (%g) <= max (%g)", p.MinDelta, p.MaxDelta)
	}
	if p.Mode != FaultGeneric && p.Mode != FaultMountainRange {
		return invalid("fault mode %d", int(p.Mode))
	}
	if !isFinite(float64(p.Detail)) || p.Detail < 0 {
		return invalid("fault detail %g must be >= 0", p.Detail)
	}
	if p.ErosionIterations < 0 {
		return invalid("fault erosion iterations %d must be >= 0", p.ErosionIterations)
	}
	return nil
}

// Displacement returns the height offset of fault i out of n. It decays
// exponentially from MaxDelta toward MinDelta.
func (p FaultParams) Displacement(i, n int) float32 {
	if n <= 0 {
		return p.MaxDelta
	}
	factor := float32(math.Exp(-4 * float64(i) / float64(n)))
	return p.MinDelta + (p.MaxDelta-p.MinDelta)*factor
}

const (
	faultBandFraction = 0.1
	mountainBias      = 0.7
	mountainAngle     = math.Pi / 4

	perturbFrequency     = 0.01
	perturbAmplitude     = 10.0
	perturbBandFrequency = 0.005
	perturbBandVariation = 0.3

	detailFrequency   = 0.01
	detailOctaves     = 3
	detailPersistence = 0.5

	// Salts keep the auxiliary fields and the line RNG decorrelated from
	// each other for the same user seed.
	faultStreamSalt = 0x6661756c
	detailSeedSalt  = 0x2a2a2a2a
)

// faultErosion matches the rate-limited pass applied after faulting.
var faultErosion = ThermalErosion{Talus: 0, Rate: 0.1, MaxTransfer: 0.05}

// faultLine is a line a*x + b*z + c = 0 with its normal length.
type faultLine struct {
	a, b, c, norm float64
}

// signedDistance returns the distance of (x, z) from the line, positive on
// one side.
func (l faultLine) signedDistance(x, z float64) float64 {
	return (l.a*x + l.b*z + l.c) / l.norm
}

// GenerateFault builds terrain by repeatedly raising one side of a random
// line and lowering the other. Iterations run in sequence, each one fanned
// out over rows. The result is rescaled to [-1, 1]; a flat result (for
// example zero iterations) stays all zero.
func GenerateFault(width, height int, p FaultParams, seed uint32) (*heightfield.HeightField, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var field noise.Field
	if p.Perturb {
		f, err := noise.New(p.Noise, seed)
		if err != nil {
			return nil, invalid("%w", err)
		}
		field = f
	}

	hf, err := heightfield.New(width, height)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(seed), faultStreamSalt))
	band := float64(min(width, height)) * faultBandFraction

	for i := range p.Iterations {
		p1, p2 := faultPoints(rng, width, height, p.Mode)
		line := lineThrough(p1, p2)
		if line.norm == 0 {
			continue
		}
		applyFault(hf, line, p.Displacement(i, p.Iterations), band, field, i)
	}

	hf.Normalize(-1, 1)

	if p.Detail > 0 {
		df, err := noise.New(p.Noise, seed^detailSeedSalt)
		if err != nil {
			return nil, invalid("%w", err)
		}
		addDetail(hf, df, p.Detail)
	}

	if p.ErosionIterations > 0 {
		e := faultErosion
		e.Iterations = p.ErosionIterations
		e.Apply(hf)
	}

	if p.Remap {
		remap(hf)
	}
	hf.Normalize(-1, 1)

	return hf, nil
}

// faultPoints picks two points on the circle inscribed in the grid. The
// second point lies roughly opposite the first.
func faultPoints(rng *rand.Rand, width, height int, mode FaultMode) (mgl32.Vec2, mgl32.Vec2) {
	center := mgl32.Vec2{float32(width) * 0.5, float32(height) * 0.5}
	radius := float32(min(width, height)) * 0.5

	var angle1 float64
	if mode == FaultMountainRange && rng.Float64() < mountainBias {
		angle1 = mountainAngle + (rng.Float64()-0.5)*math.Pi*0.3
	} else {
		angle1 = rng.Float64() * 2 * math.Pi
	}
	angle2 := angle1 + math.Pi + (rng.Float64()-0.5)*math.Pi*0.5

	onCircle := func(angle float64) mgl32.Vec2 {
		dir := mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))}
		return center.Add(dir.Mul(radius))
	}
	return onCircle(angle1), onCircle(angle2)
}

func lineThrough(p1, p2 mgl32.Vec2) faultLine {
	a := float64(p2.Y() - p1.Y())
	b := -float64(p2.X() - p1.X())
	c := float64(p2.X())*float64(p1.Y()) - float64(p1.X())*float64(p2.Y())
	return faultLine{a: a, b: b, c: c, norm: math.Hypot(a, b)}
}

// applyFault displaces every cell by +/- disp. Inside the band around the
// line the offset is weighted by 0.5 + 0.5*cos(pi * |d| / band). Cells on
// the line itself (d == 0) take the positive side.
func applyFault(hf *heightfield.HeightField, line faultLine, disp float32, band float64, field noise.Field, iter int) {
	width, height := hf.Width(), hf.Height()
	data := hf.Data()
	offset := float64(iter) * 7.31

	parallel.For(height, func(z, _ int) {
		fz := float64(z)
		for x := range width {
			fx := float64(x)
			d := line.signedDistance(fx, fz)
			localBand := band
			if field != nil {
				d += field.Sample(fx*perturbFrequency+offset, fz*perturbFrequency+offset) * perturbAmplitude
				localBand *= 1 + perturbBandVariation*field.Sample(fx*perturbBandFrequency+offset, fz*perturbBandFrequency+offset)
			}

			falloff := float32(1)
			if ad := math.Abs(d); ad < localBand {
				falloff = float32(0.5 + 0.5*math.Cos(ad/localBand*math.Pi))
			}

			if d >= 0 {
				data[z*width+x] += disp * falloff
			} else {
				data[z*width+x] -= disp * falloff
			}
		}
	})
}

// addDetail layers octave noise on top of the faults, stronger on high
// ground. hf is expected in [-1, 1].
func addDetail(hf *heightfield.HeightField, field noise.Field, intensity float32) {
	width := hf.Width()
	data := hf.Data()

	parallel.For(hf.Height(), func(z, _ int) {
		for x := range width {
			i := z*width + x
			detail := float32(noise.Octave(field, float64(x)*detailFrequency, float64(z)*detailFrequency, detailOctaves, detailPersistence))
			heightFactor := 0.5 + 0.5*data[i]
			data[i] += detail * intensity * heightFactor
		}
	})
}

// remap flattens the lower 40% of the range and steepens the top 30%.
// The output may exceed [-1, 1]; callers renormalize.
func remap(hf *heightfield.HeightField) {
	lo, hi := hf.MinMax()
	span := hi - lo
	if span < heightfield.Epsilon {
		return
	}

	data := hf.Data()
	for i, v := range data {
		n := (v - lo) / span
		switch {
		case n < 0.4:
			n *= 0.5
		case n > 0.7:
			n = 0.7 + (n-0.7)*1.5
		}
		data[i] = n*2 - 1
	}
}
