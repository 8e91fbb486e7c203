// Package generator synthesizes height fields with perlin noise, fault
// formation and midpoint displacement.
//
// Every variant is a pure function of dimensions, parameters and seed:
// identical inputs produce bit-identical output. Variants are dispatched
// through a function table keyed by Variant.
package generator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
)

// Generator errors.
var (
	ErrInvalidParameter = errors.New("invalid generator parameter")
	ErrUnknownVariant   = errors.New("unknown generator variant")
)

// Variant identifies a generation algorithm.
type Variant int

// Generation variants.
const (
	VariantPerlin Variant = iota
	VariantFault
	VariantMidpoint

	variantCount
)

// String returns the config name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantPerlin:
		return "perlin"
	case VariantFault:
		return "fault"
	case VariantMidpoint:
		return "midpoint"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Valid reports whether v names a known variant.
func (v Variant) Valid() bool {
	return v >= 0 && v < variantCount
}

// ParseVariant converts a config or CLI tag into a Variant.
func ParseVariant(tag string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "perlin", "perlin_noise":
		return VariantPerlin, nil
	case "fault", "fault_formation":
		return VariantFault, nil
	case "midpoint", "midpoint_displacement", "diamond_square":
		return VariantMidpoint, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, tag)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Variants returns all known variants in dispatch order.
func Variants() []Variant {
	out := make([]Variant, 0, variantCount)
	for v := range variantCount {
		out = append(out, v)
	}
	return out
}

// Params holds the configuration of every variant. Only the section that
// matches the dispatched variant is read.
type Params struct {
	Perlin   PerlinParams   `yaml:"perlin"`
	Fault    FaultParams    `yaml:"fault"`
	Midpoint MidpointParams `yaml:"midpoint"`
}

// DefaultParams returns the parameters used by the reference terrain.
func DefaultParams() Params {
	return Params{
		Perlin:   DefaultPerlinParams(),
		Fault:    DefaultFaultParams(),
		Midpoint: DefaultMidpointParams(),
	}
}

// Func generates a height field for one variant.
type Func func(width, height int, p Params, seed uint32) (*heightfield.HeightField, error)

var table = map[Variant]Func{
	VariantPerlin: func(width, height int, p Params, seed uint32) (*heightfield.HeightField, error) {
		return GeneratePerlin(width, height, p.Perlin, seed)
	},
	VariantFault: func(width, height int, p Params, seed uint32) (*heightfield.HeightField, error) {
		return GenerateFault(width, height, p.Fault, seed)
	},
	VariantMidpoint: func(width, height int, p Params, seed uint32) (*heightfield.HeightField, error) {
		return GenerateMidpoint(width, height, p.Midpoint, seed)
	},
}

// Generate runs variant v on a width x height grid.
func Generate(v Variant, width, height int, p Params, seed uint32) (*heightfield.HeightField, error) {
	fn, ok := table[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, v)
	}
	return fn(width, height, p, seed)
}

// checkDimensions validates the output grid size.
func checkDimensions(width, height int) error {
	if width < 2 || height < 2 {
		return fmt.Errorf("%w: dimensions %dx%d (minimum 2x2)", ErrInvalidParameter, width, height)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
