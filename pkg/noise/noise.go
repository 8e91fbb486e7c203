// Package noise provides seeded, stateless 2D scalar fields used by the
// terrain generators.
package noise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// DefaultSeed is used when no seed is configured, so the default terrain is
// reproducible.
const DefaultSeed uint32 = 12345

// ErrUnknownKind is returned for an unrecognised noise kind.
var ErrUnknownKind = errors.New("unknown noise kind")

// Field is a deterministic 2D scalar field with values in roughly [-1, 1].
// Implementations hold no mutable state after construction and are safe
// for concurrent use.
type Field interface {
	Sample(x, z float64) float64
}

// Kind selects a Field implementation.
type Kind int

// Noise kinds.
const (
	KindPerlin Kind = iota
	KindSimplex
)

// String returns the config name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPerlin:
		return "perlin"
	case KindSimplex:
		return "simplex"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a config name into a Kind. The empty string selects
// KindPerlin.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "perlin":
		return KindPerlin, nil
	case "simplex", "opensimplex":
		return KindSimplex, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// New returns a field of the given kind.
func New(kind Kind, seed uint32) (Field, error) {
	switch kind {
	case KindPerlin:
		return NewPerlin(seed), nil
	case KindSimplex:
		return NewSimplex(seed), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// Perlin is single-octave gradient noise.
type Perlin struct {
	p *perlin.Perlin
}

// NewPerlin returns gradient noise seeded with seed.
func NewPerlin(seed uint32) *Perlin {
	// n=1: one octave, the generators layer their own
	return &Perlin{p: perlin.NewPerlin(2, 2, 1, int64(seed))}
}

// Sample implements Field.
func (n *Perlin) Sample(x, z float64) float64 {
	return n.p.Noise2D(x, z)
}

// Simplex is OpenSimplex noise.
type Simplex struct {
	s opensimplex.Noise
}

// NewSimplex returns OpenSimplex noise seeded with seed.
func NewSimplex(seed uint32) *Simplex {
	return &Simplex{s: opensimplex.New(int64(seed))}
}

// Sample implements Field.
func (n *Simplex) Sample(x, z float64) float64 {
	return n.s.Eval2(x, z)
}

// Octave sums octaves of f starting at frequency 1, doubling the frequency
// and multiplying the amplitude by persistence per octave. The sum is
// divided by the total amplitude. Fewer than one octave yields 0.
func Octave(f Field, x, z float64, octaves int, persistence float64) float64 {
	var total, maxValue float64
	frequency, amplitude := 1.0, 1.0
	for range octaves {
		total += f.Sample(x*frequency, z*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}
