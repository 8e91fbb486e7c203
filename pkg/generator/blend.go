package generator

import (
	"fmt"
	"strings"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
)

// BlendMode selects how several height fields are combined.
type BlendMode int

// Blend modes.
const (
	BlendMax      BlendMode = iota // per-cell maximum
	BlendSum                       // per-cell sum, rescaled to [-1, 1]
	BlendWeighted                  // per-cell weighted sum, rescaled to [-1, 1]
)

// DefaultBlendWeights weights perlin, fault and midpoint output in that
// order.
var DefaultBlendWeights = []float32{0.1, 0.1, 0.8}

// String returns the config name of the mode.
func (m BlendMode) String() string {
	switch m {
	case BlendMax:
		return "max"
	case BlendSum:
		return "sum"
	case BlendWeighted:
		return "weighted"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// ParseBlendMode converts a config name into a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max":
		return BlendMax, nil
	case "sum", "add":
		return BlendSum, nil
	case "weighted":
		return BlendWeighted, nil
	default:
		return 0, invalid("blend mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(text []byte) error {
	parsed, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Blend combines equally sized fields into a new field. Weighted mode
// needs one weight per field. The inputs are not modified.
func Blend(fields []*heightfield.HeightField, mode BlendMode, weights []float32) (*heightfield.HeightField, error) {
	if len(fields) == 0 {
		return nil, invalid("blend needs at least one field")
	}
	w, h := fields[0].Width(), fields[0].Height()
	for i, f := range fields {
		if f.Width() != w || f.Height() != h {
			return nil, invalid("blend field %d is %dx%d, expected %dx%d", i, f.Width(), f.Height(), w, h)
		}
	}
	if mode == BlendWeighted && len(weights) != len(fields) {
		return nil, invalid("blend has %d weights for %d fields", len(weights), len(fields))
	}

	out := fields[0].Clone()
	data := out.Data()

	switch mode {
	case BlendMax:
		for _, f := range fields[1:] {
			for i, v := range f.Data() {
				if v > data[i] {
					data[i] = v
				}
			}
		}
	case BlendSum:
		for _, f := range fields[1:] {
			for i, v := range f.Data() {
				data[i] += v
			}
		}
		out.Normalize(-1, 1)
	case BlendWeighted:
		for i := range data {
			data[i] *= weights[0]
		}
		for k, f := range fields[1:] {
			wk := weights[k+1]
			for i, v := range f.Data() {
				data[i] += wk * v
			}
		}
		out.Normalize(-1, 1)
	default:
		return nil, invalid("blend mode %d", int(mode))
	}

	return out, nil
}
