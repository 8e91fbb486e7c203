// Package heightfield provides a dense 2D grid of elevation samples.
package heightfield

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
)

// Height field errors.
var (
	ErrOutOfRange  = errors.New("height field: coordinates out of range")
	ErrInvalidSize = errors.New("height field: invalid dimensions")
)

// Epsilon is the smallest value range Normalize will rescale.
const Epsilon = float32(1.1920929e-07)

// HeightField is a row-major grid of float32 elevations.
// The sample at (x, z) is stored at index z*Width + x.
// The zero value is an empty field.
type HeightField struct {
	width  int
	height int
	data   []float32
}

// New returns a zeroed field of the given dimensions.
// Both dimensions must be at least 2.
func New(width, height int) (*HeightField, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &HeightField{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}, nil
}

// FromGray builds a field from 8-bit samples, mapping each byte b to b/255.
func FromGray(width, height int, pix []byte) (*HeightField, error) {
	hf, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) < width*height {
		return nil, fmt.Errorf("%w: need %d samples, got %d", ErrInvalidSize, width*height, len(pix))
	}
	for i := range hf.data {
		hf.data[i] = float32(pix[i]) / 255.0
	}
	return hf, nil
}

// Width returns the number of columns (x extent).
func (h *HeightField) Width() int { return h.width }

// Height returns the number of rows (z extent).
func (h *HeightField) Height() int { return h.height }

// Len returns the number of samples.
func (h *HeightField) Len() int { return len(h.data) }

// Data returns the backing row-major slice. Callers must not resize it.
func (h *HeightField) Data() []float32 { return h.data }

// InBounds reports whether (x, z) addresses a sample.
func (h *HeightField) InBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < h.width && z < h.height
}

// Index returns the flat index of (x, z) without bounds checking.
func (h *HeightField) Index(x, z int) int {
	return z*h.width + x
}

// At returns the sample at (x, z).
func (h *HeightField) At(x, z int) (float32, error) {
	if !h.InBounds(x, z) {
		return 0, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfRange, x, z, h.width, h.height)
	}
	return h.data[z*h.width+x], nil
}

// Set stores v at (x, z).
func (h *HeightField) Set(x, z int, v float32) error {
	if !h.InBounds(x, z) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfRange, x, z, h.width, h.height)
	}
	h.data[z*h.width+x] = v
	return nil
}

// Fill sets every sample to v.
func (h *HeightField) Fill(v float32) {
	for i := range h.data {
		h.data[i] = v
	}
}

// Clone returns a deep copy.
func (h *HeightField) Clone() *HeightField {
	data := make([]float32, len(h.data))
	copy(data, h.data)
	return &HeightField{width: h.width, height: h.height, data: data}
}

// Min returns the lowest sample, or 0 for an empty field.
func (h *HeightField) Min() float32 {
	lo, _ := h.MinMax()
	return lo
}

// Max returns the highest sample, or 0 for an empty field.
func (h *HeightField) Max() float32 {
	_, hi := h.MinMax()
	return hi
}

// MinMax returns the lowest and highest samples in a single scan.
func (h *HeightField) MinMax() (min, max float32) {
	if len(h.data) == 0 {
		return 0, 0
	}
	min, max = h.data[0], h.data[0]
	for _, v := range h.data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize rescales all samples linearly from [Min, Max] to [lo, hi].
// A field whose range is below Epsilon is left untouched.
func (h *HeightField) Normalize(lo, hi float32) {
	curMin, curMax := h.MinMax()
	span := curMax - curMin
	if float32(math.Abs(float64(span))) < Epsilon {
		return
	}
	scale := hi - lo
	for i, v := range h.data {
		h.data[i] = (v-curMin)/span*scale + lo
	}
}

// Clamp limits every sample to [lo, hi].
func (h *HeightField) Clamp(lo, hi float32) {
	for i, v := range h.data {
		if v < lo {
			h.data[i] = lo
		} else if v > hi {
			h.data[i] = hi
		}
	}
}

// Format writes the grid as text, one row per line, using the given
// number of decimal places.
func (h *HeightField) Format(w io.Writer, precision int) error {
	bw := bufio.NewWriter(w)
	for z := range h.height {
		for x := range h.width {
			if _, err := fmt.Fprintf(bw, "%.*f ", precision, h.data[z*h.width+x]); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Interpolate returns the bilinearly interpolated height at fractional
// grid coordinates. Coordinates are clamped to the grid.
func (h *HeightField) Interpolate(fx, fz float32) float32 {
	fx = clampf(fx, 0, float32(h.width-1))
	fz = clampf(fz, 0, float32(h.height-1))

	x0 := min(int(fx), h.width-2)
	z0 := min(int(fz), h.height-2)
	tx := fx - float32(x0)
	tz := fz - float32(z0)

	i := z0*h.width + x0
	// Near edge (lower z), then far edge (higher z)
	near := h.data[i]*(1-tx) + h.data[i+1]*tx
	far := h.data[i+h.width]*(1-tx) + h.data[i+h.width+1]*tx
	return near*(1-tz) + far*tz
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
