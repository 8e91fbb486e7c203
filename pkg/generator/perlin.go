package generator

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
	"github.com/Faultbox/terranarrative/pkg/noise"
)

// PerlinParams configures fractal noise generation.
type PerlinParams struct {
	Frequency   float64    `yaml:"frequency"`   // base frequency in cycles per cell, > 0
	Octaves     int        `yaml:"octaves"`     // >= 1
	Persistence float64    `yaml:"persistence"` // amplitude decay per octave, in (0, 1)
	Noise       noise.Kind `yaml:"noise"`

	// Refinements, all disabled at their zero value.
	WarpStrength      float64 `yaml:"warp_strength"` // domain warp offset in cells
	Ridged            bool    `yaml:"ridged"`        // ridged multifractal on the low octaves
	Plateau           bool    `yaml:"plateau"`       // flatten peaks and lowlands
	Worley            bool    `yaml:"worley"`        // cellular noise blended into the high octaves
	Turbulence        bool    `yaml:"turbulence"`    // feed the running sum back into later octaves
	ErosionIterations int     `yaml:"erosion_iterations"`
}

// DefaultPerlinParams returns the reference perlin configuration.
func DefaultPerlinParams() PerlinParams {
	return PerlinParams{
		Frequency:   0.02,
		Octaves:     6,
		Persistence: 0.5,
		Noise:       noise.KindPerlin,
	}
}

// Validate checks the parameter ranges.
func (p PerlinParams) Validate() error {
	if !isFinite(p.Frequency) || p.Frequency <= 0 {
		return invalid("perlin frequency %g must be > 0", p.Frequency)
	}
	if p.Octaves < 1 {
		return invalid("perlin octaves %d must be >= 1", p.Octaves)
	}
	if !isFinite(p.Persistence) || p.Persistence <= 0 || p.Persistence >= 1 {
		return invalid("perlin persistence %g must be in (0, 1)", p.Persistence)
	}
	if !isFinite(p.WarpStrength) || p.WarpStrength < 0 {
		return invalid("perlin warp strength %g must be >= 0", p.WarpStrength)
	}
	if p.ErosionIterations < 0 {
		return invalid("perlin erosion iterations %d must be >= 0", p.ErosionIterations)
	}
	return nil
}

const (
	warpFrequency = 0.01
	warpOffset    = 100.0

	plateauAmount = 0.3

	worleyScale      = 0.5
	worleySeedSalt   = 0x776f726c
	turbulenceWeight = 0.1
)

// perlinErosion matches the talus-limited pass used for noise terrain.
var perlinErosion = ThermalErosion{Talus: 0.05, Rate: 0.5}

// GeneratePerlin fills a width x height grid with fractal noise: octave i
// samples the field at frequency Frequency*2^i with amplitude
// Persistence^i, and the sum is divided by the total amplitude. A single
// octave yields the raw field at the base frequency.
func GeneratePerlin(width, height int, p PerlinParams, seed uint32) (*heightfield.HeightField, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	field, err := noise.New(p.Noise, seed)
	if err != nil {
		return nil, invalid("%w", err)
	}

	hf, err := heightfield.New(width, height)
	if err != nil {
		return nil, err
	}
	data := hf.Data()

	parallel.For(height, func(z, _ int) {
		for x := range width {
			data[z*width+x] = perlinSample(field, p, seed, float64(x), float64(z))
		}
	})

	if p.ErosionIterations > 0 {
		e := perlinErosion
		e.Iterations = p.ErosionIterations
		e.Apply(hf)
	}

	hf.Clamp(-1, 1)
	return hf, nil
}

// perlinSample evaluates all octaves for one cell.
func perlinSample(field noise.Field, p PerlinParams, seed uint32, x, z float64) float32 {
	var warpX, warpZ float64
	if p.WarpStrength > 0 {
		warpX = field.Sample(x*warpFrequency, z*warpFrequency) * p.WarpStrength
		warpZ = field.Sample(x*warpFrequency+warpOffset, z*warpFrequency+warpOffset) * p.WarpStrength
	}

	var sum, total float64
	amplitude := 1.0
	frequency := p.Frequency
	for i := range p.Octaves {
		wx, wz := x, z
		if p.WarpStrength > 0 {
			scale := float64(i+1) * 0.1
			wx += warpX * scale
			wz += warpZ * scale
		}

		n := field.Sample(wx*frequency, wz*frequency)
		if p.Ridged && i < p.Octaves/2 {
			n = 1 - math.Abs(n)
			n *= n
		}
		if p.Worley && i >= p.Octaves/2 {
			d := worleyDistance(seed^worleySeedSalt, i, wx*frequency, wz*frequency)
			n = n*(1-worleyScale) + d*worleyScale
		}
		if p.Turbulence && i > 0 {
			n += sum * turbulenceWeight * float64(i)
		}

		sum += n * amplitude
		total += amplitude
		amplitude *= p.Persistence
		frequency *= 2
	}

	h := float32(sum / total)
	if p.Plateau {
		h = plateau(h)
	}
	return h
}

// worleyDistance returns the distance from (u, v) to the nearest feature
// point in the surrounding 3x3 cells, capped at 1. Each unit cell holds one
// feature point placed by hashing the cell and octave.
func worleyDistance(seed uint32, octave int, u, v float64) float64 {
	cu, cv := math.Floor(u), math.Floor(v)
	nearest := 1.0
	for oz := -1; oz <= 1; oz++ {
		for ox := -1; ox <= 1; ox++ {
			gx, gz := int(cu)+ox, int(cv)+oz
			h := noise.Hash3(seed, int32(octave), int32(gx), int32(gz))
			px := float64(gx) + float64(noise.Unit(h))
			pz := float64(gz) + float64(noise.Unit(noise.Hash32(h)))
			nearest = min(nearest, math.Hypot(u-px, v-pz))
		}
	}
	return nearest
}

// plateau pulls high ground toward a shelf and pushes lowlands down.
func plateau(h float32) float32 {
	switch {
	case h > 0.7:
		t := (h - 0.7) / 0.3
		return lerp(h, 0.8, plateauAmount*t)
	case h < -0.3:
		t := (-h - 0.3) / 0.7
		return lerp(h, -0.4, plateauAmount*t)
	default:
		return h
	}
}
