package generator

import (
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
	"github.com/Faultbox/terranarrative/pkg/noise"
)

// MidpointParams configures diamond-square generation.
type MidpointParams struct {
	Roughness           float32 `yaml:"roughness"`            // > 0; noise scales by 2^-Roughness per level
	InitialDisplacement float32 `yaml:"initial_displacement"` // > 0; corner and first level noise bound
}

// DefaultMidpointParams returns the reference midpoint configuration.
func DefaultMidpointParams() MidpointParams {
	return MidpointParams{
		Roughness:           0.5,
		InitialDisplacement: 1,
	}
}

// Validate checks the parameter ranges.
func (p MidpointParams) Validate() error {
	if !isFinite(float64(p.Roughness)) || p.Roughness <= 0 {
		return invalid("midpoint roughness %g must be > 0", p.Roughness)
	}
	if !isFinite(float64(p.InitialDisplacement)) || p.InitialDisplacement <= 0 {
		return invalid("midpoint initial displacement %g must be > 0", p.InitialDisplacement)
	}
	return nil
}

// diamondSquareSide returns the smallest 2^n+1 side covering a
// width x height grid.
func diamondSquareSide(width, height int) int {
	extent := max(width, height) - 1
	side := 1
	for side < extent {
		side *= 2
	}
	return side + 1
}

// GenerateMidpoint runs diamond-square on a square 2^n+1 scratch grid that
// covers width x height, crops it, and rescales the result to [-1, 1].
// Noise is derived from the seed and the cell position, so the parallel
// steps are deterministic.
func GenerateMidpoint(width, height int, p MidpointParams, seed uint32) (*heightfield.HeightField, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	side := diamondSquareSide(width, height)
	grid := make([]float32, side*side)
	diamondSquare(grid, side, p, seed)

	hf, err := heightfield.New(width, height)
	if err != nil {
		return nil, err
	}
	data := hf.Data()
	for z := range height {
		copy(data[z*width:(z+1)*width], grid[z*side:z*side+width])
	}

	hf.Normalize(-1, 1)
	return hf, nil
}

// diamondSquare fills a side x side grid in place.
func diamondSquare(grid []float32, side int, p MidpointParams, seed uint32) {
	cur := p.InitialDisplacement
	reduce := float32(math.Pow(2, -float64(p.Roughness)))
	last := side - 1

	seedCorners(grid, side, cur, seed)

	level := 1
	for rect := last; rect >= 2; rect /= 2 {
		diamondStep(grid, side, rect, cur, seed, level)
		squareStep(grid, side, rect, cur, seed, level)
		cur *= reduce
		level++
	}
}

// seedCorners sets the four corners to values in [-d0, d0].
func seedCorners(grid []float32, side int, d0 float32, seed uint32) {
	last := side - 1
	for _, c := range [4][2]int{{0, 0}, {last, 0}, {0, last}, {last, last}} {
		grid[c[1]*side+c[0]] = noise.Signed(seed, 0, c[0], c[1]) * d0
	}
}

// diamondStep sets the centre of every rect x rect block to the mean of its
// corners plus noise in [-cur, cur]. Blocks are independent; rows of blocks
// run in parallel and the call returns only when all are done.
func diamondStep(grid []float32, side, rect int, cur float32, seed uint32, level int) {
	half := rect / 2
	blocks := (side - 1) / rect

	parallel.For(blocks, func(by, _ int) {
		z := by * rect
		for x := 0; x+rect < side; x += rect {
			tl := grid[z*side+x]
			tr := grid[z*side+x+rect]
			bl := grid[(z+rect)*side+x]
			br := grid[(z+rect)*side+x+rect]

			cx, cz := x+half, z+half
			avg := (tl + tr + bl + br) / 4
			grid[cz*side+cx] = avg + noise.Signed(seed, level, cx, cz)*cur
		}
	})
}

// squareStep sets every edge midpoint to the mean of its four axial
// neighbours plus noise. Neighbours that fall outside the grid wrap to the
// opposite edge, and midpoints on the first row and column are mirrored to
// the last so the result tiles. Midpoints only read block corners and
// centres, never other midpoints, so rows run in parallel.
func squareStep(grid []float32, side, rect int, cur float32, seed uint32, level int) {
	half := rect / 2
	last := side - 1
	rows := last / half
	wrap := func(v int) int {
		return (v + last) % last
	}

	parallel.For(rows, func(row, _ int) {
		z := row * half
		for x := (z + half) % rect; x < last; x += rect {
			left := grid[z*side+wrap(x-half)]
			right := grid[z*side+x+half]
			up := grid[wrap(z-half)*side+x]
			down := grid[(z+half)*side+x]

			v := (left+right+up+down)/4 + noise.Signed(seed, -level, x, z)*cur
			grid[z*side+x] = v
			if x == 0 {
				grid[z*side+last] = v
			}
			if z == 0 {
				grid[last*side+x] = v
			}
		}
	})
}
