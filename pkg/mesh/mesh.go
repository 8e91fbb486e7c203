package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terranarrative/pkg/heightfield"
)

// Mesh errors.
var (
	ErrEmptyMesh         = errors.New("mesh: no vertex or index data")
	ErrInvalidResolution = errors.New("mesh: resolution must be >= 1")
	ErrUnknownLayout     = errors.New("mesh: unknown vertex layout")
)

// UVRepeat is how many times the texture repeats across the terrain.
const UVRepeat = 10

// BuildVertices emits one vertex per height sample. Rows (field z) form
// the outer loop and columns (field x) the inner loop, so vertex i matches
// sample i of the field. The mesh is centred on the origin in X/Z:
//
//	position = (-H/2 + z, height(x, z)*yScale - yShift, -W/2 + x)
//	uv       = (z/(H-1)*10, x/(W-1)*10)
func BuildVertices(hf *heightfield.HeightField, yScale, yShift float32) ([]Vertex, error) {
	if hf == nil || hf.Len() == 0 {
		return nil, ErrEmptyMesh
	}

	width, height := hf.Width(), hf.Height()
	data := hf.Data()
	halfW := float32(width) / 2
	halfH := float32(height) / 2
	uScale := uvScale(height)
	vScale := uvScale(width)

	vertices := make([]Vertex, 0, width*height)
	for z := range height {
		for x := range width {
			y := data[z*width+x]*yScale - yShift
			vertices = append(vertices, Vertex{
				Position: [3]float32{-halfH + float32(z), y, -halfW + float32(x)},
				TexCoord: [2]float32{float32(z) * uScale, float32(x) * vScale},
			})
		}
	}
	return vertices, nil
}

func uvScale(n int) float32 {
	if n < 2 {
		return 0
	}
	return UVRepeat / float32(n-1)
}

// BuildIndices emits a triangle strip per row pair: for row i and column
// j the indices j+width*i and j+width*(i+1). It also returns the strip
// draw parameters numStrips = (height-1)/resolution and
// numTrisPerStrip = (width/resolution)*2 - 2.
func BuildIndices(width, height, resolution int) (indices []uint32, numStrips, numTrisPerStrip int, err error) {
	if resolution < 1 {
		return nil, 0, 0, fmt.Errorf("%w: got %d", ErrInvalidResolution, resolution)
	}
	if width < 1 || height < 2 {
		return nil, 0, 0, fmt.Errorf("%w: grid %dx%d", ErrEmptyMesh, width, height)
	}

	indices = make([]uint32, 0, (height-1)*width*2)
	for i := range height - 1 {
		for j := range width {
			for k := range 2 {
				indices = append(indices, uint32(j+width*(i+k)))
			}
		}
	}

	numStrips = (height - 1) / resolution
	numTrisPerStrip = (width/resolution)*2 - 2
	return indices, numStrips, numTrisPerStrip, nil
}

// Build converts a height field into a complete mesh.
func Build(hf *heightfield.HeightField, yScale, yShift float32, resolution int) (*Mesh, error) {
	vertices, err := BuildVertices(hf, yScale, yShift)
	if err != nil {
		return nil, err
	}
	indices, numStrips, numTris, err := BuildIndices(hf.Width(), hf.Height(), resolution)
	if err != nil {
		return nil, err
	}

	return &Mesh{
		Vertices:        vertices,
		Indices:         indices,
		NumStrips:       numStrips,
		NumTrisPerStrip: numTris,
		Bounds:          ComputeBounds(vertices),
	}, nil
}

// Strips returns one draw call per strip. Each call consumes
// numTrisPerStrip+2 indices starting at strip*(numTrisPerStrip+2).
func Strips(numStrips, numTrisPerStrip int) []Strip {
	if numStrips <= 0 || numTrisPerStrip < 0 {
		return nil
	}
	count := numTrisPerStrip + 2
	strips := make([]Strip, numStrips)
	for s := range strips {
		strips[s] = Strip{Offset: s * count, Count: count}
	}
	return strips
}

// Flatten writes the vertices into an interleaved float buffer.
func Flatten(vertices []Vertex, layout Layout) []float32 {
	out := make([]float32, 0, len(vertices)*layout.Stride())
	for _, v := range vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
		switch layout {
		case LayoutPositionUV:
			out = append(out, v.TexCoord[0], v.TexCoord[1])
		case LayoutPositionNormalUV:
			out = append(out, v.Normal[0], v.Normal[1], v.Normal[2], v.TexCoord[0], v.TexCoord[1])
		}
	}
	return out
}

// ComputeBounds returns the bounding box of the vertex positions.
func ComputeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for i := 1; i < len(vertices); i++ {
		updateBounds(&b, vertices[i].Position)
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for axis := range 3 {
		if p[axis] < b.Min[axis] {
			b.Min[axis] = p[axis]
		}
		if p[axis] > b.Max[axis] {
			b.Max[axis] = p[axis]
		}
	}
}
