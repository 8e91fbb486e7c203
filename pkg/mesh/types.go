// Package mesh converts height fields into triangle-strip vertex and index
// buffers for an external renderer.
package mesh

import "fmt"

// Vertex represents a terrain mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32 // zero unless ComputeNormals was applied
	TexCoord [2]float32
}

// Strip describes one triangle-strip draw call into the index buffer.
type Strip struct {
	Offset int // first index
	Count  int // number of indices
}

// Mesh holds the complete terrain mesh data ready for GPU upload.
type Mesh struct {
	Vertices        []Vertex
	Indices         []uint32
	NumStrips       int
	NumTrisPerStrip int
	Bounds          Bounds
}

// Strips returns the draw list for the mesh.
func (m *Mesh) Strips() []Strip {
	return Strips(m.NumStrips, m.NumTrisPerStrip)
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Layout selects the per-vertex attributes written by Flatten.
type Layout int

// Vertex buffer layouts.
const (
	LayoutPositionUV       Layout = iota // x, y, z, u, v
	LayoutPosition                       // x, y, z
	LayoutPositionNormalUV               // x, y, z, nx, ny, nz, u, v
)

// Stride returns the number of floats per vertex.
func (l Layout) Stride() int {
	switch l {
	case LayoutPosition:
		return 3
	case LayoutPositionNormalUV:
		return 8
	default:
		return 5
	}
}

// String returns the config name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutPositionUV:
		return "position_uv"
	case LayoutPosition:
		return "position"
	case LayoutPositionNormalUV:
		return "position_normal_uv"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout converts a config name into a Layout. The empty string
// selects LayoutPositionUV.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "position_uv":
		return LayoutPositionUV, nil
	case "position":
		return LayoutPosition, nil
	case "position_normal_uv":
		return LayoutPositionNormalUV, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
