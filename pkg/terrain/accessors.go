package terrain

import (
	"github.com/Faultbox/terranarrative/pkg/generator"
	"github.com/Faultbox/terranarrative/pkg/heightfield"
	"github.com/Faultbox/terranarrative/pkg/mesh"
)

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Options returns the options the session was created with.
func (s *Session) Options() Options { return s.opts }

// YScale returns the vertex height multiplier.
func (s *Session) YScale() float32 { return s.opts.YScale }

// YShift returns the vertex height offset.
func (s *Session) YShift() float32 { return s.opts.YShift }

// Seed returns the generation seed.
func (s *Session) Seed() uint32 { return s.opts.Seed }

// Layout returns the vertex buffer layout.
func (s *Session) Layout() mesh.Layout { return s.opts.Layout }

// HeightMin returns the smallest raw sample, before YScale and YShift.
func (s *Session) HeightMin() float32 { return s.heightMin }

// HeightMax returns the largest raw sample, before YScale and YShift.
func (s *Session) HeightMax() float32 { return s.heightMax }

// ScaledHeightRange returns HeightMin and HeightMax in vertex space, which
// is what a shader blending by elevation needs.
func (s *Session) ScaledHeightRange() (lo, hi float32) {
	return s.heightMin*s.opts.YScale - s.opts.YShift, s.heightMax*s.opts.YScale - s.opts.YShift
}

// Variant returns the variant of the last successful generation. After
// LoadHeightmap or a composite it is the previously generated variant.
func (s *Session) Variant() generator.Variant { return s.variant }

// Source describes where the current terrain came from, such as "fault",
// "composite:max" or "heightmap:<path>".
func (s *Session) Source() string { return s.source }

// Params returns the generator parameters of the last generation.
func (s *Session) Params() generator.Params { return s.params }

// HeightField returns the current raw height field, or nil before the
// first generation.
func (s *Session) HeightField() *heightfield.HeightField { return s.field }

// Width returns the current grid width.
func (s *Session) Width() int {
	if s.field != nil {
		return s.field.Width()
	}
	return s.opts.Width
}

// Height returns the current grid height.
func (s *Session) Height() int {
	if s.field != nil {
		return s.field.Height()
	}
	return s.opts.Height
}

// Mesh returns the current mesh, or nil before the first generation.
func (s *Session) Mesh() *mesh.Mesh { return s.mesh }

// Vertices returns the structured vertices.
func (s *Session) Vertices() []mesh.Vertex {
	if s.mesh == nil {
		return nil
	}
	return s.mesh.Vertices
}

// VertexBuffer returns the interleaved float buffer in the session layout.
func (s *Session) VertexBuffer() []float32 { return s.buffer }

// Indices returns the triangle-strip index buffer.
func (s *Session) Indices() []uint32 {
	if s.mesh == nil {
		return nil
	}
	return s.mesh.Indices
}

// NumStrips returns the number of strip draw calls.
func (s *Session) NumStrips() int {
	if s.mesh == nil {
		return 0
	}
	return s.mesh.NumStrips
}

// NumTrisPerStrip returns the triangle count of each strip.
func (s *Session) NumTrisPerStrip() int {
	if s.mesh == nil {
		return 0
	}
	return s.mesh.NumTrisPerStrip
}

// Strips returns the draw list.
func (s *Session) Strips() []mesh.Strip {
	if s.mesh == nil {
		return nil
	}
	return s.mesh.Strips()
}

// Bounds returns the vertex-space bounding box.
func (s *Session) Bounds() mesh.Bounds {
	if s.mesh == nil {
		return mesh.Bounds{}
	}
	return s.mesh.Bounds
}

// HeightAt returns the scaled terrain height at vertex-space position
// (x, z), interpolated between grid samples. ok is false before the first
// generation and outside the mesh footprint.
func (s *Session) HeightAt(x, z float32) (y float32, ok bool) {
	if s.field == nil {
		return 0, false
	}
	// Inverse of the vertex layout: X runs along rows, Z along columns
	fz := x + float32(s.field.Height())/2
	fx := z + float32(s.field.Width())/2
	// NaN coordinates count as outside
	if !(fx >= 0 && fz >= 0 && fx <= float32(s.field.Width()-1) && fz <= float32(s.field.Height()-1)) {
		return 0, false
	}
	return s.field.Interpolate(fx, fz)*s.opts.YScale - s.opts.YShift, true
}
