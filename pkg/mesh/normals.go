package mesh

import "github.com/go-gl/mathgl/mgl32"

// ComputeNormals fills Vertex.Normal for a width x height grid produced by
// BuildVertices. Each vertex gets the normalized sum of the face normals of
// the triangles that touch it. Degenerate sums fall back to straight up.
func ComputeNormals(vertices []Vertex, width, height int) error {
	if width < 2 || height < 2 || len(vertices) != width*height {
		return ErrEmptyMesh
	}

	sums := make([]mgl32.Vec3, len(vertices))
	pos := func(i int) mgl32.Vec3 {
		return mgl32.Vec3(vertices[i].Position)
	}

	for z := range height - 1 {
		for x := range width - 1 {
			a := z*width + x
			b := a + 1
			c := a + width
			d := c + 1

			// (a, b, c) and (b, d, c), both wound so a flat grid faces +Y
			n1 := pos(b).Sub(pos(a)).Cross(pos(c).Sub(pos(a)))
			n2 := pos(d).Sub(pos(b)).Cross(pos(c).Sub(pos(b)))

			sums[a] = sums[a].Add(n1)
			sums[b] = sums[b].Add(n1).Add(n2)
			sums[c] = sums[c].Add(n1).Add(n2)
			sums[d] = sums[d].Add(n2)
		}
	}

	for i := range vertices {
		vertices[i].Normal = normalize(sums[i])
	}
	return nil
}

func normalize(v mgl32.Vec3) [3]float32 {
	if v.Len() < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return v.Normalize()
}
