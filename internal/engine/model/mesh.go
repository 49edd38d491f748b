package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ComputeNormals derives vertex normals from triangle faces. Face normals
// are area-weighted, then vertices sharing a position are smoothed together
// so split seams do not show.
func ComputeNormals(g *Geometry) {
	acc := make([]mgl32.Vec3, len(g.Vertices))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		p0 := mgl32.Vec3(g.Vertices[i0].Position)
		p1 := mgl32.Vec3(g.Vertices[i1].Position)
		p2 := mgl32.Vec3(g.Vertices[i2].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[i0] = acc[i0].Add(n)
		acc[i1] = acc[i1].Add(n)
		acc[i2] = acc[i2].Add(n)
	}
	for i := range g.Vertices {
		g.Vertices[i].Normal = unitVector([3]float32(acc[i]))
	}
	SmoothNormals(g.Vertices)
}

// SmoothNormals averages normals for vertices at the same position.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum mgl32.Vec3
		for _, idx := range idxs {
			sum = sum.Add(mgl32.Vec3(vertices[idx].Normal))
		}
		avg := unitVector([3]float32(sum))
		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

// DecodeColorNormal maps a color in [0,1] to a unit vector via c*2-1.
// Some exports store normals in the color attribute; this recovers them.
func DecodeColorNormal(c [4]float32) [3]float32 {
	return unitVector([3]float32{c[0]*2 - 1, c[1]*2 - 1, c[2]*2 - 1})
}

// FlatNormals gives every triangle its own vertices with the face normal.
// Used for faceted placeholder shapes.
func FlatNormals(g *Geometry) {
	out := make([]Vertex, 0, len(g.Indices))
	idx := make([]uint32, 0, len(g.Indices))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a := g.Vertices[g.Indices[i]]
		b := g.Vertices[g.Indices[i+1]]
		c := g.Vertices[g.Indices[i+2]]
		pa, pb, pc := mgl32.Vec3(a.Position), mgl32.Vec3(b.Position), mgl32.Vec3(c.Position)
		n := unitVector([3]float32(pb.Sub(pa).Cross(pc.Sub(pa))))
		a.Normal, b.Normal, c.Normal = n, n, n
		base := uint32(len(out))
		out = append(out, a, b, c)
		idx = append(idx, base, base+1, base+2)
	}
	g.Vertices = out
	g.Indices = idx
}
