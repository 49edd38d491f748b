package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// upVector is substituted for degenerate normals.
var upVector = [3]float32{0, 1, 0}

// unitVector returns a unit vector in the same direction as v,
// or +Y when v has no usable length.
func unitVector(v [3]float32) [3]float32 {
	vec := mgl32.Vec3(v)
	if vec.Len() < 0.0001 {
		return upVector
	}
	return [3]float32(vec.Normalize())
}

// ComputeBounds returns the bounding box of all vertices in all geometries.
func ComputeBounds(geoms ...*Geometry) Bounds {
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	empty := true
	for _, g := range geoms {
		for _, v := range g.Vertices {
			updateBounds(&b, v.Position)
			empty = false
		}
	}
	if empty {
		return Bounds{}
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Transform applies m to positions and the rotation part of m to normals.
func (g *Geometry) Transform(m mgl32.Mat4) {
	normalMat := m.Mat3().Inv().Transpose()
	for i := range g.Vertices {
		v := &g.Vertices[i]
		p := m.Mul4x1(mgl32.Vec3(v.Position).Vec4(1))
		v.Position = [3]float32{p[0], p[1], p[2]}
		v.Normal = unitVector([3]float32(normalMat.Mul3x1(mgl32.Vec3(v.Normal))))
	}
}

// Translate moves every vertex by d.
func (g *Geometry) Translate(d mgl32.Vec3) *Geometry {
	for i := range g.Vertices {
		p := mgl32.Vec3(g.Vertices[i].Position).Add(d)
		g.Vertices[i].Position = [3]float32(p)
	}
	return g
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	return &Geometry{
		Vertices: append([]Vertex(nil), g.Vertices...),
		Indices:  append([]uint32(nil), g.Indices...),
	}
}
