// Package model converts decoded assets into renderer-ready meshes.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/aowow-viewer/internal/engine/texture"
)

// Vertex represents a mesh vertex with position, normal, and texture coordinates.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the extent along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return mgl32.Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return mgl32.Vec3{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// MaxExtent returns the longest axis length.
func (b Bounds) MaxExtent() float32 {
	s := b.Size()
	return max(s[0], s[1], s[2])
}

// Material describes how a part is shaded.
type Material struct {
	Name        string
	Color       [4]float32 // Linear RGBA
	Emissive    [3]float32
	Metalness   float32
	Roughness   float32
	DoubleSided bool
	Map         *texture.Texture // Base color texture, nil when untextured
}

// Part is one drawable geometry with its material.
type Part struct {
	Name     string
	Geometry *Geometry
	Material *Material
}

// Mesh is the renderer-ready result of normalization or a placeholder.
// It is not safe for concurrent use; the viewer serializes access.
type Mesh struct {
	Parts      []*Part
	Bounds     Bounds
	Hint       Hint
	Animations []string

	Placeholder bool // Procedurally generated
	Fallback    bool // Substitute box for an unreadable asset

	disposed bool
}

// VertexCount returns the total vertex count across parts.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, p := range m.Parts {
		n += len(p.Geometry.Vertices)
	}
	return n
}

// HasAnimation returns true if a clip with the given name exists.
func (m *Mesh) HasAnimation(name string) bool {
	for _, a := range m.Animations {
		if a == name {
			return true
		}
	}
	return false
}

// Textures returns the distinct textures referenced by the mesh.
func (m *Mesh) Textures() []*texture.Texture {
	var out []*texture.Texture
	seen := make(map[uint64]bool)
	for _, p := range m.Parts {
		t := p.Material.Map
		if t == nil || seen[t.ID()] {
			continue
		}
		seen[t.ID()] = true
		out = append(out, t)
	}
	return out
}

// SetTexture replaces the base color map on every material and disposes
// the maps it replaced. The material color is reset to white so the
// texture is shown untinted.
func (m *Mesh) SetTexture(tex *texture.Texture) {
	old := m.Textures()
	for _, p := range m.Parts {
		p.Material.Map = tex
		p.Material.Color = [4]float32{1, 1, 1, 1}
		p.Material.Emissive = [3]float32{}
	}
	for _, t := range old {
		if t != tex {
			t.Dispose()
		}
	}
}

// Dispose releases geometry buffers and textures. Safe to call more than once.
func (m *Mesh) Dispose() {
	if m == nil || m.disposed {
		return
	}
	for _, t := range m.Textures() {
		t.Dispose()
	}
	for _, p := range m.Parts {
		p.Geometry.Vertices = nil
		p.Geometry.Indices = nil
		p.Material.Map = nil
	}
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Mesh) Disposed() bool {
	return m.disposed
}
