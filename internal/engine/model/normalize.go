package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/aowow-viewer/internal/engine/texture"
	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// ReferenceSize is the length of a normalized mesh's longest axis.
const ReferenceSize float32 = 3

// zUpRatio is how much taller along Z than along Y a mesh must be to be
// treated as authored Z-up.
const zUpRatio float32 = 1.3

// Normalize turns a decoded mesh into a renderer-ready one: fixes Z-up
// orientation, resolves missing normals, picks the material, then scales
// the result to ReferenceSize standing on Y=0.
//
// It never fails. A nil input or a panic while processing yields the
// fallback box.
func Normalize(raw *formats.GLBMesh, hint Hint) (mesh *Mesh) {
	defer func() {
		if r := recover(); r != nil {
			mesh = Normalize(formats.FallbackBox(), hint)
		}
	}()
	if raw == nil || raw.VertexCount() == 0 {
		raw = formats.FallbackBox()
	}

	geom := &Geometry{
		Vertices: make([]Vertex, raw.VertexCount()),
		Indices:  append([]uint32(nil), raw.Indices...),
	}
	for i, p := range raw.Positions {
		geom.Vertices[i].Position = p
		if raw.HasUVs() {
			geom.Vertices[i].TexCoord = raw.UVs[i]
		}
	}

	zUp := raw.UpAxis == "z" || (raw.UpAxis == "" && IsZUp(ComputeBounds(geom)))
	if zUp {
		RotateZUpToYUp(geom)
	}

	computed := resolveNormals(geom, raw, zUp)

	var mat *Material
	switch {
	case raw.Fallback:
		mat = materialFrom(&raw.Material)
	case colorNormals(raw):
		// Legacy export: the embedded material does not belong to the geometry.
		mat = hint.Material()
	case raw.Material.Textured():
		mat = materialFrom(&raw.Material)
		mat.Map = texture.FromImage(raw.Material.Name, raw.Material.Image)
		mat.DoubleSided = true
	default:
		mat = hint.Material()
	}
	if computed {
		mat.DoubleSided = true
	}

	mesh = &Mesh{
		Parts:      []*Part{{Name: "body", Geometry: geom, Material: mat}},
		Hint:       hint,
		Animations: append([]string(nil), raw.Animations...),
		Fallback:   raw.Fallback,
	}
	Place(mesh)
	return mesh
}

// resolveNormals fills vertex normals from, in order of preference, the
// normal attribute, the color attribute decoded as a normal, or the faces.
// Vertex colors are never kept. It returns true if normals were computed.
func resolveNormals(g *Geometry, raw *formats.GLBMesh, rotated bool) bool {
	switch {
	case raw.HasNormals():
		for i, n := range raw.Normals {
			if rotated {
				n = rotateNormalZUp(n)
			}
			g.Vertices[i].Normal = unitVector(n)
		}
		return false
	case colorNormals(raw):
		for i, c := range raw.Colors {
			n := DecodeColorNormal(c)
			if rotated {
				n = rotateNormalZUp(n)
			}
			g.Vertices[i].Normal = n
		}
		return false
	default:
		ComputeNormals(g)
		return true
	}
}

// colorNormals reports whether the color attribute carries encoded normals.
func colorNormals(raw *formats.GLBMesh) bool {
	return !raw.HasNormals() && raw.HasColors()
}

func materialFrom(m *formats.GLBMaterial) *Material {
	return &Material{
		Name:        m.Name,
		Color:       m.BaseColor,
		Metalness:   m.Metalness,
		Roughness:   m.Roughness,
		DoubleSided: m.DoubleSided,
	}
}

// IsZUp reports whether a mesh looks authored with Z as the up axis.
func IsZUp(b Bounds) bool {
	s := b.Size()
	return s[2] > zUpRatio*s[1]
}

// RotateZUpToYUp rotates -90 degrees about X so +Z becomes +Y.
func RotateZUpToYUp(g *Geometry) {
	for i := range g.Vertices {
		p := g.Vertices[i].Position
		g.Vertices[i].Position = [3]float32{p[0], p[2], -p[1]}
	}
}

func rotateNormalZUp(n [3]float32) [3]float32 {
	return [3]float32{n[0], n[2], -n[1]}
}

// Place scales a mesh so its longest axis is ReferenceSize, centers it on
// X/Z and rests it on Y=0, then recomputes Bounds.
func Place(m *Mesh) {
	geoms := make([]*Geometry, len(m.Parts))
	for i, p := range m.Parts {
		geoms[i] = p.Geometry
	}

	b := ComputeBounds(geoms...)
	offset := mgl32.Vec3{-b.Center()[0], -b.Min[1], -b.Center()[2]}
	scale := float32(1)
	if ext := b.MaxExtent(); ext > 1e-6 {
		scale = ReferenceSize / ext
	}

	for _, g := range geoms {
		for i := range g.Vertices {
			p := mgl32.Vec3(g.Vertices[i].Position).Add(offset).Mul(scale)
			g.Vertices[i].Position = [3]float32(p)
		}
	}
	m.Bounds = ComputeBounds(geoms...)
}

// Validate checks that every index refers to a vertex.
func (m *Mesh) Validate() error {
	for _, p := range m.Parts {
		n := uint32(len(p.Geometry.Vertices))
		for i, idx := range p.Geometry.Indices {
			if idx >= n {
				return fmt.Errorf("part %s: index %d at %d exceeds %d vertices", p.Name, idx, i, n)
			}
		}
	}
	return nil
}
