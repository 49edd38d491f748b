package model

import (
	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// Export flattens the mesh into one primitive for encoding. Parts are
// merged and the first part's material is kept.
func (m *Mesh) Export() *formats.GLBMesh {
	out := &formats.GLBMesh{Animations: append([]string(nil), m.Animations...), UpAxis: "y"}
	for _, p := range m.Parts {
		base := uint32(len(out.Positions))
		for _, v := range p.Geometry.Vertices {
			out.Positions = append(out.Positions, v.Position)
			out.Normals = append(out.Normals, v.Normal)
			out.UVs = append(out.UVs, v.TexCoord)
		}
		for _, idx := range p.Geometry.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	if len(m.Parts) > 0 {
		mat := m.Parts[0].Material
		out.Material = formats.GLBMaterial{
			Name:        mat.Name,
			BaseColor:   mat.Color,
			Metalness:   mat.Metalness,
			Roughness:   mat.Roughness,
			DoubleSided: mat.DoubleSided,
		}
		if mat.Map != nil {
			if img := mat.Map.RGBA(); img != nil {
				out.Material.Image = img
			}
		}
	}
	return out
}
