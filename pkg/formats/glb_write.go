package formats

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Generator is written to the asset block of encoded files.
const Generator = "aowow-viewer"

// EncodeGLB writes m as a single-mesh binary glTF. The result reads back
// through ParseGLB with the same attributes, material and up axis.
func EncodeGLB(w io.Writer, m *GLBMesh) error {
	if m == nil || m.VertexCount() == 0 {
		return ErrNoMesh
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	attrs := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, m.Positions),
	}
	if m.HasNormals() {
		attrs["NORMAL"] = modeler.WriteNormal(doc, m.Normals)
	}
	if m.HasUVs() {
		attrs["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, m.UVs)
	}
	if m.HasColors() {
		attrs["COLOR_0"] = modeler.WriteColor(doc, m.Colors)
	}
	prim := &gltf.Primitive{Attributes: attrs}
	if len(m.Indices) > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, m.Indices))
	}

	mat, err := encodeMaterial(doc, &m.Material)
	if err != nil {
		return err
	}
	doc.Materials = []*gltf.Material{mat}
	prim.Material = gltf.Index(0)

	mesh := &gltf.Mesh{Name: "mesh", Primitives: []*gltf.Primitive{prim}}
	if m.UpAxis != "" {
		mesh.Extras = map[string]any{"upAxis": m.UpAxis}
	}
	doc.Meshes = []*gltf.Mesh{mesh}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// MarshalGLB returns m encoded as a binary glTF.
func MarshalGLB(m *GLBMesh) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeGLB(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeMaterial(doc *gltf.Document, src *GLBMaterial) (*gltf.Material, error) {
	color := src.BaseColor
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &color,
		MetallicFactor:  gltf.Float(src.Metalness),
		RoughnessFactor: gltf.Float(src.Roughness),
	}
	if src.Image != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, src.Image); err != nil {
			return nil, fmt.Errorf("encode texture: %w", err)
		}
		img, err := modeler.WriteImage(doc, src.Name, "image/png", &buf)
		if err != nil {
			return nil, fmt.Errorf("write texture: %w", err)
		}
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: uint32(len(doc.Textures) - 1)}
	}
	return &gltf.Material{
		Name:                 src.Name,
		DoubleSided:          src.DoubleSided,
		PBRMetallicRoughness: pbr,
	}, nil
}
