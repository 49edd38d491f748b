package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strings"

	"github.com/qmuntal/gltf"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// glTF attribute semantics read by the extractor.
const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
	attrTexCoord = "TEXCOORD_0"
	attrColor    = "COLOR_0"
)

// extractMesh copies the first primitive of the first mesh out of doc.
func extractMesh(doc *gltf.Document) (*GLBMesh, error) {
	if len(doc.Meshes) == 0 || doc.Meshes[0] == nil || len(doc.Meshes[0].Primitives) == 0 {
		return nil, ErrNoMesh
	}
	prim := doc.Meshes[0].Primitives[0]
	if prim == nil {
		return nil, ErrNoMesh
	}

	posIdx, ok := prim.Attributes[attrPosition]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no %s", ErrNoMesh, attrPosition)
	}

	mesh := &GLBMesh{}
	var err error
	if mesh.Positions, err = readVec3(doc, int(posIdx)); err != nil {
		return nil, fmt.Errorf("%s: %w", attrPosition, err)
	}
	n := len(mesh.Positions)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty %s", ErrNoMesh, attrPosition)
	}

	if idx, ok := prim.Attributes[attrNormal]; ok {
		if mesh.Normals, err = readVec3(doc, int(idx)); err != nil {
			return nil, fmt.Errorf("%s: %w", attrNormal, err)
		}
		if len(mesh.Normals) != n {
			return nil, fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidAccessor, len(mesh.Normals), n)
		}
	}
	if idx, ok := prim.Attributes[attrTexCoord]; ok {
		if mesh.UVs, err = readVec2(doc, int(idx)); err != nil {
			return nil, fmt.Errorf("%s: %w", attrTexCoord, err)
		}
		if len(mesh.UVs) != n {
			return nil, fmt.Errorf("%w: %d uvs for %d vertices", ErrInvalidAccessor, len(mesh.UVs), n)
		}
	}
	if idx, ok := prim.Attributes[attrColor]; ok {
		if mesh.Colors, err = readColors(doc, int(idx)); err != nil {
			return nil, fmt.Errorf("%s: %w", attrColor, err)
		}
		if len(mesh.Colors) != n {
			return nil, fmt.Errorf("%w: %d colors for %d vertices", ErrInvalidAccessor, len(mesh.Colors), n)
		}
	}

	if prim.Indices != nil {
		if mesh.Indices, err = readIndices(doc, int(*prim.Indices)); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		mesh.Indices = make([]uint32, n)
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	for i, v := range mesh.Indices {
		if int(v) >= n {
			return nil, fmt.Errorf("%w: index %d at %d, vertex count %d", ErrIndexOutOfRange, v, i, n)
		}
	}

	if prim.Material != nil {
		mesh.Material = extractMaterial(doc, int(*prim.Material))
	} else {
		mesh.Material = GLBMaterial{BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1}
	}

	for _, anim := range doc.Animations {
		if anim != nil {
			mesh.Animations = append(mesh.Animations, anim.Name)
		}
	}

	mesh.UpAxis = upAxisFrom(doc.Meshes[0].Extras)
	if mesh.UpAxis == "" {
		mesh.UpAxis = upAxisFrom(doc.Asset.Extras)
	}
	return mesh, nil
}

// extractMaterial reads the PBR factors and the embedded base-color image.
// Image failures are recorded on the material, never returned.
func extractMaterial(doc *gltf.Document, index int) GLBMaterial {
	mat := GLBMaterial{BaseColor: [4]float32{1, 1, 1, 1}, Metalness: 1, Roughness: 1}
	if index < 0 || index >= len(doc.Materials) || doc.Materials[index] == nil {
		return mat
	}
	src := doc.Materials[index]
	mat.Name = src.Name
	mat.DoubleSided = src.DoubleSided

	pbr := src.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	mat.BaseColor = pbr.BaseColorFactorOrDefault()
	mat.Metalness = pbr.MetallicFactorOrDefault()
	mat.Roughness = pbr.RoughnessFactorOrDefault()

	if pbr.BaseColorTexture != nil {
		mat.Image, mat.ImageErr = extractImage(doc, int(pbr.BaseColorTexture.Index))
	}
	return mat
}

func extractImage(doc *gltf.Document, texIndex int) (image.Image, error) {
	if texIndex < 0 || texIndex >= len(doc.Textures) || doc.Textures[texIndex] == nil {
		return nil, fmt.Errorf("texture %d missing", texIndex)
	}
	tex := doc.Textures[texIndex]
	if tex.Source == nil {
		return nil, fmt.Errorf("texture %d has no source", texIndex)
	}

	imgIndex := int(*tex.Source)
	if imgIndex >= len(doc.Images) || doc.Images[imgIndex] == nil {
		return nil, fmt.Errorf("image %d missing", imgIndex)
	}
	img := doc.Images[imgIndex]
	if img.BufferView == nil {
		return nil, fmt.Errorf("image %d is not embedded", imgIndex)
	}

	raw, err := bufferViewBytes(doc, int(*img.BufferView))
	if err != nil {
		return nil, err
	}
	decoded, _, err := DecodeImage(raw)
	if err != nil {
		return nil, fmt.Errorf("image %d (%s): %w", imgIndex, img.MimeType, err)
	}
	return decoded, nil
}

// DecodeImage decodes PNG, JPEG or WebP bytes.
func DecodeImage(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

func upAxisFrom(extras any) string {
	var fields map[string]any
	switch v := extras.(type) {
	case map[string]any:
		fields = v
	case json.RawMessage:
		_ = json.Unmarshal(v, &fields)
	case []byte:
		_ = json.Unmarshal(v, &fields)
	}

	axis, _ := fields["upAxis"].(string)
	switch axis = strings.ToLower(axis); axis {
	case "y", "z":
		return axis
	}
	return ""
}
