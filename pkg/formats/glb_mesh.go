package formats

import (
	"errors"
	"fmt"
	"image"
)

// GLBMaterial is the base material of the decoded primitive.
type GLBMaterial struct {
	Name        string
	BaseColor   [4]float32 // Linear RGBA factor
	Metalness   float32
	Roughness   float32
	DoubleSided bool
	Image       image.Image // Decoded base-color texture, nil when untextured
	ImageErr    error       // Set when an embedded image failed to decode
}

// Textured returns true if a base-color image was decoded.
func (m *GLBMaterial) Textured() bool {
	return m.Image != nil
}

// GLBMesh is the first primitive of the first mesh, with every array
// copied out of the binary chunk.
type GLBMesh struct {
	Positions [][3]float32
	Normals   [][3]float32 // nil when absent
	UVs       [][2]float32 // nil when absent
	Colors    [][4]float32 // nil when absent
	Indices   []uint32

	Material   GLBMaterial
	Animations []string // Clip names in file order
	UpAxis     string   // "y" or "z" when the file declares it in extras, else empty

	Fallback bool // True when this is the substitute box, not file content
	Decoder  string
}

// VertexCount returns the number of vertices.
func (m *GLBMesh) VertexCount() int {
	return len(m.Positions)
}

// HasNormals returns true if the file supplied a normal attribute.
func (m *GLBMesh) HasNormals() bool {
	return m.Normals != nil
}

// HasColors returns true if the file supplied a vertex color attribute.
func (m *GLBMesh) HasColors() bool {
	return m.Colors != nil
}

// HasUVs returns true if the file supplied texture coordinates.
func (m *GLBMesh) HasUVs() bool {
	return m.UVs != nil
}

// HasAnimation returns true if a clip with the given name exists.
func (m *GLBMesh) HasAnimation(name string) bool {
	for _, a := range m.Animations {
		if a == name {
			return true
		}
	}
	return false
}

// Parser decodes GLB buffers through an ordered chain of scene decoders.
type Parser struct {
	decoders []SceneDecoder
}

// NewParser creates a parser. With no decoders it uses the full glTF
// decoder followed by the minimal JSON decoder.
func NewParser(decoders ...SceneDecoder) *Parser {
	if len(decoders) == 0 {
		decoders = []SceneDecoder{FullDecoder{}, MinimalDecoder{}}
	}
	return &Parser{decoders: decoders}
}

var defaultParser = NewParser()

// ParseGLB parses a GLB buffer with the default decoder chain.
func ParseGLB(data []byte) (*GLBMesh, error) {
	return defaultParser.Parse(data)
}

// ParseGLBOrFallback never fails: malformed input yields FallbackBox.
// The returned error is non-nil when the fallback was substituted.
func ParseGLBOrFallback(data []byte) (*GLBMesh, error) {
	mesh, err := ParseGLB(data)
	if err != nil {
		return FallbackBox(), err
	}
	return mesh, nil
}

// Parse validates the container, then tries each decoder in order.
func (p *Parser) Parse(data []byte) (mesh *GLBMesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			mesh = nil
			err = &FormatError{Stage: "decode", Err: fmt.Errorf("%w: %v", ErrMalformedScene, r)}
		}
	}()

	container, err := ReadGLBContainer(data)
	if err != nil {
		return nil, err
	}

	var decodeErrs []error
	for _, dec := range p.decoders {
		doc, err := dec.Decode(data, container)
		if err != nil {
			decodeErrs = append(decodeErrs, fmt.Errorf("%s: %w", dec.Name(), err))
			continue
		}

		mesh, err := extractMesh(doc)
		if err != nil {
			// The document decoded, so another decoder would see the same data.
			return nil, &FormatError{Stage: "extract", Err: err}
		}
		mesh.Decoder = dec.Name()
		return mesh, nil
	}

	if len(decodeErrs) == 0 {
		return nil, &FormatError{Stage: "decode", Err: errors.New("no decoders configured")}
	}
	return nil, &FormatError{Stage: "decode", Err: fmt.Errorf("%w: %w", ErrMalformedScene, errors.Join(decodeErrs...))}
}
