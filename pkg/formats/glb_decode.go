package formats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
)

// SceneDecoder turns a validated GLB buffer into a glTF document.
type SceneDecoder interface {
	Name() string
	Decode(data []byte, container *GLBContainer) (*gltf.Document, error)
}

// FullDecoder uses the complete glTF loader.
type FullDecoder struct{}

// Name implements SceneDecoder.
func (FullDecoder) Name() string { return "gltf" }

// Decode implements SceneDecoder.
func (FullDecoder) Decode(data []byte, _ *GLBContainer) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MinimalDecoder reads the JSON chunk directly and attaches the binary
// chunk to the first buffer. It ignores required extensions and external
// buffer URIs, which lets it load files the full loader rejects.
type MinimalDecoder struct{}

// Name implements SceneDecoder.
func (MinimalDecoder) Name() string { return "minimal" }

// Decode implements SceneDecoder.
func (MinimalDecoder) Decode(_ []byte, container *GLBContainer) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := json.Unmarshal(container.JSON, doc); err != nil {
		return nil, fmt.Errorf("json chunk: %w", err)
	}

	for i, buf := range doc.Buffers {
		if buf == nil {
			return nil, fmt.Errorf("buffer %d is null", i)
		}
		if i == 0 && buf.URI == "" && container.BIN != nil {
			n := int(buf.ByteLength)
			if n == 0 || n > len(container.BIN) {
				n = len(container.BIN)
			}
			buf.Data = container.BIN[:n]
		}
	}
	return doc, nil
}
