// Package formats provides parsers for binary model asset formats.
// GLB (binary glTF 2.0) container parser.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// GLB container constants.
const (
	GLBMagic   uint32 = 0x46546C67 // "glTF"
	GLBVersion uint32 = 2

	glbHeaderSize      = 12
	glbChunkHeaderSize = 8

	glbChunkJSON uint32 = 0x4E4F534A // "JSON"
	glbChunkBIN  uint32 = 0x004E4942 // "BIN\0"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic       = errors.New("not a valid container")
	ErrUnsupportedGLBVersion = errors.New("unsupported version")
	ErrTruncatedGLBData      = errors.New("truncated chunk")
	ErrMissingJSONChunk      = errors.New("missing JSON chunk")
	ErrNoMesh                = errors.New("no mesh")
	ErrInvalidAccessor       = errors.New("invalid accessor")
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrMalformedScene        = errors.New("malformed scene")
)

// FormatError describes why a buffer could not be parsed.
// errors.Is works against the sentinel errors above.
type FormatError struct {
	Stage string // container, decode, extract
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("glb %s: %v", e.Stage, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// GLBContainer holds the raw chunks of a GLB file.
type GLBContainer struct {
	Version uint32
	Length  uint32 // Declared total length
	JSON    []byte
	BIN     []byte // nil when the file has no binary chunk
}

// ReadGLBContainer validates the 12-byte header and splits the chunks.
// Chunk slices alias data.
func ReadGLBContainer(data []byte) (*GLBContainer, error) {
	if len(data) < glbHeaderSize {
		if len(data) >= 4 && binary.LittleEndian.Uint32(data) != GLBMagic {
			return nil, containerErr(ErrInvalidGLBMagic)
		}
		return nil, containerErr(fmt.Errorf("%w: %d byte header", ErrTruncatedGLBData, len(data)))
	}

	r := bytes.NewReader(data)
	var header struct {
		Magic   uint32
		Version uint32
		Length  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, containerErr(ErrTruncatedGLBData)
	}

	if header.Magic != GLBMagic {
		return nil, containerErr(ErrInvalidGLBMagic)
	}
	if header.Version != GLBVersion {
		return nil, containerErr(fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, header.Version))
	}
	if header.Length < glbHeaderSize || int(header.Length) > len(data) {
		return nil, containerErr(fmt.Errorf("%w: declared length %d, have %d", ErrTruncatedGLBData, header.Length, len(data)))
	}

	c := &GLBContainer{Version: header.Version, Length: header.Length}
	body := data[glbHeaderSize:header.Length]

	for chunk := 0; len(body) > 0; chunk++ {
		if len(body) < glbChunkHeaderSize {
			return nil, containerErr(fmt.Errorf("%w: chunk %d header", ErrTruncatedGLBData, chunk))
		}
		length := binary.LittleEndian.Uint32(body[0:4])
		typ := binary.LittleEndian.Uint32(body[4:8])
		body = body[glbChunkHeaderSize:]

		if uint64(length) > uint64(len(body)) {
			return nil, containerErr(fmt.Errorf("%w: chunk %d wants %d bytes, have %d", ErrTruncatedGLBData, chunk, length, len(body)))
		}
		payload := body[:length]
		body = body[length:]

		switch {
		case chunk == 0 && typ != glbChunkJSON:
			return nil, containerErr(ErrMissingJSONChunk)
		case chunk == 0:
			c.JSON = payload
		case typ == glbChunkBIN && c.BIN == nil:
			c.BIN = payload
		}
		// Unknown chunk types are skipped.
	}

	if c.JSON == nil {
		return nil, containerErr(ErrMissingJSONChunk)
	}
	return c, nil
}

func containerErr(err error) error {
	return &FormatError{Stage: "container", Err: err}
}
