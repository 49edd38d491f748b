package formats

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
)

// accessorData is a bounds-checked window onto an accessor's bytes.
type accessorData struct {
	buf        []byte
	start      int
	stride     int
	count      int
	comps      int
	compSize   int
	ctype      gltf.ComponentType
	normalized bool
}

func componentSize(c gltf.ComponentType) int {
	switch c {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

func componentsOf(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	}
	return 0
}

func openAccessor(doc *gltf.Document, index int, types ...gltf.AccessorType) (*accessorData, error) {
	if index < 0 || index >= len(doc.Accessors) || doc.Accessors[index] == nil {
		return nil, fmt.Errorf("%w: accessor %d missing", ErrInvalidAccessor, index)
	}
	acc := doc.Accessors[index]

	typeOK := false
	for _, t := range types {
		if acc.Type == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return nil, fmt.Errorf("%w: accessor %d has type %v", ErrInvalidAccessor, index, acc.Type)
	}

	comps := componentsOf(acc.Type)
	size := componentSize(acc.ComponentType)
	if comps == 0 || size == 0 {
		return nil, fmt.Errorf("%w: accessor %d component type %v", ErrInvalidAccessor, index, acc.ComponentType)
	}
	if acc.BufferView == nil {
		return nil, fmt.Errorf("%w: accessor %d has no buffer view", ErrInvalidAccessor, index)
	}

	viewIdx := int(*acc.BufferView)
	if viewIdx >= len(doc.BufferViews) || doc.BufferViews[viewIdx] == nil {
		return nil, fmt.Errorf("%w: buffer view %d missing", ErrInvalidAccessor, viewIdx)
	}
	view := doc.BufferViews[viewIdx]

	data, err := bufferData(doc, int(view.Buffer))
	if err != nil {
		return nil, err
	}

	viewStart := int(view.ByteOffset)
	viewEnd := viewStart + int(view.ByteLength)
	if viewEnd > len(data) {
		return nil, fmt.Errorf("%w: buffer view %d ends at %d, buffer has %d", ErrTruncatedGLBData, viewIdx, viewEnd, len(data))
	}

	elem := comps * size
	stride := int(view.ByteStride)
	if stride == 0 {
		stride = elem
	}
	if stride < elem {
		return nil, fmt.Errorf("%w: stride %d smaller than element %d", ErrInvalidAccessor, stride, elem)
	}

	a := &accessorData{
		buf:        data,
		start:      viewStart + int(acc.ByteOffset),
		stride:     stride,
		count:      int(acc.Count),
		comps:      comps,
		compSize:   size,
		ctype:      acc.ComponentType,
		normalized: acc.Normalized,
	}
	if a.count > 0 {
		if last := a.start + (a.count-1)*stride + elem; last > viewEnd {
			return nil, fmt.Errorf("%w: accessor %d reads past buffer view %d", ErrTruncatedGLBData, index, viewIdx)
		}
	}
	return a, nil
}

func bufferData(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.Buffers) || doc.Buffers[index] == nil {
		return nil, fmt.Errorf("%w: buffer %d missing", ErrInvalidAccessor, index)
	}
	if doc.Buffers[index].Data == nil {
		return nil, fmt.Errorf("%w: buffer %d has no data", ErrInvalidAccessor, index)
	}
	return doc.Buffers[index].Data, nil
}

// bufferViewBytes returns a copy of a buffer view's bytes.
func bufferViewBytes(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) || doc.BufferViews[index] == nil {
		return nil, fmt.Errorf("%w: buffer view %d missing", ErrInvalidAccessor, index)
	}
	view := doc.BufferViews[index]
	data, err := bufferData(doc, int(view.Buffer))
	if err != nil {
		return nil, err
	}
	start := int(view.ByteOffset)
	end := start + int(view.ByteLength)
	if end > len(data) {
		return nil, fmt.Errorf("%w: buffer view %d", ErrTruncatedGLBData, index)
	}
	out := make([]byte, end-start)
	copy(out, data[start:end])
	return out, nil
}

// float returns component c of element i as float32, applying
// normalization for integer types when the accessor asks for it.
func (a *accessorData) float(i, c int) float32 {
	off := a.start + i*a.stride + c*a.compSize
	switch a.ctype {
	case gltf.ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(a.buf[off:]))
	case gltf.ComponentUbyte:
		v := float32(a.buf[off])
		if a.normalized {
			return v / 255
		}
		return v
	case gltf.ComponentByte:
		v := float32(int8(a.buf[off]))
		if a.normalized {
			return max(v/127, -1)
		}
		return v
	case gltf.ComponentUshort:
		v := float32(binary.LittleEndian.Uint16(a.buf[off:]))
		if a.normalized {
			return v / 65535
		}
		return v
	case gltf.ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(a.buf[off:])))
		if a.normalized {
			return max(v/32767, -1)
		}
		return v
	case gltf.ComponentUint:
		return float32(binary.LittleEndian.Uint32(a.buf[off:]))
	}
	return 0
}

func (a *accessorData) indexAt(i int) (uint32, bool) {
	off := a.start + i*a.stride
	switch a.ctype {
	case gltf.ComponentUbyte:
		return uint32(a.buf[off]), true
	case gltf.ComponentUshort:
		return uint32(binary.LittleEndian.Uint16(a.buf[off:])), true
	case gltf.ComponentUint:
		return binary.LittleEndian.Uint32(a.buf[off:]), true
	}
	return 0, false
}

func readVec3(doc *gltf.Document, index int) ([][3]float32, error) {
	a, err := openAccessor(doc, index, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, a.count)
	for i := range out {
		out[i] = [3]float32{a.float(i, 0), a.float(i, 1), a.float(i, 2)}
	}
	return out, nil
}

func readVec2(doc *gltf.Document, index int) ([][2]float32, error) {
	a, err := openAccessor(doc, index, gltf.AccessorVec2)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, a.count)
	for i := range out {
		out[i] = [2]float32{a.float(i, 0), a.float(i, 1)}
	}
	return out, nil
}

// readColors accepts VEC3 or VEC4 in float, normalized ubyte or ushort.
// VEC3 colors get alpha 1.
func readColors(doc *gltf.Document, index int) ([][4]float32, error) {
	a, err := openAccessor(doc, index, gltf.AccessorVec3, gltf.AccessorVec4)
	if err != nil {
		return nil, err
	}
	if a.ctype != gltf.ComponentFloat {
		a.normalized = true
	}
	out := make([][4]float32, a.count)
	for i := range out {
		out[i] = [4]float32{a.float(i, 0), a.float(i, 1), a.float(i, 2), 1}
		if a.comps == 4 {
			out[i][3] = a.float(i, 3)
		}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, index int) ([]uint32, error) {
	a, err := openAccessor(doc, index, gltf.AccessorScalar)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, a.count)
	for i := range out {
		v, ok := a.indexAt(i)
		if !ok {
			return nil, fmt.Errorf("%w: index component type %v", ErrInvalidAccessor, a.ctype)
		}
		out[i] = v
	}
	return out, nil
}
