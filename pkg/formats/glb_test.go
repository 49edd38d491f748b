package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
)

// glbFixture assembles a single-buffer GLB for tests.
type glbFixture struct {
	bin       []byte
	views     []map[string]any
	accessors []map[string]any
	top       map[string]any
}

func newFixture() *glbFixture {
	return &glbFixture{top: map[string]any{}}
}

func (f *glbFixture) addView(data []byte, stride int) int {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
	v := map[string]any{"buffer": 0, "byteOffset": len(f.bin), "byteLength": len(data)}
	if stride > 0 {
		v["byteStride"] = stride
	}
	f.bin = append(f.bin, data...)
	f.views = append(f.views, v)
	return len(f.views) - 1
}

func (f *glbFixture) addAccessor(view, offset, compType, count int, typ string, normalized bool) int {
	a := map[string]any{
		"bufferView":    view,
		"byteOffset":    offset,
		"componentType": compType,
		"count":         count,
		"type":          typ,
	}
	if normalized {
		a["normalized"] = true
	}
	f.accessors = append(f.accessors, a)
	return len(f.accessors) - 1
}

func (f *glbFixture) addFloats(typ string, width int, vals ...float32) int {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	view := f.addView(buf, 0)
	return f.addAccessor(view, 0, 5126, len(vals)/width, typ, false)
}

func (f *glbFixture) addUint16(vals ...uint16) int {
	buf := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	view := f.addView(buf, 0)
	return f.addAccessor(view, 0, 5123, len(vals), "SCALAR", false)
}

func (f *glbFixture) build(t *testing.T, prim map[string]any) []byte {
	t.Helper()
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"meshes": []any{map[string]any{"primitives": []any{prim}}},
	}
	if len(f.bin) > 0 {
		doc["buffers"] = []any{map[string]any{"byteLength": len(f.bin)}}
		doc["bufferViews"] = f.views
		doc["accessors"] = f.accessors
	}
	for k, v := range f.top {
		doc[k] = v
	}
	js, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return encodeGLB(js, f.bin)
}

func encodeGLB(js, bin []byte) []byte {
	pad := func(b []byte, fill byte) []byte {
		out := append([]byte(nil), b...)
		for len(out)%4 != 0 {
			out = append(out, fill)
		}
		return out
	}
	js = pad(js, ' ')
	total := glbHeaderSize + glbChunkHeaderSize + len(js)
	if len(bin) > 0 {
		bin = pad(bin, 0)
		total += glbChunkHeaderSize + len(bin)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{GLBMagic, GLBVersion, uint32(total)})
	binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(js)), glbChunkJSON})
	buf.Write(js)
	if len(bin) > 0 {
		binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(bin)), glbChunkBIN})
		buf.Write(bin)
	}
	return buf.Bytes()
}

// triangleGLB is one triangle with positions, normals, UVs and uint16 indices.
func triangleGLB(t *testing.T) []byte {
	f := newFixture()
	pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	nrm := f.addFloats("VEC3", 3, 0, 0, 1, 0, 0, 1, 0, 0, 1)
	uv := f.addFloats("VEC2", 2, 0, 0, 1, 0, 0, 1)
	idx := f.addUint16(0, 1, 2)
	return f.build(t, map[string]any{
		"attributes": map[string]any{"POSITION": pos, "NORMAL": nrm, "TEXCOORD_0": uv},
		"indices":    idx,
	})
}

var decoders = []SceneDecoder{FullDecoder{}, MinimalDecoder{}}

func TestReadGLBContainer_Errors(t *testing.T) {
	valid := triangleGLB(t)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "XXXX")

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 1)

	longLength := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(longLength[8:], uint32(len(valid)+100))

	chunkOverflow := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(chunkOverflow[12:], 1<<20)

	binFirst := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(binFirst[16:], glbChunkBIN)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedGLBData},
		{"short header", []byte("glTF\x02\x00"), ErrTruncatedGLBData},
		{"short non-glb", []byte("PK\x03\x04zip"), ErrInvalidGLBMagic},
		{"bad magic", badMagic, ErrInvalidGLBMagic},
		{"version 1", badVersion, ErrUnsupportedGLBVersion},
		{"declared length too long", longLength, ErrTruncatedGLBData},
		{"chunk overflow", chunkOverflow, ErrTruncatedGLBData},
		{"first chunk not json", binFirst, ErrMissingJSONChunk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGLBContainer(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var fe *FormatError
			if !errors.As(err, &fe) || fe.Stage != "container" {
				t.Errorf("expected container FormatError, got %T %v", err, err)
			}
		})
	}
}

func TestReadGLBContainer_Chunks(t *testing.T) {
	c, err := ReadGLBContainer(triangleGLB(t))
	if err != nil {
		t.Fatalf("ReadGLBContainer: %v", err)
	}
	if c.Version != 2 {
		t.Errorf("expected version 2, got %d", c.Version)
	}
	if !json.Valid(bytes.TrimRight(c.JSON, " ")) {
		t.Errorf("JSON chunk is not valid JSON: %q", c.JSON)
	}
	if len(c.BIN) == 0 || len(c.BIN)%4 != 0 {
		t.Errorf("unexpected BIN chunk length %d", len(c.BIN))
	}
}

func TestParseGLB_Triangle(t *testing.T) {
	data := triangleGLB(t)

	for _, dec := range decoders {
		t.Run(dec.Name(), func(t *testing.T) {
			mesh, err := NewParser(dec).Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if mesh.Fallback {
				t.Error("real mesh marked as fallback")
			}
			if mesh.Decoder != dec.Name() {
				t.Errorf("expected decoder %s, got %s", dec.Name(), mesh.Decoder)
			}
			if mesh.VertexCount() != 3 {
				t.Fatalf("expected 3 vertices, got %d", mesh.VertexCount())
			}
			if got := mesh.Positions[1]; got != [3]float32{1, 0, 0} {
				t.Errorf("position 1 = %v", got)
			}
			if !mesh.HasNormals() || mesh.Normals[2] != [3]float32{0, 0, 1} {
				t.Errorf("normals = %v", mesh.Normals)
			}
			if !mesh.HasUVs() || mesh.UVs[2] != [2]float32{0, 1} {
				t.Errorf("uvs = %v", mesh.UVs)
			}
			if mesh.HasColors() {
				t.Error("unexpected colors")
			}
			if len(mesh.Indices) != 3 || mesh.Indices[2] != 2 {
				t.Errorf("indices = %v", mesh.Indices)
			}
		})
	}
}

func TestParseGLB_IndexWidths(t *testing.T) {
	tests := []struct {
		name     string
		compType int
		encode   func([]uint32) []byte
	}{
		{"ubyte", 5121, func(v []uint32) []byte {
			out := make([]byte, len(v))
			for i, x := range v {
				out[i] = byte(x)
			}
			return out
		}},
		{"ushort", 5123, func(v []uint32) []byte {
			out := make([]byte, 2*len(v))
			for i, x := range v {
				binary.LittleEndian.PutUint16(out[2*i:], uint16(x))
			}
			return out
		}},
		{"uint", 5125, func(v []uint32) []byte {
			out := make([]byte, 4*len(v))
			for i, x := range v {
				binary.LittleEndian.PutUint32(out[4*i:], x)
			}
			return out
		}},
	}

	want := []uint32{0, 1, 2, 2, 1, 3}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0)
			view := f.addView(tt.encode(want), 0)
			idx := f.addAccessor(view, 0, tt.compType, len(want), "SCALAR", false)
			data := f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos}, "indices": idx})

			mesh, err := ParseGLB(data)
			if err != nil {
				t.Fatalf("ParseGLB: %v", err)
			}
			if len(mesh.Indices) != len(want) {
				t.Fatalf("expected %d indices, got %d", len(want), len(mesh.Indices))
			}
			for i := range want {
				if mesh.Indices[i] != want[i] {
					t.Errorf("index %d = %d, want %d", i, mesh.Indices[i], want[i])
				}
			}
		})
	}
}

func TestParseGLB_InterleavedStride(t *testing.T) {
	// position + normal interleaved, 24 byte stride
	verts := [][6]float32{
		{0, 0, 0, 0, 1, 0},
		{2, 0, 0, 0, 1, 0},
		{0, 0, 2, 0, 1, 0},
	}
	buf := make([]byte, 0, 72)
	for _, v := range verts {
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		}
	}

	f := newFixture()
	view := f.addView(buf, 24)
	pos := f.addAccessor(view, 0, 5126, 3, "VEC3", false)
	nrm := f.addAccessor(view, 12, 5126, 3, "VEC3", false)
	data := f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos, "NORMAL": nrm}})

	for _, dec := range decoders {
		t.Run(dec.Name(), func(t *testing.T) {
			mesh, err := NewParser(dec).Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if mesh.Positions[1] != [3]float32{2, 0, 0} || mesh.Positions[2] != [3]float32{0, 0, 2} {
				t.Errorf("positions = %v", mesh.Positions)
			}
			for i, n := range mesh.Normals {
				if n != [3]float32{0, 1, 0} {
					t.Errorf("normal %d = %v", i, n)
				}
			}
			// No index accessor: sequential triangle list.
			if len(mesh.Indices) != 3 || mesh.Indices[0] != 0 || mesh.Indices[2] != 2 {
				t.Errorf("indices = %v", mesh.Indices)
			}
		})
	}
}

func TestParseGLB_IndexOutOfRange(t *testing.T) {
	f := newFixture()
	pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	idx := f.addUint16(0, 1, 7)
	data := f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos}, "indices": idx})

	_, err := ParseGLB(data)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	mesh, err := ParseGLBOrFallback(data)
	if err == nil {
		t.Error("expected error to be reported alongside the fallback")
	}
	if mesh == nil || !mesh.Fallback {
		t.Fatal("expected fallback mesh")
	}
}

func TestParseGLB_NoMesh(t *testing.T) {
	f := newFixture()
	f.top["meshes"] = []any{}
	data := f.build(t, nil)

	_, err := ParseGLB(data)
	if !errors.Is(err, ErrNoMesh) {
		t.Fatalf("expected ErrNoMesh, got %v", err)
	}
}

func TestParseGLB_MissingPosition(t *testing.T) {
	f := newFixture()
	nrm := f.addFloats("VEC3", 3, 0, 1, 0)
	data := f.build(t, map[string]any{"attributes": map[string]any{"NORMAL": nrm}})

	if _, err := ParseGLB(data); !errors.Is(err, ErrNoMesh) {
		t.Fatalf("expected ErrNoMesh, got %v", err)
	}
}

func TestParseGLB_VertexColors(t *testing.T) {
	t.Run("ubyte vec4 normalized", func(t *testing.T) {
		f := newFixture()
		pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
		view := f.addView([]byte{255, 0, 0, 255, 0, 255, 0, 128, 0, 0, 255, 0}, 0)
		col := f.addAccessor(view, 0, 5121, 3, "VEC4", true)
		mesh, err := ParseGLB(f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos, "COLOR_0": col}}))
		if err != nil {
			t.Fatalf("ParseGLB: %v", err)
		}
		if mesh.Colors[0] != [4]float32{1, 0, 0, 1} {
			t.Errorf("color 0 = %v", mesh.Colors[0])
		}
		if a := mesh.Colors[1][3]; math.Abs(float64(a)-128.0/255) > 1e-6 {
			t.Errorf("color 1 alpha = %v", a)
		}
	})

	t.Run("float vec3", func(t *testing.T) {
		f := newFixture()
		pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
		col := f.addFloats("VEC3", 3, 0.5, 0.5, 1, 0.5, 0.5, 1, 0.5, 0.5, 1)
		mesh, err := ParseGLB(f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos, "COLOR_0": col}}))
		if err != nil {
			t.Fatalf("ParseGLB: %v", err)
		}
		if mesh.Colors[2] != [4]float32{0.5, 0.5, 1, 1} {
			t.Errorf("color 2 = %v", mesh.Colors[2])
		}
		if mesh.HasNormals() {
			t.Error("unexpected normals")
		}
	})
}

func TestParseGLB_AttributeCountMismatch(t *testing.T) {
	f := newFixture()
	pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	nrm := f.addFloats("VEC3", 3, 0, 1, 0)
	data := f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos, "NORMAL": nrm}})

	if _, err := ParseGLB(data); !errors.Is(err, ErrInvalidAccessor) {
		t.Fatalf("expected ErrInvalidAccessor, got %v", err)
	}
}

func TestParseGLB_CopiesBuffers(t *testing.T) {
	data := triangleGLB(t)
	mesh, err := ParseGLB(data)
	if err != nil {
		t.Fatalf("ParseGLB: %v", err)
	}

	for i := range data {
		data[i] = 0xFF
	}
	if mesh.Positions[1] != [3]float32{1, 0, 0} {
		t.Errorf("positions alias the input buffer: %v", mesh.Positions[1])
	}
	if mesh.Indices[1] != 1 {
		t.Errorf("indices alias the input buffer: %v", mesh.Indices)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func texturedGLB(t *testing.T, imageData []byte) []byte {
	f := newFixture()
	pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	uv := f.addFloats("VEC2", 2, 0, 0, 1, 0, 0, 1)
	imgView := f.addView(imageData, 0)
	f.top["images"] = []any{map[string]any{"bufferView": imgView, "mimeType": "image/png"}}
	f.top["textures"] = []any{map[string]any{"source": 0}}
	f.top["materials"] = []any{map[string]any{
		"name":        "skin",
		"doubleSided": true,
		"pbrMetallicRoughness": map[string]any{
			"baseColorTexture": map[string]any{"index": 0},
			"metallicFactor":   0.25,
			"roughnessFactor":  0.5,
		},
	}}
	return f.build(t, map[string]any{
		"attributes": map[string]any{"POSITION": pos, "TEXCOORD_0": uv},
		"material":   0,
	})
}

func TestParseGLB_EmbeddedTexture(t *testing.T) {
	data := texturedGLB(t, pngBytes(t))

	for _, dec := range decoders {
		t.Run(dec.Name(), func(t *testing.T) {
			mesh, err := NewParser(dec).Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			mat := mesh.Material
			if !mat.Textured() {
				t.Fatalf("expected texture, image error: %v", mat.ImageErr)
			}
			if b := mat.Image.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
				t.Errorf("image size %v", b)
			}
			if mat.Name != "skin" || !mat.DoubleSided {
				t.Errorf("material = %+v", mat)
			}
			if mat.Metalness != 0.25 || mat.Roughness != 0.5 {
				t.Errorf("metalness/roughness = %v/%v", mat.Metalness, mat.Roughness)
			}
			if mat.BaseColor != [4]float32{1, 1, 1, 1} {
				t.Errorf("default base color = %v", mat.BaseColor)
			}
		})
	}
}

func TestParseGLB_CorruptTextureDegrades(t *testing.T) {
	data := texturedGLB(t, []byte("definitely not an image"))

	mesh, err := ParseGLB(data)
	if err != nil {
		t.Fatalf("corrupt image must not fail the parse: %v", err)
	}
	if mesh.Material.Textured() {
		t.Error("expected untextured material")
	}
	if mesh.Material.ImageErr == nil {
		t.Error("expected image error to be recorded")
	}
}

func TestParseGLB_AnimationsAndUpAxis(t *testing.T) {
	f := newFixture()
	pos := f.addFloats("VEC3", 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	f.top["animations"] = []any{
		map[string]any{"name": "Stand", "channels": []any{}, "samplers": []any{}},
		map[string]any{"name": "Walk", "channels": []any{}, "samplers": []any{}},
	}
	f.top["asset"] = map[string]any{"version": "2.0", "extras": map[string]any{"upAxis": "Z"}}
	data := f.build(t, map[string]any{"attributes": map[string]any{"POSITION": pos}})

	for _, dec := range decoders {
		t.Run(dec.Name(), func(t *testing.T) {
			mesh, err := NewParser(dec).Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(mesh.Animations) != 2 || !mesh.HasAnimation("Walk") {
				t.Errorf("animations = %v", mesh.Animations)
			}
			if mesh.HasAnimation("Run") {
				t.Error("unexpected animation Run")
			}
			if mesh.UpAxis != "z" {
				t.Errorf("expected up axis z, got %q", mesh.UpAxis)
			}
		})
	}
}

type failingDecoder struct{}

func (failingDecoder) Name() string { return "failing" }
func (failingDecoder) Decode([]byte, *GLBContainer) (*gltf.Document, error) {
	return nil, errors.New("extension not supported")
}

type panickingDecoder struct{}

func (panickingDecoder) Name() string { return "panicking" }
func (panickingDecoder) Decode([]byte, *GLBContainer) (*gltf.Document, error) {
	panic("corrupt state")
}

func TestParser_DecoderChain(t *testing.T) {
	data := triangleGLB(t)

	mesh, err := NewParser(failingDecoder{}, MinimalDecoder{}).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if mesh.Decoder != "minimal" {
		t.Errorf("expected minimal decoder, got %s", mesh.Decoder)
	}

	_, err = NewParser(failingDecoder{}).Parse(data)
	if !errors.Is(err, ErrMalformedScene) {
		t.Errorf("expected ErrMalformedScene, got %v", err)
	}
}

func TestParser_RecoversPanics(t *testing.T) {
	_, err := NewParser(panickingDecoder{}).Parse(triangleGLB(t))
	if !errors.Is(err, ErrMalformedScene) {
		t.Fatalf("expected ErrMalformedScene, got %v", err)
	}
}

func TestFallbackBox(t *testing.T) {
	box := FallbackBox()

	if !box.Fallback {
		t.Error("expected Fallback flag")
	}
	if box.VertexCount() != 24 || len(box.Indices) != 36 {
		t.Errorf("expected 24 vertices / 36 indices, got %d / %d", box.VertexCount(), len(box.Indices))
	}

	var lo, hi [3]float32
	for i, p := range box.Positions {
		for a := 0; a < 3; a++ {
			if i == 0 || p[a] < lo[a] {
				lo[a] = p[a]
			}
			if i == 0 || p[a] > hi[a] {
				hi[a] = p[a]
			}
		}
	}
	if hi[0]-lo[0] != 1 || hi[1]-lo[1] != 2 || hi[2]-lo[2] != 0.5 {
		t.Errorf("box extent = %v..%v", lo, hi)
	}

	grey := float32(0x88) / 255
	if box.Material.BaseColor != [4]float32{grey, grey, grey, 1} {
		t.Errorf("base color = %v", box.Material.BaseColor)
	}
	if box.Material.Metalness != 0.3 || box.Material.Roughness != 0.7 || !box.Material.DoubleSided {
		t.Errorf("material = %+v", box.Material)
	}
	for _, idx := range box.Indices {
		if int(idx) >= box.VertexCount() {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestHexColor(t *testing.T) {
	c := HexColor(0xFF8000)
	if c[0] != 1 || c[2] != 0 || c[3] != 1 {
		t.Errorf("HexColor(0xFF8000) = %v", c)
	}
	if math.Abs(float64(c[1])-128.0/255) > 1e-6 {
		t.Errorf("green = %v", c[1])
	}
}

func TestEncodeGLB_ReadsBack(t *testing.T) {
	src := BoxMesh(1, 2, 3)
	src.Colors = make([][4]float32, src.VertexCount())
	for i := range src.Colors {
		src.Colors[i] = [4]float32{0.5, 0.5, 1, 1}
	}
	src.UpAxis = "z"
	src.Material = GLBMaterial{
		Name:        "painted",
		BaseColor:   HexColor(0x336699),
		Metalness:   0.25,
		Roughness:   0.75,
		DoubleSided: true,
	}

	data, err := MarshalGLB(src)
	if err != nil {
		t.Fatalf("MarshalGLB: %v", err)
	}
	got, err := ParseGLB(data)
	if err != nil {
		t.Fatalf("ParseGLB: %v", err)
	}

	if got.VertexCount() != src.VertexCount() || len(got.Indices) != len(src.Indices) {
		t.Fatalf("counts = %d/%d, want %d/%d", got.VertexCount(), len(got.Indices), src.VertexCount(), len(src.Indices))
	}
	for i := range src.Positions {
		if got.Positions[i] != src.Positions[i] || got.Normals[i] != src.Normals[i] || got.UVs[i] != src.UVs[i] {
			t.Fatalf("vertex %d differs", i)
		}
	}
	if !got.HasColors() || got.Colors[0] != src.Colors[0] {
		t.Errorf("colors = %v", got.Colors[:1])
	}
	if got.UpAxis != "z" {
		t.Errorf("up axis = %q", got.UpAxis)
	}
	m := got.Material
	if m.Name != "painted" || m.BaseColor != src.Material.BaseColor || m.Metalness != 0.25 || m.Roughness != 0.75 || !m.DoubleSided {
		t.Errorf("material = %+v", m)
	}
	if m.Textured() {
		t.Error("unexpected texture")
	}
}

func TestEncodeGLB_Texture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{10, 20, 30, 255})

	src := BoxMesh(1, 1, 1)
	src.Material = GLBMaterial{Name: "skin", BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1, Image: img}

	data, err := MarshalGLB(src)
	if err != nil {
		t.Fatalf("MarshalGLB: %v", err)
	}
	got, err := ParseGLB(data)
	if err != nil {
		t.Fatalf("ParseGLB: %v", err)
	}
	if !got.Material.Textured() {
		t.Fatalf("texture lost: %v", got.Material.ImageErr)
	}
	if b := got.Material.Image.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("image bounds = %v", b)
	}
	r, g, b, _ := got.Material.Image.At(1, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestEncodeGLB_Empty(t *testing.T) {
	if _, err := MarshalGLB(&GLBMesh{}); !errors.Is(err, ErrNoMesh) {
		t.Errorf("err = %v, want ErrNoMesh", err)
	}
}
