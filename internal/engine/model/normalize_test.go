package model

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func approxVec(a, b [3]float32) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

// triangle is a raw mesh in the XY plane with no optional attributes.
func triangle() *formats.GLBMesh {
	return &formats.GLBMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestNormalize_NilYieldsFallback(t *testing.T) {
	m := Normalize(nil, HintGeneric)
	if !m.Fallback {
		t.Fatal("expected fallback mesh")
	}
	if len(m.Parts) != 1 || m.VertexCount() != 24 {
		t.Errorf("fallback box: %d parts, %d vertices", len(m.Parts), m.VertexCount())
	}
	mat := m.Parts[0].Material
	if mat.Color != formats.HexColor(formats.FallbackColor) || !mat.DoubleSided {
		t.Errorf("fallback material = %+v", mat)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestNormalize_EmptyYieldsFallback(t *testing.T) {
	m := Normalize(&formats.GLBMesh{}, HintItem)
	if !m.Fallback {
		t.Error("empty mesh should normalize to the fallback box")
	}
	if m.Hint != HintItem {
		t.Errorf("hint = %v", m.Hint)
	}
}

func TestNormalize_Placement(t *testing.T) {
	raw := formats.BoxMesh(10, 4, 2)
	for i := range raw.Positions {
		raw.Positions[i][0] += 50
		raw.Positions[i][1] -= 7
	}

	m := Normalize(raw, HintGeneric)
	b := m.Bounds
	if !approx(b.MaxExtent(), ReferenceSize) {
		t.Errorf("max extent = %f, want %f", b.MaxExtent(), ReferenceSize)
	}
	if !approx(b.Min[1], 0) {
		t.Errorf("min Y = %f, want 0", b.Min[1])
	}
	c := b.Center()
	if !approx(c[0], 0) || !approx(c[2], 0) {
		t.Errorf("center XZ = (%f, %f), want origin", c[0], c[2])
	}
}

func TestNormalize_ZUp(t *testing.T) {
	tests := []struct {
		name    string
		upAxis  string
		rotated bool
	}{
		{"heuristic", "", true},
		{"declared z", "z", true},
		{"declared y", "y", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := formats.BoxMesh(1, 1, 4)
			raw.UpAxis = tt.upAxis
			m := Normalize(raw, HintGeneric)
			s := m.Bounds.Size()
			tallY := approx(s[1], ReferenceSize)
			if tallY != tt.rotated {
				t.Errorf("size = %v, rotated = %v", s, tallY)
			}
		})
	}
}

func TestNormalize_ZUpRotatesNormals(t *testing.T) {
	raw := formats.BoxMesh(1, 1, 4)
	m := Normalize(raw, HintGeneric)
	// Vertices 16-19 are the +Z face.
	got := m.Parts[0].Geometry.Vertices[16].Normal
	if !approxVec(got, [3]float32{0, 1, 0}) {
		t.Errorf("+Z normal after rotation = %v, want +Y", got)
	}
}

func TestNormalize_NormalResolution(t *testing.T) {
	tests := []struct {
		name       string
		normals    [][3]float32
		colors     [][4]float32
		want       [3]float32
		doubleSide bool
	}{
		{
			name:    "normal attribute",
			normals: [][3]float32{{0, 0, 2}, {0, 0, 2}, {0, 0, 2}},
			want:    [3]float32{0, 0, 1},
		},
		{
			name:   "color as normal",
			colors: [][4]float32{{0.5, 0.5, 1, 1}, {0.5, 0.5, 1, 1}, {0.5, 0.5, 1, 1}},
			want:   [3]float32{0, 0, 1},
		},
		{
			name:       "computed",
			want:       [3]float32{0, 0, 1},
			doubleSide: true,
		},
		{
			name:    "normals win over colors",
			normals: [][3]float32{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}},
			colors:  [][4]float32{{0.5, 0.5, 1, 1}, {0.5, 0.5, 1, 1}, {0.5, 0.5, 1, 1}},
			want:    [3]float32{1, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := triangle()
			raw.Normals = tt.normals
			raw.Colors = tt.colors
			m := Normalize(raw, HintGeneric)
			for i, v := range m.Parts[0].Geometry.Vertices {
				if !approxVec(v.Normal, tt.want) {
					t.Errorf("vertex %d normal = %v, want %v", i, v.Normal, tt.want)
				}
			}
			if got := m.Parts[0].Material.DoubleSided; got != tt.doubleSide {
				t.Errorf("DoubleSided = %v, want %v", got, tt.doubleSide)
			}
		})
	}
}

func TestDecodeColorNormal(t *testing.T) {
	got := DecodeColorNormal([4]float32{0.5, 0.5, 1, 1})
	if !approxVec(got, [3]float32{0, 0, 1}) {
		t.Errorf("got %v, want (0, 0, 1)", got)
	}
	// Mid-grey decodes to zero length and falls back to +Y.
	if got := DecodeColorNormal([4]float32{0.5, 0.5, 0.5, 1}); got != upVector {
		t.Errorf("degenerate color = %v, want +Y", got)
	}
}

func TestNormalize_HintMaterial(t *testing.T) {
	for _, h := range []Hint{HintGeneric, HintCharacter, HintItem, HintSpell} {
		m := Normalize(triangle(), h)
		want := h.Material()
		got := m.Parts[0].Material
		if got.Color != want.Color || got.Metalness != want.Metalness || got.Roughness != want.Roughness {
			t.Errorf("%s: material = %+v, want %+v", h, got, want)
		}
		if got.Map != nil {
			t.Errorf("%s: unexpected map", h)
		}
	}
}

func TestNormalize_Textured(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})

	raw := triangle()
	raw.Normals = [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	raw.UVs = [][2]float32{{0, 0}, {1, 0}, {0, 1}}
	raw.Material = formats.GLBMaterial{
		Name:      "skin",
		BaseColor: [4]float32{1, 1, 1, 1},
		Metalness: 0,
		Roughness: 1,
		Image:     img,
	}

	m := Normalize(raw, HintCharacter)
	mat := m.Parts[0].Material
	if mat.Map == nil {
		t.Fatal("expected texture map")
	}
	if !mat.DoubleSided {
		t.Error("textured material should be double-sided")
	}
	if w, h := mat.Map.Size(); w != 2 || h != 2 {
		t.Errorf("texture size = %dx%d", w, h)
	}
	if uv := m.Parts[0].Geometry.Vertices[1].TexCoord; uv != [2]float32{1, 0} {
		t.Errorf("uv = %v", uv)
	}
}

func TestNormalize_ColorNormalsUseHintMaterial(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	raw := triangle()
	raw.Colors = [][4]float32{{0.5, 0.5, 1, 1}, {0.5, 0.5, 1, 1}, {0.5, 0.5, 1, 1}}
	raw.UVs = [][2]float32{{0, 0}, {1, 0}, {0, 1}}
	raw.Material = formats.GLBMaterial{Name: "baked", BaseColor: [4]float32{1, 0, 0, 1}, Image: img}

	m := Normalize(raw, HintItem)
	got, want := m.Parts[0].Material, HintItem.Material()
	if got.Map != nil {
		t.Error("embedded texture kept on a color-encoded-normal mesh")
	}
	if got.Color != want.Color || got.Metalness != want.Metalness || got.Roughness != want.Roughness {
		t.Errorf("material = %+v, want %+v", got, want)
	}
}

func TestNormalize_KeepsAnimations(t *testing.T) {
	raw := triangle()
	raw.Animations = []string{"Stand", "Walk"}
	m := Normalize(raw, HintCharacter)
	if !m.HasAnimation("Walk") || m.HasAnimation("Run") {
		t.Errorf("animations = %v", m.Animations)
	}
	raw.Animations[0] = "changed"
	if m.Animations[0] != "Stand" {
		t.Error("animations should be copied")
	}
}

func TestNormalize_RecoversPanic(t *testing.T) {
	// A normal array longer than the position array indexes past the vertices.
	raw := triangle()
	raw.Normals = [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}

	m := Normalize(raw, HintGeneric)
	if !m.Fallback {
		t.Error("panic during normalization should yield the fallback box")
	}
}

func TestIsZUp(t *testing.T) {
	tests := []struct {
		size [3]float32
		want bool
	}{
		{[3]float32{1, 1, 1}, false},
		{[3]float32{1, 1, 1.3}, false},
		{[3]float32{1, 1, 1.31}, true},
		{[3]float32{1, 0, 0.5}, true},
	}
	for _, tt := range tests {
		b := Bounds{Max: tt.size}
		if got := IsZUp(b); got != tt.want {
			t.Errorf("IsZUp(%v) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestHintForCategory(t *testing.T) {
	tests := map[string]Hint{
		"character": HintCharacter,
		"npc":       HintCharacter,
		"pet":       HintCharacter,
		"item":      HintItem,
		"spell":     HintSpell,
		"object":    HintGeneric,
		"":          HintGeneric,
	}
	for cat, want := range tests {
		if got := HintForCategory(cat); got != want {
			t.Errorf("HintForCategory(%q) = %v, want %v", cat, got, want)
		}
	}
}
