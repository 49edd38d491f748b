package model

import (
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/aowow-viewer/internal/engine/texture"
)

func TestShapes(t *testing.T) {
	tests := []struct {
		name     string
		geom     *Geometry
		vertices int
		indices  int
	}{
		{"box", Box(1, 2, 0.5), 24, 36},
		{"cylinder", Cylinder(0.8, 0.8, 2, 16), 2*17 + 2*18, 16*6 + 2*16*3},
		{"cone", Cylinder(0, 1, 2, 8), 2*9 + 10, 8*6 + 8*3},
		{"sphere", Sphere(1, 16, 16, math.Pi), 17 * 17, 16*3 + 14*16*6 + 16*3},
		{"dome", Sphere(1, 8, 4, math.Pi/2), 9 * 5, 8*3 + 3*8*6},
		{"torus", Torus(1, 0.4, 16, 32, 2*math.Pi), 17 * 33, 16 * 32 * 6},
		{"icosahedron", Icosahedron(1), 60, 60},
		{"tetrahedron", Tetrahedron(1), 12, 12},
		{"octahedron", Octahedron(1), 24, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.geom.Vertices); got != tt.vertices {
				t.Errorf("vertices = %d, want %d", got, tt.vertices)
			}
			if got := len(tt.geom.Indices); got != tt.indices {
				t.Errorf("indices = %d, want %d", got, tt.indices)
			}
			m := &Mesh{Parts: []*Part{{Name: tt.name, Geometry: tt.geom, Material: HintGeneric.Material()}}}
			if err := m.Validate(); err != nil {
				t.Error(err)
			}
			for i, v := range tt.geom.Vertices {
				if l := mgl32.Vec3(v.Normal).Len(); !approx(l, 1) {
					t.Fatalf("vertex %d normal length %f", i, l)
				}
			}
		})
	}
}

func TestPolyhedronRadius(t *testing.T) {
	for _, g := range []*Geometry{Icosahedron(2), Tetrahedron(2), Octahedron(2)} {
		for _, v := range g.Vertices {
			if l := mgl32.Vec3(v.Position).Len(); !approx(l, 2) {
				t.Fatalf("vertex %v at radius %f, want 2", v.Position, l)
			}
		}
	}
}

func TestPolyhedronOutwardNormals(t *testing.T) {
	for _, g := range []*Geometry{Icosahedron(1), Tetrahedron(1), Octahedron(1)} {
		for _, v := range g.Vertices {
			if mgl32.Vec3(v.Normal).Dot(mgl32.Vec3(v.Position)) <= 0 {
				t.Fatalf("normal %v points inward at %v", v.Normal, v.Position)
			}
		}
	}
}

func TestComputeNormals(t *testing.T) {
	// Two triangles of a quad facing +Y, split at the diagonal.
	g := &Geometry{
		Vertices: []Vertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{0, 0, 1}},
			{Position: [3]float32{1, 0, 1}},
			{Position: [3]float32{1, 0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	ComputeNormals(g)
	for i, v := range g.Vertices {
		if !approxVec(v.Normal, [3]float32{0, 1, 0}) {
			t.Errorf("vertex %d normal = %v, want +Y", i, v.Normal)
		}
	}
}

func TestSmoothNormals(t *testing.T) {
	vertices := []Vertex{
		{Position: [3]float32{1, 1, 1}, Normal: [3]float32{1, 0, 0}},
		{Position: [3]float32{1, 1, 1}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{5, 5, 5}, Normal: [3]float32{0, 0, 1}},
	}
	SmoothNormals(vertices)

	s := float32(1 / math.Sqrt2)
	want := [3]float32{s, s, 0}
	if !approxVec(vertices[0].Normal, want) || !approxVec(vertices[1].Normal, want) {
		t.Errorf("shared normals = %v, %v, want %v", vertices[0].Normal, vertices[1].Normal, want)
	}
	if vertices[2].Normal != [3]float32{0, 0, 1} {
		t.Errorf("lone vertex normal changed to %v", vertices[2].Normal)
	}
}

func TestTransform(t *testing.T) {
	g := Box(2, 2, 2)
	g.Transform(mgl32.Translate3D(1, 0, 0).Mul4(mgl32.HomogRotate3DZ(math.Pi / 2)))

	b := ComputeBounds(g)
	if !approxVec(b.Min, [3]float32{0, -1, -1}) || !approxVec(b.Max, [3]float32{2, 1, 1}) {
		t.Errorf("bounds = %+v", b)
	}
	// +X face normal rotates to +Y.
	if !approxVec(g.Vertices[0].Normal, [3]float32{0, 1, 0}) {
		t.Errorf("normal = %v", g.Vertices[0].Normal)
	}
}

func TestComputeBoundsEmpty(t *testing.T) {
	if b := ComputeBounds(&Geometry{}); b != (Bounds{}) {
		t.Errorf("empty bounds = %+v", b)
	}
}

func TestPlaceholderDeterministic(t *testing.T) {
	for seed := -3; seed < 12; seed++ {
		a := Placeholder(seed, HintGeneric)
		b := Placeholder(seed, HintGeneric)
		if a.Parts[0].Name != b.Parts[0].Name || a.Parts[0].Material.Color != b.Parts[0].Material.Color {
			t.Errorf("seed %d: placeholders differ", seed)
		}
		if a.VertexCount() != b.VertexCount() || a.Bounds != b.Bounds {
			t.Errorf("seed %d: geometry differs", seed)
		}
		if !a.Placeholder {
			t.Errorf("seed %d: Placeholder flag not set", seed)
		}
		if !approx(a.Bounds.MaxExtent(), ReferenceSize) || !approx(a.Bounds.Min[1], 0) {
			t.Errorf("seed %d: bounds = %+v", seed, a.Bounds)
		}
	}
}

func TestPlaceholderSelection(t *testing.T) {
	tests := []struct {
		seed  int
		shape string
		color uint32
	}{
		{0, "sphere", 0xFF6B6B},
		{1, "cylinder", 0x4ECDC4},
		{2, "pyramid", 0x45B7D1},
		{3, "torus", 0xFFA07A},
		{4, "box", 0x98D8C8},
		{5, "sphere", 0xF7DC6F},
		{13, "torus", 0xFFA07A},
		{-1, "box", 0xAED6F1},
	}
	for _, tt := range tests {
		m := Placeholder(tt.seed, HintCharacter)
		if m.Parts[0].Name != tt.shape {
			t.Errorf("seed %d: shape = %s, want %s", tt.seed, m.Parts[0].Name, tt.shape)
		}
		if got := m.Parts[0].Material.Color; got != SeedColor(tt.seed) || got != hex(tt.color) {
			t.Errorf("seed %d: color = %v", tt.seed, got)
		}
		if m.Hint != HintCharacter {
			t.Errorf("seed %d: hint = %v", tt.seed, m.Hint)
		}
	}
}

func hex(rgb uint32) [4]float32 {
	return [4]float32{
		float32(rgb>>16&0xFF) / 255,
		float32(rgb>>8&0xFF) / 255,
		float32(rgb&0xFF) / 255,
		1,
	}
}

func TestItemPlaceholder(t *testing.T) {
	parts := map[ItemShape]int{
		ItemSword: 3, ItemAxe: 2, ItemStaff: 2, ItemBow: 2,
		ItemShield: 2, ItemHelm: 3, ItemArmor: 3, ItemGem: 2,
	}
	for seed := 0; seed < 8; seed++ {
		shape := ItemShapeForSeed(seed)
		m := ItemPlaceholder(seed)
		if len(m.Parts) != parts[shape] {
			t.Errorf("%s: %d parts, want %d", shape, len(m.Parts), parts[shape])
		}
		if m.Hint != HintItem || !m.Placeholder {
			t.Errorf("%s: hint %v placeholder %v", shape, m.Hint, m.Placeholder)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("%s: %v", shape, err)
		}
		if !approx(m.Bounds.MaxExtent(), ReferenceSize) {
			t.Errorf("%s: extent %f", shape, m.Bounds.MaxExtent())
		}
	}
	if ItemShapeForSeed(15) != ItemGem || ItemShapeForSeed(-1) != ItemGem {
		t.Error("item shape should wrap by 8")
	}
}

func TestItemPlaceholderGemGlows(t *testing.T) {
	m := ItemPlaceholder(7)
	gem := m.Parts[0].Material
	c := SeedColor(7)
	want := [3]float32{c[0] * 0.3, c[1] * 0.3, c[2] * 0.3}
	if gem.Emissive != want {
		t.Errorf("emissive = %v, want %v", gem.Emissive, want)
	}
}

func newTexture() *texture.Texture {
	return texture.FromImage("t", image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func TestSetTexture(t *testing.T) {
	m := ItemPlaceholder(0)
	first := newTexture()
	m.SetTexture(first)
	if got := m.Textures(); len(got) != 1 || got[0] != first {
		t.Fatalf("textures = %v", got)
	}
	for _, p := range m.Parts {
		if p.Material.Color != [4]float32{1, 1, 1, 1} {
			t.Errorf("%s: color not reset", p.Name)
		}
	}

	second := newTexture()
	m.SetTexture(second)
	if !first.Disposed() {
		t.Error("replaced texture should be disposed")
	}
	if second.Disposed() {
		t.Error("new texture disposed")
	}

	// Setting the same texture again keeps it alive.
	m.SetTexture(second)
	if second.Disposed() {
		t.Error("re-set texture disposed")
	}
}

func TestMeshDispose(t *testing.T) {
	m := Placeholder(1, HintGeneric)
	tex := newTexture()
	m.SetTexture(tex)

	m.Dispose()
	m.Dispose()
	if !m.Disposed() || !tex.Disposed() {
		t.Error("dispose should release mesh and textures")
	}
	if m.VertexCount() != 0 {
		t.Errorf("vertex count after dispose = %d", m.VertexCount())
	}

	var nilMesh *Mesh
	nilMesh.Dispose()
}

func TestAnimator(t *testing.T) {
	a := NewAnimator(&Mesh{Animations: []string{"Stand", "Walk"}})
	if a.Current() != "Stand" {
		t.Errorf("current = %q, want first clip", a.Current())
	}
	a.Advance(time.Second)
	if err := a.Play("Walk"); err != nil {
		t.Fatal(err)
	}
	if a.Current() != "Walk" || a.Elapsed() != 0 {
		t.Errorf("after Play: %q at %v", a.Current(), a.Elapsed())
	}
	a.Advance(250 * time.Millisecond)
	if a.Elapsed() != 250*time.Millisecond {
		t.Errorf("elapsed = %v", a.Elapsed())
	}

	err := a.Play("Dance")
	if !errors.Is(err, ErrUnknownClip) {
		t.Errorf("err = %v, want ErrUnknownClip", err)
	}
	if a.Current() != "Walk" {
		t.Error("failed Play should keep the current clip")
	}

	empty := NewAnimator(nil)
	empty.Advance(time.Second)
	if empty.Current() != "" || empty.Elapsed() != 0 {
		t.Error("animator without clips should stay idle")
	}
}

func TestExport(t *testing.T) {
	m := ItemPlaceholder(0)
	out := m.Export()
	if out.VertexCount() != m.VertexCount() {
		t.Errorf("vertices = %d, want %d", out.VertexCount(), m.VertexCount())
	}
	indices := 0
	for _, p := range m.Parts {
		indices += len(p.Geometry.Indices)
	}
	if len(out.Indices) != indices {
		t.Errorf("indices = %d, want %d", len(out.Indices), indices)
	}
	for _, idx := range out.Indices {
		if int(idx) >= out.VertexCount() {
			t.Fatalf("index %d out of range", idx)
		}
	}
	if out.Material.BaseColor != m.Parts[0].Material.Color {
		t.Errorf("base color = %v", out.Material.BaseColor)
	}
	if out.UpAxis != "y" || !out.HasNormals() {
		t.Errorf("up axis %q, normals %v", out.UpAxis, out.HasNormals())
	}
}
