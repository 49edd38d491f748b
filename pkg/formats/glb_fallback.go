package formats

// Fallback box dimensions and material.
const (
	FallbackWidth  = 1.0
	FallbackHeight = 2.0
	FallbackDepth  = 0.5

	FallbackColor     = 0x888888
	FallbackMetalness = 0.3
	FallbackRoughness = 0.7
)

// FallbackBox returns the grey box substituted for unreadable assets.
func FallbackBox() *GLBMesh {
	m := BoxMesh(FallbackWidth, FallbackHeight, FallbackDepth)
	m.Material = GLBMaterial{
		Name:        "fallback",
		BaseColor:   HexColor(FallbackColor),
		Metalness:   FallbackMetalness,
		Roughness:   FallbackRoughness,
		DoubleSided: true,
	}
	m.Fallback = true
	return m
}

// BoxMesh builds an axis-aligned box centered on the origin with
// per-face normals and UVs.
func BoxMesh(w, h, d float32) *GLBMesh {
	hx, hy, hz := w/2, h/2, d/2

	// Each face: normal, then four corners counter-clockwise seen from outside.
	faces := []struct {
		n [3]float32
		c [4][3]float32
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &GLBMesh{
		Positions: make([][3]float32, 0, 24),
		Normals:   make([][3]float32, 0, 24),
		UVs:       make([][2]float32, 0, 24),
		Indices:   make([]uint32, 0, 36),
		Material:  GLBMaterial{BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1},
	}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for i, c := range f.c {
			m.Positions = append(m.Positions, c)
			m.Normals = append(m.Normals, f.n)
			m.UVs = append(m.UVs, uvs[i])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// HexColor converts 0xRRGGBB to an opaque RGBA factor.
func HexColor(rgb uint32) [4]float32 {
	return [4]float32{
		float32((rgb>>16)&0xFF) / 255,
		float32((rgb>>8)&0xFF) / 255,
		float32(rgb&0xFF) / 255,
		1,
	}
}
