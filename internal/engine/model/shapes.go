package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// Box builds a box centered on the origin.
func Box(w, h, d float32) *Geometry {
	src := formats.BoxMesh(w, h, d)
	g := &Geometry{
		Vertices: make([]Vertex, len(src.Positions)),
		Indices:  src.Indices,
	}
	for i := range src.Positions {
		g.Vertices[i] = Vertex{Position: src.Positions[i], Normal: src.Normals[i], TexCoord: src.UVs[i]}
	}
	return g
}

// Cylinder builds a capped cylinder along Y centered on the origin.
func Cylinder(radiusTop, radiusBottom, height float32, segments int) *Geometry {
	segments = max(segments, 3)
	g := &Geometry{}
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	// Side: two rings, duplicated seam vertex for UVs.
	for ring := 0; ring < 2; ring++ {
		y := half - float32(ring)*height
		r := radiusTop
		if ring == 1 {
			r = radiusBottom
		}
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			theta := float64(u) * 2 * math.Pi
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
			g.Vertices = append(g.Vertices, Vertex{
				Position: [3]float32{r * sin, y, r * cos},
				Normal:   unitVector([3]float32{sin, slope, cos}),
				TexCoord: [2]float32{u, float32(ring)},
			})
		}
	}
	row := uint32(segments + 1)
	for s := uint32(0); s < uint32(segments); s++ {
		a, b := s, s+row
		g.Indices = append(g.Indices, a, b, a+1, b, b+1, a+1)
	}

	addCap := func(y, r, ny float32) {
		if r <= 0 {
			return
		}
		center := uint32(len(g.Vertices))
		g.Vertices = append(g.Vertices, Vertex{Position: [3]float32{0, y, 0}, Normal: [3]float32{0, ny, 0}, TexCoord: [2]float32{0.5, 0.5}})
		for s := 0; s <= segments; s++ {
			theta := float64(s) / float64(segments) * 2 * math.Pi
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
			g.Vertices = append(g.Vertices, Vertex{
				Position: [3]float32{r * sin, y, r * cos},
				Normal:   [3]float32{0, ny, 0},
				TexCoord: [2]float32{sin*0.5 + 0.5, cos*0.5 + 0.5},
			})
		}
		for s := uint32(1); s <= uint32(segments); s++ {
			if ny > 0 {
				g.Indices = append(g.Indices, center, center+s, center+s+1)
			} else {
				g.Indices = append(g.Indices, center, center+s+1, center+s)
			}
		}
	}
	addCap(half, radiusTop, 1)
	addCap(-half, radiusBottom, -1)
	return g
}

// Sphere builds a UV sphere. thetaLength limits the polar sweep from the
// top, so math.Pi/2 gives a dome.
func Sphere(radius float32, widthSegments, heightSegments int, thetaLength float64) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	g := &Geometry{}

	for y := 0; y <= heightSegments; y++ {
		v := float64(y) / float64(heightSegments)
		theta := v * thetaLength
		for x := 0; x <= widthSegments; x++ {
			u := float64(x) / float64(widthSegments)
			phi := u * 2 * math.Pi
			n := [3]float32{
				float32(-math.Cos(phi) * math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			g.Vertices = append(g.Vertices, Vertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   unitVector(n),
				TexCoord: [2]float32{float32(u), float32(v)},
			})
		}
	}

	row := uint32(widthSegments + 1)
	for y := uint32(0); y < uint32(heightSegments); y++ {
		for x := uint32(0); x < uint32(widthSegments); x++ {
			a := y*row + x + 1
			b := y*row + x
			c := (y+1)*row + x
			d := (y+1)*row + x + 1
			if y != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if y != uint32(heightSegments)-1 || thetaLength < math.Pi {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// Torus builds a torus in the XY plane. arc limits the sweep around the
// main ring, so math.Pi gives a half torus.
func Torus(radius, tube float32, radialSegments, tubularSegments int, arc float64) *Geometry {
	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)
	g := &Geometry{}

	for j := 0; j <= radialSegments; j++ {
		v := float64(j) / float64(radialSegments) * 2 * math.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * arc
			cx := float32(math.Cos(u)) * radius
			cy := float32(math.Sin(u)) * radius
			p := [3]float32{
				(radius + tube*float32(math.Cos(v))) * float32(math.Cos(u)),
				(radius + tube*float32(math.Cos(v))) * float32(math.Sin(u)),
				tube * float32(math.Sin(v)),
			}
			g.Vertices = append(g.Vertices, Vertex{
				Position: p,
				Normal:   unitVector([3]float32{p[0] - cx, p[1] - cy, p[2]}),
				TexCoord: [2]float32{float32(i) / float32(tubularSegments), float32(j) / float32(radialSegments)},
			})
		}
	}

	row := uint32(tubularSegments + 1)
	for j := uint32(1); j <= uint32(radialSegments); j++ {
		for i := uint32(1); i <= uint32(tubularSegments); i++ {
			a := row*j + i - 1
			b := row*(j-1) + i - 1
			c := row*(j-1) + i
			d := row*j + i
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// Icosahedron builds a faceted icosahedron of the given circumradius.
func Icosahedron(radius float32) *Geometry {
	t := float32((1 + math.Sqrt(5)) / 2)
	verts := [][3]float32{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	faces := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return polyhedron(verts, faces, radius)
}

// Tetrahedron builds a faceted tetrahedron of the given circumradius.
func Tetrahedron(radius float32) *Geometry {
	verts := [][3]float32{{1, 1, 1}, {-1, -1, 1}, {-1, 1, -1}, {1, -1, -1}}
	faces := [][3]uint32{{2, 1, 0}, {0, 3, 2}, {1, 3, 0}, {2, 3, 1}}
	return polyhedron(verts, faces, radius)
}

// Octahedron builds a faceted octahedron of the given circumradius.
func Octahedron(radius float32) *Geometry {
	verts := [][3]float32{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	faces := [][3]uint32{
		{0, 2, 4}, {0, 4, 3}, {0, 3, 5}, {0, 5, 2},
		{1, 2, 5}, {1, 5, 3}, {1, 3, 4}, {1, 4, 2},
	}
	return polyhedron(verts, faces, radius)
}

// polyhedron projects verts onto a sphere and gives each face its own normal.
func polyhedron(verts [][3]float32, faces [][3]uint32, radius float32) *Geometry {
	g := &Geometry{}
	for _, v := range verts {
		p := mgl32.Vec3(unitVector(v)).Mul(radius)
		g.Vertices = append(g.Vertices, Vertex{Position: [3]float32(p)})
	}
	for _, f := range faces {
		g.Indices = append(g.Indices, f[0], f[1], f[2])
	}
	FlatNormals(g)
	return g
}
