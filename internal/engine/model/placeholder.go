package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// Palette is the placeholder color table, indexed by seed.
var Palette = []uint32{
	0xFF6B6B, 0x4ECDC4, 0x45B7D1, 0xFFA07A, 0x98D8C8,
	0xF7DC6F, 0xBB8FCE, 0x85C1E2, 0xF8B88B, 0xAED6F1,
}

// Shared placeholder colors.
const (
	colorSilver = 0xC0C0C0
	colorWood   = 0x8B4513
	colorGold   = 0xFFD700
	colorDark   = 0x333333
)

// Shape identifies a generic placeholder primitive.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeCylinder
	ShapePyramid
	ShapeTorus
	ShapeBox
	shapeCount
)

// ItemShape identifies a procedural item placeholder.
type ItemShape int

const (
	ItemSword ItemShape = iota
	ItemAxe
	ItemStaff
	ItemBow
	ItemShield
	ItemHelm
	ItemArmor
	ItemGem
	itemShapeCount
)

var itemShapeNames = [...]string{"sword", "axe", "staff", "bow", "shield", "helm", "armor", "gem"}

// String returns the item shape name.
func (s ItemShape) String() string {
	if s < 0 || s >= itemShapeCount {
		return "unknown"
	}
	return itemShapeNames[s]
}

// seedIndex maps any seed, including negative ones, into [0, n).
func seedIndex(seed, n int) int {
	return ((seed % n) + n) % n
}

// SeedColor returns the palette color for a seed.
func SeedColor(seed int) [4]float32 {
	return formats.HexColor(Palette[seedIndex(seed, len(Palette))])
}

// ShapeForSeed returns the generic placeholder shape for a seed.
func ShapeForSeed(seed int) Shape {
	return Shape(seedIndex(seed, int(shapeCount)))
}

// ItemShapeForSeed returns the item placeholder shape for a seed.
func ItemShapeForSeed(seed int) ItemShape {
	return ItemShape(seedIndex(seed, int(itemShapeCount)))
}

// Placeholder builds a deterministic stand-in mesh: the same seed always
// yields the same shape and color.
func Placeholder(seed int, hint Hint) *Mesh {
	color := SeedColor(seed)

	var part *Part
	switch ShapeForSeed(seed) {
	case ShapeSphere:
		part = newPart("sphere", Icosahedron(1), color, 0.3, 0.7)
	case ShapeCylinder:
		part = newPart("cylinder", Cylinder(0.8, 0.8, 2, 16), color, 0.4, 0.6)
	case ShapePyramid:
		part = newPart("pyramid", Tetrahedron(1), color, 0.2, 0.8)
	case ShapeTorus:
		part = newPart("torus", Torus(1, 0.4, 16, 32, 2*math.Pi), color, 0.5, 0.5)
	default:
		part = newPart("box", Box(1, 2, 0.5), color, 0.3, 0.7)
	}
	part.Material.DoubleSided = true

	m := &Mesh{Parts: []*Part{part}, Hint: hint, Placeholder: true}
	Place(m)
	return m
}

// ItemPlaceholder builds one of eight procedural item shapes from a seed.
func ItemPlaceholder(seed int) *Mesh {
	color := SeedColor(seed)
	var parts []*Part

	switch ItemShapeForSeed(seed) {
	case ItemSword:
		parts = []*Part{
			newPart("blade", Box(0.3, 2, 0.1).Translate(mgl32.Vec3{0, 0.5, 0}), formats.HexColor(colorSilver), 0.8, 0.2),
			newPart("hilt", Cylinder(0.15, 0.15, 0.5, 8).Translate(mgl32.Vec3{0, -0.5, 0}), color, 0.3, 0.7),
			newPart("guard", Box(0.8, 0.1, 0.2).Translate(mgl32.Vec3{0, -0.2, 0}), color, 0.3, 0.7),
		}
	case ItemAxe:
		parts = []*Part{
			newPart("handle", Cylinder(0.1, 0.1, 1.5, 8), formats.HexColor(colorWood), 0.1, 0.8),
			newPart("blade", Box(0.6, 0.8, 0.15).Translate(mgl32.Vec3{0, 0.8, 0}), color, 0.7, 0.3),
		}
	case ItemStaff:
		parts = []*Part{
			newPart("shaft", Cylinder(0.08, 0.08, 2, 8), formats.HexColor(colorWood), 0.2, 0.7),
			newPart("orb", Sphere(0.3, 16, 16, math.Pi).Translate(mgl32.Vec3{0, 1.2, 0}), color, 0.6, 0.4),
		}
	case ItemBow:
		bow := Torus(0.8, 0.1, 8, 32, math.Pi)
		bow.Transform(mgl32.HomogRotate3DZ(math.Pi / 2))
		parts = []*Part{
			newPart("limbs", bow, formats.HexColor(colorWood), 0.3, 0.6),
			newPart("string", Cylinder(0.02, 0.02, 1.6, 4), formats.HexColor(colorDark), 0.1, 0.9),
		}
	case ItemShield:
		body := Cylinder(0.8, 0.8, 0.2, 16)
		body.Transform(mgl32.HomogRotate3DX(math.Pi / 2))
		parts = []*Part{
			newPart("body", body, color, 0.4, 0.6),
			newPart("boss", Sphere(0.3, 16, 16, math.Pi).Translate(mgl32.Vec3{0, 0, 0.15}), formats.HexColor(colorGold), 0.8, 0.2),
		}
	case ItemHelm:
		parts = []*Part{
			newPart("dome", Sphere(0.6, 16, 16, math.Pi/2).Translate(mgl32.Vec3{0, 0.3, 0}), color, 0.6, 0.4),
			newPart("guard", Box(0.5, 0.4, 0.15).Translate(mgl32.Vec3{0, -0.1, 0}), color, 0.6, 0.4),
			newPart("visor", Box(0.6, 0.15, 0.1).Translate(mgl32.Vec3{0, 0.05, 0.1}), formats.HexColor(colorDark), 0.9, 0.1),
		}
	case ItemArmor:
		parts = []*Part{
			newPart("chest", Box(0.8, 1, 0.3), color, 0.7, 0.3),
			newPart("left shoulder", Sphere(0.35, 16, 16, math.Pi).Translate(mgl32.Vec3{-0.6, 0.3, 0}), color, 0.7, 0.3),
			newPart("right shoulder", Sphere(0.35, 16, 16, math.Pi).Translate(mgl32.Vec3{0.6, 0.3, 0}), color, 0.7, 0.3),
		}
	default:
		gem := newPart("gem", Octahedron(0.5), color, 0.1, 0.1)
		gem.Material.Emissive = [3]float32{color[0] * 0.3, color[1] * 0.3, color[2] * 0.3}
		parts = []*Part{
			gem,
			newPart("setting", Cylinder(0.6, 0.6, 0.2, 8).Translate(mgl32.Vec3{0, -0.4, 0}), formats.HexColor(colorGold), 0.8, 0.2),
		}
	}

	m := &Mesh{Parts: parts, Hint: HintItem, Placeholder: true}
	Place(m)
	return m
}

func newPart(name string, g *Geometry, color [4]float32, metalness, roughness float32) *Part {
	return &Part{
		Name:     name,
		Geometry: g,
		Material: &Material{
			Name:      name,
			Color:     color,
			Metalness: metalness,
			Roughness: roughness,
		},
	}
}
