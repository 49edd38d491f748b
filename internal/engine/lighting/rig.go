// Package lighting describes the fixed light rig the viewer shades models with.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight shines from Position towards the origin.
type DirectionalLight struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3 // RGB, 0-1
	Intensity float32
}

// Direction returns the unit vector from the origin towards the light.
func (l DirectionalLight) Direction() mgl32.Vec3 {
	if l.Position.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return l.Position.Normalize()
}

// Radiance returns the color scaled by intensity.
func (l DirectionalLight) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// Rig is an ambient term plus a key and a back light.
type Rig struct {
	AmbientColor     mgl32.Vec3
	AmbientIntensity float32
	Key              DirectionalLight
	Back             DirectionalLight
}

// DefaultRig returns the viewer's standard lighting: soft white ambient, a
// white key light above and in front, and a faint blue rim from behind.
func DefaultRig() Rig {
	return Rig{
		AmbientColor:     mgl32.Vec3{1, 1, 1},
		AmbientIntensity: 0.6,
		Key: DirectionalLight{
			Position:  mgl32.Vec3{5, 10, 7},
			Color:     mgl32.Vec3{1, 1, 1},
			Intensity: 0.8,
		},
		Back: DirectionalLight{
			Position:  mgl32.Vec3{-5, 5, -5},
			Color:     HexColor(0x8888ff),
			Intensity: 0.3,
		},
	}
}

// Ambient returns the ambient color scaled by intensity.
func (r Rig) Ambient() mgl32.Vec3 {
	return r.AmbientColor.Mul(r.AmbientIntensity)
}

// Irradiance returns the light arriving at a surface with unit normal n,
// ignoring specular.
func (r Rig) Irradiance(n mgl32.Vec3) mgl32.Vec3 {
	out := r.Ambient()
	for _, l := range []DirectionalLight{r.Key, r.Back} {
		d := float32(math.Max(0, float64(n.Dot(l.Direction()))))
		out = out.Add(l.Radiance().Mul(d))
	}
	return out
}

// HexColor converts 0xRRGGBB to linear-free 0-1 RGB.
func HexColor(c uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((c>>16)&0xff) / 255,
		float32((c>>8)&0xff) / 255,
		float32(c&0xff) / 255,
	}
}
