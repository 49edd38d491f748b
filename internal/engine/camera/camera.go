// Package camera provides the orbit camera used by the model viewer.
package camera

import (
	gomath "math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Default orbit state restored by Reset.
const (
	DefaultAzimuth  float32 = 0
	DefaultPolar    float32 = gomath.Pi / 4
	DefaultDistance float32 = 5
)

// DefaultTarget is the point the camera looks at after Reset.
var DefaultTarget = mgl32.Vec3{0, 1, 0}

// Polar angle limits keep the camera from flipping through the poles.
const (
	MinPolar float32 = 0.1
	MaxPolar float32 = gomath.Pi - 0.1
)

// fitMargin leaves room around a framed object.
const fitMargin float32 = 1.5

// Mode is the active drag gesture.
type Mode int

const (
	ModeIdle Mode = iota
	ModeRotating
	ModePanning
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRotating:
		return "rotating"
	case ModePanning:
		return "panning"
	default:
		return "idle"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bit set of held keyboard modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
)

// Touch is one active touch point.
type Touch struct {
	ID   int64
	X, Y float32
}

// Config holds the controller limits and sensitivities.
type Config struct {
	MinDistance float32
	MaxDistance float32
	FOV         float32 // Vertical field of view in degrees

	RotateSpeed float32 // Radians per pixel
	PanSpeed    float32 // World units per pixel at DefaultDistance
	ZoomBase    float32 // Distance factor per 100 wheel units
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MinDistance: 0.5,
		MaxDistance: 50,
		FOV:         75,
		RotateSpeed: 0.01,
		PanSpeed:    0.01,
		ZoomBase:    1.1,
	}
}

// State is a snapshot of the orbit.
type State struct {
	Azimuth  float32
	Polar    float32
	Distance float32
	Target   mgl32.Vec3
}

// Controller is an orbit camera driven by pointer and touch input. It
// holds no reference to the model; FitToBounds receives bounds only.
// Methods are safe for concurrent use.
type Controller struct {
	mu  sync.Mutex
	cfg Config

	azimuth  float32
	polar    float32
	distance float32
	target   mgl32.Vec3

	mode         Mode
	lastX, lastY float32

	touches   map[int64]Touch
	pinchSpan float32
}

// NewController creates a controller in the default orbit state.
func NewController(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = def.MinDistance
	}
	if cfg.MaxDistance < cfg.MinDistance {
		cfg.MaxDistance = max(def.MaxDistance, cfg.MinDistance)
	}
	if cfg.FOV <= 0 || cfg.FOV >= 180 {
		cfg.FOV = def.FOV
	}
	if cfg.RotateSpeed == 0 {
		cfg.RotateSpeed = def.RotateSpeed
	}
	if cfg.PanSpeed == 0 {
		cfg.PanSpeed = def.PanSpeed
	}
	if cfg.ZoomBase <= 1 {
		cfg.ZoomBase = def.ZoomBase
	}

	c := &Controller{cfg: cfg, touches: make(map[int64]Touch)}
	c.reset()
	return c
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Mode returns the active gesture.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// State returns a snapshot of the orbit.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Azimuth: c.azimuth, Polar: c.polar, Distance: c.distance, Target: c.target}
}

// PointerDown starts a drag. The primary button rotates; the secondary
// button, or primary with Shift or Ctrl held, pans.
func (c *Controller) PointerDown(b Button, x, y float32, mods Modifiers) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case b == ButtonSecondary:
		c.mode = ModePanning
	case b == ButtonPrimary && mods&(ModShift|ModCtrl) != 0:
		c.mode = ModePanning
	case b == ButtonPrimary:
		c.mode = ModeRotating
	default:
		return
	}
	c.lastX, c.lastY = x, y
}

// PointerMove applies the active gesture for the pointer delta.
func (c *Controller) PointerMove(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y

	switch c.mode {
	case ModeRotating:
		c.rotate(dx, dy)
	case ModePanning:
		c.pan(dx, dy)
	}
}

// PointerUp ends any drag.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeIdle
}

// Wheel zooms by a factor of ZoomBase per 100 units of deltaY. Positive
// deltaY moves the camera away.
func (c *Controller) Wheel(deltaY float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	factor := float32(gomath.Pow(float64(c.cfg.ZoomBase), float64(deltaY)/100))
	c.setDistance(c.distance * factor)
}

// TouchStart registers new touch points. One finger rotates, two pinch.
func (c *Controller) TouchStart(touches []Touch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range touches {
		c.touches[t.ID] = t
	}
	c.syncTouchMode()
}

// TouchMove updates touch points and applies the gesture.
func (c *Controller) TouchMove(touches []Touch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch len(c.touches) {
	case 1:
		for _, t := range touches {
			prev, ok := c.touches[t.ID]
			if !ok {
				continue
			}
			c.rotate(t.X-prev.X, t.Y-prev.Y)
			c.touches[t.ID] = t
		}
	case 2:
		for _, t := range touches {
			if _, ok := c.touches[t.ID]; ok {
				c.touches[t.ID] = t
			}
		}
		span := c.span()
		if c.pinchSpan > 0 && span > 0 {
			c.setDistance(c.distance * c.pinchSpan / span)
		}
		c.pinchSpan = span
	}
}

// TouchEnd removes touch points.
func (c *Controller) TouchEnd(touches []Touch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range touches {
		delete(c.touches, t.ID)
	}
	c.syncTouchMode()
}

func (c *Controller) syncTouchMode() {
	c.pinchSpan = 0
	switch len(c.touches) {
	case 1:
		c.mode = ModeRotating
	case 2:
		c.mode = ModeIdle
		c.pinchSpan = c.span()
	default:
		c.mode = ModeIdle
	}
}

// span is the distance between the first two touch points.
func (c *Controller) span() float32 {
	var pts []Touch
	for _, t := range c.touches {
		pts = append(pts, t)
		if len(pts) == 2 {
			break
		}
	}
	if len(pts) < 2 {
		return 0
	}
	return mgl32.Vec2{pts[0].X - pts[1].X, pts[0].Y - pts[1].Y}.Len()
}

func (c *Controller) rotate(dx, dy float32) {
	c.azimuth += dx * c.cfg.RotateSpeed
	c.polar = mgl32.Clamp(c.polar-dy*c.cfg.RotateSpeed, MinPolar, MaxPolar)
}

// pan moves the target in the view plane. Speed scales with distance so a
// drag covers the same screen fraction at any zoom.
func (c *Controller) pan(dx, dy float32) {
	speed := c.cfg.PanSpeed * c.distance / DefaultDistance
	forward := c.target.Sub(c.position()).Normalize()
	up := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(up).Normalize()
	c.target = c.target.Add(right.Mul(-dx * speed)).Add(up.Mul(dy * speed))
}

func (c *Controller) setDistance(d float32) {
	c.distance = mgl32.Clamp(d, c.cfg.MinDistance, c.cfg.MaxDistance)
}

// FitToBounds centers the target on the box and backs off far enough to
// frame its largest dimension.
func (c *Controller) FitToBounds(minB, maxB mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := maxB.Sub(minB)
	maxDim := max(size[0], size[1], size[2])
	fov := float64(mgl32.DegToRad(c.cfg.FOV))
	dist := maxDim / 2 / float32(gomath.Tan(fov/2))

	c.target = minB.Add(maxB).Mul(0.5)
	c.setDistance(dist * fitMargin)
}

// Reset restores the default orbit.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.azimuth = DefaultAzimuth
	c.polar = DefaultPolar
	c.distance = DefaultDistance
	c.target = DefaultTarget
	c.mode = ModeIdle
	clear(c.touches)
	c.pinchSpan = 0
}

// Position returns the camera position in world space.
func (c *Controller) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *Controller) position() mgl32.Vec3 {
	sinP, cosP := gomath.Sincos(float64(c.polar))
	sinA, cosA := gomath.Sincos(float64(c.azimuth))
	offset := mgl32.Vec3{
		float32(sinP * cosA),
		float32(cosP),
		float32(sinP * sinA),
	}
	return c.target.Add(offset.Mul(c.distance))
}

// ViewMatrix returns the view matrix looking at the target.
func (c *Controller) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.position(), c.target, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the aspect ratio.
func (c *Controller) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.cfg.FOV), aspect, 0.1, 1000)
}
