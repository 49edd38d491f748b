package viewer

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/aowow-viewer/internal/engine/model"
)

// Frame is everything a surface needs to draw one frame. Mesh is nil
// while nothing is shown. The mesh must not be retained after Render
// returns except to track GPU uploads.
type Frame struct {
	Mesh       *model.Mesh
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Eye        mgl32.Vec3
	Width      int
	Height     int

	Animation string
	AnimTime  time.Duration
	Loading   bool
}

// Surface draws frames. Render and Release are called with the viewer
// locked, from whichever goroutine drives the viewer.
type Surface interface {
	Render(f Frame) error
	Resize(width, height int)
	Release()
}
