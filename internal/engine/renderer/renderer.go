// Package renderer draws viewer frames with OpenGL 4.1.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/aowow-viewer/internal/engine/debug"
	"github.com/Faultbox/aowow-viewer/internal/engine/lighting"
	"github.com/Faultbox/aowow-viewer/internal/engine/model"
	"github.com/Faultbox/aowow-viewer/internal/engine/shader"
	"github.com/Faultbox/aowow-viewer/internal/engine/texture"
	"github.com/Faultbox/aowow-viewer/internal/logger"
	"github.com/Faultbox/aowow-viewer/internal/viewer"
)

// Background is the clear color.
var Background = [3]float32{0.1, 0.1, 0.15}

// BoundsColor is the color of the bounds overlay.
var BoundsColor = [4]float32{1, 0.8, 0.2, 1}

type gpuPart struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// GLSurface implements viewer.Surface on the current GL context. Meshes
// and textures are uploaded the first time they are drawn and deleted
// once the viewer stops showing them. All methods must be called on the
// thread that owns the context.
type GLSurface struct {
	log     *zap.Logger
	program *shader.MeshProgram
	lines   *shader.LineProgram
	rig     lighting.Rig

	showBounds bool
	boundsVAO  uint32
	boundsVBO  uint32

	mesh     *model.Mesh
	parts    map[*model.Part]*gpuPart
	textures map[uint64]uint32

	width    int
	height   int
	released bool
}

var _ viewer.Surface = (*GLSurface)(nil)

// New initializes OpenGL and compiles the mesh program.
// It must be called after the GL context is created.
func New(width, height int) (*GLSurface, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	s := &GLSurface{
		log:      logger.Named("renderer"),
		rig:      lighting.DefaultRig(),
		parts:    make(map[*model.Part]*gpuPart),
		textures: make(map[uint64]uint32),
	}
	s.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.CullFace(gl.BACK)
	gl.ClearColor(Background[0], Background[1], Background[2], 1.0)

	var err error
	s.program, err = shader.NewMeshProgram()
	if err != nil {
		return nil, err
	}
	s.lines, err = shader.NewLineProgram()
	if err != nil {
		s.program.Delete()
		return nil, err
	}
	s.Resize(width, height)
	return s, nil
}

// SetRig replaces the lighting.
func (s *GLSurface) SetRig(r lighting.Rig) {
	s.rig = r
}

// SetShowBounds toggles the bounding box overlay.
func (s *GLSurface) SetShowBounds(show bool) {
	s.showBounds = show
}

// ShowBounds reports whether the bounds overlay is drawn.
func (s *GLSurface) ShowBounds() bool {
	return s.showBounds
}

// Resize sets the viewport. Sizes are drawable pixels.
func (s *GLSurface) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	s.log.Debug("surface resized", zap.Int("width", width), zap.Int("height", height))
}

// Render clears the frame and draws f.Mesh.
func (s *GLSurface) Render(f viewer.Frame) error {
	if s.released {
		return fmt.Errorf("render on released surface")
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if f.Mesh != s.mesh {
		s.clearMesh()
		s.mesh = f.Mesh
	}
	if s.mesh == nil || s.mesh.Disposed() {
		return nil
	}

	key := shader.Light{Direction: s.rig.Key.Direction(), Color: s.rig.Key.Radiance()}
	back := shader.Light{Direction: s.rig.Back.Direction(), Color: s.rig.Back.Radiance()}
	s.program.Use(f.View, f.Projection, f.Eye, s.rig.Ambient(), key, back)

	used := make(map[uint64]bool)
	for _, p := range s.mesh.Parts {
		gp := s.part(p)
		if gp == nil {
			continue
		}
		mat := p.Material
		texID := s.texture(mat.Map)
		if texID != 0 {
			used[mat.Map.ID()] = true
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, texID)
		}
		if mat.DoubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}
		s.program.SetMaterial(mat.Color, mat.Emissive, mat.Metalness, mat.Roughness, texID != 0)

		gl.BindVertexArray(gp.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, gp.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)

	if s.showBounds {
		s.drawBounds(f)
	}

	// A composite texture replaces the maps it was applied over.
	for id, tex := range s.textures {
		if !used[id] {
			gl.DeleteTextures(1, &tex)
			delete(s.textures, id)
		}
	}

	if err := gl.GetError(); err != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", err)
	}
	return nil
}

// Release deletes every GL object the surface created.
func (s *GLSurface) Release() {
	if s.released {
		return
	}
	s.released = true
	s.clearMesh()
	s.program.Delete()
	s.lines.Delete()
	s.log.Info("surface released")
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (s *GLSurface) ReadPixels() ([]byte, int, int) {
	pixels := make([]byte, s.width*s.height*4)
	if len(pixels) == 0 {
		return nil, 0, 0
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(s.width), int32(s.height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, s.width, s.height
}

// drawBounds outlines the mesh bounds. The line buffer is rebuilt each
// frame; it is 24 vertices.
func (s *GLSurface) drawBounds(f viewer.Frame) {
	verts := debug.BoundsLines(s.mesh.Bounds, 0.02)
	if s.boundsVAO == 0 {
		gl.GenVertexArrays(1, &s.boundsVAO)
		gl.GenBuffers(1, &s.boundsVBO)
		gl.BindVertexArray(s.boundsVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.boundsVBO)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
		gl.EnableVertexAttribArray(0)
	}
	gl.BindVertexArray(s.boundsVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.boundsVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.DYNAMIC_DRAW)

	s.lines.Use(f.Projection.Mul4(f.View), BoundsColor)
	gl.DrawArrays(gl.LINES, 0, int32(len(verts)/3))
	gl.BindVertexArray(0)
}

// part returns the uploaded buffers for p, uploading on first use.
func (s *GLSurface) part(p *model.Part) *gpuPart {
	if gp, ok := s.parts[p]; ok {
		return gp
	}
	g := p.Geometry
	if g == nil || len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return nil
	}

	gp := &gpuPart{indexCount: int32(len(g.Indices))}
	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	vertexSize := int(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Vertices)*vertexSize, unsafe.Pointer(&g.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &gp.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	s.parts[p] = gp
	return gp
}

// texture returns the GL name for t, uploading it on first use. It
// returns 0 for nil or disposed textures.
func (s *GLSurface) texture(t *texture.Texture) uint32 {
	if t == nil || t.Disposed() {
		return 0
	}
	if id, ok := s.textures[t.ID()]; ok {
		return id
	}
	img := t.RGBA()
	if img == nil || len(img.Pix) == 0 {
		return 0
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	s.textures[t.ID()] = id
	w, h := t.Size()
	s.log.Debug("texture uploaded", zap.Uint64("texture", t.ID()), zap.Int("width", w), zap.Int("height", h))
	return id
}

func (s *GLSurface) clearMesh() {
	for _, gp := range s.parts {
		gl.DeleteVertexArrays(1, &gp.vao)
		gl.DeleteBuffers(1, &gp.vbo)
		gl.DeleteBuffers(1, &gp.ebo)
	}
	clear(s.parts)
	for _, id := range s.textures {
		gl.DeleteTextures(1, &id)
	}
	clear(s.textures)
	if s.boundsVAO != 0 {
		gl.DeleteVertexArrays(1, &s.boundsVAO)
		gl.DeleteBuffers(1, &s.boundsVBO)
		s.boundsVAO, s.boundsVBO = 0, 0
	}
	s.mesh = nil
}
