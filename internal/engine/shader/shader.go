// Package shader compiles GLSL programs and holds the mesh program used by
// the desktop surface.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", programLog(program))
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		if logLen < 1 {
			logLen = 1
		}
		log := make([]byte, logLen)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

func programLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen < 1 {
		return ""
	}
	log := make([]byte, logLen)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return string(log)
}

// GetUniform returns the uniform location for the given name, or -1 if it
// is missing or was optimized out.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Light is a directional light as the mesh program sees it.
type Light struct {
	Direction mgl32.Vec3 // Towards the light
	Color     mgl32.Vec3 // Premultiplied by intensity
}

// MeshProgram is the compiled mesh shader with its uniform locations.
type MeshProgram struct {
	ID uint32

	locMVP        int32
	locModel      int32
	locColor      int32
	locEmissive   int32
	locMetalness  int32
	locRoughness  int32
	locUseTexture int32
	locTexture    int32
	locAmbient    int32
	locKeyDir     int32
	locKeyColor   int32
	locBackDir    int32
	locBackColor  int32
	locEye        int32
}

// NewMeshProgram compiles the embedded mesh shaders.
func NewMeshProgram() (*MeshProgram, error) {
	id, err := CompileProgram(MeshVertexShader, MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	return &MeshProgram{
		ID:            id,
		locMVP:        GetUniform(id, "uMVP"),
		locModel:      GetUniform(id, "uModel"),
		locColor:      GetUniform(id, "uColor"),
		locEmissive:   GetUniform(id, "uEmissive"),
		locMetalness:  GetUniform(id, "uMetalness"),
		locRoughness:  GetUniform(id, "uRoughness"),
		locUseTexture: GetUniform(id, "uUseTexture"),
		locTexture:    GetUniform(id, "uTexture"),
		locAmbient:    GetUniform(id, "uAmbient"),
		locKeyDir:     GetUniform(id, "uKeyDir"),
		locKeyColor:   GetUniform(id, "uKeyColor"),
		locBackDir:    GetUniform(id, "uBackDir"),
		locBackColor:  GetUniform(id, "uBackColor"),
		locEye:        GetUniform(id, "uEye"),
	}, nil
}

// Use binds the program and sets the per-frame uniforms.
func (p *MeshProgram) Use(view, projection mgl32.Mat4, eye mgl32.Vec3, ambient mgl32.Vec3, key, back Light) {
	gl.UseProgram(p.ID)

	model := mgl32.Ident4()
	mvp := projection.Mul4(view).Mul4(model)
	gl.UniformMatrix4fv(p.locMVP, 1, false, &mvp[0])
	gl.UniformMatrix4fv(p.locModel, 1, false, &model[0])
	gl.Uniform3fv(p.locEye, 1, &eye[0])

	gl.Uniform3fv(p.locAmbient, 1, &ambient[0])
	gl.Uniform3fv(p.locKeyDir, 1, &key.Direction[0])
	gl.Uniform3fv(p.locKeyColor, 1, &key.Color[0])
	gl.Uniform3fv(p.locBackDir, 1, &back.Direction[0])
	gl.Uniform3fv(p.locBackColor, 1, &back.Color[0])
	gl.Uniform1i(p.locTexture, 0)
}

// SetMaterial sets the per-part uniforms. textured selects sampling from
// texture unit 0.
func (p *MeshProgram) SetMaterial(color [4]float32, emissive [3]float32, metalness, roughness float32, textured bool) {
	gl.Uniform4fv(p.locColor, 1, &color[0])
	gl.Uniform3fv(p.locEmissive, 1, &emissive[0])
	gl.Uniform1f(p.locMetalness, metalness)
	gl.Uniform1f(p.locRoughness, roughness)
	var t int32
	if textured {
		t = 1
	}
	gl.Uniform1i(p.locUseTexture, t)
}

// Delete releases the program.
func (p *MeshProgram) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// LineProgram draws flat-colored line lists.
type LineProgram struct {
	ID uint32

	locMVP   int32
	locColor int32
}

// NewLineProgram compiles the embedded line shaders.
func NewLineProgram() (*LineProgram, error) {
	id, err := CompileProgram(LineVertexShader, LineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line program: %w", err)
	}
	return &LineProgram{
		ID:       id,
		locMVP:   GetUniform(id, "uMVP"),
		locColor: GetUniform(id, "uColor"),
	}, nil
}

// Use binds the program with a view-projection and a line color.
func (p *LineProgram) Use(viewProj mgl32.Mat4, color [4]float32) {
	gl.UseProgram(p.ID)
	gl.UniformMatrix4fv(p.locMVP, 1, false, &viewProj[0])
	gl.Uniform4fv(p.locColor, 1, &color[0])
}

// Delete releases the program.
func (p *LineProgram) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}
