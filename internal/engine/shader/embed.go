package shader

import _ "embed"

// MeshVertexShader is the vertex shader for model meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for model meshes.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LineVertexShader and LineFragmentShader draw flat-colored debug lines.
//
//go:embed lines.vert
var LineVertexShader string

//go:embed lines.frag
var LineFragmentShader string
