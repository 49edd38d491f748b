// glbtool inspects model files and writes test models for the viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/aowow-viewer/internal/engine/model"
	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "box":
		cmdBox(args)
	case "placeholder":
		cmdPlaceholder(args)
	case "normalize":
		cmdNormalize(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glbtool - model file utility

Usage:
  glbtool <command> [options]

Commands:
  info <file.glb>                               Show container and mesh details
  box [-size w,h,d] [-color RRGGBB] <out.glb>   Write a box model
  placeholder [-seed N] [-hint H] [-item] <out.glb>
                                                Write a procedural placeholder
  normalize [-hint H] <in.glb> <out.glb>        Write the normalized model

Hints: generic, character, item, spell

Examples:
  glbtool info models/npc/murloc.glb
  glbtool box -size 1,2,0.5 models/npc/crate.glb
  glbtool placeholder -seed 15432 -hint character murloc.glb`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbtool info <file.glb>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fail("%v", err)
	}
	c, err := formats.ReadGLBContainer(data)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("File:     %s\n", args[0])
	fmt.Printf("Version:  %d\n", c.Version)
	fmt.Printf("Length:   %d bytes\n", c.Length)
	fmt.Printf("JSON:     %d bytes\n", len(c.JSON))
	fmt.Printf("BIN:      %d bytes\n", len(c.BIN))

	m, err := formats.ParseGLB(data)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println()
	fmt.Printf("Decoder:    %s\n", m.Decoder)
	fmt.Printf("Vertices:   %d\n", m.VertexCount())
	fmt.Printf("Triangles:  %d\n", len(m.Indices)/3)
	fmt.Printf("Attributes: %s\n", attributes(m))
	if m.UpAxis != "" {
		fmt.Printf("Up axis:    %s\n", m.UpAxis)
	}
	mat := m.Material
	fmt.Printf("Material:   %q color=%v metal=%.2f rough=%.2f double=%t textured=%t\n",
		mat.Name, mat.BaseColor, mat.Metalness, mat.Roughness, mat.DoubleSided, mat.Textured())
	if mat.ImageErr != nil {
		fmt.Printf("Texture:    %v\n", mat.ImageErr)
	}
	if len(m.Animations) > 0 {
		fmt.Printf("Animations: %s\n", strings.Join(m.Animations, ", "))
	}

	n := model.Normalize(m, model.HintGeneric)
	size := n.Bounds.Size()
	fmt.Printf("Normalized: %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
}

func attributes(m *formats.GLBMesh) string {
	attrs := []string{"POSITION"}
	if m.HasNormals() {
		attrs = append(attrs, "NORMAL")
	}
	if m.HasUVs() {
		attrs = append(attrs, "TEXCOORD_0")
	}
	if m.HasColors() {
		attrs = append(attrs, "COLOR_0")
	}
	return strings.Join(attrs, ", ")
}

func cmdBox(args []string) {
	fs := flag.NewFlagSet("box", flag.ExitOnError)
	size := fs.String("size", "1,1,1", "Width, height and depth")
	color := fs.String("color", "ffffff", "Base color as RRGGBB")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbtool box [-size w,h,d] [-color RRGGBB] <out.glb>")
		os.Exit(1)
	}

	dims, err := parseSize(*size)
	if err != nil {
		fail("%v", err)
	}
	rgb, err := strconv.ParseUint(strings.TrimPrefix(*color, "#"), 16, 32)
	if err != nil {
		fail("bad color %q", *color)
	}

	m := formats.BoxMesh(dims[0], dims[1], dims[2])
	m.Material.BaseColor = formats.HexColor(uint32(rgb))
	write(fs.Arg(0), m)
}

func parseSize(s string) ([3]float32, error) {
	var out [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("size needs three values, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil || v <= 0 {
			return out, fmt.Errorf("bad size component %q", p)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func cmdPlaceholder(args []string) {
	fs := flag.NewFlagSet("placeholder", flag.ExitOnError)
	seed := fs.Int("seed", 0, "Seed, usually the display id")
	hint := fs.String("hint", "generic", "Material hint")
	item := fs.Bool("item", false, "Use the item placeholder shapes")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glbtool placeholder [-seed N] [-hint H] [-item] <out.glb>")
		os.Exit(1)
	}

	var m *model.Mesh
	if *item {
		m = model.ItemPlaceholder(*seed)
	} else {
		m = model.Placeholder(*seed, model.HintForCategory(*hint))
	}
	write(fs.Arg(0), m.Export())
}

func cmdNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	hint := fs.String("hint", "generic", "Material hint for untextured models")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: glbtool normalize [-hint H] <in.glb> <out.glb>")
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fail("%v", err)
	}
	raw, err := formats.ParseGLBOrFallback(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, writing fallback box\n", err)
	}
	write(fs.Arg(1), model.Normalize(raw, model.HintForCategory(*hint)).Export())
}

func write(path string, m *formats.GLBMesh) {
	data, err := formats.MarshalGLB(m)
	if err != nil {
		fail("%v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %s (%d vertices, %d bytes)\n", path, m.VertexCount(), len(data))
}
