package debug

import "github.com/Faultbox/aowow-viewer/internal/engine/model"

// BoundsLines returns the 12 edges of b grown by padding as line-list
// vertices, three floats per vertex.
func BoundsLines(b model.Bounds, padding float32) []float32 {
	minX, minY, minZ := b.Min[0]-padding, b.Min[1]-padding, b.Min[2]-padding
	maxX, maxY, maxZ := b.Max[0]+padding, b.Max[1]+padding, b.Max[2]+padding

	return []float32{
		// Bottom
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Verticals
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}
