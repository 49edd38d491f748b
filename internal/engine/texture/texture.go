// Package texture provides image decoding and disposable texture resources.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/Faultbox/aowow-viewer/pkg/formats"
)

// MaxSize is the largest edge uploaded to the GPU. Larger images are
// scaled down preserving aspect ratio.
const MaxSize = 2048

// Texture errors.
var (
	ErrNotImage = errors.New("response is not an image")
	ErrEmpty    = errors.New("empty image data")
)

var nextID atomic.Uint64

// Texture is an RGBA image owned by exactly one material at a time.
type Texture struct {
	id     uint64
	Name   string
	Format string // Source encoding: png, jpeg, webp

	mu       sync.Mutex
	img      *image.RGBA
	disposed bool
}

// FromImage converts img to a texture.
func FromImage(name string, img image.Image) *Texture {
	return &Texture{
		id:   nextID.Add(1),
		Name: name,
		img:  toRGBA(img),
	}
}

// Decode decodes PNG, JPEG or WebP bytes. Bodies that look like a JSON or
// HTML error page return ErrNotImage without attempting a decode.
func Decode(name string, data []byte) (*Texture, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	if trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '<' {
		return nil, ErrNotImage
	}

	img, format, err := formats.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	t := FromImage(name, img)
	t.Format = format
	return t, nil
}

// ID returns a process-unique identifier, stable for the texture's lifetime.
func (t *Texture) ID() uint64 {
	return t.id
}

// RGBA returns the pixel data, or nil after Dispose.
func (t *Texture) RGBA() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Size returns the pixel dimensions, or zero after Dispose.
func (t *Texture) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Dispose releases the pixel data. Safe to call more than once.
func (t *Texture) Dispose() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.img = nil
	t.disposed = true
}

// Disposed reports whether Dispose has been called.
func (t *Texture) Disposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > MaxSize || h > MaxSize {
		if w >= h {
			w, h = MaxSize, max(1, h*MaxSize/w)
		} else {
			w, h = max(1, w*MaxSize/h), MaxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		return dst
	}

	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) {
		out := image.NewRGBA(rgba.Rect)
		copy(out.Pix, rgba.Pix)
		return out
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
