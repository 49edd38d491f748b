package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/aowow-viewer/internal/engine/model"
)

func TestBoundsLines(t *testing.T) {
	b := model.Bounds{Min: [3]float32{-1, 0, -2}, Max: [3]float32{1, 3, 2}}
	v := BoundsLines(b, 0.5)

	if len(v) != 12*2*3 {
		t.Fatalf("len = %d, want 72", len(v))
	}
	lo := [3]float32{-1.5, -0.5, -2.5}
	hi := [3]float32{1.5, 3.5, 2.5}
	for i := 0; i < len(v); i += 3 {
		for axis := 0; axis < 3; axis++ {
			if c := v[i+axis]; c != lo[axis] && c != hi[axis] {
				t.Fatalf("vertex %d axis %d = %v, not a padded corner", i/3, axis, c)
			}
		}
	}

	// Every edge runs along exactly one axis.
	for e := 0; e < 12; e++ {
		a, b := v[e*6:e*6+3], v[e*6+3:e*6+6]
		diff := 0
		for axis := 0; axis < 3; axis++ {
			if a[axis] != b[axis] {
				diff++
			}
		}
		if diff != 1 {
			t.Errorf("edge %d differs in %d axes", e, diff)
		}
	}
}

func TestFlipRows(t *testing.T) {
	// Two rows, bottom row red, top row blue, as GL returns them.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	img, err := FlipRows(pixels, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.RGBAAt(0, 0); c.B != 255 || c.R != 0 {
		t.Errorf("top-left = %v, want blue", c)
	}
	if c := img.RGBAAt(1, 1); c.R != 255 || c.B != 0 {
		t.Errorf("bottom-right = %v, want red", c)
	}

	if _, err := FlipRows(pixels[:10], 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
	if _, err := FlipRows(nil, 0, 0); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestScreenshots_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "viewer")
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }

	name, err := s.Save(make([]byte, 3*2*4), 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "viewer_2026-10-18_09-30-00.000.png"); name != want {
		t.Errorf("name = %q, want %q", name, want)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}
}
