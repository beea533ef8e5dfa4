package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/xfmoulet/qoi"
)

func makeTestGrid(w, h int) *Grid {
	g := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetPixel(x, y, Pixel{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
			})
		}
	}
	return g
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestGrid_Indexing(t *testing.T) {
	g := New(3, 2)
	if g.Width() != 3 || g.Height() != 2 || len(g.data) != 6 {
		t.Fatalf("bad grid: %dx%d len %d", g.Width(), g.Height(), len(g.data))
	}

	p := Pixel{R: 1, G: 2, B: 3}
	g.SetPixel(2, 1, p)
	if got := g.Pixel(2, 1); got != p {
		t.Fatalf("Pixel(2,1) = %+v", got)
	}
	// Row-major: (2,1) lives at 1*3+2.
	if g.data[5] != p {
		t.Fatalf("storage order: %+v", g.data)
	}
	if got := g.Row(1)[2]; got != p {
		t.Fatalf("Row(1)[2] = %+v", got)
	}
}

func TestGrid_OutOfRange(t *testing.T) {
	g := New(3, 2)
	mustPanic(t, "x too big", func() { g.Pixel(3, 0) })
	mustPanic(t, "y too big", func() { g.SetPixel(0, 2, Pixel{}) })
	mustPanic(t, "negative x", func() { g.Pixel(-1, 0) })
	mustPanic(t, "row", func() { g.Row(2) })
	mustPanic(t, "negative size", func() { New(-1, 1) })
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := makeTestGrid(4, 4)
	c := g.Clone()
	if !c.Equal(g) {
		t.Fatalf("clone differs")
	}
	c.SetPixel(0, 0, Pixel{R: 1, G: 1, B: 1})
	if c.Equal(g) {
		t.Fatalf("clone aliases source")
	}
	if New(2, 3).Equal(New(3, 2)) {
		t.Fatalf("grids of different shape compare equal")
	}
}

func TestGrid_Image(t *testing.T) {
	g := makeTestGrid(5, 3)
	if got, want := g.Bounds(), image.Rect(0, 0, 5, 3); got != want {
		t.Fatalf("Bounds = %v", got)
	}
	p := g.Pixel(4, 2)
	if got, want := g.At(4, 2), (color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}); got != want {
		t.Fatalf("At(4,2) = %v, want %v", got, want)
	}
	if got := g.At(5, 0); got != (color.RGBA{}) {
		t.Fatalf("At outside = %v", got)
	}

	back := FromImage(g)
	if !back.Equal(g) {
		t.Fatalf("FromImage(grid) differs")
	}
}

func TestFromImage_Offset(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 12, 21))
	src.SetRGBA(11, 20, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	g := FromImage(src)
	if g.Width() != 2 || g.Height() != 1 {
		t.Fatalf("size %dx%d", g.Width(), g.Height())
	}
	if got := g.Pixel(1, 0); got != (Pixel{R: 9, G: 8, B: 7}) {
		t.Fatalf("Pixel(1,0) = %+v", got)
	}
}

// A lossless third-party codec consuming the grid through image.Image must
// hand back the same pixels.
func TestGrid_LosslessThroughQOI(t *testing.T) {
	src := makeTestGrid(17, 9)

	var buf bytes.Buffer
	if err := qoi.Encode(&buf, src); err != nil {
		t.Fatalf("qoi encode: %v", err)
	}
	dec, err := qoi.Decode(&buf)
	if err != nil {
		t.Fatalf("qoi decode: %v", err)
	}
	if got := FromImage(dec); !got.Equal(src) {
		t.Fatalf("grid changed through qoi")
	}
}
