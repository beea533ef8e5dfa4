// Package raster holds decoded RGB pixels and the transforms applied to
// them.
//
// A Grid is owned by exactly one stage at a time. Transforms take the grid
// they are given and hand back the result; the caller must not use the
// argument afterwards.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Pixel is one RGB sample.
type Pixel struct {
	R, G, B uint8
}

// Grid is a dense row-major width x height array of pixels.
type Grid struct {
	data   []Pixel
	width  int
	height int
}

// New returns a zeroed grid.
func New(width, height int) *Grid {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("raster: negative grid size %dx%d", width, height))
	}
	return &Grid{
		data:   make([]Pixel, width*height),
		width:  width,
		height: height,
	}
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("raster: pixel (%d,%d) outside %dx%d grid", x, y, g.width, g.height))
	}
	return y*g.width + x
}

// Pixel returns the pixel at (x, y). It panics if (x, y) is out of range.
func (g *Grid) Pixel(x, y int) Pixel {
	return g.data[g.index(x, y)]
}

// SetPixel stores p at (x, y). It panics if (x, y) is out of range.
func (g *Grid) SetPixel(x, y int, p Pixel) {
	g.data[g.index(x, y)] = p
}

// Row returns row y as a slice aliasing the grid's storage.
func (g *Grid) Row(y int) []Pixel {
	if y < 0 || y >= g.height {
		panic(fmt.Sprintf("raster: row %d outside %dx%d grid", y, g.width, g.height))
	}
	start := y * g.width
	return g.data[start : start+g.width]
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		data:   make([]Pixel, len(g.data)),
		width:  g.width,
		height: g.height,
	}
	copy(c.data, g.data)
	return c
}

// Equal reports whether both grids have the same size and pixels.
func (g *Grid) Equal(other *Grid) bool {
	if g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.data {
		if g.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// image.Image
// -----------------------------------------------------------------------------

// ColorModel implements image.Image.
func (g *Grid) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (g *Grid) Bounds() image.Rectangle { return image.Rect(0, 0, g.width, g.height) }

// At implements image.Image. Pixels are opaque; out-of-range points are
// transparent black, as image.Image requires.
func (g *Grid) At(x, y int) color.Color {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return color.RGBA{}
	}
	p := g.data[y*g.width+x]
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
}

// FromImage copies any image into a new grid anchored at (0,0). Alpha is
// dropped.
func FromImage(src image.Image) *Grid {
	b := src.Bounds()
	g := New(b.Dx(), b.Dy())
	for y := 0; y < g.height; y++ {
		row := g.Row(y)
		for x := range row {
			c := color.RGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			row[x] = Pixel{R: c.R, G: c.G, B: c.B}
		}
	}
	return g
}
