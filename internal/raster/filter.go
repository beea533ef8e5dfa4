package raster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidWindow    = errors.New("raster: blur window must be at least 1x1")
	ErrUnknownOperation = errors.New("raster: unknown operation")
)

// -----------------------------------------------------------------------------
// Channel isolation
// -----------------------------------------------------------------------------

// isolate masks every pixel with keep, in place.
func isolate(g *Grid, keep Pixel) *Grid {
	forEachRow(g.height, func(y0, y1 int) {
		row := g.data[y0*g.width : y1*g.width]
		for i := range row {
			row[i].R &= keep.R
			row[i].G &= keep.G
			row[i].B &= keep.B
		}
	})
	return g
}

// IsolateRed zeroes green and blue in every pixel of g and returns g.
func IsolateRed(g *Grid) *Grid { return isolate(g, Pixel{R: 0xff}) }

// IsolateGreen zeroes red and blue in every pixel of g and returns g.
func IsolateGreen(g *Grid) *Grid { return isolate(g, Pixel{G: 0xff}) }

// IsolateBlue zeroes red and green in every pixel of g and returns g.
func IsolateBlue(g *Grid) *Grid { return isolate(g, Pixel{B: 0xff}) }

// -----------------------------------------------------------------------------
// Box blur
// -----------------------------------------------------------------------------

// Blur replaces every pixel with the truncated mean of the
// windowWidth x windowHeight box centred on it. Near the edges the box is
// clipped to the grid, so corner pixels average fewer samples. Even window
// sizes extend (size-1)/2 pixels on each side.
//
// The result is a new grid; g is only read.
func Blur(g *Grid, windowHeight, windowWidth int) (*Grid, error) {
	if windowHeight < 1 || windowWidth < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidWindow, windowWidth, windowHeight)
	}

	halfW := (windowWidth - 1) / 2
	halfH := (windowHeight - 1) / 2
	dst := New(g.width, g.height)

	forEachRow(g.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			top := max(0, y-halfH)
			bottom := min(g.height-1, y+halfH)
			out := dst.Row(y)

			for x := range out {
				left := max(0, x-halfW)
				right := min(g.width-1, x+halfW)

				var r, gr, b int
				for j := top; j <= bottom; j++ {
					for _, p := range g.data[j*g.width+left : j*g.width+right+1] {
						r += int(p.R)
						gr += int(p.G)
						b += int(p.B)
					}
				}

				n := (right - left + 1) * (bottom - top + 1)
				out[x] = Pixel{R: uint8(r / n), G: uint8(gr / n), B: uint8(b / n)}
			}
		}
	})

	return dst, nil
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Operation transforms a grid it owns into a result grid.
type Operation func(*Grid) (*Grid, error)

// BlurOptions sizes the window of the "blur" operation.
type BlurOptions struct {
	WindowWidth  int
	WindowHeight int
}

// DefaultBlur is a 7x7 box.
var DefaultBlur = BlurOptions{WindowWidth: 7, WindowHeight: 7}

func pure(f func(*Grid) *Grid) Operation {
	return func(g *Grid) (*Grid, error) { return f(g), nil }
}

var operations = map[string]func(BlurOptions) Operation{
	"red":   func(BlurOptions) Operation { return pure(IsolateRed) },
	"green": func(BlurOptions) Operation { return pure(IsolateGreen) },
	"blue":  func(BlurOptions) Operation { return pure(IsolateBlue) },
	"blur": func(o BlurOptions) Operation {
		return func(g *Grid) (*Grid, error) {
			return Blur(g, o.WindowHeight, o.WindowWidth)
		}
	},
}

// Operations lists the operation names ParseOperation accepts.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseOperation looks up an operation by name, ignoring case. The empty
// name is the identity: the image is copied unchanged.
func ParseOperation(name string, opts BlurOptions) (Operation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return func(g *Grid) (*Grid, error) { return g, nil }, nil
	}
	mk, ok := operations[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownOperation, name, strings.Join(Operations(), ", "))
	}
	if name == "blur" && (opts.WindowWidth < 1 || opts.WindowHeight < 1) {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidWindow, opts.WindowWidth, opts.WindowHeight)
	}
	return mk(opts), nil
}
