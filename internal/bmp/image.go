package bmp

import (
	"errors"
	"fmt"
	"io"

	"github.com/svanichkin/bmpfx/internal/raster"
)

// checkExtent makes sure r holds every pixel byte g describes, so nothing is
// allocated for data the source cannot provide. It moves the cursor.
func checkExtent(r io.Seeker, g Geometry) error {
	end, ok := g.End()
	if !ok {
		return fmt.Errorf("%w: %+v", ErrInvalidGeometry, g)
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("bmp: seek end: %w", err)
	}
	if end > size {
		return &FormatError{
			Field: "pixel offset",
			Err: fmt.Errorf("%w: pixel data ends at byte %d, source has %d: %w",
				ErrInvalidGeometry, end, size, io.ErrUnexpectedEOF),
		}
	}
	return nil
}

// ReadPixels decodes the scanlines described by g from r. Rows are taken in
// file order, each as width B,G,R triples followed by g.Padding bytes that
// are skipped.
func ReadPixels(r io.ReadSeeker, g Geometry) (*raster.Grid, error) {
	if err := checkExtent(r, g); err != nil {
		return nil, err
	}
	if _, err := r.Seek(g.PixelOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("bmp: seek pixels: %w", err)
	}

	grid := raster.New(g.Width, g.Height)
	buf := make([]byte, g.Stride())
	for y := 0; y < g.Height; y++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("bmp: read row %d: %w", y, err)
		}
		row := grid.Row(y)
		for x := range row {
			px := buf[x*bytesPerPixel:]
			row[x] = raster.Pixel{R: px[2], G: px[1], B: px[0]}
		}
	}
	return grid, nil
}

// WritePixels encodes grid at offset in w, writing padding zero bytes after
// every row. ReadPixels with the same geometry gives back grid.
func WritePixels(w io.WriteSeeker, grid *raster.Grid, offset int64, padding int) error {
	if padding < 0 {
		return fmt.Errorf("%w: negative padding %d", ErrInvalidGeometry, padding)
	}
	if _, err := w.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("bmp: seek pixels: %w", err)
	}

	// The tail of buf stays zero and serves as the row padding.
	buf := make([]byte, grid.Width()*bytesPerPixel+padding)
	for y := 0; y < grid.Height(); y++ {
		for x, p := range grid.Row(y) {
			px := buf[x*bytesPerPixel:]
			px[0], px[1], px[2] = p.B, p.G, p.R
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("bmp: write row %d: %w", y, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Whole files
// -----------------------------------------------------------------------------

// Image is a decoded file. Gap holds whatever sits between the 54-byte
// header and the pixel data (the rest of a larger DIB header, colour masks)
// so that it can be written back untouched.
type Image struct {
	Header *Header
	Gap    []byte
	Pixels *raster.Grid
}

// NewImage wraps grid in a minimal header describing it.
func NewImage(grid *raster.Grid) *Image {
	return &Image{
		Header: NewHeader(grid.Width(), grid.Height()),
		Pixels: grid,
	}
}

// Read decodes a whole file. The signature is checked before any other
// header field is used, then the pixel format (Supported) and the geometry,
// which must fit inside r.
func Read(r io.ReadSeeker) (*Image, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := h.Supported(); err != nil {
		return nil, err
	}
	g, err := h.Geometry()
	if err != nil {
		return nil, err
	}
	if err := checkExtent(r, g); err != nil {
		return nil, err
	}

	if _, err := r.Seek(HeaderSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("bmp: seek header gap: %w", err)
	}
	gap := make([]byte, g.PixelOffset-HeaderSize)
	if _, err := io.ReadFull(r, gap); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("bmp: read header gap: %w", err)
	}

	pixels, err := ReadPixels(r, g)
	if err != nil {
		return nil, err
	}
	return &Image{Header: h, Gap: gap, Pixels: pixels}, nil
}

// Write encodes img to w. The header must describe a grid of the same size
// as img.Pixels.
func Write(w io.WriteSeeker, img *Image) error {
	h := img.Header
	if int(h.Width) != img.Pixels.Width() || int(h.Height) != img.Pixels.Height() {
		return &FormatError{
			Field: "width/height",
			Err: fmt.Errorf("%w: header says %dx%d, pixels are %dx%d", ErrInvalidGeometry,
				h.Width, h.Height, img.Pixels.Width(), img.Pixels.Height()),
		}
	}
	g, err := h.Geometry()
	if err != nil {
		return err
	}
	if int64(len(img.Gap)) > g.PixelOffset-HeaderSize {
		return &FormatError{Field: "pixel offset", Err: ErrInvalidGeometry}
	}

	if err := h.WriteTo(w); err != nil {
		return err
	}
	if _, err := w.Write(img.Gap); err != nil {
		return fmt.Errorf("bmp: write header gap: %w", err)
	}
	return WritePixels(w, img.Pixels, g.PixelOffset, g.Padding)
}
