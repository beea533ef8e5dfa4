// Package bmp reads and writes uncompressed 24-bit BMP files.
//
// The file is a fixed 54-byte header (file header + BITMAPINFOHEADER)
// followed, at the header's pixel offset, by rows of B,G,R triples. Each row
// is padded out to the stride the header declares.
//
// Rows are read and written in file order, top row first. Most BMP writers
// store positive-height images bottom-up, so a grid decoded here is the
// vertical mirror of what an image viewer shows. Files written by this
// package keep that order, so round trips are exact.
package bmp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the on-disk size of the file header plus the DIB header.
const HeaderSize = 54

// bytesPerPixel is fixed: only 24-bit images are handled.
const bytesPerPixel = 3

// Signature is the magic every BMP file starts with.
var Signature = [2]byte{'B', 'M'}

// byteOrder of every multi-byte header field. BMP is little-endian; this
// is also the host order on every platform the tool ships for.
var byteOrder = binary.LittleEndian

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	ErrInvalidSignature = errors.New("bmp: invalid signature")
	ErrTruncated        = errors.New("bmp: truncated header")
	ErrInvalidGeometry  = errors.New("bmp: invalid geometry")
	ErrUnsupported      = errors.New("bmp: unsupported format")
)

// FormatError reports a header that cannot be used, naming the offending
// field. It wraps one of the sentinel errors above.
type FormatError struct {
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v (field %s)", e.Err, e.Field)
}

func (e *FormatError) Unwrap() error { return e.Err }

// -----------------------------------------------------------------------------
// Header
// -----------------------------------------------------------------------------

// Header mirrors the BMP file header and the BITMAPINFOHEADER, in on-disk
// order.
type Header struct {
	Signature   [2]byte
	FileSize    uint32
	Reserved1   uint16
	Reserved2   uint16
	PixelOffset uint32

	DIBSize         uint32
	Width           uint32
	Height          uint32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter uint32
	YPixelsPerMeter uint32
	ColorsUsed      uint32
	ColorsImportant uint32
}

type headerField struct {
	name string
	ptr  any
}

// fields lists the header fields in on-disk order.
func (h *Header) fields() []headerField {
	return []headerField{
		{"signature", &h.Signature},
		{"file size", &h.FileSize},
		{"reserved1", &h.Reserved1},
		{"reserved2", &h.Reserved2},
		{"pixel offset", &h.PixelOffset},
		{"dib size", &h.DIBSize},
		{"width", &h.Width},
		{"height", &h.Height},
		{"planes", &h.Planes},
		{"bits per pixel", &h.BitsPerPixel},
		{"compression", &h.Compression},
		{"image size", &h.ImageSize},
		{"x pixels per meter", &h.XPixelsPerMeter},
		{"y pixels per meter", &h.YPixelsPerMeter},
		{"colors used", &h.ColorsUsed},
		{"colors important", &h.ColorsImportant},
	}
}

// ReadHeader reads the 54-byte header from the start of r.
//
// The signature is not checked; call Validate before trusting the rest.
func ReadHeader(r io.ReadSeeker) (*Header, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("bmp: seek header: %w", err)
	}

	h := &Header{}
	for _, f := range h.fields() {
		if err := binary.Read(r, byteOrder, f.ptr); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &FormatError{Field: f.name, Err: ErrTruncated}
			}
			return nil, fmt.Errorf("bmp: read %s: %w", f.name, err)
		}
	}
	return h, nil
}

// WriteTo writes the header to the start of w, byte-compatible with
// ReadHeader.
func (h *Header) WriteTo(w io.WriteSeeker) error {
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("bmp: seek header: %w", err)
	}
	for _, f := range h.fields() {
		if err := binary.Write(w, byteOrder, f.ptr); err != nil {
			return fmt.Errorf("bmp: write %s: %w", f.name, err)
		}
	}
	return nil
}

// Validate checks the signature.
func (h *Header) Validate() error {
	if h.Signature != Signature {
		return &FormatError{Field: "signature", Err: ErrInvalidSignature}
	}
	return nil
}

// Supported reports whether the pixel format is uncompressed 24-bit.
func (h *Header) Supported() error {
	if h.BitsPerPixel != 8*bytesPerPixel {
		return &FormatError{Field: "bits per pixel", Err: ErrUnsupported}
	}
	if h.Compression != 0 {
		return &FormatError{Field: "compression", Err: ErrUnsupported}
	}
	return nil
}

// Padding returns the number of slack bytes at the end of each pixel row:
// ImageSize/Height - Width*3. An ImageSize of zero, which BI_RGB files are
// allowed to carry, falls back to 4-byte row alignment.
func (h *Header) Padding() (int, error) {
	if h.Height == 0 {
		return 0, &FormatError{Field: "height", Err: ErrInvalidGeometry}
	}
	if h.Width == 0 {
		return 0, &FormatError{Field: "width", Err: ErrInvalidGeometry}
	}

	row := int64(h.Width) * bytesPerPixel
	if h.ImageSize == 0 {
		return int((4 - row%4) % 4), nil
	}

	pad := int64(h.ImageSize)/int64(h.Height) - row
	if pad < 0 {
		return 0, &FormatError{Field: "image size", Err: ErrInvalidGeometry}
	}
	return int(pad), nil
}

// Geometry is what the pixel codec needs to locate and walk the scanlines.
type Geometry struct {
	Width       int
	Height      int
	PixelOffset int64
	Padding     int
}

// Stride is the on-disk length of one row, padding included.
func (g Geometry) Stride() int {
	return g.Width*bytesPerPixel + g.Padding
}

// End is the offset one past the last pixel byte. ok is false if that
// offset does not fit in an int64 or the geometry has negative fields.
func (g Geometry) End() (end int64, ok bool) {
	if g.Width < 0 || g.Height < 0 || g.Padding < 0 || g.PixelOffset < 0 {
		return 0, false
	}
	if int64(g.Width) > (math.MaxInt64-int64(g.Padding))/bytesPerPixel {
		return 0, false
	}
	stride := int64(g.Width)*bytesPerPixel + int64(g.Padding)
	if g.Height > 0 && stride > (math.MaxInt64-g.PixelOffset)/int64(g.Height) {
		return 0, false
	}
	return g.PixelOffset + stride*int64(g.Height), true
}

// Geometry validates the header's layout fields and returns them. The
// pixel region it describes is guaranteed to be addressable with int64
// offsets; whether the source is that long is checked when reading.
func (h *Header) Geometry() (Geometry, error) {
	pad, err := h.Padding()
	if err != nil {
		return Geometry{}, err
	}
	if h.PixelOffset < HeaderSize {
		return Geometry{}, &FormatError{Field: "pixel offset", Err: ErrInvalidGeometry}
	}
	if h.Width > math.MaxInt32 {
		return Geometry{}, &FormatError{Field: "width", Err: ErrInvalidGeometry}
	}
	if h.Height > math.MaxInt32 {
		return Geometry{}, &FormatError{Field: "height", Err: ErrInvalidGeometry}
	}

	g := Geometry{
		Width:       int(h.Width),
		Height:      int(h.Height),
		PixelOffset: int64(h.PixelOffset),
		Padding:     pad,
	}
	if _, ok := g.End(); !ok {
		return Geometry{}, &FormatError{Field: "image size", Err: ErrInvalidGeometry}
	}
	return g, nil
}

// NewHeader returns a header for a width x height 24-bit image with rows
// aligned to 4 bytes and pixels starting right after the header.
func NewHeader(width, height int) *Header {
	row := width * bytesPerPixel
	stride := (row + 3) &^ 3
	size := uint32(stride * height)
	return &Header{
		Signature:    Signature,
		FileSize:     HeaderSize + size,
		PixelOffset:  HeaderSize,
		DIBSize:      40,
		Width:        uint32(width),
		Height:       uint32(height),
		Planes:       1,
		BitsPerPixel: 8 * bytesPerPixel,
		ImageSize:    size,
		// 72 DPI.
		XPixelsPerMeter: 2835,
		YPixelsPerMeter: 2835,
	}
}
