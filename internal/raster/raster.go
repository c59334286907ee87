package raster

import "fmt"

// MaxGray is the only max-gray value accepted or produced.
const MaxGray = 255

// Dims holds the width and height of a raster in pixels.
type Dims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Pixels returns Width*Height.
func (d Dims) Pixels() int {
	return d.Width * d.Height
}

// Valid reports whether both dimensions are positive.
func (d Dims) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Image is an 8-bit grayscale raster with samples stored in row-major order.
type Image struct {
	Dims
	Pix []uint8
}

// New allocates a zeroed raster of the given dimensions.
func New(d Dims) (*Image, error) {
	if !d.Valid() {
		return nil, invariantError("new", ErrLengthMismatch, "invalid dimensions %s", d)
	}
	return &Image{Dims: d, Pix: make([]uint8, d.Pixels())}, nil
}

// FromSamples wraps pix as a raster after checking it holds exactly d.Pixels() samples.
// The slice is not copied.
func FromSamples(d Dims, pix []uint8) (*Image, error) {
	img := &Image{Dims: d, Pix: pix}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate checks the dimension contract: positive dimensions and exactly
// Width*Height samples.
func (m *Image) Validate() error {
	if m == nil {
		return invariantError("validate", ErrLengthMismatch, "nil image")
	}
	if !m.Dims.Valid() {
		return invariantError("validate", ErrLengthMismatch, "invalid dimensions %s", m.Dims)
	}
	if len(m.Pix) != m.Pixels() {
		return invariantError("validate", ErrLengthMismatch, "have %d samples, want %d for %s",
			len(m.Pix), m.Pixels(), m.Dims)
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Dims: m.Dims, Pix: pix}
}

// At returns the sample at (x, y). It panics if the coordinates are out of range.
func (m *Image) At(x, y int) uint8 {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		panic(fmt.Sprintf("raster: (%d,%d) outside %s", x, y, m.Dims))
	}
	return m.Pix[y*m.Width+x]
}

// SameDims reports whether a and b have identical dimensions.
func SameDims(a, b *Image) bool {
	return a.Dims == b.Dims
}
