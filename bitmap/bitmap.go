// Package bitmap converts binary secret images to flat bit sequences and back.
//
// A Bitmap stores one 8-bit value per pixel in row-major order. Values produced
// by this package are always 0 or 255; Flatten accepts any value and binarizes
// it against a threshold.
package bitmap

import (
	"errors"
	"fmt"
)

const (
	Black uint8 = 0
	White uint8 = 255

	// DefaultThreshold maps values above it to a set bit.
	DefaultThreshold uint8 = 127
)

var (
	ErrShapeMismatch = errors.New("bitstream length does not match bitmap shape")
)

type Bitmap struct {
	Width, Height int
	// Pix holds Width*Height values, row by row.
	Pix []uint8
}

// New returns an all-black bitmap of the given size.
func New(width, height int) *Bitmap {
	width, height = max(width, 0), max(height, 0)
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (b *Bitmap) Len() int {
	return b.Width * b.Height
}

func (b *Bitmap) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

func (b *Bitmap) Set(x, y int, v uint8) {
	b.Pix[y*b.Width+x] = v
}

func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// Equal reports whether both bitmaps have the same shape and values.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Flatten walks the bitmap row by row and emits true for every value above
// threshold.
func Flatten(b *Bitmap, threshold uint8) []bool {
	bits := make([]bool, b.Len())
	for i := range bits {
		bits[i] = b.Pix[i] > threshold
	}
	return bits
}

// Reshape is the inverse of Flatten: set bits become White, clear bits Black.
// The caller must trim or pad bits to exactly width*height beforehand.
func Reshape(bits []bool, width, height int) (*Bitmap, error) {
	if width < 0 || height < 0 || len(bits) != width*height {
		return nil, fmt.Errorf("%w: got %d bits for %dx%d", ErrShapeMismatch, len(bits), width, height)
	}
	b := New(width, height)
	for i, bit := range bits {
		if bit {
			b.Pix[i] = White
		}
	}
	return b, nil
}
