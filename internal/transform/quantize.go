// Package transform turns an 8-bit luminance plane into quantized 8×8 DCT
// coefficient blocks and back, the same representation a JPEG decoder hands
// to the frequency carrier.
package transform

import (
	"fmt"
	"math"

	"github.com/yyyoichi/stegmark/carrier"
)

const DefaultQuality = 90

// luminance is the JPEG Annex K luminance quantization table, row-major.
var luminance = [64]int32{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// QuantTable scales the luminance table for a quality in [1, 100] using the
// libjpeg formula.
func QuantTable(quality int) [64]int32 {
	quality = min(max(quality, 1), 100)
	scale := 200 - quality*2
	if quality < 50 {
		scale = 5000 / quality
	}
	var q [64]int32
	for i, v := range luminance {
		s := (int(v)*scale + 50) / 100
		q[i] = int32(min(max(s, 1), 255))
	}
	return q
}

// Codec quantizes planes at a fixed quality.
type Codec struct {
	dct   *DCT
	table [64]int32
}

func New(quality int) *Codec {
	return &Codec{
		dct:   NewDCT(carrier.BlockSize),
		table: QuantTable(quality),
	}
}

// Blocks returns the block grid needed to cover width×height samples.
func Blocks(width, height int) (rows, cols int) {
	return (height + carrier.BlockSize - 1) / carrier.BlockSize,
		(width + carrier.BlockSize - 1) / carrier.BlockSize
}

// Encode level-shifts, transforms and quantizes a row-major plane. Partial
// edge blocks are filled by repeating the last row and column.
func (c *Codec) Encode(plane []uint8, width, height int) (*carrier.Coefficients, error) {
	if width < 0 || height < 0 || len(plane) != width*height {
		return nil, fmt.Errorf("plane of %d samples does not match %dx%d", len(plane), width, height)
	}
	rows, cols := Blocks(width, height)
	out := carrier.NewCoefficients(rows, cols)
	const n = carrier.BlockSize
	samples := make([]float64, n*n)
	for br := range rows {
		for bc := range cols {
			for y := range n {
				sy := min(br*n+y, height-1)
				for x := range n {
					sx := min(bc*n+x, width-1)
					samples[y*n+x] = float64(plane[sy*width+sx]) - 128
				}
			}
			coeffs := c.dct.Forward(samples)
			b := out.Block(br, bc)
			for i, v := range coeffs {
				b[i] = int32(math.Round(v / float64(c.table[i])))
			}
		}
	}
	return out, nil
}

// Decode dequantizes and inverse-transforms blocks into a width×height plane.
func (c *Codec) Decode(coeffs *carrier.Coefficients, width, height int) ([]uint8, error) {
	if err := coeffs.Validate(); err != nil {
		return nil, err
	}
	if rows, cols := Blocks(width, height); rows != coeffs.BlockRows || cols != coeffs.BlockCols {
		return nil, fmt.Errorf("%dx%d blocks cannot cover %dx%d", coeffs.BlockCols, coeffs.BlockRows, width, height)
	}
	const n = carrier.BlockSize
	plane := make([]uint8, width*height)
	dequant := make([]float64, n*n)
	for br := range coeffs.BlockRows {
		for bc := range coeffs.BlockCols {
			b := coeffs.Block(br, bc)
			for i, v := range b {
				dequant[i] = float64(v * c.table[i])
			}
			samples := c.dct.Inverse(dequant)
			for y := range n {
				py := br*n + y
				if py >= height {
					break
				}
				for x := range n {
					px := bc*n + x
					if px >= width {
						break
					}
					plane[py*width+px] = clip8(samples[y*n+x] + 128)
				}
			}
		}
	}
	return plane, nil
}

func clip8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
