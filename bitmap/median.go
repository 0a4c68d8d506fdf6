package bitmap

import "slices"

// Median applies a size×size median filter with replicated edges and returns
// a new bitmap. Even sizes are rounded up; sizes below 3 return a copy.
//
// On a binary bitmap this removes isolated pixels left by uncorrected
// codeword errors.
func Median(b *Bitmap, size int) *Bitmap {
	if size%2 == 0 {
		size++
	}
	if size < 3 || b.Len() == 0 {
		return b.Clone()
	}
	r := size / 2
	out := New(b.Width, b.Height)
	window := make([]uint8, 0, size*size)
	for y := range b.Height {
		for x := range b.Width {
			window = window[:0]
			for dy := -r; dy <= r; dy++ {
				yy := clamp(y+dy, b.Height-1)
				for dx := -r; dx <= r; dx++ {
					xx := clamp(x+dx, b.Width-1)
					window = append(window, b.Pix[yy*b.Width+xx])
				}
			}
			slices.Sort(window)
			out.Pix[y*b.Width+x] = window[len(window)/2]
		}
	}
	return out
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
