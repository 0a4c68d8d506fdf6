package yuv

import "image/color"

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234

const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
)

// Luma returns the BT.601 luminance of an 8-bit RGB triple, rounded.
func Luma(r, g, b uint8) uint8 {
	v := yr*float32(r) + yg*float32(g) + yb*float32(b) + 0.5
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// LumaBatch writes the luminance of each pixel into y.
func LumaBatch(pixels []color.Color, y []uint8) {
	for i, pixel := range pixels {
		r32, g32, b32, _ := pixel.RGBA()
		y[i] = Luma(uint8(r32>>8), uint8(g32>>8), uint8(b32>>8))
	}
}
