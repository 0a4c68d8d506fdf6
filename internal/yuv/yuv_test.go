package yuv

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuma(t *testing.T) {
	test := []struct {
		name    string
		r, g, b uint8
		exp     uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 255},
		{"red", 255, 0, 0, 76},
		{"green", 0, 255, 0, 150},
		{"blue", 0, 0, 255, 29},
		{"gray", 128, 128, 128, 128},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, Luma(tt.r, tt.g, tt.b))
		})
	}

	y := make([]uint8, 2)
	LumaBatch([]color.Color{color.Gray{Y: 200}, color.RGBA{0, 255, 0, 255}}, y)
	assert.Equal(t, []uint8{200, 150}, y)
}
