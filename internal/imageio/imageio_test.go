package imageio

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stegmark/bitmap"
	"github.com/yyyoichi/stegmark/carrier"
)

func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.NRGBA{uint8(x * 255 / width), uint8(y * 255 / height), uint8((x + y) % 256), 255})
		}
	}
	return img
}

func TestPixels(t *testing.T) {
	img := gradient(7, 5)
	p := ToPixels(img)
	assert.Equal(t, 7, p.Width)
	assert.Equal(t, 5, p.Height)
	assert.Equal(t, 3, p.Channels)
	assert.Equal(t, img.NRGBAAt(3, 2).G, p.Pix[p.Offset(2, 3, 1)])

	out, err := FromPixels(p)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.(*image.NRGBA).Pix)

	gray, err := FromPixels(&carrier.Pixels{Width: 2, Height: 1, Channels: 1, Pix: []uint8{3, 9}})
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 9}, gray.(*image.Gray).Pix)

	_, err = FromPixels(&carrier.Pixels{Width: 1, Height: 1, Channels: 2, Pix: []uint8{1, 2}})
	assert.ErrorIs(t, err, carrier.ErrInvalidCover)
}

func TestSecret(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			if x >= 4 {
				img.SetGray(x, y, color.Gray{Y: 240})
			} else {
				img.SetGray(x, y, color.Gray{Y: 20})
			}
		}
	}

	t.Run("same size", func(t *testing.T) {
		b := Secret(img, 8, 8, bitmap.DefaultThreshold)
		assert.Equal(t, bitmap.Black, b.At(0, 0))
		assert.Equal(t, bitmap.White, b.At(7, 7))
	})

	t.Run("resized and binarized", func(t *testing.T) {
		b := Secret(img, 4, 2, bitmap.DefaultThreshold)
		assert.Equal(t, 4, b.Width)
		assert.Equal(t, 2, b.Height)
		for _, v := range b.Pix {
			assert.True(t, v == bitmap.Black || v == bitmap.White)
		}
		assert.Equal(t, bitmap.Black, b.At(0, 0))
		assert.Equal(t, bitmap.White, b.At(3, 1))
	})
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	img := gradient(9, 4)
	require.NoError(t, SavePNG(path, img))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ToPixels(img), ToPixels(loaded))

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLuma(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{0, 100, 255}
	plane, w, h := Luma(img)
	assert.Equal(t, []uint8{0, 100, 255}, plane)
	assert.Equal(t, 3, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, plane, Gray(plane, w, h).Pix)
}

func TestAutoThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.Pix = []uint8{20, 30, 180, 200}
	th := AutoThreshold(img, bitmap.DefaultThreshold)
	assert.Equal(t, uint8(107), th)

	// a dim secret that the fixed threshold would turn all black
	img.Pix = []uint8{10, 12, 90, 100}
	th = AutoThreshold(img, bitmap.DefaultThreshold)
	b := Secret(img, 4, 1, th)
	assert.Equal(t, []uint8{bitmap.Black, bitmap.Black, bitmap.White, bitmap.White}, b.Pix)
}
