// Package imageio adapts image.Image values to the pixel, coefficient and
// bitmap representations used by the codec.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/yyyoichi/stegmark/bitmap"
	"github.com/yyyoichi/stegmark/carrier"
	"github.com/yyyoichi/stegmark/internal/kmeans"
	"github.com/yyyoichi/stegmark/internal/yuv"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Load decodes a PNG, JPEG, GIF or BMP file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img losslessly, which keeps embedded LSBs intact.
func SavePNG(path string, img image.Image) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

// ToPixels converts img to a three-channel RGB cover. Alpha is dropped.
func ToPixels(img image.Image) *carrier.Pixels {
	bounds := img.Bounds()
	p := carrier.NewPixels(bounds.Dx(), bounds.Dy(), 3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			p.Pix[i], p.Pix[i+1], p.Pix[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
	return p
}

// FromPixels renders a one-, three- or four-channel cover as an image.
func FromPixels(p *carrier.Pixels) (image.Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, p.Width, p.Height)
	switch p.Channels {
	case 1:
		g := image.NewGray(rect)
		copy(g.Pix, p.Pix)
		return g, nil
	case 3, 4:
		dst := image.NewNRGBA(rect)
		for i := range p.Width * p.Height {
			src := p.Pix[i*p.Channels : (i+1)*p.Channels]
			d := dst.Pix[i*4 : i*4+4]
			d[0], d[1], d[2], d[3] = src[0], src[1], src[2], 255
			if p.Channels == 4 {
				d[3] = src[3]
			}
		}
		return dst, nil
	}
	return nil, fmt.Errorf("%w: %d channels cannot be rendered", carrier.ErrInvalidCover, p.Channels)
}

// Luma returns the row-major luminance plane of img.
func Luma(img image.Image) (plane []uint8, width, height int) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels := make([]color.Color, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, img.At(x, y))
		}
	}
	plane = make([]uint8, len(pixels))
	yuv.LumaBatch(pixels, plane)
	return plane, width, height
}

// Gray renders a luminance plane.
func Gray(plane []uint8, width, height int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	copy(g.Pix, plane)
	return g
}

// Secret prepares a secret image for embedding: grayscale, resize to
// width×height and binarize, so every value is 0 or 255.
func Secret(img image.Image, width, height int, threshold uint8) *bitmap.Bitmap {
	plane, w, h := Luma(img)
	src := Gray(plane, w, h)
	if w != width || h != height {
		dst := image.NewGray(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		src = dst
	}
	b := bitmap.New(width, height)
	for i, v := range src.Pix[:width*height] {
		if v > threshold {
			b.Pix[i] = bitmap.White
		}
	}
	return b
}

// AutoThreshold picks the binarization threshold that splits the luminance
// of img into a dark and a light cluster.
func AutoThreshold(img image.Image, fallback uint8) uint8 {
	plane, _, _ := Luma(img)
	return kmeans.Threshold(plane, fallback)
}

// BitmapImage renders a bitmap as a grayscale image.
func BitmapImage(b *bitmap.Bitmap) *image.Gray {
	return Gray(b.Pix, b.Width, b.Height)
}
