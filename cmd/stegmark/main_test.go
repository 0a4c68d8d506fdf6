package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stegmark/bitmap"
	"github.com/yyyoichi/stegmark/internal/container"
	"github.com/yyyoichi/stegmark/internal/imageio"
)

func writeCover(t *testing.T, dir string, width, height int, noisy bool) string {
	t.Helper()
	rd := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			c := color.NRGBA{uint8(x * 7), uint8(y * 5), uint8(x ^ y), 255}
			if noisy {
				v := uint8(rd.Intn(256))
				c = color.NRGBA{v, v, v, 255}
			}
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, "cover.png")
	require.NoError(t, imageio.SavePNG(path, img))
	return path
}

func writeSecret(t *testing.T, dir string) (string, image.Image) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			if (x/10+y/10)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	path := filepath.Join(dir, "secret.png")
	require.NoError(t, imageio.SavePNG(path, img))
	return path, img
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func loadSecret(t *testing.T, path string) *bitmap.Bitmap {
	t.Helper()
	img, err := imageio.Load(path)
	require.NoError(t, err)
	plane, w, h := imageio.Luma(img)
	return &bitmap.Bitmap{Width: w, Height: h, Pix: plane}
}

func TestSpatial(t *testing.T) {
	dir := t.TempDir()
	coverPath := writeCover(t, dir, 32, 32, false)
	secretPath, secretImg := writeSecret(t, dir)
	stegoPath := filepath.Join(dir, "stego.png")
	outPath := filepath.Join(dir, "out.png")

	out, err := runCmd(t, "capacity", "-cover", coverPath)
	require.NoError(t, err)
	assert.Contains(t, out, "slots:       3072")
	assert.Contains(t, out, "secret size: 16x16")

	out, err = runCmd(t, "embed", "-cover", coverPath, "-secret", secretPath, "-out", stegoPath)
	require.NoError(t, err)
	assert.Equal(t, "16x16\n", out)

	_, err = runCmd(t, "extract", "-in", stegoPath, "-out", outPath)
	require.NoError(t, err)

	want := imageio.Secret(secretImg, 16, 16, bitmap.DefaultThreshold)
	assert.True(t, want.Equal(loadSecret(t, outPath)))

	t.Run("shrunk secret", func(t *testing.T) {
		// 32x32 at scale 1 needs 1024 pixels; the cover holds 584
		out, err := runCmd(t, "embed", "-scale", "1", "-cover", coverPath, "-secret", secretPath, "-out", stegoPath)
		require.NoError(t, err)
		assert.Equal(t, "24x24\n", out)

		_, err = runCmd(t, "extract", "-scale", "1", "-in", stegoPath, "-out", outPath)
		require.NoError(t, err)

		got := loadSecret(t, outPath)
		assert.Equal(t, 24, got.Width)
		assert.True(t, imageio.Secret(secretImg, 24, 24, bitmap.DefaultThreshold).Equal(got))
	})
}

func TestFrequency(t *testing.T) {
	dir := t.TempDir()
	coverPath := writeCover(t, dir, 64, 64, true)
	secretPath, secretImg := writeSecret(t, dir)
	stegoPath := filepath.Join(dir, "stego.smc")
	previewPath := filepath.Join(dir, "preview.png")
	outPath := filepath.Join(dir, "out.png")

	out, err := runCmd(t, "embed", "-carrier", "frequency",
		"-cover", coverPath, "-secret", secretPath, "-out", stegoPath, "-preview", previewPath)
	require.NoError(t, err)
	var w, h int
	_, err = fmt.Sscanf(out, "%dx%d", &w, &h)
	require.NoError(t, err)
	assert.Positive(t, w*h)

	f, err := container.Load(stegoPath)
	require.NoError(t, err)
	assert.Equal(t, w, f.SecretWidth)
	assert.Equal(t, h, f.SecretHeight)
	_, err = os.Stat(previewPath)
	assert.NoError(t, err)

	out, err = runCmd(t, "capacity", "-carrier", "frequency", "-cover", stegoPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cover:       64x64")

	_, err = runCmd(t, "extract", "-carrier", "frequency", "-in", stegoPath, "-out", outPath)
	require.NoError(t, err)

	want := imageio.Secret(secretImg, w, h, bitmap.DefaultThreshold)
	assert.True(t, want.Equal(loadSecret(t, outPath)))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	coverPath := writeCover(t, dir, 32, 32, false)
	secretPath, secretImg := writeSecret(t, dir)
	stegoPath := filepath.Join(dir, "stego.png")
	outPath := filepath.Join(dir, "out.png")
	cfgPath := filepath.Join(dir, "stegmark.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("redundancy: 5\nscale: 0.25\nlsb_policy: random\nseed: 3\n"), 0o644))

	out, err := runCmd(t, "embed", "-config", cfgPath, "-cover", coverPath, "-secret", secretPath, "-out", stegoPath)
	require.NoError(t, err)
	assert.Equal(t, "8x8\n", out)

	// flags override the file
	_, err = runCmd(t, "extract", "-config", cfgPath, "-redundancy", "3", "-in", stegoPath, "-out", outPath)
	require.NoError(t, err)
	assert.False(t, imageio.Secret(secretImg, 8, 8, bitmap.DefaultThreshold).Equal(loadSecret(t, outPath)))

	_, err = runCmd(t, "extract", "-config", cfgPath, "-in", stegoPath, "-out", outPath)
	require.NoError(t, err)
	assert.True(t, imageio.Secret(secretImg, 8, 8, bitmap.DefaultThreshold).Equal(loadSecret(t, outPath)))
}

func TestUsage(t *testing.T) {
	_, err := runCmd(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "hide")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "embed", "-carrier", "audio")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "embed", "-cover", "x.png")
	assert.ErrorIs(t, err, errUsage)

	out, err := runCmd(t, "help")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "usage: stegmark"))

	_, err = runCmd(t, "embed", "-redundancy", "2", "-cover", "a", "-secret", "b", "-out", "c")
	assert.Error(t, err)
}
