// Package stegmark hides a binary bitmap in a cover, either in the
// least-significant bits of its pixels or in the parity of its quantized 8×8
// DCT coefficients, protected by Hamming(7,4) with redundant copies and
// majority voting.
package stegmark

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/yyyoichi/stegmark/bitmap"
	"github.com/yyyoichi/stegmark/carrier"
	"github.com/yyyoichi/stegmark/ecc"
	"github.com/yyyoichi/stegmark/internal/imageio"
	"go.uber.org/zap"
)

const (
	DefaultScale = 0.5
	// DenoiseWindow is the median window applied by WithDenoise.
	DenoiseWindow = 3
)

// EmbedPixels hides secret in a copy of cover with the specified options.
// This is a convenience function that creates a Stego instance and calls its EmbedPixels method.
func EmbedPixels(ctx context.Context, cover *carrier.Pixels, secret *bitmap.Bitmap, opts ...Option) (*carrier.Pixels, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.EmbedPixels(ctx, cover, secret)
}

// ExtractPixels recovers a width×height bitmap with the specified options.
func ExtractPixels(ctx context.Context, stego *carrier.Pixels, width, height int, opts ...Option) (*bitmap.Bitmap, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.ExtractPixels(ctx, stego, width, height)
}

func EmbedCoefficients(ctx context.Context, cover *carrier.Coefficients, secret *bitmap.Bitmap, opts ...Option) (*carrier.Coefficients, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.EmbedCoefficients(ctx, cover, secret)
}

func ExtractCoefficients(ctx context.Context, stego *carrier.Coefficients, width, height int, opts ...Option) (*bitmap.Bitmap, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.ExtractCoefficients(ctx, stego, width, height)
}

// Stego holds an embedding configuration. It keeps no per-cover state, so one
// instance can serve any number of covers concurrently unless WithRand shares
// a source between them.
type Stego struct {
	code      ecc.Code
	scale     float64
	threshold uint8
	policy    carrier.LSBPolicy
	rand      func() *rand.Rand
	positions []carrier.Position
	denoise   bool
	logger    *zap.Logger
}

// New initializes a Stego. Without options it uses Hamming(7,4) with three
// copies, deterministic LSB matching and the default coefficient positions.
func New(opts ...Option) (*Stego, error) {
	s := new(Stego)
	if err := s.init(opts...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stego) init(opts ...Option) error {
	code, err := ecc.NewHamming(ecc.DefaultRedundancy)
	if err != nil {
		return err
	}
	s.code = code
	s.scale = DefaultScale
	s.threshold = bitmap.DefaultThreshold
	s.positions = carrier.DefaultPositions
	s.rand = func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.logger = zap.NewNop()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stego) Code() ecc.Code {
	return s.code
}

func (s *Stego) Threshold() uint8 {
	return s.threshold
}

// SecretSize returns the secret dimensions for a cover: each side scaled by
// the scale factor and truncated.
func (s *Stego) SecretSize(coverWidth, coverHeight int) (width, height int) {
	return int(float64(coverWidth) * s.scale), int(float64(coverHeight) * s.scale)
}

// SecretCapacity is the largest number of secret pixels the carrier can hold
// after error correction.
func (s *Stego) SecretCapacity(c carrier.Carrier) int {
	return s.code.Capacity(c.Capacity())
}

// EmbedPixels hides secret in the LSBs of a copy of cover.
//
// Process:
//  1. Binarizes the secret and flattens it row by row.
//  2. Encodes the bits with the configured code.
//  3. Writes one bit per channel value, pixels row by row.
//
// Returns ErrCapacityExceeded without producing a stego cover when the
// encoded secret does not fit.
func (s *Stego) EmbedPixels(ctx context.Context, cover *carrier.Pixels, secret *bitmap.Bitmap) (*carrier.Pixels, error) {
	c, err := s.SpatialCarrier(cover)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, c, secret); err != nil {
		return nil, err
	}
	return c.Pixels(), nil
}

// ExtractPixels reads back a width×height secret from a stego cover.
func (s *Stego) ExtractPixels(ctx context.Context, stego *carrier.Pixels, width, height int) (*bitmap.Bitmap, error) {
	c, err := carrier.NewSpatial(stego)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, c, width, height)
}

// EmbedCoefficients hides secret in the parity of the non-zero coefficients
// at the configured positions of every block, blocks row by row.
func (s *Stego) EmbedCoefficients(ctx context.Context, cover *carrier.Coefficients, secret *bitmap.Bitmap) (*carrier.Coefficients, error) {
	c, err := s.FrequencyCarrier(cover)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, c, secret); err != nil {
		return nil, err
	}
	return c.Coefficients(), nil
}

func (s *Stego) ExtractCoefficients(ctx context.Context, stego *carrier.Coefficients, width, height int) (*bitmap.Bitmap, error) {
	c, err := s.FrequencyCarrier(stego)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, c, width, height)
}

// EmbedImage hides secret in the RGB channels of src. The secret image is
// grayscaled, resized to SecretSize and binarized first.
func (s *Stego) EmbedImage(ctx context.Context, src, secret image.Image) (image.Image, error) {
	cover := imageio.ToPixels(src)
	width, height := s.SecretSize(cover.Width, cover.Height)
	stego, err := s.EmbedPixels(ctx, cover, imageio.Secret(secret, width, height, s.threshold))
	if err != nil {
		return nil, err
	}
	return imageio.FromPixels(stego)
}

// ExtractImage recovers the secret from an image produced by EmbedImage with
// the same options.
func (s *Stego) ExtractImage(ctx context.Context, src image.Image) (*image.Gray, error) {
	stego := imageio.ToPixels(src)
	width, height := s.SecretSize(stego.Width, stego.Height)
	b, err := s.ExtractPixels(ctx, stego, width, height)
	if err != nil {
		return nil, err
	}
	return imageio.BitmapImage(b), nil
}

// SpatialCarrier wraps a copy of cover in the LSB carrier this Stego embeds
// with.
func (s *Stego) SpatialCarrier(cover *carrier.Pixels) (*carrier.Spatial, error) {
	opts := []carrier.SpatialOption{carrier.WithLSBPolicy(s.policy)}
	if s.policy == carrier.RandomMatching {
		opts = append(opts, carrier.WithRand(s.rand()))
	}
	return carrier.NewSpatial(cover, opts...)
}

// FrequencyCarrier wraps a copy of cover using the configured positions.
func (s *Stego) FrequencyCarrier(cover *carrier.Coefficients) (*carrier.Frequency, error) {
	return carrier.NewFrequency(cover, carrier.WithPositions(s.positions...))
}

func (s *Stego) embed(ctx context.Context, c carrier.Carrier, secret *bitmap.Bitmap) error {
	if secret == nil || secret.Width < 0 || secret.Height < 0 || len(secret.Pix) != secret.Len() {
		return fmt.Errorf("%w: malformed secret", ErrShapeMismatch)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	bits := bitmap.Flatten(secret, s.threshold)
	encoded, err := s.code.Encode(bits)
	if err != nil {
		return err
	}
	s.logger.Debug("embed",
		zap.Stringer("code", s.code),
		zap.Int("secretBits", len(bits)),
		zap.Int("encodedBits", len(encoded)),
		zap.Int("capacity", c.Capacity()),
	)
	if err := c.WriteBits(encoded); err != nil {
		return err
	}
	return nil
}

func (s *Stego) extract(ctx context.Context, c carrier.Carrier, width, height int) (*bitmap.Bitmap, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrShapeMismatch, width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := width * height
	n := s.code.EncodedLen(size)
	raw := c.ReadBits(n)
	if len(raw) < n {
		return nil, fmt.Errorf("%w: %dx%d secret needs %d bits, carrier holds %d", ErrCapacityExceeded, width, height, n, len(raw))
	}
	bits, err := s.code.Decode(raw, size)
	if err != nil {
		return nil, err
	}
	b, err := bitmap.Reshape(bits, width, height)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("extract",
		zap.Stringer("code", s.code),
		zap.Int("encodedBits", n),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("denoise", s.denoise),
	)
	if s.denoise {
		b = bitmap.Median(b, DenoiseWindow)
	}
	return b, nil
}

// Fit shrinks width×height, keeping the aspect ratio, until it holds at most
// maxPixels pixels. The longer side shrinks one pixel at a time and the
// shorter side never drops below 1. Sizes that already fit are returned
// unchanged; 0×0 means not even a single pixel fits.
func Fit(width, height, maxPixels int) (int, int) {
	if width <= 0 || height <= 0 || width*height <= maxPixels {
		return width, height
	}
	long, short := width, height
	if height > width {
		long, short = height, width
	}
	for l := long - 1; l > 0; l-- {
		s := max(1, l*short/long)
		if l*s > maxPixels {
			continue
		}
		if height > width {
			return s, l
		}
		return l, s
	}
	return 0, 0
}
