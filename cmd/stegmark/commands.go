package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yyyoichi/stegmark"
	"github.com/yyyoichi/stegmark/carrier"
	"github.com/yyyoichi/stegmark/internal/container"
	"github.com/yyyoichi/stegmark/internal/imageio"
	"github.com/yyyoichi/stegmark/internal/transform"
	"go.uber.org/zap"
)

type capacityCommand struct {
	cover string
}

func (c *capacityCommand) register(fs *flag.FlagSet) {
	fs.StringVar(&c.cover, "cover", "", "cover image or coefficient container (required)")
}

func (c *capacityCommand) run(ctx context.Context, env *env) error {
	if c.cover == "" {
		return fmt.Errorf("%w: -cover is required", errUsage)
	}
	var (
		cr            carrier.Carrier
		width, height int
	)
	switch env.carrier {
	case carrierSpatial:
		p, err := loadPixels(c.cover)
		if err != nil {
			return err
		}
		if cr, err = env.stego.SpatialCarrier(p); err != nil {
			return err
		}
		width, height = p.Width, p.Height
	case carrierFrequency:
		f, err := loadCoefficients(env, c.cover)
		if err != nil {
			return err
		}
		if cr, err = env.stego.FrequencyCarrier(f.Coefficients); err != nil {
			return err
		}
		width, height = f.Width, f.Height
	}
	bits := env.stego.SecretCapacity(cr)
	w, h := env.stego.SecretSize(width, height)
	fw, fh := stegmark.Fit(w, h, bits)
	fmt.Fprintf(env.stdout, "cover:       %dx%d\n", width, height)
	fmt.Fprintf(env.stdout, "slots:       %d\n", cr.Capacity())
	fmt.Fprintf(env.stdout, "secret bits: %d (%s)\n", bits, env.stego.Code())
	fmt.Fprintf(env.stdout, "secret size: %dx%d\n", fw, fh)
	return nil
}

type embedCommand struct {
	cover, secret, out string
	preview            string
}

func (c *embedCommand) register(fs *flag.FlagSet) {
	fs.StringVar(&c.cover, "cover", "", "cover image (required)")
	fs.StringVar(&c.secret, "secret", "", "secret image, binarized before embedding (required)")
	fs.StringVar(&c.out, "out", "", "output: PNG for spatial, coefficient container for frequency (required)")
	fs.StringVar(&c.preview, "preview", "", "frequency only: also render the stego cover to this PNG")
}

func (c *embedCommand) run(ctx context.Context, env *env) error {
	if c.cover == "" || c.secret == "" || c.out == "" {
		return fmt.Errorf("%w: -cover, -secret and -out are required", errUsage)
	}
	secretImg, err := imageio.Load(c.secret)
	if err != nil {
		return err
	}
	threshold := env.stego.Threshold()
	if env.cfg.AutoThreshold {
		threshold = imageio.AutoThreshold(secretImg, threshold)
		env.logger.Debug("auto threshold", zap.Uint8("threshold", threshold))
	}

	var width, height int
	switch env.carrier {
	case carrierSpatial:
		cover, err := loadPixels(c.cover)
		if err != nil {
			return err
		}
		cr, err := env.stego.SpatialCarrier(cover)
		if err != nil {
			return err
		}
		if width, height, err = fitSecret(env, cover.Width, cover.Height, cr); err != nil {
			return err
		}
		secret := imageio.Secret(secretImg, width, height, threshold)
		stego, err := env.stego.EmbedPixels(ctx, cover, secret)
		if err != nil {
			return err
		}
		img, err := imageio.FromPixels(stego)
		if err != nil {
			return err
		}
		if err := imageio.SavePNG(c.out, img); err != nil {
			return err
		}

	case carrierFrequency:
		f, err := loadCoefficients(env, c.cover)
		if err != nil {
			return err
		}
		cr, err := env.stego.FrequencyCarrier(f.Coefficients)
		if err != nil {
			return err
		}
		if width, height, err = fitSecret(env, f.Width, f.Height, cr); err != nil {
			return err
		}
		secret := imageio.Secret(secretImg, width, height, threshold)
		stego, err := env.stego.EmbedCoefficients(ctx, f.Coefficients, secret)
		if err != nil {
			return err
		}
		f.Coefficients = stego
		f.SecretWidth, f.SecretHeight = width, height
		if err := container.Save(c.out, f); err != nil {
			return err
		}
		if c.preview != "" {
			plane, err := transform.New(f.Quality).Decode(stego, f.Width, f.Height)
			if err != nil {
				return err
			}
			if err := imageio.SavePNG(c.preview, imageio.Gray(plane, f.Width, f.Height)); err != nil {
				return err
			}
		}
	}

	env.logger.Info("embedded",
		zap.String("out", c.out),
		zap.Int("secretWidth", width),
		zap.Int("secretHeight", height),
	)
	fmt.Fprintf(env.stdout, "%dx%d\n", width, height)
	return nil
}

type extractCommand struct {
	in, out       string
	width, height int
}

func (c *extractCommand) register(fs *flag.FlagSet) {
	fs.StringVar(&c.in, "in", "", "stego PNG or coefficient container (required)")
	fs.StringVar(&c.out, "out", "", "PNG to write the secret to (required)")
	fs.IntVar(&c.width, "w", 0, "secret width; defaults to the size embed reported")
	fs.IntVar(&c.height, "h", 0, "secret height; defaults to the size embed reported")
}

func (c *extractCommand) run(ctx context.Context, env *env) error {
	if c.in == "" || c.out == "" {
		return fmt.Errorf("%w: -in and -out are required", errUsage)
	}
	width, height := c.width, c.height
	switch env.carrier {
	case carrierSpatial:
		stego, err := loadPixels(c.in)
		if err != nil {
			return err
		}
		if width == 0 && height == 0 {
			cr, err := carrier.NewSpatial(stego)
			if err != nil {
				return err
			}
			// same size embed chose: spatial capacity depends only on the cover shape
			if width, height, err = fitSecret(env, stego.Width, stego.Height, cr); err != nil {
				return err
			}
		}
		b, err := env.stego.ExtractPixels(ctx, stego, width, height)
		if err != nil {
			return err
		}
		if err := imageio.SavePNG(c.out, imageio.BitmapImage(b)); err != nil {
			return err
		}

	case carrierFrequency:
		f, err := container.Load(c.in)
		if err != nil {
			return err
		}
		if width == 0 && height == 0 {
			width, height = f.SecretWidth, f.SecretHeight
		}
		b, err := env.stego.ExtractCoefficients(ctx, f.Coefficients, width, height)
		if err != nil {
			return err
		}
		if err := imageio.SavePNG(c.out, imageio.BitmapImage(b)); err != nil {
			return err
		}
	}
	env.logger.Info("extracted",
		zap.String("out", c.out),
		zap.Int("secretWidth", width),
		zap.Int("secretHeight", height),
	)
	return nil
}

func loadPixels(path string) (*carrier.Pixels, error) {
	img, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	return imageio.ToPixels(img), nil
}

// loadCoefficients reads a coefficient container as is, or quantizes the
// luminance of any other image at the configured quality.
func loadCoefficients(env *env, path string) (*container.File, error) {
	if strings.EqualFold(filepath.Ext(path), ".smc") {
		return container.Load(path)
	}
	img, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	plane, width, height := imageio.Luma(img)
	coeffs, err := transform.New(env.cfg.Quality).Encode(plane, width, height)
	if err != nil {
		return nil, err
	}
	return &container.File{
		Width:        width,
		Height:       height,
		Quality:      env.cfg.Quality,
		Coefficients: coeffs,
	}, nil
}

// fitSecret scales the secret to the cover and shrinks it further when the
// encoded secret would not fit.
func fitSecret(env *env, coverWidth, coverHeight int, cr carrier.Carrier) (int, int, error) {
	width, height := env.stego.SecretSize(coverWidth, coverHeight)
	bits := env.stego.SecretCapacity(cr)
	fw, fh := stegmark.Fit(width, height, bits)
	if fw*fh == 0 {
		return 0, 0, fmt.Errorf("%w: cover holds %d secret bits", stegmark.ErrCapacityExceeded, bits)
	}
	if fw != width || fh != height {
		env.logger.Info("secret shrunk to fit",
			zap.Int("capacity", bits),
			zap.String("scaled", fmt.Sprintf("%dx%d", width, height)),
			zap.String("fitted", fmt.Sprintf("%dx%d", fw, fh)),
		)
	}
	return fw, fh, nil
}
