package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/yyyoichi/stegmark"
	"github.com/yyyoichi/stegmark/internal/config"
	"go.uber.org/zap"
)

const (
	carrierSpatial   = "spatial"
	carrierFrequency = "frequency"
)

// commonFlags are shared by every command. Codec flags override the config
// file only when given explicitly.
type commonFlags struct {
	carrier    string
	configPath string
	verbose    bool

	code       string
	redundancy int
	policy     string
	seed       int64
	scale      float64
	threshold  int
	auto       bool
	denoise    bool
	quality    int
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.carrier, "carrier", carrierSpatial, "carrier: spatial or frequency")
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")

	fs.StringVar(&c.code, "code", config.CodeHamming, "error correction: hamming, golay or none")
	fs.IntVar(&c.redundancy, "redundancy", 3, "copies of every Hamming codeword (odd)")
	fs.StringVar(&c.policy, "lsb-policy", "deterministic", "LSB adjustment: deterministic or random")
	fs.Int64Var(&c.seed, "seed", 0, "seed for random LSB matching and the Golay interleave")
	fs.Float64Var(&c.scale, "scale", stegmark.DefaultScale, "secret size relative to the cover")
	fs.IntVar(&c.threshold, "threshold", 127, "secret pixels above this value are white")
	fs.BoolVar(&c.auto, "auto-threshold", false, "derive the secret threshold by two-means clustering")
	fs.BoolVar(&c.denoise, "denoise", false, "median filter the extracted secret")
	fs.IntVar(&c.quality, "quality", 90, "JPEG quality used to quantize frequency covers")
}

func (c *commonFlags) check() error {
	switch c.carrier {
	case carrierSpatial, carrierFrequency:
		return nil
	}
	return fmt.Errorf("%w: unknown carrier %q", errUsage, c.carrier)
}

// env is what a command runs against.
type env struct {
	carrier string
	cfg     *config.Config
	stego   *stegmark.Stego
	logger  *zap.Logger
	stdout  io.Writer
}

func (c *commonFlags) env(fs *flag.FlagSet, logger *zap.Logger) (*env, error) {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "code":
			cfg.Code = c.code
		case "redundancy":
			cfg.Redundancy = c.redundancy
		case "lsb-policy":
			cfg.LSBPolicy = c.policy
		case "seed":
			cfg.Seed = &c.seed
		case "scale":
			cfg.Scale = c.scale
		case "threshold":
			cfg.Threshold = &c.threshold
		case "auto-threshold":
			cfg.AutoThreshold = c.auto
		case "denoise":
			cfg.Denoise = c.denoise
		case "quality":
			cfg.Quality = c.quality
		}
	})
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	s, err := stegmark.New(append(opts, stegmark.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}
	logger.Debug("configured",
		zap.String("carrier", c.carrier),
		zap.Stringer("code", s.Code()),
		zap.String("lsbPolicy", cfg.LSBPolicy),
		zap.Int("quality", cfg.Quality),
	)
	return &env{
		carrier: c.carrier,
		cfg:     cfg,
		stego:   s,
		logger:  logger,
	}, nil
}
