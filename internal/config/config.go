// Package config loads stegmark settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yyyoichi/stegmark"
	"github.com/yyyoichi/stegmark/carrier"
	"github.com/yyyoichi/stegmark/ecc"
	"github.com/yyyoichi/stegmark/internal/transform"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	CodeHamming = "hamming"
	CodeGolay   = "golay"
	CodeNone    = "none"
)

// Config mirrors the file layout. Zero values mean "use the default".
type Config struct {
	Code          string     `yaml:"code"`
	Redundancy    int        `yaml:"redundancy"`
	// Seed drives random LSB matching and the Golay interleave.
	Seed          *int64     `yaml:"seed"`
	Scale         float64    `yaml:"scale"`
	Threshold     *int       `yaml:"threshold"`
	// AutoThreshold derives the secret threshold from the secret image itself.
	AutoThreshold bool       `yaml:"auto_threshold"`
	LSBPolicy     string     `yaml:"lsb_policy"`
	Positions     []Position `yaml:"positions"`
	Denoise       bool       `yaml:"denoise"`
	// Quality is the JPEG quality used to quantize frequency covers.
	Quality       int        `yaml:"quality"`
}

type Position struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

func Default() *Config {
	return &Config{
		Code:       CodeHamming,
		Redundancy: ecc.DefaultRedundancy,
		Scale:      stegmark.DefaultScale,
		LSBPolicy:  carrier.Deterministic.String(),
		Quality:    transform.DefaultQuality,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads YAML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), data, 0o644)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Code) {
	case "", CodeHamming:
		if err := ecc.ValidateRedundancy(c.Redundancy); err != nil {
			return err
		}
	case CodeGolay, CodeNone:
	default:
		return fmt.Errorf("%w: unknown code %q", ErrInvalidConfig, c.Code)
	}
	if c.Scale < 0 {
		return fmt.Errorf("%w: negative scale %v", ErrInvalidConfig, c.Scale)
	}
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 255) {
		return fmt.Errorf("%w: threshold %d outside [0, 255]", ErrInvalidConfig, *c.Threshold)
	}
	if _, err := carrier.ParseLSBPolicy(c.LSBPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("%w: quality %d outside [1, 100]", ErrInvalidConfig, c.Quality)
	}
	return nil
}

// Options converts the file into pipeline options.
func (c *Config) Options() ([]stegmark.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var opts []stegmark.Option
	switch strings.ToLower(c.Code) {
	case "", CodeHamming:
		opts = append(opts, stegmark.WithRedundancy(c.Redundancy))
	case CodeGolay:
		seed := ecc.DefaultShuffleSeed
		if c.Seed != nil {
			seed = *c.Seed
		}
		opts = append(opts, stegmark.WithGolay(seed))
	case CodeNone:
		opts = append(opts, stegmark.WithoutECC())
	}
	if c.Scale > 0 {
		opts = append(opts, stegmark.WithScale(c.Scale))
	}
	if c.Threshold != nil {
		opts = append(opts, stegmark.WithThreshold(uint8(*c.Threshold)))
	}
	policy, _ := carrier.ParseLSBPolicy(c.LSBPolicy)
	opts = append(opts, stegmark.WithLSBPolicy(policy))
	if c.Seed != nil {
		opts = append(opts, stegmark.WithSeed(*c.Seed))
	}
	if len(c.Positions) > 0 {
		positions := make([]carrier.Position, len(c.Positions))
		for i, p := range c.Positions {
			positions[i] = carrier.Position{Row: p.Row, Col: p.Col}
		}
		opts = append(opts, stegmark.WithPositions(positions...))
	}
	if c.Denoise {
		opts = append(opts, stegmark.WithDenoise(true))
	}
	return opts, nil
}
