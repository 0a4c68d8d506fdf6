package carrier

import (
	"fmt"
	"math/rand"
	"strings"
)

// LSBPolicy selects how a pixel is nudged when its least-significant bit
// disagrees with the bit being embedded.
type LSBPolicy int

const (
	// Deterministic increments the value, or decrements it at 255.
	Deterministic LSBPolicy = iota
	// RandomMatching adds or subtracts one at random, clamped to [0, 255].
	RandomMatching
)

func (p LSBPolicy) String() string {
	switch p {
	case Deterministic:
		return "deterministic"
	case RandomMatching:
		return "random"
	}
	return fmt.Sprintf("LSBPolicy(%d)", int(p))
}

func ParseLSBPolicy(s string) (LSBPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deterministic":
		return Deterministic, nil
	case "random", "random-matching", "randommatching":
		return RandomMatching, nil
	}
	return 0, fmt.Errorf("unknown lsb policy %q", s)
}

// Pixels is a dense 8-bit cover of Height rows, Width columns and Channels
// values per pixel, stored row-major with channels innermost.
type Pixels struct {
	Width, Height, Channels int
	Pix                     []uint8
}

func NewPixels(width, height, channels int) *Pixels {
	return &Pixels{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

func (p *Pixels) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil pixels", ErrInvalidCover)
	}
	if p.Width < 0 || p.Height < 0 || p.Channels < 1 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidCover, p.Width, p.Height, p.Channels)
	}
	if n := p.Width * p.Height * p.Channels; len(p.Pix) != n {
		return fmt.Errorf("%w: %d values for %dx%dx%d", ErrInvalidCover, len(p.Pix), p.Width, p.Height, p.Channels)
	}
	return nil
}

func (p *Pixels) Clone() *Pixels {
	c := *p
	c.Pix = make([]uint8, len(p.Pix))
	copy(c.Pix, p.Pix)
	return &c
}

// Offset returns the index of (row, col, channel) in Pix.
func (p *Pixels) Offset(row, col, channel int) int {
	return (row*p.Width+col)*p.Channels + channel
}

var _ Carrier = (*Spatial)(nil)

// Spatial embeds one bit in the least-significant bit of every channel value.
type Spatial struct {
	pixels *Pixels
	policy LSBPolicy
	rand   *rand.Rand
}

type SpatialOption func(*Spatial)

func WithLSBPolicy(p LSBPolicy) SpatialOption {
	return func(s *Spatial) {
		s.policy = p
	}
}

// WithRand sets the random source used by RandomMatching.
func WithRand(r *rand.Rand) SpatialOption {
	return func(s *Spatial) {
		s.rand = r
	}
}

// NewSpatial wraps a private copy of p; the caller's pixels are never modified.
func NewSpatial(p *Pixels, opts ...SpatialOption) (*Spatial, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Spatial{pixels: p.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy == RandomMatching && s.rand == nil {
		return nil, fmt.Errorf("%w: random matching needs a random source", ErrInvalidCover)
	}
	return s, nil
}

func (s *Spatial) Capacity() int {
	return len(s.pixels.Pix)
}

// Pixels returns a copy of the current cover.
func (s *Spatial) Pixels() *Pixels {
	return s.pixels.Clone()
}

// WriteBits walks pixels row by row and channels in order, which is the
// layout of Pix, so slot i is Pix[i].
func (s *Spatial) WriteBits(bits []bool) error {
	if err := checkCapacity(s, len(bits)); err != nil {
		return err
	}
	pix := s.pixels.Pix
	for i, bit := range bits {
		if v := pix[i]; (v&1 == 1) != bit {
			pix[i] = s.adjust(v)
		}
	}
	return nil
}

func (s *Spatial) ReadBits(limit int) []bool {
	n := min(max(limit, 0), len(s.pixels.Pix))
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = s.pixels.Pix[i]&1 == 1
	}
	return bits
}

func (s *Spatial) adjust(v uint8) uint8 {
	switch {
	case v == 255:
		return v - 1
	case v == 0:
		return v + 1
	case s.policy == RandomMatching && s.rand.Intn(2) == 0:
		return v - 1
	}
	return v + 1
}
