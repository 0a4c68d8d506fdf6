package stegmark

import (
	"fmt"
	"math/rand"

	"github.com/yyyoichi/stegmark/carrier"
	"github.com/yyyoichi/stegmark/ecc"
	"go.uber.org/zap"
)

type Option func(*Stego) error

// WithRedundancy selects Hamming(7,4) with the given number of copies per
// codeword. The factor must be odd so that majority votes never tie.
func WithRedundancy(redundancy int) Option {
	return func(s *Stego) error {
		code, err := ecc.NewHamming(redundancy)
		if err != nil {
			return err
		}
		s.code = code
		return nil
	}
}

// WithGolay replaces the Hamming code with the Golay code, interleaved with
// the given seed. It corrects up to three errors per 23-bit block.
func WithGolay(seed int64) Option {
	return func(s *Stego) error {
		s.code = ecc.NewGolay(seed)
		return nil
	}
}

// WithoutECC embeds the secret bits as they are.
func WithoutECC() Option {
	return WithCode(ecc.None())
}

func WithCode(code ecc.Code) Option {
	return func(s *Stego) error {
		if code == nil {
			return fmt.Errorf("nil code")
		}
		s.code = code
		return nil
	}
}

// WithScale sets the ratio between cover and secret dimensions used by
// SecretSize.
func WithScale(scale float64) Option {
	return func(s *Stego) error {
		if !(scale > 0) {
			return fmt.Errorf("scale must be positive, got %v", scale)
		}
		s.scale = scale
		return nil
	}
}

// WithThreshold sets the value above which a secret pixel is a set bit.
func WithThreshold(threshold uint8) Option {
	return func(s *Stego) error {
		s.threshold = threshold
		return nil
	}
}

func WithLSBPolicy(policy carrier.LSBPolicy) Option {
	return func(s *Stego) error {
		if policy != carrier.Deterministic && policy != carrier.RandomMatching {
			return fmt.Errorf("unknown lsb policy %v", policy)
		}
		s.policy = policy
		return nil
	}
}

// WithSeed makes RandomMatching reproducible: every embedding starts from a
// fresh source seeded with seed.
func WithSeed(seed int64) Option {
	return func(s *Stego) error {
		s.rand = func() *rand.Rand {
			return rand.New(rand.NewSource(seed))
		}
		return nil
	}
}

// WithRand hands RandomMatching a caller-owned source. The source advances
// across embeddings.
func WithRand(r *rand.Rand) Option {
	return func(s *Stego) error {
		if r == nil {
			return fmt.Errorf("nil random source")
		}
		s.rand = func() *rand.Rand {
			return r
		}
		return nil
	}
}

// WithPositions sets the coefficient positions used by the frequency carrier.
func WithPositions(positions ...carrier.Position) Option {
	return func(s *Stego) error {
		if len(positions) == 0 {
			return fmt.Errorf("%w: no coefficient positions", carrier.ErrInvalidCover)
		}
		s.positions = append([]carrier.Position(nil), positions...)
		return nil
	}
}

// WithDenoise applies a 3×3 median filter to extracted bitmaps.
func WithDenoise(denoise bool) Option {
	return func(s *Stego) error {
		s.denoise = denoise
		return nil
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Stego) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}
