package carrier

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradientPixels(width, height, channels int) *Pixels {
	p := NewPixels(width, height, channels)
	for i := range p.Pix {
		p.Pix[i] = uint8(i * 37 % 256)
	}
	return p
}

func randomBits(rd *rand.Rand, n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = rd.Intn(2) == 1
	}
	return bits
}

func TestSpatial(t *testing.T) {
	rd := rand.New(rand.NewSource(11))

	t.Run("capacity", func(t *testing.T) {
		s, err := NewSpatial(gradientPixels(5, 4, 3))
		require.NoError(t, err)
		assert.Equal(t, 60, s.Capacity())
	})

	for _, policy := range []LSBPolicy{Deterministic, RandomMatching} {
		t.Run(policy.String()+" round trip", func(t *testing.T) {
			cover := gradientPixels(16, 9, 3)
			orig := cover.Clone()
			s, err := NewSpatial(cover, WithLSBPolicy(policy), WithRand(rand.New(rand.NewSource(5))))
			require.NoError(t, err)

			bits := randomBits(rd, 300)
			require.NoError(t, s.WriteBits(bits))
			assert.Equal(t, bits, s.ReadBits(len(bits)))

			// the caller's cover is untouched
			assert.Equal(t, orig, cover)

			out := s.Pixels()
			for i := range out.Pix {
				diff := int(out.Pix[i]) - int(orig.Pix[i])
				assert.True(t, diff >= -1 && diff <= 1, "slot %d changed by %d", i, diff)
				if i >= len(bits) {
					assert.Zero(t, diff, "slot %d past the stream changed", i)
				}
			}
		})
	}

	t.Run("deterministic saturation", func(t *testing.T) {
		s, err := NewSpatial(&Pixels{Width: 4, Height: 1, Channels: 1, Pix: []uint8{255, 254, 0, 3}})
		require.NoError(t, err)
		require.NoError(t, s.WriteBits([]bool{false, true, true, false}))
		assert.Equal(t, []uint8{254, 255, 1, 4}, s.Pixels().Pix)
	})

	t.Run("random matching clamps", func(t *testing.T) {
		for seed := range int64(20) {
			s, err := NewSpatial(&Pixels{Width: 2, Height: 1, Channels: 1, Pix: []uint8{255, 0}},
				WithLSBPolicy(RandomMatching), WithRand(rand.New(rand.NewSource(seed))))
			require.NoError(t, err)
			require.NoError(t, s.WriteBits([]bool{false, true}))
			assert.Equal(t, []uint8{254, 1}, s.Pixels().Pix)
		}
	})

	t.Run("random matching is reproducible", func(t *testing.T) {
		bits := randomBits(rd, 200)
		embed := func(seed int64) *Pixels {
			s, err := NewSpatial(gradientPixels(10, 10, 3),
				WithLSBPolicy(RandomMatching), WithRand(rand.New(rand.NewSource(seed))))
			require.NoError(t, err)
			require.NoError(t, s.WriteBits(bits))
			return s.Pixels()
		}
		assert.Equal(t, embed(1), embed(1))
		assert.NotEqual(t, embed(1), embed(2))
	})

	t.Run("random matching needs a source", func(t *testing.T) {
		_, err := NewSpatial(gradientPixels(2, 2, 1), WithLSBPolicy(RandomMatching))
		assert.ErrorIs(t, err, ErrInvalidCover)
	})

	t.Run("capacity exceeded leaves cover untouched", func(t *testing.T) {
		s, err := NewSpatial(gradientPixels(2, 2, 3))
		require.NoError(t, err)
		before := s.Pixels()
		err = s.WriteBits(randomBits(rd, 13))
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, before, s.Pixels())

		assert.NoError(t, s.WriteBits(randomBits(rd, 12)))
	})

	t.Run("read limit", func(t *testing.T) {
		s, err := NewSpatial(gradientPixels(2, 2, 3))
		require.NoError(t, err)
		assert.Len(t, s.ReadBits(5), 5)
		assert.Len(t, s.ReadBits(100), 12)
		assert.Empty(t, s.ReadBits(-1))
	})

	t.Run("enumeration order", func(t *testing.T) {
		p := NewPixels(3, 2, 2)
		s, err := NewSpatial(p)
		require.NoError(t, err)
		bits := make([]bool, 12)
		at := p.Offset(1, 2, 1)
		bits[at] = true
		require.NoError(t, s.WriteBits(bits))
		out := s.Pixels()
		assert.Equal(t, 11, at)
		assert.Equal(t, uint8(1), out.Pix[(1*3+2)*2+1])
	})

	t.Run("invalid cover", func(t *testing.T) {
		for _, p := range []*Pixels{
			nil,
			{Width: 2, Height: 2, Channels: 0},
			{Width: 2, Height: 2, Channels: 3, Pix: make([]uint8, 11)},
		} {
			_, err := NewSpatial(p)
			assert.ErrorIs(t, err, ErrInvalidCover)
		}
	})
}

func TestParseLSBPolicy(t *testing.T) {
	test := []struct {
		in      string
		exp     LSBPolicy
		wantErr bool
	}{
		{"", Deterministic, false},
		{"deterministic", Deterministic, false},
		{"Random", RandomMatching, false},
		{"random-matching", RandomMatching, false},
		{"sideways", 0, true},
	}
	for _, tt := range test {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParseLSBPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, p)
		})
	}
}
