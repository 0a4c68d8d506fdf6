package ecc

import (
	"fmt"
	"math/rand"

	"github.com/yyyoichi/bitstream-go"
	"github.com/yyyoichi/golay"
	"github.com/yyyoichi/stegmark/internal/bitconv"
)

var DefaultShuffleSeed int64 = 1234567890

var _ Code = (*Golay)(nil)

// Golay is the binary Golay code, correcting up to three errors per 23-bit
// block. Encoded bits are interleaved with a seeded permutation so that a
// burst of corrupted slots spreads over many blocks.
type Golay struct {
	seed int64
}

func NewGolay(seed int64) *Golay {
	return &Golay{seed: seed}
}

func (g *Golay) Encode(bits []bool) ([]bool, error) {
	if len(bits) == 0 {
		return []bool{}, nil
	}
	data, size := bitconv.Pack(bits)
	var encoded []uint64
	enc := golay.NewEncoder(&encoded)
	if err := enc.Encode(data, size); err != nil {
		return nil, fmt.Errorf("golay encode: %w", err)
	}
	encodedLen := enc.Bits()

	index := g.permutation(encodedLen)
	r := bitstream.NewBitReader(encoded, 0, 0)
	out := make([]bool, encodedLen)
	for i := range encodedLen {
		out[i], _ = r.ReadBitAt(index[i])
	}
	return out, nil
}

func (g *Golay) Decode(bits []bool, size int) ([]bool, error) {
	if size == 0 {
		return []bool{}, nil
	}
	n := g.EncodedLen(size)
	if len(bits) < n {
		return nil, fmt.Errorf("%w: got %d bits, want %d", ErrShortStream, len(bits), n)
	}

	// undo the interleave
	index := g.permutation(n)
	w := bitstream.NewBitWriter[uint64](0, 0)
	for i := range n {
		w.WriteBitAt(index[i], bits[i])
	}

	var decoded []uint64
	dec := golay.NewDecoder(w.Data(), w.Bits())
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodableBlock, err)
	}
	return bitconv.Unpack(decoded, size), nil
}

func (g *Golay) EncodedLen(size int) int {
	if size <= 0 {
		return 0
	}
	return golay.EncodedBits(size)
}

func (g *Golay) Capacity(slots int) int {
	n := slots / 23 * 12
	for g.EncodedLen(n+1) <= slots {
		n++
	}
	for n > 0 && g.EncodedLen(n) > slots {
		n--
	}
	return n
}

func (g *Golay) String() string {
	return fmt.Sprintf("golay(seed=%d)", g.seed)
}

func (g *Golay) permutation(length int) []int {
	index := make([]int, length)
	for i := range index {
		index[i] = i
	}
	rd := rand.New(rand.NewSource(g.seed))
	rd.Shuffle(length, func(i, j int) {
		index[i], index[j] = index[j], index[i]
	})
	return index
}
