package carrier

import (
	"fmt"
	"sync"
)

const BlockSize = 8

// Block holds one 8x8 block of quantized transform coefficients, row-major.
type Block [BlockSize * BlockSize]int32

func (b *Block) At(row, col int) int32 {
	return b[row*BlockSize+col]
}

func (b *Block) Set(row, col int, v int32) {
	b[row*BlockSize+col] = v
}

// Position addresses a coefficient inside a block.
type Position struct {
	Row, Col int
}

func (p Position) index() int {
	return p.Row*BlockSize + p.Col
}

// DefaultPositions are three mid-frequency coefficients on the diagonal.
var DefaultPositions = []Position{{3, 3}, {4, 4}, {5, 5}}

// Coefficients is a grid of BlockRows x BlockCols blocks stored row-major.
type Coefficients struct {
	BlockRows, BlockCols int
	Blocks               []Block
}

func NewCoefficients(blockRows, blockCols int) *Coefficients {
	return &Coefficients{
		BlockRows: blockRows,
		BlockCols: blockCols,
		Blocks:    make([]Block, blockRows*blockCols),
	}
}

func (c *Coefficients) Block(row, col int) *Block {
	return &c.Blocks[row*c.BlockCols+col]
}

func (c *Coefficients) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil coefficients", ErrInvalidCover)
	}
	if c.BlockRows < 0 || c.BlockCols < 0 || len(c.Blocks) != c.BlockRows*c.BlockCols {
		return fmt.Errorf("%w: %d blocks for %dx%d", ErrInvalidCover, len(c.Blocks), c.BlockRows, c.BlockCols)
	}
	return nil
}

func (c *Coefficients) Clone() *Coefficients {
	out := *c
	out.Blocks = make([]Block, len(c.Blocks))
	copy(out.Blocks, c.Blocks)
	return &out
}

var _ Carrier = (*Frequency)(nil)

// Frequency embeds into the least-significant bit of fixed mid-frequency
// coefficients. Zero coefficients are skipped on every pass, so a slot exists
// only where the coefficient being read or written is non-zero.
//
// Re-quantizing the cover between embedding and extraction can turn a
// non-zero coefficient into zero and shift every later slot.
type Frequency struct {
	coeffs    *Coefficients
	positions []Position
}

type FrequencyOption func(*Frequency)

// WithPositions replaces DefaultPositions. Positions are visited in the given
// order inside each block.
func WithPositions(positions ...Position) FrequencyOption {
	return func(f *Frequency) {
		f.positions = append([]Position(nil), positions...)
	}
}

// NewFrequency wraps a private copy of c; the caller's blocks are never modified.
func NewFrequency(c *Coefficients, opts ...FrequencyOption) (*Frequency, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	f := &Frequency{
		coeffs:    c.Clone(),
		positions: DefaultPositions,
	}
	for _, opt := range opts {
		opt(f)
	}
	if len(f.positions) == 0 {
		return nil, fmt.Errorf("%w: no coefficient positions", ErrInvalidCover)
	}
	for _, p := range f.positions {
		if p.Row < 0 || p.Row >= BlockSize || p.Col < 0 || p.Col >= BlockSize {
			return nil, fmt.Errorf("%w: position (%d,%d) outside block", ErrInvalidCover, p.Row, p.Col)
		}
		if p.Row == 0 && p.Col == 0 {
			return nil, fmt.Errorf("%w: DC coefficient is not a slot", ErrInvalidCover)
		}
	}
	return f, nil
}

// Coefficients returns a copy of the current cover.
func (f *Frequency) Coefficients() *Coefficients {
	return f.coeffs.Clone()
}

// Capacity counts non-zero coefficients at the configured positions. Block
// rows are counted concurrently; the count does not depend on order.
func (f *Frequency) Capacity() int {
	counts := make([]int, f.coeffs.BlockRows)
	var wg sync.WaitGroup
	wg.Add(f.coeffs.BlockRows)
	for row := range f.coeffs.BlockRows {
		go func(row int) {
			defer wg.Done()
			for col := range f.coeffs.BlockCols {
				b := f.coeffs.Block(row, col)
				for _, p := range f.positions {
					if b[p.index()] != 0 {
						counts[row]++
					}
				}
			}
		}(row)
	}
	wg.Wait()
	var total int
	for _, n := range counts {
		total += n
	}
	return total
}

// WriteBits sets the LSB of each non-zero slot coefficient. A coefficient of
// 1 receiving a 0 is written as 2 so it stays non-zero and visible to
// ReadBits.
func (f *Frequency) WriteBits(bits []bool) error {
	if err := checkCapacity(f, len(bits)); err != nil {
		return err
	}
	at := 0
	f.each(func(v *int32) bool {
		if at >= len(bits) {
			return false
		}
		var bit int32
		if bits[at] {
			bit = 1
		}
		nv := (*v &^ 1) | bit
		if nv == 0 {
			nv = 2
		}
		*v = nv
		at++
		return true
	})
	return nil
}

func (f *Frequency) ReadBits(limit int) []bool {
	bits := make([]bool, 0, min(max(limit, 0), len(f.coeffs.Blocks)*len(f.positions)))
	f.each(func(v *int32) bool {
		if len(bits) >= limit {
			return false
		}
		bits = append(bits, *v&1 == 1)
		return true
	})
	return bits
}

// each visits non-zero slot coefficients block by block, row-major, until fn
// returns false.
func (f *Frequency) each(fn func(v *int32) bool) {
	for i := range f.coeffs.Blocks {
		b := &f.coeffs.Blocks[i]
		for _, p := range f.positions {
			v := &b[p.index()]
			if *v == 0 {
				continue
			}
			if !fn(v) {
				return
			}
		}
	}
}
