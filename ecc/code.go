package ecc

import "fmt"

// Code is a complete forward error correction scheme over flat bitstreams.
// Encode may pad; Decode is given the original size and strips the padding.
type Code interface {
	Encode(bits []bool) ([]bool, error)
	Decode(bits []bool, size int) ([]bool, error)
	// EncodedLen is the number of carrier bits Encode produces for size bits.
	EncodedLen(size int) int
	// Capacity is the largest size whose encoding fits in slots bits.
	Capacity(slots int) int
	fmt.Stringer
}

var _ Code = (*Hamming)(nil)

// Hamming is Hamming(7,4) with majority voting over redundant copies.
type Hamming struct {
	redundancy int
}

// NewHamming returns the Hamming code with the given odd redundancy factor.
func NewHamming(redundancy int) (*Hamming, error) {
	if err := ValidateRedundancy(redundancy); err != nil {
		return nil, err
	}
	return &Hamming{redundancy: redundancy}, nil
}

func (h *Hamming) Redundancy() int {
	return h.redundancy
}

func (h *Hamming) Encode(bits []bool) ([]bool, error) {
	return EncodeStream(bits, h.redundancy)
}

func (h *Hamming) Decode(bits []bool, size int) ([]bool, error) {
	decoded, err := DecodeStream(bits, h.redundancy)
	if err != nil {
		return nil, err
	}
	if len(decoded) < size {
		return nil, fmt.Errorf("%w: decoded %d bits, want %d", ErrShortStream, len(decoded), size)
	}
	return decoded[:size], nil
}

func (h *Hamming) EncodedLen(size int) int {
	return EncodedLen(size, h.redundancy)
}

func (h *Hamming) Capacity(slots int) int {
	return slots / (CodewordBits * h.redundancy) * DataBits
}

func (h *Hamming) String() string {
	return fmt.Sprintf("hamming(7,4)x%d", h.redundancy)
}

var _ Code = none{}

type none struct{}

// None passes bits through unchanged.
func None() Code {
	return none{}
}

func (none) Encode(bits []bool) ([]bool, error) {
	out := make([]bool, len(bits))
	copy(out, bits)
	return out, nil
}

func (none) Decode(bits []bool, size int) ([]bool, error) {
	if len(bits) < size {
		return nil, fmt.Errorf("%w: got %d bits, want %d", ErrShortStream, len(bits), size)
	}
	out := make([]bool, size)
	copy(out, bits)
	return out, nil
}

func (none) EncodedLen(size int) int { return size }

func (none) Capacity(slots int) int { return slots }

func (none) String() string { return "none" }
