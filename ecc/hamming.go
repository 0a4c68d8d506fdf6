// Package ecc implements the forward error correction applied to secret
// bitstreams before they reach a carrier.
//
// The default code is Hamming(7,4) with every codeword repeated an odd number
// of times and resolved by per-bit majority vote. Codeword bit positions are
// 1-indexed as p1 p2 d1 p3 d2 d3 d4, so a non-zero syndrome is the position
// of the corrupted bit.
package ecc

import (
	"errors"
	"fmt"
)

const (
	DataBits     = 4
	CodewordBits = 7

	DefaultRedundancy = 3
)

var (
	ErrInvalidRedundancy = errors.New("redundancy must be a positive odd number")
	// ErrUndecodableBlock is returned by codes that can detect corruption beyond
	// their correction capacity. Hamming(7,4) never returns it.
	ErrUndecodableBlock = errors.New("undecodable block")
	ErrShortStream      = errors.New("encoded stream too short")
)

type (
	Nibble   [DataBits]bool
	Codeword [CodewordBits]bool
)

// EncodeBlock computes the three even-parity bits of a nibble:
//
//	p1 = d1^d2^d4, p2 = d1^d3^d4, p3 = d2^d3^d4
func EncodeBlock(d Nibble) Codeword {
	return Codeword{
		d[0] != d[1] != d[3],
		d[0] != d[2] != d[3],
		d[0],
		d[1] != d[2] != d[3],
		d[1],
		d[2],
		d[3],
	}
}

// DecodeBlock corrects at most one flipped bit and returns the data nibble
// together with the corrected 1-indexed position (0 when the syndrome is zero).
// Two or more flipped bits decode to a wrong nibble without notice.
func DecodeBlock(c Codeword) (Nibble, int) {
	if p := Syndrome(c); p != 0 {
		c[p-1] = !c[p-1]
		return Nibble{c[2], c[4], c[5], c[6]}, p
	}
	return Nibble{c[2], c[4], c[5], c[6]}, 0
}

// Syndrome returns s1 + 2*s2 + 4*s3 where sk checks the positions whose
// k-th binary digit is set.
func Syndrome(c Codeword) int {
	var s int
	if c[0] != c[2] != c[4] != c[6] {
		s |= 1
	}
	if c[1] != c[2] != c[5] != c[6] {
		s |= 2
	}
	if c[3] != c[4] != c[5] != c[6] {
		s |= 4
	}
	return s
}

// PadLen is the number of zero bits EncodeStream appends to n bits.
func PadLen(n int) int {
	return (DataBits - n%DataBits) % DataBits
}

// EncodedLen is the length of EncodeStream's output for n input bits.
func EncodedLen(n, redundancy int) int {
	return (n + PadLen(n)) / DataBits * CodewordBits * redundancy
}

func ValidateRedundancy(redundancy int) error {
	if redundancy < 1 || redundancy%2 == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRedundancy, redundancy)
	}
	return nil
}

// EncodeStream zero-pads bits to a multiple of four and writes each chunk's
// codeword redundancy times in a row. The pad is not recorded; callers strip
// PadLen(len(bits)) bits after decoding.
func EncodeStream(bits []bool, redundancy int) ([]bool, error) {
	if err := ValidateRedundancy(redundancy); err != nil {
		return nil, err
	}
	out := make([]bool, 0, EncodedLen(len(bits), redundancy))
	for at := 0; at < len(bits); at += DataBits {
		var d Nibble
		copy(d[:], bits[at:min(at+DataBits, len(bits))])
		c := EncodeBlock(d)
		for range redundancy {
			out = append(out, c[:]...)
		}
	}
	return out, nil
}

// DecodeStream reads groups of 7*redundancy bits, decodes every copy and
// takes the per-bit majority. A trailing group shorter than 7*redundancy is
// dropped. Padding added by EncodeStream is returned as-is.
func DecodeStream(bits []bool, redundancy int) ([]bool, error) {
	if err := ValidateRedundancy(redundancy); err != nil {
		return nil, err
	}
	group := CodewordBits * redundancy
	groups := len(bits) / group
	out := make([]bool, 0, groups*DataBits)
	for g := range groups {
		var votes [DataBits]int
		for k := range redundancy {
			var c Codeword
			start := g*group + k*CodewordBits
			copy(c[:], bits[start:start+CodewordBits])
			d, _ := DecodeBlock(c)
			for i, v := range d {
				if v {
					votes[i]++
				}
			}
		}
		for _, n := range votes {
			out = append(out, 2*n > redundancy)
		}
	}
	return out, nil
}
