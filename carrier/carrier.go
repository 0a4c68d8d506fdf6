// Package carrier enumerates the embedding slots of a cover and reads or
// writes one bit per slot.
//
// Slot order is part of the contract between embedding and extraction:
// row-major over pixels or blocks, then channel or coefficient position.
package carrier

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("bitstream exceeds carrier capacity")
	ErrInvalidCover     = errors.New("invalid cover")
)

// Carrier is a cover whose slots can hold one bit each.
type Carrier interface {
	// Capacity is the number of slots that can hold a bit.
	Capacity() int
	// WriteBits stores bits in slot order. It fails without touching the
	// cover when len(bits) exceeds Capacity.
	WriteBits(bits []bool) error
	// ReadBits returns up to limit bits in slot order.
	ReadBits(limit int) []bool
}

func checkCapacity(c Carrier, n int) error {
	if capacity := c.Capacity(); n > capacity {
		return fmt.Errorf("%w: %d bits > %d slots", ErrCapacityExceeded, n, capacity)
	}
	return nil
}
