package bitconv

import "github.com/yyyoichi/bitstream-go"

// Pack packs bits in order into 64-bit words and returns the words with the
// number of valid bits.
func Pack(bits []bool) ([]uint64, int) {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	return w.Data(), w.Bits()
}

// Unpack reads the first size bits of data back into a bool slice.
// Bits past the end of data read as false.
func Unpack(data []uint64, size int) []bool {
	if size <= 0 {
		return []bool{}
	}
	r := bitstream.NewBitReader(data, 0, 0)
	bits := make([]bool, size)
	limit := min(size, len(data)*64)
	for i := range limit {
		bits[i], _ = r.ReadBitAt(i)
	}
	return bits
}
