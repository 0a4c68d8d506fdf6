// Package container stores quantized coefficient blocks losslessly so that a
// frequency-domain stego cover survives a round trip through the file system.
//
// Layout before compression (little endian):
//
//	magic "SMC1\n"
//	uint32 width, height, quality, secretWidth, secretHeight
//	uint32 blockRows, blockCols
//	int32  coefficients, 64 per block, blocks row-major
//
// The whole payload is zstd-compressed.
package container

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/yyyoichi/stegmark/carrier"
)

const magic = "SMC1\n"

var ErrFormat = errors.New("not a coefficient container")

type File struct {
	// Width and Height of the luminance plane the blocks were computed from.
	Width, Height int
	Quality       int
	// SecretWidth and SecretHeight are the embedded bitmap's dimensions, or
	// zero when unknown.
	SecretWidth, SecretHeight int

	Coefficients *carrier.Coefficients
}

func Marshal(f *File) ([]byte, error) {
	if err := f.Coefficients.Validate(); err != nil {
		return nil, err
	}
	var raw bytes.Buffer
	bw := bufio.NewWriter(&raw)
	_, _ = bw.WriteString(magic)
	header := []uint32{
		uint32(f.Width), uint32(f.Height), uint32(f.Quality),
		uint32(f.SecretWidth), uint32(f.SecretHeight),
		uint32(f.Coefficients.BlockRows), uint32(f.Coefficients.BlockCols),
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if err := binary.Write(bw, binary.LittleEndian, f.Coefficients.Blocks); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw.Bytes(), nil), nil
}

func Unmarshal(data []byte) (*File, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decode: %w", ErrFormat, err)
	}
	if len(payload) < len(magic) || string(payload[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrFormat)
	}
	r := bytes.NewReader(payload[len(magic):])
	var header [7]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrFormat, err)
	}
	rows, cols := int(header[5]), int(header[6])
	if want := int64(rows) * int64(cols) * carrier.BlockSize * carrier.BlockSize * 4; want != int64(r.Len()) {
		return nil, fmt.Errorf("%w: %d bytes of blocks for %dx%d", ErrFormat, r.Len(), rows, cols)
	}
	coeffs := carrier.NewCoefficients(rows, cols)
	if err := binary.Read(r, binary.LittleEndian, coeffs.Blocks); err != nil {
		return nil, fmt.Errorf("%w: blocks: %w", ErrFormat, err)
	}
	return &File{
		Width:        int(header[0]),
		Height:       int(header[1]),
		Quality:      int(header[2]),
		SecretWidth:  int(header[3]),
		SecretHeight: int(header[4]),
		Coefficients: coeffs,
	}, nil
}

func Write(w io.Writer, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

func Save(path string, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), data, 0o644)
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
