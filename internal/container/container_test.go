package container

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stegmark/carrier"
)

func sample() *File {
	c := carrier.NewCoefficients(3, 4)
	for i := range c.Blocks {
		for j := range c.Blocks[i] {
			c.Blocks[i][j] = int32((i*64+j)%23) - 11
		}
	}
	return &File{
		Width:        30,
		Height:       20,
		Quality:      90,
		SecretWidth:  6,
		SecretHeight: 5,
		Coefficients: c,
	}
}

func TestRoundTrip(t *testing.T) {
	f := sample()

	t.Run("bytes", func(t *testing.T) {
		data, err := Marshal(f)
		require.NoError(t, err)
		got, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, f, got)
	})

	t.Run("stream", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, f))
		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, f, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cover.smc")
		require.NoError(t, Save(path, f))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, f, got)
	})

	t.Run("empty grid", func(t *testing.T) {
		empty := &File{Coefficients: carrier.NewCoefficients(0, 0)}
		data, err := Marshal(empty)
		require.NoError(t, err)
		got, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Coefficients.BlockRows)
		assert.Empty(t, got.Coefficients.Blocks)
	})
}

func TestFormatErrors(t *testing.T) {
	_, err := Unmarshal([]byte("plain text"))
	assert.ErrorIs(t, err, ErrFormat)

	data, err := Marshal(sample())
	require.NoError(t, err)
	_, err = Unmarshal(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Marshal(&File{Coefficients: &carrier.Coefficients{BlockRows: 1, BlockCols: 1}})
	assert.ErrorIs(t, err, carrier.ErrInvalidCover)
}
