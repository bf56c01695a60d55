package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompress_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"Hello world",
		strings.Repeat("the quick brown fox jumps over the lazy dog ", 200),
	}
	for _, s := range cases {
		compressed, err := Compress([]byte(s), DefaultLevel)
		require.NoError(t, err)

		got, err := Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}
}

func TestCompress_LevelClamping(t *testing.T) {
	data := []byte("some repeated repeated repeated data")
	for _, level := range []int{-5, 0, 1, 3, 9, 15, 22, 999} {
		compressed, err := Compress(data, level)
		require.NoError(t, err)
		got, err := Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestDecompress_MalformedFrame(t *testing.T) {
	_, err := Decompress([]byte("not a zstd frame"))
	assert.Error(t, err)
}
