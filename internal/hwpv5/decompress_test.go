package hwpv5

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/hwptext/internal/testdoc"
)

func TestDecompress(t *testing.T) {
	plain := testdoc.Records(
		testdoc.Record(TagParaHeader, 0, testdoc.UTF16("압축")),
		testdoc.Record(TagParaText, 1, testdoc.UTF16("본문")),
	)

	t.Run("raw deflate", func(t *testing.T) {
		out, err := Decompress(testdoc.Deflate(plain), 1<<20, DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, plain, out)
	})

	t.Run("stored fallback", func(t *testing.T) {
		// 0x46 as the first byte selects the reserved deflate block type.
		stored := testdoc.Records(testdoc.Record(70, 0, nil), plain)
		out, err := Decompress(stored, 1<<20, DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, stored, out)
	})

	t.Run("stored para records", func(t *testing.T) {
		// A para header opens with 0x42, a fixed Huffman block that inflates
		// to a back reference past the start of output.
		out, err := Decompress(plain, 1<<20, DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, plain, out)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Decompress(nil, 1<<20, DefaultPolicy())
		assert.ErrorIs(t, err, ErrCorruptStream)
	})

	t.Run("raw deflate only", func(t *testing.T) {
		_, err := Decompress([]byte{0x46, 0x00}, 1<<20, []Strategy{RawDeflate})
		assert.ErrorIs(t, err, ErrCorruptStream)
	})

	t.Run("inflated size limit", func(t *testing.T) {
		big := bytes.Repeat([]byte{0}, 64<<10)
		_, err := Decompress(testdoc.Deflate(big), 1024, DefaultPolicy())
		assert.ErrorIs(t, err, ErrStreamTooLarge)
	})

	t.Run("stored size limit", func(t *testing.T) {
		_, err := Decompress(bytes.Repeat([]byte{0x46}, 2048), 1024, []Strategy{Stored})
		assert.ErrorIs(t, err, ErrStreamTooLarge)
	})
}
