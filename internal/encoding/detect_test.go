package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8Passthrough(t *testing.T) {
	got, err := DecodeToUTF8([]byte("Bücher,Österreich\n"))
	require.NoError(t, err)
	assert.Equal(t, "Bücher,Österreich\n", string(got))
}

func TestDecodeStripsUTF8BOM(t *testing.T) {
	got, err := DecodeToUTF8(append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n")...))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))
}

func TestDecodeUTF16LE(t *testing.T) {
	// "ab\n" as UTF-16 LE with BOM.
	data := []byte{0xFF, 0xFE, 'a', 0x00, 'b', 0x00, '\n', 0x00}
	got, err := DecodeToUTF8(data)
	require.NoError(t, err)
	assert.Equal(t, "ab\n", string(got))
}

func TestDecodeUTF16BE(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x00, 'a', 0x00, 'b', 0x00, '\n'}
	got, err := DecodeToUTF8(data)
	require.NoError(t, err)
	assert.Equal(t, "ab\n", string(got))
}

func TestDecodeWindows1252Fallback(t *testing.T) {
	// 0xFC is ü in Windows-1252 and invalid standalone UTF-8.
	got, err := DecodeToUTF8([]byte("B\xfccher\n"))
	require.NoError(t, err)
	assert.Equal(t, "Bücher\n", string(got))
}

func TestDecodeEmpty(t *testing.T) {
	got, err := DecodeToUTF8(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
