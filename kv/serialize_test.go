package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritesEncodeDecodeRoundTrip(t *testing.T) {
	w := Writes{
		Puts: []Put{
			{Key: []byte("a"), Value: []byte("1")},
			{Key: []byte("b"), Value: []byte{}},
		},
		Removes: []Remove{{Key: []byte("c")}},
		RemoveRanges: []RemoveRange{
			{Start: []byte("d"), End: []byte("e")},
		},
		CounterAdjusts: []CounterAdjust{
			{Key: []byte("f"), Delta: -42},
		},
	}

	encoded := w.Encode()
	got, err := DecodeWrites(encoded)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestWritesEncodeDecodeEmpty(t *testing.T) {
	var w Writes
	got, err := DecodeWrites(w.Encode())
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestDecodeWritesRejectsTrailingGarbage(t *testing.T) {
	w := Writes{Puts: []Put{{Key: []byte("a"), Value: []byte("1")}}}
	encoded := append(w.Encode(), 0xFF)
	_, err := DecodeWrites(encoded)
	assert.Error(t, err)
}

func TestDecodeWritesRejectsTruncatedInput(t *testing.T) {
	_, err := DecodeWrites([]byte{0xFF})
	assert.Error(t, err)
}

func TestWritesAppendPreservesOrder(t *testing.T) {
	w := Writes{Puts: []Put{{Key: []byte("a"), Value: []byte("1")}}}
	w.Append(Writes{Puts: []Put{{Key: []byte("b"), Value: []byte("2")}}})
	assert.Equal(t, []Put{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}, w.Puts)
}

func TestWritesEmpty(t *testing.T) {
	assert.True(t, Writes{}.Empty())
	assert.False(t, Writes{Removes: []Remove{{Key: []byte("x")}}}.Empty())
}
