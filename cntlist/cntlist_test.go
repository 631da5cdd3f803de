package cntlist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSet(n uint64, set ...uint64) *Bitset {
	b := New(n)
	for _, i := range set {
		b.Set(i)
	}
	return b
}

func TestRoundTripASCII(t *testing.T) {
	b := buildSet(10, 1, 3, 9)
	var buf bytes.Buffer
	require.NoError(t, Write(b, &buf, ASCII))
	require.Equal(t, byte('['), buf.Bytes()[0])

	got, err := Parse(&buf, true, nil)
	require.NoError(t, err)
	require.EqualValues(t, 10, got.N())
	require.EqualValues(t, 3, Count(got))
	require.True(t, got.Get(1))
	require.True(t, got.Get(3))
	require.True(t, got.Get(9))
	require.False(t, got.Get(0))
}

func TestRoundTripBit(t *testing.T) {
	b := buildSet(130, 0, 64, 129)
	var buf bytes.Buffer
	require.NoError(t, Write(b, &buf, Bit))

	got, err := Parse(&buf, true, nil)
	require.NoError(t, err)
	require.EqualValues(t, 130, got.N())
	require.EqualValues(t, 3, Count(got))
	require.True(t, got.Get(0))
	require.True(t, got.Get(64))
	require.True(t, got.Get(129))
}

func TestRoundTripIndexed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIndexedHeader(4, &buf))
	require.NoError(t, WriteIndexedEntry(1, &buf))
	require.NoError(t, WriteIndexedEntry(3, &buf))

	got, err := Parse(&buf, true, nil)
	require.NoError(t, err)
	require.EqualValues(t, 4, got.N())
	require.EqualValues(t, 2, Count(got))
	require.True(t, got.Get(1))
	require.True(t, got.Get(3))
}

func TestMergeOrsIntoExisting(t *testing.T) {
	existing := buildSet(4, 0)
	var buf bytes.Buffer
	require.NoError(t, Write(buildSet(4, 2), &buf, Bit))

	got, err := Parse(&buf, false, existing)
	require.NoError(t, err)
	require.Same(t, existing, got)
	require.True(t, got.Get(0))
	require.True(t, got.Get(2))
}

func TestParseUnrecognizedHeader(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{0x7f, 0, 0}), true, nil)
	require.Error(t, err)
}

func TestParseBitSizeWordMismatch(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{headerBit, 4, 0, 0, 0, 0}), true, nil)
	require.Error(t, err)
}

func TestParseTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(buildSet(100, 5), &buf, Bit))
	truncated := buf.Bytes()[:len(buf.Bytes())-4]
	_, err := Parse(bytes.NewReader(truncated), true, nil)
	require.Error(t, err)
}

func TestCountEmpty(t *testing.T) {
	b := New(64)
	require.EqualValues(t, 0, Count(b))
}

func TestOrSizeMismatch(t *testing.T) {
	a := New(4)
	b := New(8)
	require.Error(t, a.Or(b))
}
