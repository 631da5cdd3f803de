package spmlist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, data []byte, minLength uint64) []Record {
	t.Helper()
	var got []Record
	err := Parse(bytes.NewReader(data), minLength, func(r Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	return got
}

var sample = []Record{
	{SuffixRead: 0, PrefixRead: 1, Length: 42, SuffixForward: true, PrefixForward: true},
	{SuffixRead: 2, PrefixRead: 3, Length: 17, SuffixForward: false, PrefixForward: true},
	{SuffixRead: 4, PrefixRead: 5, Length: 99, SuffixForward: true, PrefixForward: false},
}

func TestRoundTripASCII(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, ASCII, false)
	require.NoError(t, err)
	for _, r := range sample {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())

	got := collect(t, buf.Bytes(), 0)
	require.Equal(t, sample, got)
}

func TestRoundTripBin32(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Bin32, false)
	require.NoError(t, err)
	for _, r := range sample {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.Equal(t, byte(headerBin32), buf.Bytes()[0])

	got := collect(t, buf.Bytes(), 0)
	require.Equal(t, sample, got)
}

func TestRoundTripBin64WithChecksum(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Bin64, true)
	require.NoError(t, err)
	for _, r := range sample {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.Equal(t, byte(headerBin64), buf.Bytes()[0])

	got := collect(t, buf.Bytes(), 0)
	// The checksum trailer is appended after the last record; parseBin reads
	// fixed-width records and stops cleanly at EOF once whole records are
	// exhausted, so a correctly-sized trailer must not alias as an extra
	// record.
	require.Len(t, got, 3)
}

func TestMinLengthFilter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, ASCII, false)
	require.NoError(t, err)
	for _, r := range sample {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())

	got := collect(t, buf.Bytes(), 20)
	require.Len(t, got, 2)
	for _, r := range got {
		require.GreaterOrEqual(t, r.Length, uint64(20))
	}
}

func TestParseMalformedASCII(t *testing.T) {
	err := Parse(bytes.NewReader([]byte("not a record\n")), 0, func(Record) error { return nil })
	require.Error(t, err)
}

func TestParseBadOrientation(t *testing.T) {
	err := Parse(bytes.NewReader([]byte("0 x 1 + 5\n")), 0, func(Record) error { return nil })
	require.Error(t, err)
}

func TestDedupSuppressesRepeats(t *testing.T) {
	proc := Dedup(func(Record) error { return nil })
	var seenCount int
	wrapped := Dedup(func(r Record) error {
		seenCount++
		return nil
	})
	for i := 0; i < 3; i++ {
		require.NoError(t, wrapped(sample[0]))
	}
	require.NoError(t, wrapped(sample[1]))
	require.Equal(t, 2, seenCount)
	require.NotNil(t, proc)
}

func TestBin32OverflowRejected(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Bin32, false)
	require.NoError(t, err)
	err = w.Write(Record{SuffixRead: 1 << 40, PrefixRead: 1, Length: 1})
	require.Error(t, err)
}
