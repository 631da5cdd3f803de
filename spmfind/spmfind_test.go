package spmfind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/spmlist"
)

func TestFindSimpleOverlap(t *testing.T) {
	o, err := oracle.NewInMemory([]string{"ACGTACGTAC", "GTACGTACGG"})
	require.NoError(t, err)

	var recs []spmlist.Record
	require.NoError(t, Find(o, Options{MinMatchLen: 4}, func(r spmlist.Record) error {
		recs = append(recs, r)
		return nil
	}))

	var found bool
	for _, r := range recs {
		if r.SuffixRead == 0 && r.PrefixRead == 1 && r.SuffixForward && r.PrefixForward {
			require.EqualValues(t, 8, r.Length)
			found = true
		}
	}
	require.True(t, found, "expected the 8-base forward/forward overlap between read 0 and read 1")
}

func TestFindRespectsMinMatchLen(t *testing.T) {
	o, err := oracle.NewInMemory([]string{"ACGTACGTAC", "GTACGTACGG"})
	require.NoError(t, err)

	var n int
	require.NoError(t, Find(o, Options{MinMatchLen: 9}, func(r spmlist.Record) error {
		n++
		return nil
	}))
	require.Equal(t, 0, n)
}

func TestFindSkipsSelfMatchesByDefault(t *testing.T) {
	o, err := oracle.NewInMemory([]string{"ACGTACGT"})
	require.NoError(t, err)

	var n int
	require.NoError(t, Find(o, Options{MinMatchLen: 2}, func(r spmlist.Record) error {
		n++
		return nil
	}))
	require.Equal(t, 0, n)
}

func TestFindSelfMatchesWhenEnabled(t *testing.T) {
	// "ACGT" is its own reverse complement, so its forward suffix matches
	// its reverse-complement prefix at full length.
	o, err := oracle.NewInMemory([]string{"ACGT"})
	require.NoError(t, err)

	var recs []spmlist.Record
	require.NoError(t, Find(o, Options{MinMatchLen: 2, SelfMatches: true}, func(r spmlist.Record) error {
		recs = append(recs, r)
		return nil
	}))
	require.NotEmpty(t, recs)
	for _, r := range recs {
		require.EqualValues(t, 0, r.SuffixRead)
		require.EqualValues(t, 0, r.PrefixRead)
	}
}
