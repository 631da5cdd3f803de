package strgraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/spmlist"
)

func TestShowContextBoundedNeighborhood(t *testing.T) {
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true},
		{SuffixRead: 1, PrefixRead: 2, Length: 18, SuffixForward: true, PrefixForward: true},
		{SuffixRead: 2, PrefixRead: 3, Length: 18, SuffixForward: true, PrefixForward: true},
	}
	g := buildGraph(t, 4, 22, recs, Short)

	var buf bytes.Buffer
	require.NoError(t, g.ShowContext(&buf, []uint64{0}, 2))
	out := buf.String()
	require.Contains(t, out, "r0E")
	require.Contains(t, out, "r1E")
	// read 3 is 3 hops away from read 0's E-end; maxDepth=2 should exclude it.
	require.NotContains(t, out, "r3E -> ")
}

func TestShowContextRejectsOutOfRangeRead(t *testing.T) {
	g := twoReadGraph(t)
	var buf bytes.Buffer
	require.Error(t, g.ShowContext(&buf, []uint64{99}, 2))
}
