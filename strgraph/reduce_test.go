package strgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/spmlist"
)

// buildGraph is a small test harness: N reads of uniform fixLen, built from
// a list of SPM records, sorted by length, ready for reducers.
func buildGraph(t *testing.T, numReads uint64, fixLen uint64, recs []spmlist.Record, enc Encoding) *Graph {
	t.Helper()
	b, err := NewBuilder(numReads, enc)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, b.CountSPM(r))
	}
	g, err := b.Allocate(nil, fixLen)
	require.NoError(t, err)
	for _, r := range recs {
		_, err := g.Insert(r, nil)
		require.NoError(t, err)
	}
	require.NoError(t, g.SortEdgesByLength())
	return g
}

func TestReduceSelf(t *testing.T) {
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 0, Length: 5, SuffixForward: true, PrefixForward: true},
	}
	b, err := NewBuilder(1, Short)
	require.NoError(t, err)
	b.SetLoadSelfSPM(true)
	for _, r := range recs {
		require.NoError(t, b.CountSPM(r))
	}
	g, err := b.Allocate(nil, 22)
	require.NoError(t, err)
	for _, r := range recs {
		_, err := g.Insert(r, nil)
		require.NoError(t, err)
	}
	require.NoError(t, g.SortEdgesByLength())

	require.EqualValues(t, 1, g.OutDegree(VertexE(0)))
	require.EqualValues(t, 1, g.OutDegree(VertexB(0)))

	n, err := g.ReduceSelf()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 0, g.OutDegree(VertexE(0)))
	require.EqualValues(t, 0, g.OutDegree(VertexB(0)))
}

// TestReduceTransitive is a small transitive triangle: three reads where
// the 0->2 edge is redundant given 0->1 and 1->2 of matching combined
// length, in the spirit of spec.md §9 Scenario A.
func TestReduceTransitive(t *testing.T) {
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true}, // E0->E1 len=4, B1->B0 len=4
		{SuffixRead: 1, PrefixRead: 2, Length: 18, SuffixForward: true, PrefixForward: true}, // E1->E2 len=4, B2->B1 len=4
		{SuffixRead: 0, PrefixRead: 2, Length: 14, SuffixForward: true, PrefixForward: true}, // E0->E2 len=8, B2->B0 len=8
	}
	g := buildGraph(t, 3, 22, recs, Short)

	require.EqualValues(t, 2, g.OutDegree(VertexE(0)))

	n, err := g.ReduceTransitive()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 1, g.OutDegree(VertexE(0)))

	slot, ok := g.soleLiveEdge(VertexE(0))
	require.True(t, ok)
	require.Equal(t, VertexE(1), g.es.Dest(slot))
}

func TestReduceSubmaximal(t *testing.T) {
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true},
		{SuffixRead: 0, PrefixRead: 1, Length: 16, SuffixForward: true, PrefixForward: true},
	}
	g := buildGraph(t, 2, 22, recs, Short)
	require.EqualValues(t, 2, g.OutDegree(VertexE(0)))

	n, err := g.ReduceSubmaximal()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 1, g.OutDegree(VertexE(0)))
}

// TestReduceDeadEnd replays spec.md §9 Scenario E: a chain of three
// internal vertices hanging off a junction vertex; with maxdepth=10 the
// whole chain is removed and the junction's outdeg drops by exactly 1.
func TestReduceDeadEnd(t *testing.T) {
	// Junction read 0 (E0 has two live paths: to read 1's chain, and a
	// stray direct edge elsewhere simulated by a self-contained SPM to
	// read 4) and a 3-long internal chain 1->2->3 ending at a sink (read
	// 3's other end has no further edges).
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true}, // E0->E1(4), B1->B0(4)
		{SuffixRead: 0, PrefixRead: 4, Length: 10, SuffixForward: true, PrefixForward: true}, // E0->E4(12), B4->B0(12): keeps E0 a junction (outdeg 2)
		{SuffixRead: 1, PrefixRead: 2, Length: 18, SuffixForward: true, PrefixForward: true}, // E1->E2(4), B2->B1(4)
		{SuffixRead: 2, PrefixRead: 3, Length: 18, SuffixForward: true, PrefixForward: true}, // E2->E3(4), B3->B2(4)
	}
	g := buildGraph(t, 5, 22, recs, Short)

	require.EqualValues(t, 2, g.OutDegree(VertexE(0)))
	require.True(t, g.isInternal(VertexE(1)))
	require.True(t, g.isInternal(VertexE(2)))

	n, err := g.ReduceDeadEnd(10)
	require.NoError(t, err)
	require.Greater(t, n, uint64(0))
	require.EqualValues(t, 1, g.OutDegree(VertexE(0)))
}

func TestCompactShrinksEdgeArray(t *testing.T) {
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 0, Length: 5, SuffixForward: true, PrefixForward: true},
		{SuffixRead: 1, PrefixRead: 2, Length: 18, SuffixForward: true, PrefixForward: true},
	}
	b, err := NewBuilder(3, Short)
	require.NoError(t, err)
	b.SetLoadSelfSPM(true)
	for _, r := range recs {
		require.NoError(t, b.CountSPM(r))
	}
	g, err := b.Allocate(nil, 22)
	require.NoError(t, err)
	for _, r := range recs {
		_, err := g.Insert(r, nil)
		require.NoError(t, err)
	}
	require.NoError(t, g.SortEdgesByLength())

	before := g.es.NumSlots()
	_, err = g.ReduceSelf()
	require.NoError(t, err)
	require.NoError(t, g.Compact())
	after := g.es.NumSlots()
	require.Less(t, after, before)
	require.EqualValues(t, 2, after) // only the read1<->read2 pair survives
}
