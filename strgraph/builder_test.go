package strgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/cntlist"
	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/spmlist"
)

func newTestBitset(n uint64, set ...uint64) *cntlist.Bitset {
	b := cntlist.New(n)
	for _, i := range set {
		b.Set(i)
	}
	return b
}

// TestBuilderConstruction replays spec.md §9 Scenario B: N=2, one SPM
// (suf=0, pre=1, L=10, +, +), fixlen=22.
func TestBuilderConstruction(t *testing.T) {
	b, err := NewBuilder(2, Short)
	require.NoError(t, err)

	rec := spmlist.Record{SuffixRead: 0, PrefixRead: 1, Length: 10, SuffixForward: true, PrefixForward: true}
	require.NoError(t, b.CountSPM(rec))
	require.EqualValues(t, 10, b.MinMatchLen())

	g, err := b.Allocate(nil, 22)
	require.NoError(t, err)

	require.EqualValues(t, 1, g.vs.slotCount(VertexE(0)))
	require.EqualValues(t, 1, g.vs.slotCount(VertexB(1)))
	require.EqualValues(t, 0, g.vs.slotCount(VertexB(0)))
	require.EqualValues(t, 0, g.vs.slotCount(VertexE(1)))

	skipped, err := g.Insert(rec, nil)
	require.NoError(t, err)
	require.False(t, skipped)
	require.NoError(t, g.FinishInsertion())

	require.EqualValues(t, 1, g.OutDegree(VertexE(0)))
	require.EqualValues(t, 1, g.OutDegree(VertexB(1)))

	eSlot, ok := g.soleLiveEdge(VertexE(0))
	require.True(t, ok)
	require.Equal(t, VertexE(1), g.es.Dest(eSlot))
	require.EqualValues(t, 12, g.es.Len(eSlot))

	bSlot, ok := g.soleLiveEdge(VertexB(1))
	require.True(t, ok)
	require.Equal(t, VertexB(0), g.es.Dest(bSlot))
	require.EqualValues(t, 12, g.es.Len(bSlot))

	require.Equal(t, g.partner[eSlot], bSlot)
	require.Equal(t, g.partner[bSlot], eSlot)
}

func TestBuilderRejectsWrongPhase(t *testing.T) {
	b, err := NewBuilder(2, Short)
	require.NoError(t, err)
	_, err = b.Allocate(nil, 10)
	require.NoError(t, err)
	err = b.CountSPM(spmlist.Record{SuffixRead: 0, PrefixRead: 1, Length: 1, SuffixForward: true, PrefixForward: true})
	require.Error(t, err)
}

func TestBuilderSelfMatchSkippedByDefault(t *testing.T) {
	b, err := NewBuilder(3, Short)
	require.NoError(t, err)
	require.NoError(t, b.CountSPM(spmlist.Record{SuffixRead: 1, PrefixRead: 1, Length: 5, SuffixForward: true, PrefixForward: true}))
	g, err := b.Allocate(nil, 10)
	require.NoError(t, err)
	require.EqualValues(t, 0, g.vs.slotCount(VertexE(1)))
	require.EqualValues(t, 0, g.vs.slotCount(VertexB(1)))
}

func TestBuilderContainedReadFilter(t *testing.T) {
	b, err := NewBuilder(3, Short)
	require.NoError(t, err)
	rec := spmlist.Record{SuffixRead: 0, PrefixRead: 2, Length: 5, SuffixForward: true, PrefixForward: true}
	require.NoError(t, b.CountSPM(rec))
	g, err := b.Allocate(nil, 10)
	require.NoError(t, err)

	contained := newTestBitset(3, 2)
	skipped, err := g.Insert(rec, contained)
	require.NoError(t, err)
	require.True(t, skipped)
	require.NoError(t, g.FinishInsertion())
	require.EqualValues(t, 0, g.OutDegree(VertexE(0)))
}

func TestBuildSmallInMemoryGraph(t *testing.T) {
	o, err := oracle.NewInMemory([]string{"ACGTACGTAC", "GTACGTACGG"})
	require.NoError(t, err)
	b, err := NewBuilder(o.NumReads(), Bitfield)
	require.NoError(t, err)
	rec := spmlist.Record{SuffixRead: 0, PrefixRead: 1, Length: 8, SuffixForward: true, PrefixForward: true}
	require.NoError(t, b.CountSPM(rec))
	g, err := b.Allocate(o, 0)
	require.NoError(t, err)
	_, err = g.Insert(rec, nil)
	require.NoError(t, err)
	require.NoError(t, g.SortEdgesByLength())
	require.EqualValues(t, 1, g.OutDegree(VertexE(0)))
}
