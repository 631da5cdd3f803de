package strgraph

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/spmlist"
)

func twoReadGraph(t *testing.T) *Graph {
	t.Helper()
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true},
	}
	return buildGraph(t, 2, 22, recs, Short)
}

func TestWriteDOT(t *testing.T) {
	g := twoReadGraph(t)
	var buf bytes.Buffer
	require.NoError(t, g.WriteDOT(&buf))
	out := buf.String()
	require.Contains(t, out, "digraph strgraph {")
	require.Contains(t, out, "r0E -> r1E")
}

func TestWriteDOTBidirected(t *testing.T) {
	g := twoReadGraph(t)
	var buf bytes.Buffer
	require.NoError(t, g.WriteDOTBidirected(&buf))
	out := buf.String()
	require.Contains(t, out, "graph strgraph {")
	require.Contains(t, out, "r0 -- r1")
	// Only one line per SPM, not per directed half-edge.
	require.Equal(t, 1, strings.Count(out, "r0 -- r1"))
}

func TestWriteAdjacency(t *testing.T) {
	g := twoReadGraph(t)
	var buf bytes.Buffer
	require.NoError(t, g.WriteAdjacency(&buf))
	out := buf.String()
	require.Contains(t, out, "r0E outdeg=1")
	require.Contains(t, out, "r1B outdeg=1")
}

func TestWriteSPMDump(t *testing.T) {
	g := twoReadGraph(t)
	var buf bytes.Buffer
	require.NoError(t, g.WriteSPMDump(&buf))

	var got []spmlist.Record
	require.NoError(t, spmlist.Parse(&buf, 0, func(r spmlist.Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 1)
	require.EqualValues(t, 0, got[0].SuffixRead)
	require.EqualValues(t, 1, got[0].PrefixRead)
	require.True(t, got[0].SuffixForward)
	require.True(t, got[0].PrefixForward)
}

func TestWriteASQGPlainAndGzip(t *testing.T) {
	o, err := oracle.NewInMemory([]string{"ACGTACGTAC", "GTACGTACGG"})
	require.NoError(t, err)
	b, err := NewBuilder(o.NumReads(), Short)
	require.NoError(t, err)
	rec := spmlist.Record{SuffixRead: 0, PrefixRead: 1, Length: 8, SuffixForward: true, PrefixForward: true}
	require.NoError(t, b.CountSPM(rec))
	g, err := b.Allocate(o, 0)
	require.NoError(t, err)
	_, err = g.Insert(rec, nil)
	require.NoError(t, err)
	require.NoError(t, g.FinishInsertion())
	require.NoError(t, g.SortEdgesByLength())

	var plain bytes.Buffer
	require.NoError(t, g.WriteASQG(&plain, false))
	require.Contains(t, plain.String(), "HT\tVN:i:1")
	require.Contains(t, plain.String(), "VT\tr0")
	require.Contains(t, plain.String(), "ED\tr0 r1")

	var gz bytes.Buffer
	require.NoError(t, g.WriteASQG(&gz, true))
	zr, err := gzip.NewReader(&gz)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Contains(t, string(raw), "VT\tr1")
}
