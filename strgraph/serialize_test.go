package strgraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/spmlist"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, enc := range []Encoding{Short, Bitfield, Bitpack} {
		enc := enc
		t.Run(enc.String(), func(t *testing.T) {
			recs := []spmlist.Record{
				{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true},
				{SuffixRead: 1, PrefixRead: 2, Length: 14, SuffixForward: true, PrefixForward: true},
			}
			g := buildGraph(t, 3, 22, recs, enc)
			n, err := g.ReduceSelf()
			require.NoError(t, err)
			require.EqualValues(t, 0, n)

			var buf bytes.Buffer
			require.NoError(t, g.Save(&buf))

			loaded, err := Load(&buf)
			require.NoError(t, err)

			require.Equal(t, g.numReads, loaded.numReads)
			require.Equal(t, g.fixLen, loaded.fixLen)
			require.Equal(t, g.minMatchLen, loaded.minMatchLen)
			require.Equal(t, g.es.NumSlots(), loaded.es.NumSlots())
			require.EqualValues(t, g.OutDegree(VertexE(0)), loaded.OutDegree(VertexE(0)))
			require.EqualValues(t, g.OutDegree(VertexB(1)), loaded.OutDegree(VertexB(1)))

			slot, ok := loaded.soleLiveEdge(VertexE(0))
			require.True(t, ok)
			require.Equal(t, VertexE(1), loaded.es.Dest(slot))
			require.Equal(t, loaded.partner[slot], loaded.partner[slot])
			require.Equal(t, slot, loaded.partner[loaded.partner[slot]])
		})
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("nope-not-a-checkpoint")))
	require.Error(t, err)
}

func TestLoadDetectsChecksumMismatch(t *testing.T) {
	recs := []spmlist.Record{
		{SuffixRead: 0, PrefixRead: 1, Length: 18, SuffixForward: true, PrefixForward: true},
	}
	g := buildGraph(t, 2, 22, recs, Short)
	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))
	corrupt := buf.Bytes()
	// Flip a byte inside the compressed edge payload, past the header and
	// vertex arrays, to trigger the SeaHash mismatch on reload.
	corrupt[len(corrupt)-1] ^= 0xFF
	_, err := Load(bytes.NewReader(corrupt))
	require.Error(t, err)
}
