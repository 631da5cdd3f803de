package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadFasta(t *testing.T) {
	input := ">r0 some comment\nACGT\nACGT\n>r1\nTTTT\n"
	reads, err := ReadFasta(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"ACGTACGT", "TTTT"}, reads)
}

func TestReadFastq(t *testing.T) {
	input := "@r0\nACGT\n+\nIIII\n@r1\nTTTT\n+\nIIII\n"
	reads, err := ReadFastq(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"ACGT", "TTTT"}, reads)
}

func TestReadFastqTruncated(t *testing.T) {
	_, err := ReadFastq(strings.NewReader("@r0\nACGT\n+\n"))
	require.Error(t, err)
}

func TestInMemoryOracle(t *testing.T) {
	m, err := NewInMemory([]string{"ACGTAC", "TTTT", "G"})
	require.NoError(t, err)
	require.EqualValues(t, 3, m.NumReads())
	require.EqualValues(t, 11, m.TotalLength())
	require.EqualValues(t, 6, m.SeqLength(0))
	require.EqualValues(t, 4, m.SeqLength(1))
	require.EqualValues(t, 1, m.SeqLength(2))
	require.EqualValues(t, 6, m.MaxSeqLength())
	require.False(t, m.IsMirrored())

	require.Equal(t, "ACGTAC", m.Sequence(0, true))
	require.Equal(t, "GTACGT", m.Sequence(0, false))
	require.Equal(t, "TTTT", m.Sequence(1, true))
	require.Equal(t, "AAAA", m.Sequence(1, false))
	require.Equal(t, "G", m.Sequence(2, true))
	require.Equal(t, "C", m.Sequence(2, false))
}

func TestInMemoryOracleRejectsNonACGT(t *testing.T) {
	_, err := NewInMemory([]string{"ACGN"})
	require.Error(t, err)
}

func TestComplement(t *testing.T) {
	require.Equal(t, BaseT, Complement(BaseA))
	require.Equal(t, BaseG, Complement(BaseC))
	require.Equal(t, BaseC, Complement(BaseG))
	require.Equal(t, BaseA, Complement(BaseT))
}
