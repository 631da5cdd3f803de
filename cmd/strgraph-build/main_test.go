package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/strgraph"
)

func TestParseEncoding(t *testing.T) {
	enc, err := parseEncoding("bitpack")
	require.NoError(t, err)
	require.Equal(t, strgraph.Bitpack, enc)

	_, err = parseEncoding("nonsense")
	require.Error(t, err)
}

// TestBuildAndSpellEndToEnd exercises the brute-force-find -> build -> reduce
// -> spell pipeline on two overlapping reads, bypassing flag.Parse by
// setting the backing vars directly.
func TestBuildAndSpellEndToEnd(t *testing.T) {
	dir := t.TempDir()
	fastaFile := filepath.Join(dir, "reads.fa")
	require.NoError(t, os.WriteFile(fastaFile, []byte(">r0\nACGTACGTAC\n>r1\nGTACGTACGG\n"), 0o644))

	*fastaPath = fastaFile
	*minMatchLen = 4
	*encodingName = "bitfield"
	*reduceSelf, *reduceRC, *reduceTransitive, *reduceSubmaximal = true, true, true, true
	*deadEndMaxDepth = 0
	*pbubbleMaxWidth = 0
	*compact = true
	*contigsOut = filepath.Join(dir, "contigs.fa")
	*contigPaths = false
	*minContigLen = 0
	*minDepth = 0

	require.NoError(t, runBuild())

	out, err := os.ReadFile(*contigsOut)
	require.NoError(t, err)
	require.Contains(t, string(out), ">contig_0")
	require.Contains(t, string(out), "ACGTACGTACGG")
}

func TestBuildGraphProducesExpectedTopology(t *testing.T) {
	o, err := oracle.NewInMemory([]string{"ACGTACGTAC", "GTACGTACGG"})
	require.NoError(t, err)
	*minMatchLen = 4
	*loadSPMPath = ""
	*loadSelfSPM = false
	*encodingName = "short"
	*fixLen = 0

	g, err := buildGraph(o)
	require.NoError(t, err)
	require.EqualValues(t, 1, g.OutDegree(strgraph.VertexE(0)))
}
