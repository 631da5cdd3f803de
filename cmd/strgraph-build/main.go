// strgraph-build assembles a string graph from a FASTA file of reads,
// simplifies it, and spells contigs — an end-to-end CLI driving the
// strgraph/spmfind/contigwriter/contigpaths packages, in the flag+grail.Init
// style of cmd/bio-fusion/main.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"

	"github.com/grailbio/strgraph/contigpaths"
	"github.com/grailbio/strgraph/contigwriter"
	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/spmfind"
	"github.com/grailbio/strgraph/spmlist"
	"github.com/grailbio/strgraph/strgraph"
)

var (
	mode = flag.String("mode", "build", `"build" assembles reads into contigs; "paths2fasta" converts a
-contigs-out file from a previous -contig-paths build back into FASTA against -fasta.`)

	fastaPath    = flag.String("fasta", "", "input FASTA file of reads")
	loadSPMPath  = flag.String("load-spm", "", "load SPM records from this file instead of running the built-in brute-force finder")
	encodingName = flag.String("encoding", "bitfield", "edge encoding: short, bitfield, or bitpack")
	fixLen       = flag.Uint64("fixlen", 0, "assume all reads have this fixed length (0: read lengths vary, consult the oracle)")
	minMatchLen  = flag.Uint64("min-match-len", 20, "minimum suffix-prefix match length to keep")
	loadSelfSPM  = flag.Bool("load-self-spm", false, "keep self-matches (a read's suffix/prefix overlap with itself)")

	reduceSelf       = flag.Bool("reduce-self", true, "remove self-loop edges")
	reduceRC         = flag.Bool("reduce-rc", true, "remove reverse-complement-self edges")
	reduceTransitive = flag.Bool("reduce-transitive", true, "run Myers' transitive-edge reduction")
	reduceSubmaximal = flag.Bool("reduce-submaximal", true, "remove submaximal duplicate edges")
	deadEndMaxDepth  = flag.Int("dead-end-maxdepth", 0, "remove dead-end chains up to this internal-vertex depth (0 disables)")
	pbubbleMaxWidth  = flag.Uint64("pbubble-maxwidth", 0, "remove p-bubble alternate paths up to this width (0 disables)")
	pbubbleMaxDiff   = flag.Uint64("pbubble-maxdiff", 0, "maximum length difference between p-bubble paths grouped together")
	pbubbleMaxRounds = flag.Int("pbubble-maxrounds", 10, "maximum p-bubble reduction rounds")
	compact          = flag.Bool("compact", true, "compact the edge array after reduction")

	loadCheckpoint = flag.String("load-checkpoint", "", "resume from this binary checkpoint instead of building from FASTA/SPM input")
	saveCheckpoint = flag.String("save-checkpoint", "", "save the simplified graph as a binary checkpoint to this path")

	contigPaths  = flag.Bool("contig-paths", false, "write contigs in the compact contig-paths binary format instead of FASTA")
	contigsOut   = flag.String("contigs-out", "", "output path for spelled contigs (FASTA, or contig-paths binary if -contig-paths)")
	minContigLen = flag.Uint64("min-contig-length", 0, "discard contigs shorter than this many bases")
	minDepth     = flag.Uint64("min-contig-depth", 0, "discard contigs made of fewer than this many reads (the starting read plus one per traversed edge)")
	showPaths    = flag.Bool("show-paths", false, "include the full traversal path chain in each contig's FASTA header")

	view    = flag.String("view", "", "write a graph view: dot, dot-bi, adjacency, spmdump, asqg, or asqg-gz")
	viewOut = flag.String("view-out", "", "output path for -view")

	contextReads    = flag.String("context-reads", "", "comma-separated read numbers to center a -context-out DOT neighborhood on")
	contextMaxDepth = flag.Int("context-maxdepth", 5, "maximum hop depth for -context-reads")
	contextOut      = flag.String("context-out", "", "output path for the -context-reads DOT neighborhood")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	switch *mode {
	case "build":
		if err := runBuild(); err != nil {
			log.Fatalf("strgraph-build: %v", err)
		}
	case "paths2fasta":
		if err := runPathsToFasta(); err != nil {
			log.Fatalf("strgraph-build: %v", err)
		}
	default:
		log.Fatalf("strgraph-build: unknown -mode %q", *mode)
	}
}

func runBuild() error {
	var (
		o *oracle.InMemory
		g *strgraph.Graph
	)

	if *loadCheckpoint != "" {
		f, err := os.Open(*loadCheckpoint)
		if err != nil {
			return err
		}
		g, err = strgraph.Load(f)
		f.Close()
		if err != nil {
			return err
		}
		log.Printf("loaded checkpoint %s: %d reads, %d edge slots", *loadCheckpoint, g.NumReads(), g.NumEdgeSlots())
	}

	if *fastaPath != "" {
		f, err := os.Open(*fastaPath)
		if err != nil {
			return err
		}
		reads, err := oracle.ReadFasta(f)
		f.Close()
		if err != nil {
			return err
		}
		o, err = oracle.NewInMemory(reads)
		if err != nil {
			return err
		}
		log.Printf("loaded %d reads from %s", o.NumReads(), *fastaPath)
		if g != nil {
			g.AttachOracle(o)
		}
	}

	if g == nil {
		if o == nil {
			return fmt.Errorf("need -fasta or -load-checkpoint")
		}
		var err error
		g, err = buildGraph(o)
		if err != nil {
			return err
		}
	}

	if err := runReducers(g); err != nil {
		return err
	}

	if *compact {
		if err := g.Compact(); err != nil {
			return err
		}
		log.Printf("compacted: %d live edge slots remain", g.NumEdgeSlots())
	}

	if *saveCheckpoint != "" {
		f, err := os.Create(*saveCheckpoint)
		if err != nil {
			return err
		}
		err = g.Save(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		log.Printf("saved checkpoint to %s", *saveCheckpoint)
	}

	if *view != "" {
		if err := writeView(g); err != nil {
			return err
		}
	}

	if *contextReads != "" {
		if err := writeContext(g); err != nil {
			return err
		}
	}

	if *contigsOut != "" {
		if err := spellContigs(g); err != nil {
			return err
		}
	}
	return nil
}

func buildGraph(o *oracle.InMemory) (*strgraph.Graph, error) {
	enc, err := parseEncoding(*encodingName)
	if err != nil {
		return nil, err
	}

	collect := func(proc spmlist.Processor) error {
		if *loadSPMPath != "" {
			f, err := os.Open(*loadSPMPath)
			if err != nil {
				return err
			}
			defer f.Close()
			return spmlist.Parse(f, *minMatchLen, proc)
		}
		return spmfind.Find(o, spmfind.Options{MinMatchLen: *minMatchLen, SelfMatches: *loadSelfSPM}, proc)
	}

	b, err := strgraph.NewBuilder(o.NumReads(), enc)
	if err != nil {
		return nil, err
	}
	b.SetLoadSelfSPM(*loadSelfSPM)

	var records []spmlist.Record
	if err := collect(func(r spmlist.Record) error {
		records = append(records, r)
		return b.CountSPM(r)
	}); err != nil {
		return nil, err
	}
	log.Printf("counted %d SPM records (min match length %d)", len(records), b.MinMatchLen())

	g, err := b.Allocate(o, *fixLen)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if _, err := g.Insert(r, nil); err != nil {
			return nil, err
		}
	}
	if err := g.FinishInsertion(); err != nil {
		return nil, err
	}
	if err := g.SortEdgesByLength(); err != nil {
		return nil, err
	}
	log.Printf("built graph: %d reads, %d vertices", g.NumReads(), g.NumVertices())
	return g, nil
}

func parseEncoding(name string) (strgraph.Encoding, error) {
	switch strings.ToLower(name) {
	case "short":
		return strgraph.Short, nil
	case "bitfield":
		return strgraph.Bitfield, nil
	case "bitpack":
		return strgraph.Bitpack, nil
	default:
		return 0, fmt.Errorf("unknown -encoding %q (want short, bitfield, or bitpack)", name)
	}
}

func runReducers(g *strgraph.Graph) error {
	report := func(name string, n uint64, err error) error {
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("%s: removed %d edge pairs", name, n)
		}
		return nil
	}
	if *reduceSelf {
		n, err := g.ReduceSelf()
		if err := report("reduce-self", n, err); err != nil {
			return err
		}
	}
	if *reduceRC {
		n, err := g.ReduceWithRC()
		if err := report("reduce-rc", n, err); err != nil {
			return err
		}
	}
	if *reduceTransitive {
		n, err := g.ReduceTransitive()
		if err := report("reduce-transitive", n, err); err != nil {
			return err
		}
	}
	if *reduceSubmaximal {
		n, err := g.ReduceSubmaximal()
		if err := report("reduce-submaximal", n, err); err != nil {
			return err
		}
	}
	if *deadEndMaxDepth > 0 {
		n, err := g.ReduceDeadEnd(*deadEndMaxDepth)
		if err := report("reduce-dead-end", n, err); err != nil {
			return err
		}
	}
	if *pbubbleMaxWidth > 0 {
		n, err := g.ReducePBubble(*pbubbleMaxWidth, *pbubbleMaxDiff, *pbubbleMaxRounds)
		if err := report("reduce-pbubble", n, err); err != nil {
			return err
		}
	}
	return nil
}

func writeView(g *strgraph.Graph) error {
	f, err := createOrStdout(*viewOut)
	if err != nil {
		return err
	}
	defer closeIfFile(f)
	switch strings.ToLower(*view) {
	case "dot":
		return g.WriteDOT(f)
	case "dot-bi":
		return g.WriteDOTBidirected(f)
	case "adjacency":
		return g.WriteAdjacency(f)
	case "spmdump":
		return g.WriteSPMDump(f)
	case "asqg":
		return g.WriteASQG(f, false)
	case "asqg-gz":
		return g.WriteASQG(f, true)
	default:
		return fmt.Errorf("unknown -view %q", *view)
	}
}

func writeContext(g *strgraph.Graph) error {
	var reads []uint64
	for _, s := range strings.Split(*contextReads, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -context-reads entry %q: %w", s, err)
		}
		reads = append(reads, v)
	}
	f, err := createOrStdout(*contextOut)
	if err != nil {
		return err
	}
	defer closeIfFile(f)
	return g.ShowContext(f, reads, *contextMaxDepth)
}

func spellContigs(g *strgraph.Graph) error {
	f, err := os.Create(*contigsOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if *contigPaths {
		w := contigpaths.NewWriter(f)
		return g.SpellContigPaths(w)
	}

	w := contigwriter.NewWriter(f, *showPaths)
	if err := g.SpellContigs(w, *minDepth, *minContigLen); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stats := w.Stats()
	log.Printf("spelled %d contigs, total length %d, N50 %d, GC %.1f%%",
		stats.Count, stats.TotalLength, stats.N50(), 100*stats.GCContent())
	return nil
}

func runPathsToFasta() error {
	if *contigsOut == "" || *fastaPath == "" {
		return fmt.Errorf("-mode paths2fasta needs -contigs-out (the paths file to read) and -fasta (the original reads)")
	}
	rf, err := os.Open(*fastaPath)
	if err != nil {
		return err
	}
	reads, err := oracle.ReadFasta(rf)
	rf.Close()
	if err != nil {
		return err
	}
	o, err := oracle.NewInMemory(reads)
	if err != nil {
		return err
	}

	pf, err := os.Open(*contigsOut)
	if err != nil {
		return err
	}
	defer pf.Close()

	out, err := createOrStdout(*viewOut)
	if err != nil {
		return err
	}
	defer closeIfFile(out)

	cw := contigwriter.NewWriter(out, *showPaths)
	if err := contigpaths.ToFasta(pf, o, cw, *minContigLen); err != nil {
		return err
	}
	return cw.Flush()
}

func createOrStdout(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func closeIfFile(f *os.File) {
	if f != os.Stdout {
		f.Close()
	}
}
