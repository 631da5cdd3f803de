package strgraph

import (
	"github.com/grailbio/strgraph/cntlist"
	"github.com/grailbio/strgraph/errkind"
	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/spmlist"
)

// state is the builder's three/four-phase protocol, enforced on every
// mutating call: PREPARATION -> CONSTRUCTION -> SORTED_BY_L (or, on
// deserialize, LOADED_FROM_FILE).
type state int

const (
	statePreparation state = iota
	stateConstruction
	stateSortedByL
	stateLoadedFromFile
)

// edgeSlot identifies one directed half-edge produced by an SPM, with the
// vertex it originates from.
type edgeSlot struct {
	from Vertex
	dest Vertex
}

// halfEdges returns the two directed edges an SPM yields, per the
// bidirected-invariant table (spec §3). suf/pre are the read numbers; fwd
// flags are the orientation bits recorded on the SPM record.
func halfEdges(rec spmlist.Record) [2]edgeSlot {
	suf, pre := rec.SuffixRead, rec.PrefixRead
	switch {
	case rec.SuffixForward && rec.PrefixForward:
		// suffix of A matches prefix of B (both forward): E(A)->E(B), B(B)->B(A)
		return [2]edgeSlot{
			{from: VertexE(suf), dest: VertexE(pre)},
			{from: VertexB(pre), dest: VertexB(suf)},
		}
	case rec.SuffixForward && !rec.PrefixForward:
		// suffix of A matches prefix of reverse(B): E(A)->B(B), E(B)->B(A)
		return [2]edgeSlot{
			{from: VertexE(suf), dest: VertexB(pre)},
			{from: VertexE(pre), dest: VertexB(suf)},
		}
	case !rec.SuffixForward && rec.PrefixForward:
		// suffix of reverse(A) matches prefix of B: B(A)->E(B), B(B)->E(A)
		return [2]edgeSlot{
			{from: VertexB(suf), dest: VertexE(pre)},
			{from: VertexB(pre), dest: VertexE(suf)},
		}
	default:
		// suffix of reverse(A) matches prefix of reverse(B): B(A)->B(B), E(B)->E(A)
		return [2]edgeSlot{
			{from: VertexB(suf), dest: VertexB(pre)},
			{from: VertexE(pre), dest: VertexE(suf)},
		}
	}
}

// Builder is phase 1 (counting) and drives phase 2 (allocation) of graph
// construction. It is discarded once Allocate returns a *Graph.
type Builder struct {
	state        state
	numReads     uint64
	encoding     Encoding
	counts       []uint64
	minMatchLen  uint64
	haveAnySPM   bool
	loadSelfSPM  bool
	recordWriter *spmlist.Writer // optional: streams counted SPMs to disk
}

// NewBuilder starts phase 1 for a graph over numReads reads, allocating only
// the per-vertex count array (spec 4.2 "new(N) allocates a per-vertex count
// array only").
func NewBuilder(numReads uint64, encoding Encoding) (*Builder, error) {
	if numReads == 0 {
		return nil, errkind.New(errkind.Config, "strgraph: numReads must be > 0")
	}
	return &Builder{
		state:    statePreparation,
		numReads: numReads,
		encoding: encoding,
		counts:   make([]uint64, 2*numReads),
	}, nil
}

// SetLoadSelfSPM toggles whether self-matches (suffix_read == prefix_read)
// are counted/inserted at all. Per spec's Open Questions, the builder does
// not try to reconcile a flag flip between counting and insertion — callers
// must keep it consistent across both phases.
func (b *Builder) SetLoadSelfSPM(v bool) { b.loadSelfSPM = v }

// StreamTo causes every counted SPM to also be appended to an on-disk SPM
// list while phase 1 runs (spec 4.2, "SPMs may optionally be streamed to an
// on-disk SPM list during this phase").
func (b *Builder) StreamTo(w *spmlist.Writer) { b.recordWriter = w }

// CountSPM processes one SPM record in phase 1: increments the count at
// both bidirected endpoints and tracks the running minimum match length.
func (b *Builder) CountSPM(rec spmlist.Record) error {
	if b.state != statePreparation {
		return errkind.New(errkind.State, "strgraph: CountSPM called outside PREPARATION phase")
	}
	if rec.SuffixRead == rec.PrefixRead && !b.loadSelfSPM {
		return nil
	}
	if rec.SuffixRead >= b.numReads || rec.PrefixRead >= b.numReads {
		return errkind.New(errkind.Config, "strgraph: SPM references read >= N (suf=%d pre=%d N=%d)", rec.SuffixRead, rec.PrefixRead, b.numReads)
	}
	for _, e := range halfEdges(rec) {
		b.counts[e.from]++
	}
	if !b.haveAnySPM || rec.Length < b.minMatchLen {
		b.minMatchLen = rec.Length
	}
	b.haveAnySPM = true
	if b.recordWriter != nil {
		if err := b.recordWriter.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// MinMatchLen returns the smallest SPM length counted so far.
func (b *Builder) MinMatchLen() uint64 { return b.minMatchLen }

// Allocate ends phase 1 and performs phase 2: it fixes the read-length
// source (fixLen, if nonzero, overrides per-read lookups through oracle —
// spec "fixes the read-length source (a uniform fixlen or the oracle)"),
// materializes vertex offsets from the prefix sum of counts, and allocates
// the edge array sized exactly to the total count. The Builder is
// consumed; only the returned Graph is usable afterward.
func (b *Builder) Allocate(o oracle.ReadOracle, fixLen uint64) (*Graph, error) {
	if b.state != statePreparation {
		return nil, errkind.New(errkind.State, "strgraph: Allocate called outside PREPARATION phase")
	}
	numVertices := 2 * b.numReads
	vs := newVertexStore(numVertices)
	var total uint64
	for v := uint64(0); v < numVertices; v++ {
		vs.offset[v] = total
		total += b.counts[v]
	}
	vs.offset[numVertices] = total

	maxLen := fixLen
	if maxLen == 0 && o != nil {
		maxLen = o.MaxSeqLength()
	}
	es, err := newEdgeStore(b.encoding, total, numVertices, maxLen)
	if err != nil {
		return nil, err
	}
	partner := make([]uint64, total)
	for i := uint64(0); i < total; i++ {
		es.InitSlot(i)
		partner[i] = i
	}

	g := &Graph{
		state:       stateConstruction,
		vs:          vs,
		es:          es,
		partner:     partner,
		oracle:      o,
		fixLen:      fixLen,
		numReads:    b.numReads,
		minMatchLen: b.minMatchLen,
		loadSelfSPM: b.loadSelfSPM,
	}
	b.counts = nil
	b.state = stateConstruction
	return g, nil
}

// Graph is the constructed string graph: vertex store, edge store (one of
// the three encodings), and the phase state machine governing which
// operations are legal.
type Graph struct {
	state       state
	vs          *vertexStore
	es          *edgeStore
	// partner[i] is the slot index of edge i's bidirected pair (spec §3's
	// "edge-pair law"); partner[i]==i marks a true self-loop, reduced only
	// once. Built at insertion time since each Insert call writes exactly
	// one pair.
	partner     []uint64
	oracle      oracle.ReadOracle
	fixLen      uint64
	numReads    uint64
	minMatchLen uint64
	loadSelfSPM bool

	// libraries is the stub paired-end reads-library table (spec.md's
	// Non-goals: "paired-end scaffolding beyond a stub library table").
	// Attached for bookkeeping only; never consulted by reducers or
	// traversal.
	libraries *LibraryTable

	// insertCursor[v] is the next free slot index for vertex v during phase
	// 3 insertion — i.e. vs.offset[v] + current outdeg.
	insertCursor []uint64
}

// AttachLibraryTable attaches a reads-library table to the graph.
func (g *Graph) AttachLibraryTable(t *LibraryTable) { g.libraries = t }

// Libraries returns the graph's attached reads-library table, or nil if
// none was attached.
func (g *Graph) Libraries() *LibraryTable { return g.libraries }

// NumReads returns N.
func (g *Graph) NumReads() uint64 { return g.numReads }

// NumVertices returns 2N.
func (g *Graph) NumVertices() uint64 { return g.vs.numVertices() }

// NumEdgeSlots returns the total number of allocated directed edge slots
// (live and reduced).
func (g *Graph) NumEdgeSlots() uint64 { return g.es.NumSlots() }

// Encoding returns the edge representation this graph was built with.
func (g *Graph) Encoding() Encoding { return g.es.Encoding() }

// OutDegree returns the live out-degree of v.
func (g *Graph) OutDegree(v Vertex) uint32 { return g.vs.outdeg[v] }

// InDegree returns the number of non-reduced edges targeting v, counted by
// walking every live edge in the graph.
func (g *Graph) InDegree(v Vertex) uint32 {
	var n uint32
	total := g.vs.numVertices()
	for u := Vertex(0); uint64(u) < total; u++ {
		g.forEachLiveEdge(u, func(slot uint64) {
			if g.es.Dest(slot) == v {
				n++
			}
		})
	}
	return n
}

func (g *Graph) forEachLiveEdge(v Vertex, fn func(slot uint64)) {
	start, end := g.vs.offset[v], g.vs.offset[v+1]
	for i := start; i < end; i++ {
		if !g.es.Reduced(i) {
			fn(i)
		}
	}
}

// readLength returns the length of a read using fixLen if set, else the
// oracle.
func (g *Graph) readLength(read uint64) uint64 {
	if g.fixLen != 0 {
		return g.fixLen
	}
	return g.oracle.SeqLength(read)
}

// destReadLength returns the read length backing a destination vertex.
func (g *Graph) destReadLength(v Vertex) uint64 { return g.readLength(v.Read()) }

// Insert performs one phase-3 insertion: it stores the two bidirected edges
// an SPM yields. contained, if non-nil, causes the SPM to be dropped (and
// skipped returned as true) when either endpoint read is marked contained.
func (g *Graph) Insert(rec spmlist.Record, contained *cntlist.Bitset) (skipped bool, err error) {
	if g.state != stateConstruction {
		return false, errkind.New(errkind.State, "strgraph: Insert called outside CONSTRUCTION phase")
	}
	if rec.SuffixRead == rec.PrefixRead && !g.loadSelfSPM {
		return true, nil
	}
	if contained != nil && (contained.Get(rec.SuffixRead) || contained.Get(rec.PrefixRead)) {
		return true, nil
	}
	if g.insertCursor == nil {
		g.insertCursor = make([]uint64, g.vs.numVertices())
		copy(g.insertCursor, g.vs.offset[:g.vs.numVertices()])
	}
	pair := halfEdges(rec)
	var slots [2]uint64
	for i, e := range pair {
		if err := g.vs.checkVertex(e.from); err != nil {
			return false, err
		}
		slot := g.insertCursor[e.from]
		if slot >= g.vs.offset[e.from+1] {
			return false, errkind.New(errkind.Config, "strgraph: out-degree overflow at vertex %d (phase-1 count exceeded)", e.from)
		}
		g.es.SetDest(slot, e.dest)
		l := g.destReadLength(e.dest)
		if l < rec.Length {
			return false, errkind.New(errkind.Config, "strgraph: destination read shorter than SPM length")
		}
		edgeLen := l - rec.Length
		if edgeLen > g.es.impl.maxLen() {
			return false, errkind.New(errkind.Config, "strgraph: edge length %d exceeds representation max %d", edgeLen, g.es.impl.maxLen())
		}
		g.es.SetLen(slot, edgeLen)
		g.insertCursor[e.from]++
		g.vs.outdeg[e.from]++
		slots[i] = slot
	}
	g.partner[slots[0]] = slots[1]
	g.partner[slots[1]] = slots[0]
	return false, nil
}

// FinishInsertion marks every edge slot counted in phase 1 but never filled
// (e.g. an SPM dropped by the contained-read filter after it was already
// counted) as reduced, so out-degree stays consistent with live slots
// (spec 4.2: "Empty slots ... must be marked reduced after insertion
// completes").
func (g *Graph) FinishInsertion() error {
	if g.state != stateConstruction {
		return errkind.New(errkind.State, "strgraph: FinishInsertion called outside CONSTRUCTION phase")
	}
	if g.insertCursor != nil {
		for v := uint64(0); v < g.vs.numVertices(); v++ {
			for slot := g.insertCursor[v]; slot < g.vs.offset[v+1]; slot++ {
				g.es.Reduce(slot)
			}
		}
	}
	g.insertCursor = nil
	return nil
}
