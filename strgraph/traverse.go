package strgraph

import (
	"github.com/grailbio/strgraph/contigpaths"
	"github.com/grailbio/strgraph/contigwriter"
)

// Junction reports whether v is a branching vertex (spec 4.4): out-degree >
// 1 with some in-degree, or out-degree == 1 with in-degree > 1.
func (g *Graph) Junction(v Vertex) bool {
	out := g.vs.outdeg[v]
	in := g.InDegree(v)
	return (out > 1 && in > 0) || (out == 1 && in > 1)
}

// PathStartFunc is called once per simple-path start, with the starting
// vertex.
type PathStartFunc func(start Vertex)

// PathEdgeFunc is called once per edge walked along a simple path, with the
// originating vertex, the edge's destination, and its length.
type PathEdgeFunc func(from, to Vertex, length uint64)

// Traverse walks every maximal simple path in the graph exactly once (spec
// 4.4). It resets all vertex marks to Vacant first. Internal vertices
// interior to a path are never reported as a path start; after the main
// pass, any vertex still internal and still Vacant belongs to a purely
// internal cycle and is traversed starting from itself.
func (g *Graph) Traverse(onStart PathStartFunc, onEdge PathEdgeFunc) {
	g.vs.resetMarks()
	n := g.vs.numVertices()

	for v := Vertex(0); uint64(v) < n; v++ {
		if g.vs.mark[v] == Eliminated {
			continue
		}
		if g.vs.outdeg[v] == 0 {
			g.vs.mark[v] = Eliminated
			continue
		}
		if g.isInternal(v) {
			continue
		}
		g.walkFrom(v, v, onStart, onEdge)
		g.vs.mark[v] = Eliminated
	}

	for v := Vertex(0); uint64(v) < n; v++ {
		if g.vs.mark[v] == Vacant && g.isInternal(v) {
			g.walkFrom(v, v, onStart, onEdge)
		}
	}
}

// walkFrom walks every outgoing edge of start as an independent simple
// path (a branching start vertex may have more than one).
func (g *Graph) walkFrom(start, v Vertex, onStart PathStartFunc, onEdge PathEdgeFunc) {
	startEdge, end := g.vs.offset[v], g.vs.offset[v+1]
	for slot := startEdge; slot < end; slot++ {
		if g.es.Reduced(slot) {
			continue
		}
		if g.vs.mark[g.es.Dest(slot)] == Eliminated {
			continue
		}
		onStart(start)
		from := v
		cur := slot
		for {
			w := g.es.Dest(cur)
			length := g.es.Len(cur)
			if w != start && g.isInternal(w) && g.vs.mark[w] != Eliminated {
				onEdge(from, w, length)
				g.vs.mark[w] = Eliminated
				g.vs.mark[w.Other()] = Eliminated
				nextSlot, ok := g.soleLiveEdge(w)
				if !ok {
					break
				}
				from = w
				cur = nextSlot
				continue
			}
			onEdge(from, w, length)
			break
		}
	}
}

// mirrorSeqnum returns the forward-strand read number to start spelling
// from for a path beginning at v: the read itself for an E-vertex (its
// sequence already reads 5'->3' forward from this end) or, for a B-vertex,
// the same read number (the writer decodes in reverse-complement
// orientation via isE==false), matching rdj-strgraph.c's
// mirror_seqnum/SEQNUM conventions.
func mirrorSeqnum(v Vertex) (read uint64, isE bool) {
	return v.Read(), v.IsE()
}

// SpellContigs runs Traverse and, at each path start, starts a new contig
// from the mirror-mapped starting read; at each edge, appends length bases
// from the destination read (its last `length` bases in the orientation
// mirror_seqnum implies). Finalizes (and discards, if too short/shallow)
// contigs exactly per spec 4.4.
func (g *Graph) SpellContigs(w *contigwriter.Writer, minDepth, minLength uint64) error {
	started := false
	g.Traverse(
		func(start Vertex) {
			if started {
				_ = w.FinishContig(minDepth, minLength)
			}
			read, isE := mirrorSeqnum(start)
			w.StartContig(read, isE)
			started = true
			w.Append(g.decodeRead(read, isE), read, isE, 0)
		},
		func(from, to Vertex, length uint64) {
			read, isE := mirrorSeqnum(to)
			w.Append(g.tailBases(read, isE, length), read, isE, length)
		},
	)
	if started {
		return w.FinishContig(minDepth, minLength)
	}
	return nil
}

// decodeRead returns the full ASCII sequence of a read, in forward
// orientation if isE, reverse-complement otherwise (matching the B/E
// mirror convention).
func (g *Graph) decodeRead(read uint64, forward bool) []byte {
	l := g.oracle.SeqLength(read)
	return g.decodeBases(read, forward, 0, l)
}

// tailBases returns the last `length` bases of read in the given
// orientation — the overhang contributed by one traversed edge.
func (g *Graph) tailBases(read uint64, forward bool, length uint64) []byte {
	l := g.oracle.SeqLength(read)
	if length > l {
		length = l
	}
	return g.decodeBases(read, forward, l-length, l)
}

// SpellContigPaths runs Traverse but records only (length, mirrored-seqnum)
// pairs through w, deferring base decoding to a later contigpaths.ToFasta
// pass (spec §4.4 "contig-paths output" — the lighter-weight alternative to
// SpellContigs when the oracle's decode cost should be paid once, offline,
// rather than during the traversal itself).
func (g *Graph) SpellContigPaths(w *contigpaths.Writer) error {
	var werr error
	g.Traverse(
		func(start Vertex) {
			if werr != nil {
				return
			}
			read, isE := mirrorSeqnum(start)
			werr = w.StartContig(read, isE)
		},
		func(from, to Vertex, length uint64) {
			if werr != nil {
				return
			}
			read, isE := mirrorSeqnum(to)
			werr = w.Append(read, isE, length)
		},
	)
	return werr
}

var baseToASCII = [4]byte{'A', 'C', 'G', 'T'}

// decodeBases returns bases [from, to) of read in the given orientation,
// consulting the oracle's 2-bit decoder one base at a time.
func (g *Graph) decodeBases(read uint64, forward bool, from, to uint64) []byte {
	start := g.oracle.SeqStart(read)
	out := make([]byte, 0, to-from)
	l := g.oracle.SeqLength(read)
	if forward {
		for i := from; i < to; i++ {
			out = append(out, baseToASCII[g.oracle.CharAt(start+i, true)])
		}
	} else {
		for i := from; i < to; i++ {
			pos := l - 1 - i
			out = append(out, baseToASCII[g.oracle.CharAt(start+pos, false)])
		}
	}
	return out
}
