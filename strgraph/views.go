package strgraph

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/grailbio/strgraph/spmlist"
)

// WriteDOT emits one "U -> V [label=len]" line per non-reduced directed
// edge, shaping each vertex node by its internal/junction/end status (spec
// 4.5 "DOT (directional)").
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph strgraph {"); err != nil {
		return err
	}
	n := g.vs.numVertices()
	for v := Vertex(0); uint64(v) < n; v++ {
		shape := "ellipse"
		switch {
		case g.isInternal(v):
			shape = "plaintext"
		case g.Junction(v):
			shape = "box"
		case g.vs.outdeg[v] == 0:
			shape = "doublecircle"
		}
		if _, err := fmt.Fprintf(w, "  %s [shape=%s];\n", vertexLabel(v), shape); err != nil {
			return err
		}
	}
	for v := Vertex(0); uint64(v) < n; v++ {
		g.forEachLiveEdge(v, func(slot uint64) {
			fmt.Fprintf(w, "  %s -> %s [label=%d];\n", vertexLabel(v), vertexLabel(g.es.Dest(slot)), g.es.Len(slot))
		})
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func vertexLabel(v Vertex) string {
	end := "B"
	if v.IsE() {
		end = "E"
	}
	return fmt.Sprintf("r%d%s", v.Read(), end)
}

// forEachSPM reconstructs one SPM record per bidirected edge pair — the
// inverse of halfEdges — and calls fn once per pair, de-duplicating by
// keeping only the side whose slot index is lower.
func (g *Graph) forEachSPM(fn func(rec spmlist.Record)) {
	n := g.vs.numVertices()
	for v := Vertex(0); uint64(v) < n; v++ {
		g.forEachLiveEdge(v, func(slot uint64) {
			p := g.partner[slot]
			if p < slot {
				return // already emitted from the partner's side
			}
			rec, ok := reconstructSPM(v, g.es.Dest(slot), g.es.Len(slot), g)
			if ok {
				fn(rec)
			}
		})
	}
}

// reconstructSPM inverts halfEdges well enough for display purposes: it
// infers suffix/prefix reads and orientation flags from which end (B/E) of
// each vertex the edge touches, per the bidirected table (spec §3).
func reconstructSPM(from, to Vertex, length uint64, g *Graph) (spmlist.Record, bool) {
	fromIsE := from.IsE()
	toIsE := to.IsE()
	switch {
	case fromIsE && toIsE: // E(A)->E(B): suffix of A matches prefix of B, both forward
		return spmlist.Record{SuffixRead: from.Read(), PrefixRead: to.Read(), Length: g.impliedSPMLength(to, length), SuffixForward: true, PrefixForward: true}, true
	case fromIsE && !toIsE: // E(A)->B(B): suffix fwd, prefix rev
		return spmlist.Record{SuffixRead: from.Read(), PrefixRead: to.Read(), Length: g.impliedSPMLength(to, length), SuffixForward: true, PrefixForward: false}, true
	case !fromIsE && toIsE: // B(A)->E(B): suffix rev, prefix fwd
		return spmlist.Record{SuffixRead: from.Read(), PrefixRead: to.Read(), Length: g.impliedSPMLength(to, length), SuffixForward: false, PrefixForward: true}, true
	default: // B(A)->B(B): suffix rev, prefix rev
		return spmlist.Record{SuffixRead: from.Read(), PrefixRead: to.Read(), Length: g.impliedSPMLength(to, length), SuffixForward: false, PrefixForward: false}, true
	}
}

// impliedSPMLength recovers the original SPM length from an edge's
// destination-side overhang (len = |read(dest)| - SPM_length).
func (g *Graph) impliedSPMLength(dest Vertex, edgeLen uint64) uint64 {
	l := g.destReadLength(dest)
	if edgeLen > l {
		return 0
	}
	return l - edgeLen
}

// WriteDOTBidirected emits one "U -- V" line per SPM (not per stored
// directed edge), using arrowtail/arrowhead normal|inv to encode read
// orientation (spec 4.5 "DOT (bidirected)").
func (g *Graph) WriteDOTBidirected(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "graph strgraph {"); err != nil {
		return err
	}
	var werr error
	g.forEachSPM(func(rec spmlist.Record) {
		if werr != nil {
			return
		}
		tail := "normal"
		if !rec.SuffixForward {
			tail = "inv"
		}
		head := "normal"
		if !rec.PrefixForward {
			head = "inv"
		}
		_, werr = fmt.Fprintf(w, "  r%d -- r%d [arrowtail=%s, arrowhead=%s, len=%d];\n", rec.SuffixRead, rec.PrefixRead, tail, head, rec.Length)
	})
	if werr != nil {
		return werr
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// WriteAdjacency emits one human-readable line per vertex: its out-degree
// and (dest, len) triples (spec 4.5 "Adjacency dump").
func (g *Graph) WriteAdjacency(w io.Writer) error {
	n := g.vs.numVertices()
	for v := Vertex(0); uint64(v) < n; v++ {
		if _, err := fmt.Fprintf(w, "%s outdeg=%d", vertexLabel(v), g.vs.outdeg[v]); err != nil {
			return err
		}
		var werr error
		g.forEachLiveEdge(v, func(slot uint64) {
			if werr == nil {
				_, werr = fmt.Fprintf(w, " (%s,%d)", vertexLabel(g.es.Dest(slot)), g.es.Len(slot))
			}
		})
		if werr != nil {
			return werr
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteSPMDump emits one SPM record per (de-duplicated) bidirected edge
// pair, in ASCII SPM-list format — the reverse of Parse (spec 4.5 "SPM
// dump").
func (g *Graph) WriteSPMDump(w io.Writer) error {
	sw, err := spmlist.NewWriter(w, spmlist.ASCII, false)
	if err != nil {
		return err
	}
	var werr error
	g.forEachSPM(func(rec spmlist.Record) {
		if werr == nil {
			werr = sw.Write(rec)
		}
	})
	if werr != nil {
		return werr
	}
	return sw.Close()
}

// WriteASQG emits an ASQG-format view: a header line, one vertex line per
// read with its decoded sequence, and one edge line per SPM in the SGA
// coordinate convention (spec 4.5 "ASQG/GFA"). If gz is true, the output is
// gzip-compressed.
func (g *Graph) WriteASQG(w io.Writer, gz bool) error {
	var out io.Writer = w
	var gzw *gzip.Writer
	if gz {
		gzw = gzip.NewWriter(w)
		out = gzw
	}
	if _, err := fmt.Fprintf(out, "HT\tVN:i:1\tOL:i:%d\tIN:strgraph\n", g.minMatchLen); err != nil {
		return err
	}
	for r := uint64(0); r < g.numReads; r++ {
		seq := g.decodeRead(r, true)
		if _, err := fmt.Fprintf(out, "VT\tr%d\t%s\n", r, seq); err != nil {
			return err
		}
	}
	var werr error
	g.forEachSPM(func(rec spmlist.Record) {
		if werr != nil {
			return
		}
		sufLen := g.oracle.SeqLength(rec.SuffixRead)
		preLen := g.oracle.SeqLength(rec.PrefixRead)
		// SGA coordinate convention: [start,end,total] per read on the
		// overlapping segment.
		_, werr = fmt.Fprintf(out, "ED\tr%d r%d %d %d %d %d %d %d 0\n",
			rec.SuffixRead, rec.PrefixRead,
			sufLen-rec.Length, sufLen-1, sufLen,
			0, rec.Length-1, preLen,
		)
	})
	if werr != nil {
		return werr
	}
	if gzw != nil {
		return gzw.Close()
	}
	return nil
}
