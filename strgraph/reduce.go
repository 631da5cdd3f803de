package strgraph

import (
	"github.com/biogo/store/llrb"

	"github.com/grailbio/strgraph/errkind"
)

// ReduceSelf removes every edge V->V (spec 4.3 "Self-match removal").
// Returns the number of self-matches removed (half the raw edge count,
// since each contributes two stored edges).
func (g *Graph) ReduceSelf() (uint64, error) {
	return g.reduceByDestPredicate(func(v, dest Vertex) bool { return dest == v })
}

// ReduceWithRC removes every edge V->other(V) (spec 4.3
// "Reverse-complement-self removal").
func (g *Graph) ReduceWithRC() (uint64, error) {
	return g.reduceByDestPredicate(func(v, dest Vertex) bool { return dest == v.Other() })
}

func (g *Graph) reduceByDestPredicate(match func(v, dest Vertex) bool) (uint64, error) {
	// Collect matches in one pass before reducing anything: reduceEdge
	// reduces a matching slot's bidirected partner as a side effect, which
	// would otherwise make a later slot in this same scan look
	// "already reduced" and silently disappear from the count.
	var matches []uint64
	n := g.vs.numVertices()
	for v := Vertex(0); uint64(v) < n; v++ {
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		for slot := start; slot < end; slot++ {
			if !g.es.Reduced(slot) && match(v, g.es.Dest(slot)) {
				matches = append(matches, slot)
			}
		}
	}
	raw := uint64(len(matches))
	for _, slot := range matches {
		g.reduceEdge(slot)
	}
	if raw%2 != 0 {
		return 0, errkind.New(errkind.Config, "strgraph: reducer removed an odd number of edges (%d); bidirected invariant violated", raw)
	}
	return raw / 2, nil
}

// ReduceTransitive implements Myers' ordering-based transitive-edge
// reduction (spec 4.3). Graph state must be SORTED_BY_L.
func (g *Graph) ReduceTransitive() (uint64, error) {
	if g.state != stateSortedByL {
		return 0, errkind.New(errkind.State, "strgraph: ReduceTransitive requires SORTED_BY_L state")
	}
	n := g.vs.numVertices()
	g.vs.resetMarks()
	var toReduce []uint64

	for v := Vertex(0); uint64(v) < n; v++ {
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		if g.vs.outdeg[v] == 0 {
			continue
		}
		var longest uint64
		for slot := start; slot < end; slot++ {
			if !g.es.Reduced(slot) {
				g.vs.mark[g.es.Dest(slot)] = Inplay
				if l := g.es.Len(slot); l > longest {
					longest = l
				}
			}
		}
		for jSlot := start; jSlot < end; jSlot++ {
			if g.es.Reduced(jSlot) {
				continue
			}
			w := g.es.Dest(jSlot)
			jlen := g.es.Len(jSlot)
			wStart, wEnd := g.vs.offset[w], g.vs.offset[w+1]
			for kSlot := wStart; kSlot < wEnd; kSlot++ {
				if g.es.Reduced(kSlot) {
					continue
				}
				klen := g.es.Len(kSlot)
				if jlen+klen > longest {
					break // ascending order: no further k can satisfy the bound
				}
				x := g.es.Dest(kSlot)
				if g.vs.mark[x] != Inplay {
					continue
				}
				target := jlen + klen
				for candidate := start; candidate < end; candidate++ {
					if g.es.Reduced(candidate) {
						continue
					}
					if g.es.Dest(candidate) == x && g.es.Len(candidate) == target {
						if !g.es.Mark(candidate) {
							g.es.SetMark(candidate, true)
							toReduce = append(toReduce, candidate)
						}
						break
					}
				}
			}
		}
		for slot := start; slot < end; slot++ {
			if !g.es.Reduced(slot) {
				g.vs.mark[g.es.Dest(slot)] = Vacant
			}
		}
	}

	// toReduce already holds one entry per distinct marked slot, counted
	// before any reduction runs (see the dedup guard above) — the
	// bidirected partner's own marked slot is independently present here
	// too, so this count is not disturbed by reduceEdge's side effect of
	// reducing both halves of a pair at once.
	raw := uint64(len(toReduce))
	for _, slot := range toReduce {
		g.reduceEdge(slot)
	}
	if raw%2 != 0 {
		return 0, errkind.New(errkind.Config, "strgraph: transitive reduction removed an odd number of edges (%d)", raw)
	}
	return raw / 2, nil
}

// ReduceSubmaximal removes, for each vertex, every non-shortest edge to a
// destination already reached by a shorter edge (spec 4.3
// "Submaximal reduction" — equivalent to dedup-by-destination keeping the
// shortest, since edges are stored length-ascending after sort).
func (g *Graph) ReduceSubmaximal() (uint64, error) {
	if g.state != stateSortedByL {
		return 0, errkind.New(errkind.State, "strgraph: ReduceSubmaximal requires SORTED_BY_L state")
	}
	n := g.vs.numVertices()
	// Collect duplicates in one pass before reducing anything — same
	// reasoning as reduceByDestPredicate: reducing a duplicate's
	// bidirected partner as a side effect must not make that partner's own
	// scan think nothing happened there.
	var dup []uint64
	seen := make(map[Vertex]bool)
	for v := Vertex(0); uint64(v) < n; v++ {
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		for k := range seen {
			delete(seen, k)
		}
		for slot := start; slot < end; slot++ {
			if g.es.Reduced(slot) {
				continue
			}
			dest := g.es.Dest(slot)
			if seen[dest] {
				dup = append(dup, slot)
				continue
			}
			seen[dest] = true
		}
	}
	raw := uint64(len(dup))
	for _, slot := range dup {
		g.reduceEdge(slot)
	}
	if raw%2 != 0 {
		return 0, errkind.New(errkind.Config, "strgraph: submaximal reduction removed an odd number of edges (%d)", raw)
	}
	return raw / 2, nil
}

// isInternal reports whether v is a "pass-through" vertex: out-degree 1 at
// both ends (spec 4.4).
func (g *Graph) isInternal(v Vertex) bool {
	return g.vs.outdeg[v] == 1 && g.vs.outdeg[v.Other()] == 1
}

func (g *Graph) soleLiveEdge(v Vertex) (uint64, bool) {
	start, end := g.vs.offset[v], g.vs.offset[v+1]
	for slot := start; slot < end; slot++ {
		if !g.es.Reduced(slot) {
			return slot, true
		}
	}
	return 0, false
}

// ReduceDeadEnd removes short dangling chains of internal vertices that
// terminate at a sink (spec 4.3 "Dead-end-path removal").
func (g *Graph) ReduceDeadEnd(maxDepth int) (uint64, error) {
	if maxDepth < 1 {
		return 0, errkind.New(errkind.Config, "strgraph: maxDepth must be >= 1")
	}
	n := g.vs.numVertices()
	var marked []uint64
	for v := Vertex(0); uint64(v) < n; v++ {
		if g.isInternal(v) || g.vs.outdeg[v] == 0 {
			continue
		}
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		for slot := start; slot < end; slot++ {
			if g.es.Reduced(slot) || g.es.Mark(slot) {
				continue
			}
			walk := []uint64{slot}
			cur := g.es.Dest(slot)
			reachedSink := false
			for depth := 1; depth < maxDepth; depth++ {
				if !g.isInternal(cur) {
					break
				}
				nextSlot, ok := g.soleLiveEdge(cur)
				if !ok {
					reachedSink = true
					break
				}
				walk = append(walk, nextSlot)
				cur = g.es.Dest(nextSlot)
			}
			// Mirrors gt_strgraph_reduce_dead_end_path's
			// "!i_branching || outdeg(to) == 0": the walk also terminates
			// successfully at a non-junction vertex, not only at a true sink.
			if !g.Junction(cur) || g.vs.outdeg[cur] == 0 {
				reachedSink = true
			}
			if reachedSink {
				for _, s := range walk {
					g.es.SetMark(s, true)
				}
				marked = append(marked, walk...)
			}
		}
	}
	var raw uint64
	for _, slot := range marked {
		if g.es.Mark(slot) && !g.es.Reduced(slot) {
			g.reduceEdge(slot)
			raw++
		}
	}
	// Walks start at every non-internal vertex, so a chain may be marked from
	// both of its ends. raw only counts slots that were still live when
	// reduceEdge ran, and reduceEdge takes the partner with it, so raw
	// already counts pairs, not individual half-edges — no halving.
	return raw, nil
}

// bubblePath is one candidate p-bubble arm, ordered first by destination
// vertex then by width, so an in-order llrb walk visits all paths to the
// same endpoint consecutively, sorted by width (spec 4.3 "Group surviving
// paths by their endpoint vertex ... sorted by width").
type bubblePath struct {
	dest   Vertex
	width  uint64
	depth  int
	start  uint64 // starting edge slot from the source vertex
	seq    int    // insertion order, to break ties deterministically
}

func (p *bubblePath) Compare(o llrb.Comparable) int {
	q := o.(*bubblePath)
	switch {
	case p.dest != q.dest:
		if p.dest < q.dest {
			return -1
		}
		return 1
	case p.width != q.width:
		if p.width < q.width {
			return -1
		}
		return 1
	case p.seq != q.seq:
		if p.seq < q.seq {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// ReducePBubble collapses near-parallel paths between the same pair of
// junction vertices (spec 4.3 "P-bubble removal"). Rounds continue until a
// round removes zero edges or maxRounds is reached.
func (g *Graph) ReducePBubble(maxWidth, maxDiff uint64, maxRounds int) (uint64, error) {
	var total uint64
	for round := 0; round < maxRounds; round++ {
		removed, err := g.pbubbleRound(maxWidth, maxDiff)
		if err != nil {
			return total, err
		}
		total += removed
		if removed == 0 {
			break
		}
	}
	return total, nil
}

func (g *Graph) pbubbleRound(maxWidth, maxDiff uint64) (uint64, error) {
	n := g.vs.numVertices()
	tree := &llrb.Tree{}
	seq := 0
	for v := Vertex(0); uint64(v) < n; v++ {
		if g.isInternal(v) || g.vs.outdeg[v] == 0 {
			continue
		}
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		for slot := start; slot < end; slot++ {
			if g.es.Reduced(slot) {
				continue
			}
			width := g.es.Len(slot)
			cur := g.es.Dest(slot)
			depth := 1
			for g.isInternal(cur) && width <= maxWidth {
				nextSlot, ok := g.soleLiveEdge(cur)
				if !ok {
					break
				}
				width += g.es.Len(nextSlot)
				cur = g.es.Dest(nextSlot)
				depth++
			}
			if depth > 1 && width <= maxWidth {
				tree.Insert(&bubblePath{dest: cur, width: width, depth: depth, start: slot, seq: seq})
				seq++
			}
		}
	}

	var toReduce []uint64
	var prev *bubblePath
	tree.Do(func(c llrb.Comparable) bool {
		cur := c.(*bubblePath)
		if prev != nil && prev.dest == cur.dest && cur.width-prev.width <= maxDiff {
			longer := prev
			if cur.depth > prev.depth {
				longer = cur
			}
			toReduce = append(toReduce, longer.start)
		}
		prev = cur
		return false
	})

	var raw uint64
	for _, slot := range toReduce {
		if !g.es.Reduced(slot) {
			g.reduceEdge(slot)
			raw++
		}
	}
	// Each reduceEdge call already removes a full bidirected pair (like
	// reduce_dead_end); no halving needed here.
	return raw, nil
}

// Compact walks edges in storage order, copies each vertex's non-reduced
// edges down to the next free position, rewrites offsets, and shrinks the
// edge array to the new total (spec 4.3 "Compaction").
func (g *Graph) Compact() error {
	n := g.vs.numVertices()
	oldTotal := g.es.NumSlots()
	keep := make([]uint64, 0, oldTotal)
	newOffset := make([]uint64, n+1)
	var cursor uint64
	for v := uint64(0); v < n; v++ {
		newOffset[v] = cursor
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		for slot := start; slot < end; slot++ {
			if !g.es.Reduced(slot) {
				keep = append(keep, slot)
				cursor++
			}
		}
	}
	newOffset[n] = cursor

	newEs, err := newEdgeStore(g.es.Encoding(), cursor, n, g.es.impl.maxLen())
	if err != nil {
		return err
	}
	newPartnerOf := make([]uint64, oldTotal)
	for newSlot, oldSlot := range keep {
		newPartnerOf[oldSlot] = uint64(newSlot)
	}
	newPartner := make([]uint64, cursor)
	for newSlot, oldSlot := range keep {
		newEs.InitSlot(uint64(newSlot))
		newEs.SetDest(uint64(newSlot), g.es.Dest(oldSlot))
		newEs.SetLen(uint64(newSlot), g.es.Len(oldSlot))
		newPartner[newSlot] = newPartnerOf[g.partner[oldSlot]]
	}

	g.es = newEs
	g.vs.offset = newOffset
	g.partner = newPartner
	return nil
}
