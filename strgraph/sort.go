package strgraph

import (
	"sort"

	"github.com/grailbio/strgraph/errkind"
)

// SortEdgesByLength sorts each vertex's edge block ascending by length —
// the precondition for transitive reduction — and advances the graph to
// SORTED_BY_L. It may be called only once insertion has finished.
func (g *Graph) SortEdgesByLength() error {
	if g.state != stateConstruction && g.state != stateSortedByL {
		return errkind.New(errkind.State, "strgraph: SortEdgesByLength called before insertion finished")
	}
	if err := g.FinishInsertion(); err != nil {
		return err
	}
	total := g.es.NumSlots()
	oldAt := make([]uint64, total) // oldAt[newSlot] = oldSlot
	for i := range oldAt {
		oldAt[i] = uint64(i)
	}
	numVertices := g.vs.numVertices()
	for v := uint64(0); v < numVertices; v++ {
		start, end := g.vs.offset[v], g.vs.offset[v+1]
		n := int(end - start)
		if n <= 1 {
			continue
		}
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			return g.es.Len(start+uint64(idx[a])) < g.es.Len(start+uint64(idx[b]))
		})
		g.reorderSlots(start, idx)
		for i, oldIdx := range idx {
			oldAt[start+uint64(i)] = start + uint64(oldIdx)
		}
	}
	g.remapPartner(oldAt)
	g.state = stateSortedByL
	return nil
}

// remapPartner updates g.partner after a global slot permutation described
// by oldAt (oldAt[newSlot] = oldSlot).
func (g *Graph) remapPartner(oldAt []uint64) {
	newSlotOf := make([]uint64, len(oldAt))
	for newSlot, oldSlot := range oldAt {
		newSlotOf[oldSlot] = uint64(newSlot)
	}
	newPartner := make([]uint64, len(oldAt))
	for newSlot, oldSlot := range oldAt {
		newPartner[newSlot] = newSlotOf[g.partner[oldSlot]]
	}
	g.partner = newPartner
}

// fromVertexOf returns the vertex whose edge block contains slot, found by
// binary search over the (fixed, never-reallocated-up) offset array.
func (g *Graph) fromVertexOf(slot uint64) Vertex {
	n := g.vs.numVertices()
	lo, hi := uint64(0), n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if g.vs.offset[mid] <= slot {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Vertex(lo)
}

// reduceEdge permanently removes edge slot and its bidirected partner (spec
// "reduce(edge) sets the reduced sentinel and decrements source outdeg";
// a true self-loop, partner==slot, decrements only once).
func (g *Graph) reduceEdge(slot uint64) {
	if !g.es.Reduced(slot) {
		g.es.Reduce(slot)
		g.vs.outdeg[g.fromVertexOf(slot)]--
	}
	p := g.partner[slot]
	if p != slot && !g.es.Reduced(p) {
		g.es.Reduce(p)
		g.vs.outdeg[g.fromVertexOf(p)]--
	}
}

// reorderSlots permutes the n edge slots starting at start according to
// idx (idx[i] is the old slot offset that should end up at position i),
// copying through a scratch buffer since edge stores have no bulk-move API.
func (g *Graph) reorderSlots(start uint64, idx []int) {
	type saved struct {
		dest    Vertex
		length  uint64
		reduced bool
	}
	n := len(idx)
	tmp := make([]saved, n)
	for i, oldIdx := range idx {
		slot := start + uint64(oldIdx)
		tmp[i] = saved{dest: g.es.Dest(slot), length: g.es.Len(slot), reduced: g.es.Reduced(slot)}
	}
	for i, s := range tmp {
		slot := start + uint64(i)
		g.es.SetDest(slot, s.dest)
		if s.reduced {
			g.es.Reduce(slot)
		} else {
			g.es.SetLen(slot, s.length)
		}
		g.es.ClearMark(slot)
	}
}
