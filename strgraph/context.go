package strgraph

import (
	"fmt"
	"io"

	"github.com/grailbio/strgraph/errkind"
)

// ShowContext emits a DOT-format view of the bounded-depth neighborhood
// around readNums: every vertex reachable within maxDepth live-edge hops of
// any of their B/E vertices, and every live edge between two such vertices.
// Supplements spec §4.5's global DOT views with a debugging-scoped export
// for a single messy region of a large graph, grounded on
// rdj-strgraph.c's gt_strgraph_show_context/gt_strgraph_dot_show_context.
func (g *Graph) ShowContext(w io.Writer, readNums []uint64, maxDepth int) error {
	for _, r := range readNums {
		if r >= g.numReads {
			return errkind.New(errkind.Config, "strgraph: can't show context of read %d because the readset has %d reads", r, g.numReads)
		}
	}

	type vertexDepth struct {
		v     Vertex
		depth int
	}
	visited := make(map[Vertex]bool)
	queue := make([]vertexDepth, 0, 2*len(readNums))
	for _, r := range readNums {
		queue = append(queue, vertexDepth{VertexB(r), 0}, vertexDepth{VertexE(r), 0})
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.v] {
			continue
		}
		visited[cur.v] = true
		if cur.depth >= maxDepth {
			continue
		}
		g.forEachLiveEdge(cur.v, func(slot uint64) {
			dest := g.es.Dest(slot)
			if !visited[dest] {
				queue = append(queue, vertexDepth{dest, cur.depth + 1})
			}
		})
	}

	if _, err := fmt.Fprintln(w, "digraph strgraph_context {"); err != nil {
		return err
	}
	for v := range visited {
		if _, err := fmt.Fprintf(w, "  %s;\n", vertexLabel(v)); err != nil {
			return err
		}
	}
	for v := range visited {
		var werr error
		g.forEachLiveEdge(v, func(slot uint64) {
			if werr != nil {
				return
			}
			dest := g.es.Dest(slot)
			if !visited[dest] {
				return
			}
			_, werr = fmt.Fprintf(w, "  %s -> %s [label=%d];\n", vertexLabel(v), vertexLabel(dest), g.es.Len(slot))
		})
		if werr != nil {
			return werr
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
