// Package strgraph is the string-graph data structure and its
// simplification/traversal pipeline: space-efficient vertex/edge encodings,
// the SPM count/allocate/insert construction protocol, Myers' transitive-edge
// reduction, dead-end and p-bubble removal, and contig spelling.
package strgraph

import "github.com/grailbio/strgraph/errkind"

// Vertex identifies one end of one read: V = 2*read + s, s=0 for the B-end
// (5'), s=1 for the E-end (3').
type Vertex uint64

// VertexB returns the B-end (5') vertex of a read.
func VertexB(read uint64) Vertex { return Vertex(2 * read) }

// VertexE returns the E-end (3') vertex of a read.
func VertexE(read uint64) Vertex { return Vertex(2*read + 1) }

// Other returns the complementary end of the same read.
func (v Vertex) Other() Vertex { return v ^ 1 }

// Read returns the read number this vertex belongs to.
func (v Vertex) Read() uint64 { return uint64(v) >> 1 }

// IsE reports whether v is the E-end.
func (v Vertex) IsE() bool { return uint64(v)&1 == 1 }

// Mark is the transient 2-bit state shared by every algorithm that walks the
// graph. Callers must reset marks to Vacant before a pass and must not rely
// on any value left by a previous pass other than Eliminated persisting
// across passes that document it (traversal).
type Mark uint8

const (
	Vacant Mark = iota
	Inplay
	Eliminated
	Marked
)

// vertexStore holds the per-vertex attributes: edge-block offset, live
// out-degree, and the shared mark. It is identical across all three edge
// encodings — only the edge array's field widths vary — so it lives outside
// the EdgeStore interface.
type vertexStore struct {
	// offset[v] is the index of v's first edge slot; offset[2N] is the
	// sentinel holding the total slot count, so offset[v+1]-offset[v] is v's
	// allocated slot count (reduced or not).
	offset []uint64
	outdeg []uint32
	mark   []Mark
}

func newVertexStore(numVertices uint64) *vertexStore {
	return &vertexStore{
		offset: make([]uint64, numVertices+1),
		outdeg: make([]uint32, numVertices),
		mark:   make([]Mark, numVertices),
	}
}

func (s *vertexStore) numVertices() uint64 { return uint64(len(s.outdeg)) }

func (s *vertexStore) slotCount(v Vertex) uint64 {
	return s.offset[v+1] - s.offset[v]
}

func (s *vertexStore) resetMarks() {
	for i := range s.mark {
		s.mark[i] = Vacant
	}
}

// checkVertex guards against out-of-range vertex indices reaching the edge
// arrays, the one place a malformed SPM stream (a read number >= N) would
// otherwise corrupt memory rather than fail loudly.
func (s *vertexStore) checkVertex(v Vertex) error {
	if uint64(v) >= s.numVertices() {
		return errkind.New(errkind.Config, "strgraph: vertex %d out of range (numVertices=%d)", v, s.numVertices())
	}
	return nil
}
