package strgraph

import "github.com/grailbio/strgraph/errkind"

// Encoding selects one of the three interchangeable edge representations.
// All algorithms go through the edgeStore interface only; none branches on
// Encoding directly.
type Encoding int

const (
	// Short: 32-bit dest, 8-bit len (0xFF is the reduced sentinel), mark in a
	// separate bitset. Good for <=254-base overhangs and <=2G reads.
	Short Encoding = iota
	// Bitfield: one uint64 per edge — 44 bits dest, 18 bits len (all-ones
	// is the reduced sentinel), 1 mark bit. General fast case.
	Bitfield
	// Bitpack: fully bit-packed dest/len fields sized from the actual
	// max_len/numVertices of the graph being built, plus a separate mark
	// bitset. Minimum memory.
	Bitpack
)

func (e Encoding) String() string {
	switch e {
	case Short:
		return "short"
	case Bitfield:
		return "bitfield"
	case Bitpack:
		return "bitpack"
	default:
		return "unknown"
	}
}

// edgeStore is the uniform capability set every edge representation
// implements: get/set dest, get/set len, reduce/is_reduced, mark/clear mark,
// init. No algorithm in this package touches a representation's internals
// directly.
type edgeStore struct {
	impl edgeImpl
}

type edgeImpl interface {
	encoding() Encoding
	numSlots() uint64
	maxLen() uint64
	numVerticesCap() uint64
	initSlot(i uint64)
	dest(i uint64) Vertex
	setDest(i uint64, v Vertex)
	edgeLen(i uint64) uint64
	setEdgeLen(i uint64, l uint64)
	reduced(i uint64) bool
	reduce(i uint64)
	mark(i uint64) bool
	setMark(i uint64, b bool)
	clearMark(i uint64)
	// truncate shrinks the backing storage to n slots (compaction).
	truncate(n uint64)
}

func newEdgeStore(enc Encoding, numSlots, numVertices, maxLen uint64) (*edgeStore, error) {
	impl, err := newEdgeImpl(enc, numSlots, numVertices, maxLen)
	if err != nil {
		return nil, err
	}
	return &edgeStore{impl: impl}, nil
}

func (s *edgeStore) Encoding() Encoding     { return s.impl.encoding() }
func (s *edgeStore) NumSlots() uint64       { return s.impl.numSlots() }
func (s *edgeStore) Dest(i uint64) Vertex   { return s.impl.dest(i) }
func (s *edgeStore) SetDest(i uint64, v Vertex) { s.impl.setDest(i, v) }
func (s *edgeStore) Len(i uint64) uint64    { return s.impl.edgeLen(i) }
func (s *edgeStore) SetLen(i uint64, l uint64) { s.impl.setEdgeLen(i, l) }
func (s *edgeStore) Reduced(i uint64) bool  { return s.impl.reduced(i) }
func (s *edgeStore) Reduce(i uint64)        { s.impl.reduce(i) }
func (s *edgeStore) Mark(i uint64) bool     { return s.impl.mark(i) }
func (s *edgeStore) SetMark(i uint64, b bool) { s.impl.setMark(i, b) }
func (s *edgeStore) ClearMark(i uint64)     { s.impl.clearMark(i) }
func (s *edgeStore) InitSlot(i uint64)      { s.impl.initSlot(i) }

func newEdgeImpl(enc Encoding, numSlots, numVertices, maxLen uint64) (edgeImpl, error) {
	switch enc {
	case Short:
		return newShortEdges(numSlots), nil
	case Bitfield:
		return newBitfieldEdges(numSlots, numVertices, maxLen)
	case Bitpack:
		return newBitpackEdges(numSlots, numVertices, maxLen), nil
	default:
		return nil, errkind.New(errkind.Config, "strgraph: unknown edge encoding %d", enc)
	}
}

// --- "short" encoding -------------------------------------------------

const shortReducedSentinel = 0xFF

type shortEdges struct {
	dest []uint32
	len  []uint8
	mrk  []bool
}

func newShortEdges(numSlots uint64) *shortEdges {
	return &shortEdges{
		dest: make([]uint32, numSlots),
		len:  make([]uint8, numSlots),
		mrk:  make([]bool, numSlots),
	}
}

func (s *shortEdges) encoding() Encoding        { return Short }
func (s *shortEdges) numSlots() uint64          { return uint64(len(s.dest)) }
func (s *shortEdges) maxLen() uint64            { return 0xFE }
func (s *shortEdges) numVerticesCap() uint64    { return 1 << 32 }
func (s *shortEdges) initSlot(i uint64)         { s.len[i] = 0; s.mrk[i] = false }
func (s *shortEdges) dest(i uint64) Vertex      { return Vertex(s.dest[i]) }
func (s *shortEdges) setDest(i uint64, v Vertex) { s.dest[i] = uint32(v) }
func (s *shortEdges) edgeLen(i uint64) uint64 {
	if s.len[i] == shortReducedSentinel {
		return 0
	}
	return uint64(s.len[i])
}
func (s *shortEdges) setEdgeLen(i uint64, l uint64) { s.len[i] = uint8(l) }
func (s *shortEdges) reduced(i uint64) bool         { return s.len[i] == shortReducedSentinel }
func (s *shortEdges) reduce(i uint64)               { s.len[i] = shortReducedSentinel }
func (s *shortEdges) mark(i uint64) bool            { return s.mrk[i] }
func (s *shortEdges) setMark(i uint64, b bool)       { s.mrk[i] = b }
func (s *shortEdges) clearMark(i uint64)            { s.mrk[i] = false }
func (s *shortEdges) truncate(n uint64) {
	s.dest = s.dest[:n]
	s.len = s.len[:n]
	s.mrk = s.mrk[:n]
}
