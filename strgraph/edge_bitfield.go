package strgraph

import "github.com/grailbio/strgraph/errkind"

// bitfieldEdges packs one edge into a single uint64: len in bits 0-17, dest
// in bits 19-62 (44 bits), the mark in bit 63; bit 18 is unused. This is the
// "general fast case" representation. dest cap is 2^44 vertices (far beyond
// any real read set); len cap is 2^18-2, because the all-ones len value
// (2^18-1) is the reduced sentinel (matching the "short" encoding's
// sentinel-at-max-value idiom).
type bitfieldEdges struct {
	words []uint64
}

const (
	bfLenBits   = 18
	bfDestBits  = 44
	bfLenMask   = (uint64(1) << bfLenBits) - 1
	bfDestMask  = (uint64(1) << bfDestBits) - 1
	bfReducedSentinel = bfLenMask // len field saturated == reduced
	bfMarkShift = 63
	bfDestShift = 19
)

func newBitfieldEdges(numSlots, numVertices, maxLen uint64) (*bitfieldEdges, error) {
	if numVertices > bfDestMask {
		return nil, errkind.New(errkind.Config, "strgraph: bitfield encoding cannot address %d vertices (cap %d)", numVertices, bfDestMask)
	}
	if maxLen >= bfLenMask {
		return nil, errkind.New(errkind.Config, "strgraph: bitfield encoding cannot represent edge length up to %d (cap %d)", maxLen, bfLenMask-1)
	}
	return &bitfieldEdges{words: make([]uint64, numSlots)}, nil
}

func (b *bitfieldEdges) encoding() Encoding     { return Bitfield }
func (b *bitfieldEdges) numSlots() uint64       { return uint64(len(b.words)) }
func (b *bitfieldEdges) maxLen() uint64         { return bfLenMask - 1 }
func (b *bitfieldEdges) numVerticesCap() uint64 { return bfDestMask + 1 }

func (b *bitfieldEdges) initSlot(i uint64) {
	w := b.words[i]
	w &^= bfLenMask // clear len -> 0 (not reduced)
	w &^= uint64(1) << bfMarkShift
	b.words[i] = w
}

func (b *bitfieldEdges) dest(i uint64) Vertex {
	return Vertex((b.words[i] >> bfDestShift) & bfDestMask)
}

func (b *bitfieldEdges) setDest(i uint64, v Vertex) {
	w := b.words[i]
	w &^= bfDestMask << bfDestShift
	w |= (uint64(v) & bfDestMask) << bfDestShift
	b.words[i] = w
}

func (b *bitfieldEdges) edgeLen(i uint64) uint64 {
	l := b.words[i] & bfLenMask
	if l == bfReducedSentinel {
		return 0
	}
	return l
}

func (b *bitfieldEdges) setEdgeLen(i uint64, l uint64) {
	w := b.words[i]
	w &^= bfLenMask
	w |= l & bfLenMask
	b.words[i] = w
}

func (b *bitfieldEdges) reduced(i uint64) bool { return b.words[i]&bfLenMask == bfReducedSentinel }
func (b *bitfieldEdges) reduce(i uint64)       { b.words[i] |= bfLenMask }

func (b *bitfieldEdges) mark(i uint64) bool { return b.words[i]&(uint64(1)<<bfMarkShift) != 0 }
func (b *bitfieldEdges) setMark(i uint64, m bool) {
	if m {
		b.words[i] |= uint64(1) << bfMarkShift
	} else {
		b.words[i] &^= uint64(1) << bfMarkShift
	}
}
func (b *bitfieldEdges) clearMark(i uint64) { b.setMark(i, false) }

func (b *bitfieldEdges) truncate(n uint64) { b.words = b.words[:n] }
