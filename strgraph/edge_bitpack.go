package strgraph

// bitpackEdges packs dest and len fields to the bit widths their value
// ranges require (bitsFor(2N) and bitsFor(max_len+1)), the
// "minimum memory" representation. A sentinel len value (all-ones in the
// len field) marks a reduced edge; marks live in a separate bit array, one
// bit per slot.
type bitpackEdges struct {
	words    []uint64 // packed dest||len fields, lsb-first per slot
	marks    []uint64 // one bit per slot
	destBits uint
	lenBits  uint
	n        uint64
}

func bitsFor(maxValueInclusive uint64) uint {
	if maxValueInclusive == 0 {
		return 1
	}
	var bits uint
	for v := maxValueInclusive; v > 0; v >>= 1 {
		bits++
	}
	return bits
}

func newBitpackEdges(numSlots, numVertices, maxLen uint64) *bitpackEdges {
	destBits := bitsFor(numVertices) // dest in [0, numVertices)
	// the len field's highest value is reserved as the reduced sentinel, so
	// reserve one extra code point: bits must cover maxLen+1 distinct values
	// (0..maxLen) plus the sentinel.
	lenBits := bitsFor(maxLen + 1)
	totalBits := uint64(destBits) + uint64(lenBits)
	nWords := (numSlots*totalBits + 63) / 64
	return &bitpackEdges{
		words:    make([]uint64, nWords),
		marks:    make([]uint64, (numSlots+63)/64),
		destBits: destBits,
		lenBits:  lenBits,
		n:        numSlots,
	}
}

func (b *bitpackEdges) fieldWidth() uint64 { return uint64(b.destBits) + uint64(b.lenBits) }

func (b *bitpackEdges) readField(slot uint64, bitOffset uint, width uint) uint64 {
	start := slot*b.fieldWidth() + uint64(bitOffset)
	return readBits(b.words, start, width)
}

func (b *bitpackEdges) writeField(slot uint64, bitOffset uint, width uint, value uint64) {
	start := slot*b.fieldWidth() + uint64(bitOffset)
	writeBits(b.words, start, width, value)
}

func readBits(words []uint64, start uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	wordIdx := start / 64
	bitIdx := start % 64
	mask := uint64(1)<<width - 1
	if width == 64 {
		mask = ^uint64(0)
	}
	v := words[wordIdx] >> bitIdx
	if bitIdx+uint64(width) > 64 {
		remaining := bitIdx + uint64(width) - 64
		v |= words[wordIdx+1] << (64 - bitIdx)
		_ = remaining
	}
	return v & mask
}

func writeBits(words []uint64, start uint64, width uint, value uint64) {
	if width == 0 {
		return
	}
	mask := uint64(1)<<width - 1
	if width == 64 {
		mask = ^uint64(0)
	}
	value &= mask
	wordIdx := start / 64
	bitIdx := start % 64
	words[wordIdx] &^= mask << bitIdx
	words[wordIdx] |= value << bitIdx
	if bitIdx+uint64(width) > 64 {
		highBits := bitIdx + uint64(width) - 64
		words[wordIdx+1] &^= (uint64(1)<<highBits - 1)
		words[wordIdx+1] |= value >> (64 - bitIdx)
	}
}

func (b *bitpackEdges) lenSentinel() uint64 { return uint64(1)<<b.lenBits - 1 }

func (b *bitpackEdges) encoding() Encoding     { return Bitpack }
func (b *bitpackEdges) numSlots() uint64       { return b.n }
func (b *bitpackEdges) maxLen() uint64         { return b.lenSentinel() - 1 }
func (b *bitpackEdges) numVerticesCap() uint64 { return uint64(1) << b.destBits }

func (b *bitpackEdges) initSlot(i uint64) {
	b.writeField(i, b.destBits, b.lenBits, 0)
	b.setMark(i, false)
}

func (b *bitpackEdges) dest(i uint64) Vertex {
	return Vertex(b.readField(i, 0, b.destBits))
}

func (b *bitpackEdges) setDest(i uint64, v Vertex) {
	b.writeField(i, 0, b.destBits, uint64(v))
}

func (b *bitpackEdges) edgeLen(i uint64) uint64 {
	l := b.readField(i, b.destBits, b.lenBits)
	if l == b.lenSentinel() {
		return 0
	}
	return l
}

func (b *bitpackEdges) setEdgeLen(i uint64, l uint64) {
	b.writeField(i, b.destBits, b.lenBits, l)
}

func (b *bitpackEdges) reduced(i uint64) bool {
	return b.readField(i, b.destBits, b.lenBits) == b.lenSentinel()
}

func (b *bitpackEdges) reduce(i uint64) {
	b.writeField(i, b.destBits, b.lenBits, b.lenSentinel())
}

func (b *bitpackEdges) mark(i uint64) bool {
	return b.marks[i/64]&(uint64(1)<<(i%64)) != 0
}

func (b *bitpackEdges) setMark(i uint64, m bool) {
	if m {
		b.marks[i/64] |= uint64(1) << (i % 64)
	} else {
		b.marks[i/64] &^= uint64(1) << (i % 64)
	}
}

func (b *bitpackEdges) clearMark(i uint64) { b.setMark(i, false) }

func (b *bitpackEdges) truncate(n uint64) {
	nWords := (n*b.fieldWidth() + 63) / 64
	b.words = b.words[:nWords]
	b.marks = b.marks[:(n+63)/64]
	b.n = n
}
