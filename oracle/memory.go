package oracle

// InMemory is a ReadOracle that keeps every read's sequence 2-bit packed in
// a single contiguous buffer, the way biosimd.ASCIITo2bit packs FASTA bases
// for the teacher repo's bam/fasta pipelines. Unlike that teacher code this
// type is indexed by read number, not by named chromosome.
type InMemory struct {
	packed   []byte
	starts   []uint64 // len N+1; base offset of read i is starts[i]
	maxLen   uint64
	totalLen uint64
}

var _ ReadOracle = (*InMemory)(nil)

// NewInMemory builds an InMemory oracle from a slice of ACGT read sequences,
// in the order reads should be numbered.
func NewInMemory(reads []string) (*InMemory, error) {
	m := &InMemory{starts: make([]uint64, len(reads)+1)}
	var total uint64
	for i, r := range reads {
		m.starts[i] = total
		total += uint64(len(r))
		if uint64(len(r)) > m.maxLen {
			m.maxLen = uint64(len(r))
		}
	}
	m.starts[len(reads)] = total
	m.totalLen = total

	buf := make([]byte, 0, total)
	for _, r := range reads {
		buf = append(buf, r...)
	}
	packed, err := packSeq(buf)
	if err != nil {
		return nil, err
	}
	m.packed = packed
	return m, nil
}

// NumReads implements ReadOracle.
func (m *InMemory) NumReads() uint64 { return uint64(len(m.starts) - 1) }

// TotalLength implements ReadOracle.
func (m *InMemory) TotalLength() uint64 { return m.totalLen }

// SeqLength implements ReadOracle.
func (m *InMemory) SeqLength(read uint64) uint64 {
	return m.starts[read+1] - m.starts[read]
}

// SeqStart implements ReadOracle.
func (m *InMemory) SeqStart(read uint64) uint64 { return m.starts[read] }

// MaxSeqLength implements ReadOracle.
func (m *InMemory) MaxSeqLength() uint64 { return m.maxLen }

// IsMirrored implements ReadOracle. Reverse complements are computed
// on-the-fly by CharAt, never materialized, so this is always false.
func (m *InMemory) IsMirrored() bool { return false }

// CharAt implements ReadOracle.
func (m *InMemory) CharAt(offset uint64, forward bool) Base {
	b := unpackBase(m.packed, offset)
	if forward {
		return b
	}
	return Complement(b)
}

// Sequence reconstructs the ASCII sequence of the given read, in forward or
// reverse-complement orientation. Used by contigwriter tests and by the CLI
// when emitting FASTA directly rather than via contig paths.
func (m *InMemory) Sequence(read uint64, forward bool) string {
	start, end := m.starts[read], m.starts[read+1]
	length := end - start
	out := make([]byte, length)
	if forward {
		for i := uint64(0); i < length; i++ {
			out[i] = baseToASCII(m.CharAt(start+i, true))
		}
	} else {
		for i := uint64(0); i < length; i++ {
			out[i] = baseToASCII(m.CharAt(end-1-i, false))
		}
	}
	return string(out)
}
