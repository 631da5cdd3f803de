// Package oracle defines the read oracle consumed by package strgraph:
// per-read length, sequence start offset, and 2-bit character access. The
// string graph builder borrows a ReadOracle immutably and never mutates the
// underlying sequence data (spec: "the graph ... borrows the read oracle").
package oracle

// Base is a 2-bit nucleotide code: A=0, C=1, G=2, T=3.
type Base = uint8

const (
	BaseA Base = 0
	BaseC Base = 1
	BaseG Base = 2
	BaseT Base = 3
)

// ReadOracle is the minimal capability set the string-graph builder and
// traversal/spelling code need from a read collection. Implementations own
// (or reference) the underlying sequence storage; ReadOracle itself is a
// read-only view.
type ReadOracle interface {
	// NumReads returns the number of reads, N.
	NumReads() uint64

	// TotalLength returns the sum of all read lengths.
	TotalLength() uint64

	// SeqLength returns the length in bases of the given read.
	SeqLength(read uint64) uint64

	// SeqStart returns the offset of the first base of the given read in
	// the oracle's shared coordinate space.
	SeqStart(read uint64) uint64

	// CharAt returns the 2-bit code of the base at the given offset. When
	// forward is false, the complement of that base is returned (so
	// callers can read a read's reverse-complement without materializing
	// it), matching the C source's suffixseq_direct/prefixseq_direct
	// convention.
	CharAt(offset uint64, forward bool) Base

	// MaxSeqLength returns the length of the longest read.
	MaxSeqLength() uint64

	// IsMirrored reports whether reverse complements are materialized
	// as separate entries reachable through this oracle (always false
	// for the in-memory implementation in this package, which computes
	// complements on the fly instead).
	IsMirrored() bool
}

// Complement returns the complementary base of b.
func Complement(b Base) Base {
	return 3 - b
}
