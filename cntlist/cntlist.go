// Package cntlist implements the contained-read bitset: a dense bitmap of
// length N where bit i is set iff read i is contained in some other read
// (as substring or reverse complement) and must therefore be excluded from
// the string graph. Three interchangeable on-disk formats are supported,
// auto-detected by the first byte on read, matching rdj-cntlist.c.
package cntlist

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/grailbio/strgraph/errkind"
)

// header bytes identifying the three on-disk formats.
const (
	headerBit    = 0x00
	headerIndex  = 0x01
	headerASCII  = '['
	sizeWordSize = 8 // bytes per size_word (uint64); written and checked on read.
)

// Bitset is a dense, fixed-size bitmap of N bits.
type Bitset struct {
	words []uint64
	n     uint64
}

// New allocates a Bitset of n bits, initially all clear.
func New(n uint64) *Bitset {
	return &Bitset{words: make([]uint64, (n+63)/64), n: n}
}

// N returns the number of bits in the set.
func (b *Bitset) N() uint64 { return b.n }

// Set marks bit i as set (read i is contained).
func (b *Bitset) Set(i uint64) {
	b.words[i/64] |= 1 << (i % 64)
}

// Get reports whether bit i is set.
func (b *Bitset) Get(i uint64) bool {
	return b.words[i/64]&(1<<(i%64)) != 0
}

// Or merges other into b bit by bit (used when a file's bits are merged into
// an existing bitmap rather than replacing it, spec "alloc?=false
// OR-merges").
func (b *Bitset) Or(other *Bitset) error {
	if b.n != other.n {
		return errkind.New(errkind.Format, "cntlist: size mismatch merging bitsets (%d vs %d)", b.n, other.n)
	}
	for i := range b.words {
		b.words[i] |= other.words[i]
	}
	return nil
}

// Count returns the number of set bits (the popcount of the bitmap).
func Count(b *Bitset) uint64 {
	var c uint64
	for _, w := range b.words {
		c += uint64(bits.OnesCount64(w))
	}
	return c
}

// Format selects an on-disk encoding for Write.
type Format int

const (
	// ASCII is the human-readable "[n: N]\n<read>\n..." format.
	ASCII Format = iota
	// Bit is the dense binary bitmap format.
	Bit
	// Indexed streams one read number per set bit; see WriteIndexedHeader.
	Indexed
)

// Write serializes b to w in the requested format. Indexed is not supported
// here (streaming a growing bitset is the point of that format) — use
// WriteIndexedHeader and WriteIndexedEntry directly.
func Write(b *Bitset, w io.Writer, format Format) error {
	switch format {
	case ASCII:
		return writeASCII(b, w)
	case Bit:
		return writeBit(b, w)
	default:
		return errkind.New(errkind.Config, "cntlist: Write does not support format %d; use WriteIndexedHeader/WriteIndexedEntry", format)
	}
}

func writeASCII(b *Bitset, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "[n: %d]\n", b.n); err != nil {
		return errkind.Wrap(errkind.IO, err, "cntlist: write ASCII header")
	}
	for i := uint64(0); i < b.n; i++ {
		if b.Get(i) {
			if _, err := fmt.Fprintf(bw, "%d\n", i); err != nil {
				return errkind.Wrap(errkind.IO, err, "cntlist: write ASCII entry")
			}
		}
	}
	return errkind.Wrap(errkind.IO, bw.Flush(), "cntlist: flush ASCII")
}

func writeBit(b *Bitset, w io.Writer) error {
	if err := writeBinHeader(w, headerBit, b.n); err != nil {
		return err
	}
	nWords := (b.n + 63) / 64
	buf := make([]byte, 8)
	for i := uint64(0); i < nWords; i++ {
		binary.LittleEndian.PutUint64(buf, b.words[i])
		if _, err := w.Write(buf); err != nil {
			return errkind.Wrap(errkind.IO, err, "cntlist: write Bit words")
		}
	}
	return nil
}

func writeBinHeader(w io.Writer, header byte, n uint64) error {
	if _, err := w.Write([]byte{header, sizeWordSize}); err != nil {
		return errkind.Wrap(errkind.IO, err, "cntlist: write header")
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, n)
	if _, err := w.Write(buf); err != nil {
		return errkind.Wrap(errkind.IO, err, "cntlist: write N")
	}
	return nil
}

// WriteIndexedHeader writes the 10-byte Indexed-format header, after which
// the caller may stream "set this bit" entries with WriteIndexedEntry.
func WriteIndexedHeader(n uint64, w io.Writer) error {
	return writeBinHeader(w, headerIndex, n)
}

// WriteIndexedEntry appends one "set bit `read`" record to an Indexed-format
// stream opened with WriteIndexedHeader.
func WriteIndexedEntry(read uint64, w io.Writer) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, read)
	_, err := w.Write(buf)
	return errkind.Wrap(errkind.IO, err, "cntlist: write indexed entry")
}

// Parse reads a contained-read bitset from r, auto-detecting its format from
// the first byte. If alloc is true, a fresh Bitset sized from the file's
// header is returned; merge must be nil. If alloc is false, merge must be
// non-nil and sized to the file's N; the file's bits are OR-merged into it.
func Parse(r io.Reader, alloc bool, merge *Bitset) (*Bitset, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return nil, errkind.New(errkind.Format, "cntlist: empty file")
		}
		return nil, errkind.Wrap(errkind.IO, err, "cntlist: read header byte")
	}
	switch first {
	case headerBit:
		return parseBit(br, alloc, merge)
	case headerIndex:
		return parseIndexed(br, alloc, merge)
	case headerASCII:
		return parseASCII(br, alloc, merge)
	default:
		return nil, errkind.New(errkind.Format, "cntlist: unrecognized header byte 0x%02x", first)
	}
}

func readBinHeader(br *bufio.Reader) (uint64, error) {
	sizeByte, err := br.ReadByte()
	if err != nil {
		return 0, errkind.Wrap(errkind.IO, err, "cntlist: read size-word byte")
	}
	if sizeByte != sizeWordSize {
		return 0, errkind.New(errkind.Format, "cntlist: size_word is %d bytes on disk, this build uses %d", sizeByte, sizeWordSize)
	}
	var buf [8]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return 0, errkind.Wrap(errkind.Format, err, "cntlist: read N")
	}
	n := binary.LittleEndian.Uint64(buf[:])
	if n == 0 {
		return 0, errkind.New(errkind.Format, "cntlist: N=0")
	}
	return n, nil
}

func targetBitset(alloc bool, merge *Bitset, n uint64) (*Bitset, error) {
	if alloc {
		return New(n), nil
	}
	if merge == nil {
		return nil, errkind.New(errkind.Config, "cntlist: alloc=false requires a non-nil merge target")
	}
	if merge.n != n {
		return nil, errkind.New(errkind.Format, "cntlist: file specifies N=%d, merge target has N=%d", n, merge.n)
	}
	return merge, nil
}

func parseBit(br *bufio.Reader, alloc bool, merge *Bitset) (*Bitset, error) {
	n, err := readBinHeader(br)
	if err != nil {
		return nil, err
	}
	target, err := targetBitset(alloc, merge, n)
	if err != nil {
		return nil, err
	}
	nWords := (n + 63) / 64
	buf := make([]byte, 8)
	for i := uint64(0); i < nWords; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, errkind.Wrap(errkind.Format, err, "cntlist: truncated Bit words")
		}
		target.words[i] |= binary.LittleEndian.Uint64(buf)
	}
	return target, nil
}

func parseIndexed(br *bufio.Reader, alloc bool, merge *Bitset) (*Bitset, error) {
	n, err := readBinHeader(br)
	if err != nil {
		return nil, err
	}
	target, err := targetBitset(alloc, merge, n)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8)
	for {
		_, err := io.ReadFull(br, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errkind.Wrap(errkind.Format, err, "cntlist: truncated Indexed entry")
		}
		read := binary.LittleEndian.Uint64(buf)
		if read >= n {
			return nil, errkind.New(errkind.Format, "cntlist: read number %d out of range (N=%d)", read, n)
		}
		target.Set(read)
	}
	return target, nil
}

func parseASCII(br *bufio.Reader, alloc bool, merge *Bitset) (*Bitset, error) {
	var n uint64
	if _, err := fmt.Fscanf(br, "[n: %d]\n", &n); err != nil {
		return nil, errkind.New(errkind.Format, "cntlist: malformed ASCII header")
	}
	if n == 0 {
		return nil, errkind.New(errkind.Format, "cntlist: N=0")
	}
	target, err := targetBitset(alloc, merge, n)
	if err != nil {
		return nil, err
	}
	for {
		var read uint64
		_, err := fmt.Fscanf(br, "%d\n", &read)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errkind.New(errkind.Format, "cntlist: malformed ASCII entry")
		}
		if read >= n {
			return nil, errkind.New(errkind.Format, "cntlist: read number %d out of range (N=%d)", read, n)
		}
		target.Set(read)
	}
	return target, nil
}
