// Package contigpaths implements the contig-paths alternate output mode
// (spec §4.4): a compact binary trace of (length, mirrored-seqnum) pairs
// recorded during graph traversal, deferring FASTA spelling (which needs the
// read oracle's decoded bases) to a later pass. Grounded on
// original_source/src/match/rdj-contigpaths.c's gt_contigpaths_to_fasta,
// which replays the same kind of (nofchars, seqnum) pair stream against a
// GtEncseq to produce FASTA.
package contigpaths

import (
	"encoding/binary"
	"io"

	"github.com/grailbio/strgraph/contigwriter"
	"github.com/grailbio/strgraph/errkind"
	"github.com/grailbio/strgraph/oracle"
)

// Pack combines a read number and its traversal orientation into the single
// mirrored-seqnum word the binary format stores, matching readjoiner's
// convention of giving each strand of each read a distinct sequence number.
func Pack(read uint64, forward bool) uint64 {
	s := uint64(0)
	if !forward {
		s = 1
	}
	return 2*read + s
}

// Unpack is the inverse of Pack.
func Unpack(mseqnum uint64) (read uint64, forward bool) {
	return mseqnum >> 1, mseqnum&1 == 0
}

// Writer emits the binary (nofchars, mseqnum) pair stream. A pair with
// nofchars==0 marks a new contig start, seeded at mseqnum's full read
// length; any other pair appends nofchars bases of mseqnum's tail.
type Writer struct {
	w   io.Writer
	buf [16]byte
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) writePair(numChars, mseqnum uint64) error {
	binary.LittleEndian.PutUint64(w.buf[0:8], numChars)
	binary.LittleEndian.PutUint64(w.buf[8:16], mseqnum)
	_, err := w.w.Write(w.buf[:])
	return errkind.Wrap(errkind.IO, err, "contigpaths: write pair")
}

// StartContig records a new contig's starting read (in the given
// orientation).
func (w *Writer) StartContig(read uint64, forward bool) error {
	return w.writePair(0, Pack(read, forward))
}

// Append records one traversal step: numChars bases taken from the tail of
// read, in the given orientation.
func (w *Writer) Append(read uint64, forward bool, numChars uint64) error {
	return w.writePair(numChars, Pack(read, forward))
}

// Elem is one decoded pair from a contig-paths stream.
type Elem struct {
	NumChars uint64
	Read     uint64
	Forward  bool
}

// Parse reads every pair from r and calls fn once per pair, in stream
// order.
func Parse(r io.Reader, fn func(Elem) error) error {
	var buf [16]byte
	for {
		_, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errkind.Wrap(errkind.Format, err, "contigpaths: read pair")
		}
		numChars := binary.LittleEndian.Uint64(buf[0:8])
		mseqnum := binary.LittleEndian.Uint64(buf[8:16])
		read, forward := Unpack(mseqnum)
		if err := fn(Elem{NumChars: numChars, Read: read, Forward: forward}); err != nil {
			return err
		}
	}
}

// ToFasta replays a contig-paths stream from r against o, spelling each
// contig's bases through w and discarding (aborting) any contig shorter than
// minLength — the same behavior as gt_contigpaths_to_fasta's
// contig_length/min_contig_length check.
func ToFasta(r io.Reader, o oracle.ReadOracle, w *contigwriter.Writer, minLength uint64) error {
	var (
		started      bool
		contigLength uint64
	)
	finish := func() error {
		if !started {
			return nil
		}
		if contigLength >= minLength {
			return w.FinishContig(0, minLength)
		}
		return w.FinishContig(0, contigLength+1) // force the length check to fail: abort
	}
	err := Parse(r, func(e Elem) error {
		if e.NumChars == 0 {
			if err := finish(); err != nil {
				return err
			}
			w.StartContig(e.Read, e.Forward)
			started = true
			contigLength = o.SeqLength(e.Read)
			w.Append(decodeFull(o, e.Read, e.Forward), e.Read, e.Forward, 0)
			return nil
		}
		contigLength += e.NumChars
		w.Append(decodeTail(o, e.Read, e.Forward, e.NumChars), e.Read, e.Forward, e.NumChars)
		return nil
	})
	if err != nil {
		return err
	}
	return finish()
}

var baseToASCII = [4]byte{'A', 'C', 'G', 'T'}

func decodeFull(o oracle.ReadOracle, read uint64, forward bool) []byte {
	return decodeBases(o, read, forward, 0, o.SeqLength(read))
}

func decodeTail(o oracle.ReadOracle, read uint64, forward bool, numChars uint64) []byte {
	l := o.SeqLength(read)
	if numChars > l {
		numChars = l
	}
	return decodeBases(o, read, forward, l-numChars, l)
}

func decodeBases(o oracle.ReadOracle, read uint64, forward bool, from, to uint64) []byte {
	start := o.SeqStart(read)
	l := o.SeqLength(read)
	out := make([]byte, 0, to-from)
	if forward {
		for i := from; i < to; i++ {
			out = append(out, baseToASCII[o.CharAt(start+i, true)])
		}
	} else {
		for i := from; i < to; i++ {
			pos := l - 1 - i
			out = append(out, baseToASCII[o.CharAt(start+pos, false)])
		}
	}
	return out
}
