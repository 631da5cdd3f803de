// Package spmlist implements the on-disk SPM (suffix-prefix match) record
// list: the wire format the external SPM finder and package strgraph
// exchange records through. Three formats are supported — ASCII, Binary-32
// and Binary-64 — auto-detected on read by header byte, matching
// rdj-spmlist.c.
package spmlist

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	farm "github.com/dgryski/go-farm"
	"github.com/minio/highwayhash"

	"github.com/grailbio/strgraph/errkind"
)

// Record is one suffix-prefix match, consumed by package strgraph's builder.
type Record struct {
	SuffixRead, PrefixRead       uint64
	Length                       uint64
	SuffixForward, PrefixForward bool
}

const (
	headerBin32 = 0x02
	headerBin64 = 0x03
)

// highwayKey is a fixed, non-secret 32-byte key: the trailer exists to catch
// truncation/corruption of a binary SPM file before the builder trusts its
// min_length cutoff on garbage bytes, not to authenticate the sender.
var highwayKey = [32]byte{'s', 't', 'r', 'g', 'r', 'a', 'p', 'h', '-', 's', 'p', 'm', 'l', 'i', 's', 't'}

// Format selects an on-disk encoding.
type Format int

const (
	ASCII Format = iota
	Bin32
	Bin64
)

// Writer streams Records to an underlying file in one Format, optionally
// trailing a HighwayHash checksum over everything written (binary formats
// only — the ASCII format is meant to be human-inspectable and diffable, so
// it is left unchecksummed).
type Writer struct {
	w        io.Writer
	format   Format
	hash     hash.Hash // nil for ASCII
	wroteHdr bool
}

// NewWriter creates a Writer. checksum requests a HighwayHash trailer (bin
// formats only; ignored for ASCII).
func NewWriter(w io.Writer, format Format, checksum bool) (*Writer, error) {
	sw := &Writer{w: w, format: format}
	if checksum && format != ASCII {
		h, err := highwayhash.New(highwayKey[:])
		if err != nil {
			return nil, errkind.Wrap(errkind.Config, err, "spmlist: init highwayhash")
		}
		sw.hash = h
	}
	return sw, nil
}

func (w *Writer) writeRaw(p []byte) error {
	if _, err := w.w.Write(p); err != nil {
		return errkind.Wrap(errkind.IO, err, "spmlist: write")
	}
	if w.hash != nil {
		_, _ = w.hash.Write(p)
	}
	return nil
}

func (w *Writer) writeHeaderOnce() error {
	if w.wroteHdr {
		return nil
	}
	w.wroteHdr = true
	switch w.format {
	case Bin32:
		return w.writeRaw([]byte{headerBin32})
	case Bin64:
		return w.writeRaw([]byte{headerBin64})
	}
	return nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	if err := w.writeHeaderOnce(); err != nil {
		return err
	}
	switch w.format {
	case ASCII:
		line := fmt.Sprintf("%d %s %d %s %d\n", r.SuffixRead, sign(r.SuffixForward), r.PrefixRead, sign(r.PrefixForward), r.Length)
		return w.writeRaw([]byte(line))
	case Bin32:
		return w.writeBinRecord(r, 4)
	case Bin64:
		return w.writeBinRecord(r, 8)
	}
	return errkind.New(errkind.Config, "spmlist: unknown format %d", w.format)
}

func (w *Writer) writeBinRecord(r Record, width int) error {
	packed := r.Length<<2 | b2u(r.SuffixForward)<<1 | b2u(r.PrefixForward)
	buf := make([]byte, width*3)
	if width == 4 {
		if r.SuffixRead > 0xffffffff || r.PrefixRead > 0xffffffff || packed > 0xffffffff {
			return errkind.New(errkind.Config, "spmlist: value overflows 32-bit binary format")
		}
		binary.LittleEndian.PutUint32(buf[0:4], uint32(r.SuffixRead))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(r.PrefixRead))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(packed))
	} else {
		binary.LittleEndian.PutUint64(buf[0:8], r.SuffixRead)
		binary.LittleEndian.PutUint64(buf[8:16], r.PrefixRead)
		binary.LittleEndian.PutUint64(buf[16:24], packed)
	}
	return w.writeRaw(buf)
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func sign(forward bool) string {
	if forward {
		return "+"
	}
	return "-"
}

// Close finalizes the stream, appending the HighwayHash trailer if one was
// requested.
func (w *Writer) Close() error {
	if w.hash == nil {
		return nil
	}
	sum := w.hash.Sum(nil)
	if _, err := w.w.Write(sum); err != nil {
		return errkind.Wrap(errkind.IO, err, "spmlist: write checksum trailer")
	}
	return nil
}

// fingerprint returns a 64-bit FarmHash fingerprint of a record's identity
// tuple, used by Dedup to recognize the same SPM reported twice across
// shards (e.g. a self-SPM and its mirror landing in separate input files).
func fingerprint(r Record) uint64 {
	var buf [25]byte
	binary.LittleEndian.PutUint64(buf[0:8], r.SuffixRead)
	binary.LittleEndian.PutUint64(buf[8:16], r.PrefixRead)
	binary.LittleEndian.PutUint64(buf[16:24], r.Length)
	packed := byte(0)
	if r.SuffixForward {
		packed |= 1
	}
	if r.PrefixForward {
		packed |= 2
	}
	buf[24] = packed
	return farm.Hash64(buf[:])
}

// Dedup wraps proc, suppressing records whose identity tuple was already
// seen. Intended for the `load_self_spm` path, where a self-SPM loaded from
// one shard and the same match re-derived from another must collapse to a
// single builder insertion (spec "load_self_spm" / rdj-spmlist.c dedup
// pass).
func Dedup(proc Processor) Processor {
	seen := make(map[uint64]struct{})
	return func(r Record) error {
		fp := fingerprint(r)
		if _, ok := seen[fp]; ok {
			return nil
		}
		seen[fp] = struct{}{}
		return proc(r)
	}
}

// Processor receives one parsed Record; returning an error aborts the parse.
type Processor func(Record) error

// Parse reads every record with Length >= minLength from r, auto-detecting
// the format by its first byte (ASCII if not 0x02/0x03), and calls proc for
// each.
func Parse(r io.Reader, minLength uint64, proc Processor) error {
	br := bufio.NewReader(r)
	first, err := br.Peek(1)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return errkind.Wrap(errkind.IO, err, "spmlist: peek header")
	}
	switch first[0] {
	case headerBin32:
		br.Discard(1) //nolint:errcheck
		return parseBin(br, minLength, proc, 4)
	case headerBin64:
		br.Discard(1) //nolint:errcheck
		return parseBin(br, minLength, proc, 8)
	default:
		return parseASCII(br, minLength, proc)
	}
}

func parseBin(br *bufio.Reader, minLength uint64, proc Processor, width int) error {
	h, _ := highwayhash.New(highwayKey[:])
	h.Write([]byte{headerBin32 + byte(width/8)}) //nolint:errcheck // header byte: 0x02 or 0x03
	buf := make([]byte, width*3)
	for {
		// Exactly highwayhash.Size bytes left (never a whole number of records) is the Writer's checksum trailer.
		if rest, _ := br.Peek(highwayhash.Size + 1); len(rest) == highwayhash.Size {
			if !bytes.Equal(rest, h.Sum(nil)) {
				return errkind.New(errkind.Format, "spmlist: checksum trailer mismatch")
			}
			return nil
		}
		_, err := io.ReadFull(br, buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errkind.Wrap(errkind.Format, err, "spmlist: truncated binary record")
		}
		h.Write(buf) //nolint:errcheck
		var a, b, packed uint64
		if width == 4 {
			a = uint64(binary.LittleEndian.Uint32(buf[0:4]))
			b = uint64(binary.LittleEndian.Uint32(buf[4:8]))
			packed = uint64(binary.LittleEndian.Uint32(buf[8:12]))
		} else {
			a = binary.LittleEndian.Uint64(buf[0:8])
			b = binary.LittleEndian.Uint64(buf[8:16])
			packed = binary.LittleEndian.Uint64(buf[16:24])
		}
		length := packed >> 2
		rec := Record{
			SuffixRead:     a,
			PrefixRead:     b,
			Length:         length,
			SuffixForward:  packed&2 != 0,
			PrefixForward:  packed&1 != 0,
		}
		if length >= minLength {
			if err := proc(rec); err != nil {
				return err
			}
		}
	}
}

func parseASCII(br *bufio.Reader, minLength uint64, proc Processor) error {
	for {
		line, err := br.ReadString('\n')
		if len(line) == 0 && err == io.EOF {
			return nil
		}
		var suf, pre, length uint64
		var sufSign, preSign string
		n, scanErr := fmt.Sscanf(line, "%d %s %d %s %d", &suf, &sufSign, &pre, &preSign, &length)
		if n != 5 || scanErr != nil {
			return errkind.New(errkind.Format, "spmlist: malformed ASCII record %q", line)
		}
		sufFwd, err1 := parsePlusMinus(sufSign)
		preFwd, err2 := parsePlusMinus(preSign)
		if err1 != nil || err2 != nil {
			return errkind.New(errkind.Format, "spmlist: malformed orientation in %q", line)
		}
		if length >= minLength {
			if err := proc(Record{SuffixRead: suf, PrefixRead: pre, Length: length, SuffixForward: sufFwd, PrefixForward: preFwd}); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errkind.Wrap(errkind.IO, err, "spmlist: read ASCII line")
		}
	}
}

func parsePlusMinus(s string) (bool, error) {
	switch s {
	case "+":
		return true, nil
	case "-":
		return false, nil
	default:
		return false, errkind.New(errkind.Format, "spmlist: expected + or -, got %q", s)
	}
}
