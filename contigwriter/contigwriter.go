// Package contigwriter implements the contigs-writer state spec.md defines
// for contract only: an append-only sequence buffer, a path-description
// string, and an assembly-statistics accumulator, reset after each contig.
// Grounded on original_source/src/extended/assembly_stats_calculator.c for
// the statistics (N50, GC content, longest/shortest contig) and on
// rdj-contigs-writer.c for the writer's reset-per-contig lifecycle.
package contigwriter

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Contig is one finalized, emitted contig.
type Contig struct {
	Index       int
	Sequence    []byte
	Depth       uint64 // number of Append calls: the starting read plus one per edge traversed
	PathSummary string
}

// Writer accumulates one contig at a time; FASTA records are flushed to an
// underlying io.Writer as each contig finalizes.
type Writer struct {
	out   *bufio.Writer
	count int

	buf         []byte
	depth       uint64
	pathSummary string
	showPaths   bool
	pathChain   []string

	stats Stats
}

// NewWriter creates a Writer emitting FASTA to w. showPaths selects between
// the summary path description and the full "<r><B|E>-(len)->" chain (spec
// §6 "Contigs output").
func NewWriter(w io.Writer, showPaths bool) *Writer {
	return &Writer{out: bufio.NewWriter(w), showPaths: showPaths}
}

// StartContig resets the writer's append buffer and path-description
// builder for a new contig, seeded with the mirror-mapped starting read and
// end ('B' or 'E').
func (w *Writer) StartContig(startRead uint64, startIsE bool) {
	w.buf = w.buf[:0]
	w.depth = 0
	end := "B"
	if startIsE {
		end = "E"
	}
	w.pathSummary = fmt.Sprintf("%d%s", startRead, end)
	w.pathChain = w.pathChain[:0]
	w.pathChain = append(w.pathChain, fmt.Sprintf("%d%s", startRead, end))
}

// Append adds the bases of seq (already 2-bit decoded to ASCII by the caller)
// to the pending contig, and records one traversal step in the path
// description.
func (w *Writer) Append(seq []byte, read uint64, isE bool, edgeLen uint64) {
	w.buf = append(w.buf, seq...)
	w.depth++
	end := "B"
	if isE {
		end = "E"
	}
	w.pathChain = append(w.pathChain, fmt.Sprintf("-(%d)->%d%s", edgeLen, read, end))
}

// FinishContig finalizes the pending contig if it meets minDepth/minLength,
// emitting a FASTA record and updating Stats; otherwise the contig is
// discarded. Must be called before the next StartContig and once more
// after the traversal ends.
func (w *Writer) FinishContig(minDepth, minLength uint64) error {
	if w.depth < minDepth || uint64(len(w.buf)) < minLength {
		return nil
	}
	summary := w.pathSummary
	if w.showPaths {
		summary = ""
		for _, s := range w.pathChain {
			summary += s
		}
	} else if len(w.pathChain) > 1 {
		summary = fmt.Sprintf("%s-->...-->%s", w.pathChain[0], w.pathChain[len(w.pathChain)-1])
	}
	seq := make([]byte, len(w.buf))
	copy(seq, w.buf)
	w.stats.add(seq)
	header := fmt.Sprintf("contig_%d length=%d depth=%d %s", w.count, len(seq), w.depth, summary)
	if _, err := fmt.Fprintf(w.out, ">%s\n", header); err != nil {
		return err
	}
	for i := 0; i < len(seq); i += 70 {
		end := i + 70
		if end > len(seq) {
			end = len(seq)
		}
		if _, err := w.out.Write(seq[i:end]); err != nil {
			return err
		}
		if _, err := w.out.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	w.count++
	return nil
}

// Flush flushes any buffered FASTA output.
func (w *Writer) Flush() error { return w.out.Flush() }

// Stats returns the running assembly-statistics accumulator.
func (w *Writer) Stats() Stats { return w.stats }

// Stats accumulates assembly statistics across every emitted contig:
// total length, count, GC content, longest/shortest, and N50.
type Stats struct {
	Count        int
	TotalLength  uint64
	GCCount      uint64
	Longest      uint64
	Shortest     uint64
	lengths      []uint64
}

func (s *Stats) add(seq []byte) {
	l := uint64(len(seq))
	s.Count++
	s.TotalLength += l
	s.lengths = append(s.lengths, l)
	if l > s.Longest {
		s.Longest = l
	}
	if s.Shortest == 0 || l < s.Shortest {
		s.Shortest = l
	}
	for _, c := range seq {
		if c == 'G' || c == 'C' || c == 'g' || c == 'c' {
			s.GCCount++
		}
	}
}

// GCContent returns the fraction of G/C bases across all contigs.
func (s *Stats) GCContent() float64 {
	if s.TotalLength == 0 {
		return 0
	}
	return float64(s.GCCount) / float64(s.TotalLength)
}

// N50 returns the length L such that contigs of length >= L cover at least
// half of TotalLength.
func (s *Stats) N50() uint64 {
	if len(s.lengths) == 0 {
		return 0
	}
	sorted := append([]uint64(nil), s.lengths...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	var cum uint64
	for _, l := range sorted {
		cum += l
		if 2*cum >= s.TotalLength {
			return l
		}
	}
	return sorted[len(sorted)-1]
}
