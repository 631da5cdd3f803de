// Package spmfind is a minimal, suffix-array-free suffix-prefix match
// finder: a naive O(n^2) all-pairs scanner sufficient for small inputs and
// test corpora, standing in for the real SPM finder spec.md keeps external
// ("consumes a stream of SPM records" — building the suffix array itself is
// an explicit Non-goal). Grounded on original_source's
// src/match/rdj-spmfind.c, whose gt_spmfind_*_process callbacks drive a
// bottom-up suffix-array traversal but boil down to the same
// per-match-found callback shape spmlist.Processor already models.
package spmfind

import (
	"github.com/grailbio/strgraph/oracle"
	"github.com/grailbio/strgraph/spmlist"
)

// Options configures the brute-force search.
type Options struct {
	// MinMatchLen is the shortest suffix-prefix match worth reporting.
	MinMatchLen uint64

	// SelfMatches includes a read's suffix-prefix matches against itself
	// (suffixRead == prefixRead), mirroring the builder's load_self_spm
	// flag. Off by default: most assemblies treat a read's self-overlap as
	// noise, not a real join.
	SelfMatches bool
}

// Find scans every pair of reads in o for maximal suffix-prefix matches and
// calls proc once per match found, as one spmlist.Record. For each ordered
// pair of reads (with suffixRead <= prefixRead when not a self-match) and
// each of the four suffix/prefix strand-orientation combinations (spec §3),
// it finds the single longest exact match at or above MinMatchLen — any
// shorter match between the same pair and orientation is necessarily
// submaximal and is left for the string-graph reducers to discard.
func Find(o oracle.ReadOracle, opts Options, proc spmlist.Processor) error {
	n := o.NumReads()
	for i := uint64(0); i < n; i++ {
		jStart := i
		for j := jStart; j < n; j++ {
			if i == j && !opts.SelfMatches {
				continue
			}
			for _, suffixForward := range [2]bool{true, false} {
				for _, prefixForward := range [2]bool{true, false} {
					if i == j && suffixForward == prefixForward {
						// suffix and prefix of the same read on the same
						// strand trivially "match" at L = len(read); not a
						// real overlap.
						continue
					}
					l := longestMatch(o, i, suffixForward, j, prefixForward, opts.MinMatchLen)
					if l == 0 {
						continue
					}
					if err := proc(spmlist.Record{
						SuffixRead:    i,
						PrefixRead:    j,
						Length:        l,
						SuffixForward: suffixForward,
						PrefixForward: prefixForward,
					}); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// longestMatch returns the longest L >= minLen such that the last L bases of
// suffixRead (read on the suffixForward strand) equal the first L bases of
// prefixRead (read on the prefixForward strand), or 0 if no such L exists.
func longestMatch(o oracle.ReadOracle, suffixRead uint64, suffixForward bool, prefixRead uint64, prefixForward bool, minLen uint64) uint64 {
	sufLen := o.SeqLength(suffixRead)
	preLen := o.SeqLength(prefixRead)
	maxLen := sufLen
	if preLen < maxLen {
		maxLen = preLen
	}
	for l := maxLen; l >= minLen && l > 0; l-- {
		if matchesAt(o, suffixRead, suffixForward, sufLen, prefixRead, prefixForward, l) {
			return l
		}
	}
	return 0
}

func matchesAt(o oracle.ReadOracle, suffixRead uint64, suffixForward bool, sufLen uint64, prefixRead uint64, prefixForward bool, l uint64) bool {
	for k := uint64(0); k < l; k++ {
		a := charAtStrand(o, suffixRead, suffixForward, sufLen-l+k)
		b := charAtStrand(o, prefixRead, prefixForward, k)
		if a != b {
			return false
		}
	}
	return true
}

// charAtStrand returns the base at logical position pos (0-indexed from the
// 5' end of the requested strand) of read, consulting the oracle's 2-bit
// decoder. For the reverse-complement strand, position pos mirrors to the
// complement of the base at the symmetric forward-strand position.
func charAtStrand(o oracle.ReadOracle, read uint64, forward bool, pos uint64) oracle.Base {
	start := o.SeqStart(read)
	if forward {
		return o.CharAt(start+pos, true)
	}
	l := o.SeqLength(read)
	return o.CharAt(start+(l-1-pos), false)
}
