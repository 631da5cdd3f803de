package strgraph

import (
	"io"

	"github.com/grailbio/strgraph/errkind"
)

// Library is one paired-end (or single-end) reads library: the read number
// of its first member and, for paired libraries, the expected insert size
// and its standard deviation.
type Library struct {
	FirstSeqNum  uint64
	InsertLength uint64
	Stdev        uint64
	Paired       bool
}

// LibraryTable is the stub reads-library table spec.md's Non-goals keep out
// of scope beyond a stub: insert-size ranges per library, attached to a
// graph but never consulted by the reducers or traversal. Grounded on
// original_source's src/match/reads_libraries_table.c.
type LibraryTable struct {
	libraries     []Library
	firstUnpaired uint64
	haveUnpaired  bool
}

// NewLibraryTable returns an empty table with capacity for n libraries.
func NewLibraryTable(n uint64) *LibraryTable {
	return &LibraryTable{libraries: make([]Library, 0, n)}
}

// Add registers one library. All paired libraries must be added before any
// unpaired library, and unpaired libraries must appear in strictly
// increasing firstSeqNum order — the same ordering
// gt_reads_libraries_table_add asserts.
func (t *LibraryTable) Add(firstSeqNum, insertLength, stdev uint64, paired bool) error {
	if !paired {
		if !t.haveUnpaired {
			t.firstUnpaired = firstSeqNum
			t.haveUnpaired = true
		} else if firstSeqNum <= t.firstUnpaired {
			return errkind.New(errkind.Config, "strgraph: unpaired libraries must be added in increasing first-read order")
		}
	} else if t.haveUnpaired {
		return errkind.New(errkind.Config, "strgraph: paired libraries must be added before any unpaired library")
	}
	t.libraries = append(t.libraries, Library{
		FirstSeqNum:  firstSeqNum,
		InsertLength: insertLength,
		Stdev:        stdev,
		Paired:       paired,
	})
	return nil
}

// NumLibraries returns the number of registered libraries.
func (t *LibraryTable) NumLibraries() uint64 { return uint64(len(t.libraries)) }

// Library returns the libnum'th registered library.
func (t *LibraryTable) Library(libnum uint64) Library { return t.libraries[libnum] }

// Save writes the table as a flat sequence of fixed-width records, using
// the same putU64 wire helper as the graph checkpoint format.
func (t *LibraryTable) Save(w io.Writer) error {
	if err := putU64(w, uint64(len(t.libraries))); err != nil {
		return errkind.Wrap(errkind.IO, err, "strgraph: write library count")
	}
	for _, lib := range t.libraries {
		paired := uint64(0)
		if lib.Paired {
			paired = 1
		}
		for _, v := range [4]uint64{lib.FirstSeqNum, lib.InsertLength, lib.Stdev, paired} {
			if err := putU64(w, v); err != nil {
				return errkind.Wrap(errkind.IO, err, "strgraph: write library record")
			}
		}
	}
	return nil
}

// LoadLibraryTable reads a table written by Save.
func LoadLibraryTable(r io.Reader) (*LibraryTable, error) {
	n, err := readU64(r)
	if err != nil {
		return nil, errkind.Wrap(errkind.IO, err, "strgraph: read library count")
	}
	t := NewLibraryTable(n)
	for i := uint64(0); i < n; i++ {
		var vals [4]uint64
		for j := range vals {
			v, err := readU64(r)
			if err != nil {
				return nil, errkind.Wrap(errkind.Format, err, "strgraph: read library record")
			}
			vals[j] = v
		}
		if err := t.Add(vals[0], vals[1], vals[2], vals[3] == 1); err != nil {
			return nil, err
		}
	}
	return t, nil
}
