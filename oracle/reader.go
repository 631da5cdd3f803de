package oracle

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const bufferInitSize = 64 * 1024 * 1024

// ReadFasta loads every sequence in a FASTA stream, in file order, returning
// the sequences for NewInMemory. Sequence names are discarded: the string
// graph only deals in read numbers (spec §3 "Read number (R)"), so keeping
// per-read names is the CLI's job, not the oracle's.
//
// Grounded on encoding/fasta.newEagerUnindexed's line-scanning loop.
func ReadFasta(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var reads []string
	var seq strings.Builder
	started := false
	flush := func() {
		if started {
			reads = append(reads, seq.String())
			seq.Reset()
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			started = true
		} else {
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "oracle: couldn't read FASTA data")
	}
	flush()
	return reads, nil
}

// ReadFastq loads every sequence in a 4-line-per-record FASTQ stream. Quality
// strings are discarded; the string graph has no notion of base quality.
func ReadFastq(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var reads []string
	lineNum := 0
	for scanner.Scan() {
		line := scanner.Text()
		switch lineNum % 4 {
		case 1:
			reads = append(reads, line)
		case 0, 2, 3:
			// header, '+' separator, quality: ignored.
		}
		lineNum++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "oracle: couldn't read FASTQ data")
	}
	if lineNum%4 != 0 {
		return nil, errors.Errorf("oracle: truncated FASTQ record (got %d trailing lines)", lineNum%4)
	}
	return reads, nil
}
