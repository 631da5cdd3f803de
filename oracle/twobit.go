package oracle

import "github.com/pkg/errors"

// asciiTo2bit maps an upper- or lower-case ACGT byte to its 2-bit code.
// Any other byte (ambiguity codes, newlines) maps to 0xff and is rejected by
// packSeq.
var asciiTo2bit [256]byte

func init() {
	for i := range asciiTo2bit {
		asciiTo2bit[i] = 0xff
	}
	asciiTo2bit['A'], asciiTo2bit['a'] = BaseA, BaseA
	asciiTo2bit['C'], asciiTo2bit['c'] = BaseC, BaseC
	asciiTo2bit['G'], asciiTo2bit['g'] = BaseG, BaseG
	asciiTo2bit['T'], asciiTo2bit['t'] = BaseT, BaseT
}

var bitToASCII = [4]byte{'A', 'C', 'G', 'T'}

// packSeq 2-bit packs ascii (an ACGT read, case-insensitive) four bases per
// byte, little-endian within the byte (base 0 in bits 0-1). It is the pure-Go
// packing scheme that the rest of this package, and package strgraph's
// traversal/spelling code, rely on for CharAt.
func packSeq(ascii []byte) ([]byte, error) {
	packed := make([]byte, (len(ascii)+3)/4)
	for i, c := range ascii {
		code := asciiTo2bit[c]
		if code == 0xff {
			return nil, errors.Errorf("non-ACGT byte %q at position %d", c, i)
		}
		packed[i/4] |= code << uint((i%4)*2)
	}
	return packed, nil
}

// unpackBase returns the 2-bit code stored at base offset pos in a packSeq
// result.
func unpackBase(packed []byte, pos uint64) Base {
	b := packed[pos/4]
	return (b >> uint((pos%4)*2)) & 3
}

// baseToASCII renders a 2-bit code as an upper-case ACGT byte.
func baseToASCII(b Base) byte {
	return bitToASCII[b&3]
}
