// Binary checkpoint format (spec 4.5): a self-describing header (encoding,
// numReads, fixLen, minMatchLen, state, total edge slots, max len), the
// uncompressed vertex array, a SeaHash checksum over the uncompressed edge
// payload, then the Snappy-compressed edge payload.
package strgraph

import (
	"bufio"
	"encoding/binary"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/golang/snappy"

	"github.com/grailbio/strgraph/errkind"
	"github.com/grailbio/strgraph/oracle"
)

const checkpointMagic = "SGR1"

func putU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Save writes a binary checkpoint of the graph to w. Vertex and edge
// representations are written verbatim (through each encoding's exported
// accessors); reload requires the same Encoding.
func (g *Graph) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(checkpointMagic); err != nil {
		return errkind.Wrap(errkind.IO, err, "strgraph: write checkpoint magic")
	}
	header := []uint64{
		uint64(g.es.Encoding()),
		g.numReads,
		g.fixLen,
		g.minMatchLen,
		uint64(g.state),
		g.es.NumSlots(),
		g.es.impl.maxLen(),
	}
	for _, h := range header {
		if err := putU64(bw, h); err != nil {
			return errkind.Wrap(errkind.IO, err, "strgraph: write checkpoint header")
		}
	}

	// Vertex array: offsets, outdeg, mark (fixed width, uncompressed — small
	// relative to the edge array).
	n := g.vs.numVertices()
	for v := uint64(0); v <= n; v++ {
		if err := putU64(bw, g.vs.offset[v]); err != nil {
			return errkind.Wrap(errkind.IO, err, "strgraph: write offsets")
		}
	}
	for v := uint64(0); v < n; v++ {
		if err := putU64(bw, uint64(g.vs.outdeg[v])); err != nil {
			return errkind.Wrap(errkind.IO, err, "strgraph: write outdeg")
		}
		if err := bw.WriteByte(byte(g.vs.mark[v])); err != nil {
			return errkind.Wrap(errkind.IO, err, "strgraph: write vertex mark")
		}
	}
	// Edge array: dest, len, reduced, partner — serialized through the
	// public encoding API so any of the three representations round-trips,
	// then Snappy-block-compressed as one payload, checksummed with
	// SeaHash so a reload against the wrong representation/fixlen is
	// caught before it silently misreads bytes.
	total := g.es.NumSlots()
	raw := make([]byte, 0, total*24)
	for slot := uint64(0); slot < total; slot++ {
		var tmp [25]byte
		binary.LittleEndian.PutUint64(tmp[0:8], uint64(g.es.Dest(slot)))
		binary.LittleEndian.PutUint64(tmp[8:16], g.es.Len(slot))
		binary.LittleEndian.PutUint64(tmp[16:24], g.partner[slot])
		if g.es.Reduced(slot) {
			tmp[24] = 1
		}
		raw = append(raw, tmp[:]...)
	}
	checksum := seahash.Sum64(raw)
	if err := putU64(bw, checksum); err != nil {
		return errkind.Wrap(errkind.IO, err, "strgraph: write checksum")
	}
	compressed := snappy.Encode(nil, raw)
	if err := putU64(bw, uint64(len(compressed))); err != nil {
		return errkind.Wrap(errkind.IO, err, "strgraph: write compressed length")
	}
	if _, err := bw.Write(compressed); err != nil {
		return errkind.Wrap(errkind.IO, err, "strgraph: write edge payload")
	}
	return errkind.Wrap(errkind.IO, bw.Flush(), "strgraph: flush checkpoint")
}

// Load reads a checkpoint written by Save. numReads, fixLen and the encoding
// come from the checkpoint header; the ReadOracle isn't serialized, so a
// caller that spells contigs afterward attaches one with AttachOracle. The
// returned graph is in LOADED_FROM_FILE state.
func Load(r io.Reader) (*Graph, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errkind.Wrap(errkind.IO, err, "strgraph: read checkpoint magic")
	}
	if string(magic[:]) != checkpointMagic {
		return nil, errkind.New(errkind.Format, "strgraph: not a strgraph checkpoint")
	}
	fields := make([]uint64, 7)
	for i := range fields {
		v, err := readU64(r)
		if err != nil {
			return nil, errkind.Wrap(errkind.IO, err, "strgraph: read checkpoint header")
		}
		fields[i] = v
	}
	encoding := Encoding(fields[0])
	numReads := fields[1]
	fixLen := fields[2]
	minMatchLen := fields[3]
	st := state(fields[4])
	total := fields[5]
	maxLen := fields[6]

	numVertices := 2 * numReads
	vs := newVertexStore(numVertices)
	for v := uint64(0); v <= numVertices; v++ {
		off, err := readU64(r)
		if err != nil {
			return nil, errkind.Wrap(errkind.Format, err, "strgraph: read offsets")
		}
		vs.offset[v] = off
	}
	br := bufio.NewReader(r)
	for v := uint64(0); v < numVertices; v++ {
		od, err := readU64(br)
		if err != nil {
			return nil, errkind.Wrap(errkind.Format, err, "strgraph: read outdeg")
		}
		vs.outdeg[v] = uint32(od)
		m, err := br.ReadByte()
		if err != nil {
			return nil, errkind.Wrap(errkind.Format, err, "strgraph: read vertex mark")
		}
		vs.mark[v] = Mark(m)
	}

	checksum, err := readU64(br)
	if err != nil {
		return nil, errkind.Wrap(errkind.Format, err, "strgraph: read checksum")
	}
	compLen, err := readU64(br)
	if err != nil {
		return nil, errkind.Wrap(errkind.Format, err, "strgraph: read compressed length")
	}
	compressed := make([]byte, compLen)
	if _, err := io.ReadFull(br, compressed); err != nil {
		return nil, errkind.Wrap(errkind.Format, err, "strgraph: read edge payload")
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errkind.Wrap(errkind.Format, err, "strgraph: decompress edge payload")
	}
	if got := seahash.Sum64(raw); got != checksum {
		return nil, errkind.New(errkind.Config, "strgraph: checkpoint checksum mismatch (want %d got %d) — wrong encoding or build flags?", checksum, got)
	}
	if uint64(len(raw)) != total*25 {
		return nil, errkind.New(errkind.Format, "strgraph: edge payload size mismatch")
	}

	es, err := newEdgeStore(encoding, total, numVertices, maxLen)
	if err != nil {
		return nil, err
	}
	partner := make([]uint64, total)
	for slot := uint64(0); slot < total; slot++ {
		off := slot * 25
		es.InitSlot(slot)
		es.SetDest(slot, Vertex(binary.LittleEndian.Uint64(raw[off:off+8])))
		es.SetLen(slot, binary.LittleEndian.Uint64(raw[off+8:off+16]))
		partner[slot] = binary.LittleEndian.Uint64(raw[off+16 : off+24])
		if raw[off+24] == 1 {
			es.Reduce(slot)
		}
	}

	return &Graph{
		state:       st,
		vs:          vs,
		es:          es,
		partner:     partner,
		numReads:    numReads,
		fixLen:      fixLen,
		minMatchLen: minMatchLen,
	}, nil
}

// AttachOracle binds a ReadOracle to a graph loaded from a checkpoint
// (Load cannot know which oracle the caller intends to pair it with), so
// traversal/spelling can run against it.
func (g *Graph) AttachOracle(o oracle.ReadOracle) {
	g.oracle = o
}
