package jumpkit

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-msgpack/codec"
)

// A Snapshot is a read-only diagnostic view of a LoadTable, for external
// monitoring and experiment tooling. It carries enough to recompute the
// figures of interest (load variance, saturated-server fraction, capacity
// bound) without touching the live table.
type Snapshot struct {
	// Generation of the roster the snapshot was taken against.
	Generation uint64
	// Servers in the roster.
	Servers int
	// Slack is the configured capacity slack.
	Slack float64
	// Total number of keys placed and not yet released.
	Total int64
	// Loads holds the per-server key counts, indexed by server.
	Loads []int64
	// Capacity is the admission bound at snapshot time.
	Capacity int64
	// Saturated is the number of servers at or above Capacity.
	Saturated int
}

// magicHeader is added at the start of every encoded snapshot.
const magicHeader uint16 = 0x4a4b

// snapshotVersion identifies the encoding of the snapshot body.
const snapshotVersion uint8 = 1

// EncodeSnapshot encodes a Snapshot into a stable binary form that can be
// written to disk or shipped to external tooling.
//
// Msgpack is used for encoding the snapshot body.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	buf := bytes.NewBuffer(nil)

	// Write magic header and version
	binary.Write(buf, binary.BigEndian, magicHeader)
	buf.WriteByte(snapshotVersion)

	var handle codec.MsgpackHandle
	enc := codec.NewEncoder(buf, &handle)
	err := enc.Encode(s)
	return buf.Bytes(), err
}

// DecodeSnapshot decodes a buffer produced by EncodeSnapshot. An error is
// returned if the buffer is truncated, has the wrong magic header, or uses
// an unrecognized version.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var s Snapshot

	if len(raw) < 3 {
		return s, fmt.Errorf("payload too small for snapshot")
	}

	magic := binary.BigEndian.Uint16(raw[0:2])
	if magic != magicHeader {
		return s, fmt.Errorf("invalid magic header %x", magic)
	}
	if raw[2] != snapshotVersion {
		return s, fmt.Errorf("unsupported snapshot version %d", raw[2])
	}

	var handle codec.MsgpackHandle
	dec := codec.NewDecoder(bytes.NewReader(raw[3:]), &handle)
	err := dec.Decode(&s)
	return s, err
}
