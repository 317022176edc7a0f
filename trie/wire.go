package trie

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Proof wire format: a u16 node count followed by length-prefixed
// nodes in root-to-leaf order. All integers are little-endian.
//
//	[count u16] ( [len u16] [node bytes] )*

// EncodeProofNodes serializes proof nodes for transport.
func EncodeProofNodes(nodes [][]byte) ([]byte, error) {
	if len(nodes) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d nodes", ErrWireFormat, len(nodes))
	}
	size := 2
	for _, n := range nodes {
		if len(n) == 0 {
			return nil, fmt.Errorf("%w: empty node", ErrWireFormat)
		}
		if len(n) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: node of %d bytes", ErrWireFormat, len(n))
		}
		size += 2 + len(n)
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(nodes)))
	for _, n := range nodes {
		out = binary.LittleEndian.AppendUint16(out, uint16(len(n)))
		out = append(out, n...)
	}
	return out, nil
}

// DecodeProofNodes parses the wire form back into a node list. The
// input must be consumed exactly; trailing bytes are rejected.
func DecodeProofNodes(buf []byte) ([][]byte, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: short header", ErrWireFormat)
	}
	count := int(binary.LittleEndian.Uint16(buf))
	buf = buf[2:]
	nodes := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if len(buf) < 2 {
			return nil, fmt.Errorf("%w: short length prefix for node %d", ErrWireFormat, i)
		}
		n := int(binary.LittleEndian.Uint16(buf))
		buf = buf[2:]
		if n == 0 {
			return nil, fmt.Errorf("%w: empty node %d", ErrWireFormat, i)
		}
		if len(buf) < n {
			return nil, fmt.Errorf("%w: node %d truncated", ErrWireFormat, i)
		}
		node := make([]byte, n)
		copy(node, buf[:n])
		nodes = append(nodes, node)
		buf = buf[n:]
	}
	if len(buf) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrWireFormat, len(buf))
	}
	return nodes, nil
}
