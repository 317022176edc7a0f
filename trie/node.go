package trie

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// childKind classifies the reference a node holds for one child slot.
type childKind int

const (
	childEmpty    childKind = iota // empty string: no child
	childHash                      // 32-byte hash reference
	childEmbedded                  // child node encoded inline
)

// splitListItems decodes the outer RLP list of a trie node and
// returns the raw encoding of each element. Element boundaries are
// preserved so embedded child nodes can be re-walked in place.
func splitListItems(buf []byte) ([][]byte, error) {
	content, rest, err := rlp.SplitList(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: trailing bytes after node", ErrMalformedNode)
	}
	var items [][]byte
	for len(content) > 0 {
		_, _, after, err := rlp.Split(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
		}
		items = append(items, content[:len(content)-len(after)])
		content = after
	}
	return items, nil
}

// classifyChild inspects one raw list element and reports how it
// references a child: empty, by 32-byte hash, or embedded inline.
// For hash references the decoded hash bytes are returned; for
// embedded children the raw element itself is the child encoding.
func classifyChild(raw []byte) (childKind, []byte, error) {
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	switch kind {
	case rlp.List:
		return childEmbedded, raw, nil
	case rlp.String, rlp.Byte:
		switch len(content) {
		case 0:
			return childEmpty, nil, nil
		case 32:
			return childHash, content, nil
		default:
			return 0, nil, fmt.Errorf("%w: child reference of %d bytes", ErrMalformedNode, len(content))
		}
	default:
		return 0, nil, ErrMalformedNode
	}
}

// splitValue decodes one raw list element as a byte-string value.
func splitValue(raw []byte) ([]byte, error) {
	content, rest, err := rlp.SplitString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: trailing bytes after value", ErrMalformedNode)
	}
	return content, nil
}
