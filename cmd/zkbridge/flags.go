package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/zkbridge/zkbridge/core/types"
)

// parseHexBytes decodes a hex string, tolerating a 0x prefix and
// surrounding whitespace. Unlike types.HexToHash it rejects malformed
// input instead of silently truncating it.
func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		return nil, fmt.Errorf("odd-length hex %q", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// parseHash decodes an exactly 32-byte hex value.
func parseHash(s string) (types.Hash, error) {
	b, err := parseHexBytes(s)
	if err != nil {
		return types.Hash{}, err
	}
	if len(b) != types.HashLength {
		return types.Hash{}, fmt.Errorf("want %d bytes, got %d", types.HashLength, len(b))
	}
	return types.BytesToHash(b), nil
}

// readHexFile reads a file holding hex text and decodes it.
func readHexFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := parseHexBytes(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
