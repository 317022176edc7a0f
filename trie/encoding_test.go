package trie

import (
	"bytes"
	"testing"
)

func TestHexCompact(t *testing.T) {
	tests := []struct {
		hex     []byte
		compact []byte
	}{
		{hex: []byte{}, compact: []byte{0x00}},
		{hex: []byte{16}, compact: []byte{0x20}},
		{hex: []byte{1, 2, 3, 4, 5}, compact: []byte{0x11, 0x23, 0x45}},
		{hex: []byte{0, 1, 2, 3, 4, 5}, compact: []byte{0x00, 0x01, 0x23, 0x45}},
		{hex: []byte{15, 1, 12, 11, 8, 16}, compact: []byte{0x3f, 0x1c, 0xb8}},
		{hex: []byte{0, 15, 1, 12, 11, 8, 16}, compact: []byte{0x20, 0x0f, 0x1c, 0xb8}},
	}
	for i, tt := range tests {
		if got := hexToCompact(tt.hex); !bytes.Equal(got, tt.compact) {
			t.Fatalf("case %d: hexToCompact = %x, want %x", i, got, tt.compact)
		}
		if got := compactToHex(tt.compact); !bytes.Equal(got, tt.hex) {
			t.Fatalf("case %d: compactToHex = %v, want %v", i, got, tt.hex)
		}
	}
}

func TestKeybytesToHex(t *testing.T) {
	got := keybytesToHex([]byte{0x12, 0xab})
	want := []byte{1, 2, 10, 11, 16}
	if !bytes.Equal(got, want) {
		t.Fatalf("keybytesToHex = %v, want %v", got, want)
	}
}

func TestPrefixLen(t *testing.T) {
	tests := []struct {
		a, b []byte
		want int
	}{
		{[]byte{1, 2, 3}, []byte{1, 2, 3}, 3},
		{[]byte{1, 2, 3}, []byte{1, 2}, 2},
		{[]byte{1, 2, 3}, []byte{2, 2, 3}, 0},
		{nil, []byte{1}, 0},
	}
	for i, tt := range tests {
		if got := prefixLen(tt.a, tt.b); got != tt.want {
			t.Fatalf("case %d: prefixLen = %d, want %d", i, got, tt.want)
		}
	}
}

func TestHasTerm(t *testing.T) {
	if hasTerm([]byte{1, 2}) {
		t.Fatal("hasTerm without terminator = true")
	}
	if !hasTerm([]byte{1, 2, 16}) {
		t.Fatal("hasTerm with terminator = false")
	}
}
