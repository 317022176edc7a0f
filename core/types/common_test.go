package types

import (
	"strings"
	"testing"
)

func TestBytesToHash(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03}
	h := BytesToHash(b)
	if h[HashLength-1] != 0x03 || h[HashLength-2] != 0x02 || h[HashLength-3] != 0x01 {
		t.Fatalf("BytesToHash failed: got %x", h)
	}
	// Leading bytes should be zero.
	for i := 0; i < HashLength-3; i++ {
		if h[i] != 0 {
			t.Fatalf("BytesToHash did not left-pad: byte %d is %x", i, h[i])
		}
	}
}

func TestBytesToHash_LongerThan32(t *testing.T) {
	b := make([]byte, 40)
	for i := range b {
		b[i] = byte(i)
	}
	h := BytesToHash(b)
	// Should take the rightmost 32 bytes.
	for i := 0; i < HashLength; i++ {
		if h[i] != byte(i+8) {
			t.Fatalf("BytesToHash longer input: byte %d got %x, want %x", i, h[i], byte(i+8))
		}
	}
}

func TestHexToHash(t *testing.T) {
	h := HexToHash("0xdead")
	if h[HashLength-1] != 0xad || h[HashLength-2] != 0xde {
		t.Fatalf("HexToHash failed: got %x", h)
	}
}

func TestHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Fatal("zero hash should be zero")
	}
	h[0] = 1
	if h.IsZero() {
		t.Fatal("non-zero hash should not be zero")
	}
}

func TestHashHex(t *testing.T) {
	h := HexToHash("0xff")
	s := h.Hex()
	if !strings.HasPrefix(s, "0x") {
		t.Fatal("Hex should start with 0x")
	}
	if len(s) != 2+2*HashLength {
		t.Fatalf("Hex length = %d, want %d", len(s), 2+2*HashLength)
	}
}

func TestBytesToAddress(t *testing.T) {
	a := BytesToAddress([]byte{0xaa, 0xbb})
	if a[AddressLength-1] != 0xbb || a[AddressLength-2] != 0xaa {
		t.Fatalf("BytesToAddress failed: got %x", a)
	}
	if a.IsZero() {
		t.Fatal("non-zero address should not be zero")
	}
}

func TestHexToAddress(t *testing.T) {
	a := HexToAddress("0x00000000000000000000000000000000000000aa")
	if a[AddressLength-1] != 0xaa {
		t.Fatalf("HexToAddress failed: got %x", a)
	}
	if got, want := a.Hex(), "0x00000000000000000000000000000000000000aa"; got != want {
		t.Errorf("Hex() = %s, want %s", got, want)
	}
}

func TestPubkeyBase58RoundTrip(t *testing.T) {
	var p Pubkey
	for i := range p {
		p[i] = byte(i * 7)
	}
	s := p.Base58()
	back, err := Base58ToPubkey(s)
	if err != nil {
		t.Fatalf("Base58ToPubkey(%q) returned error: %v", s, err)
	}
	if back != p {
		t.Errorf("round trip mismatch: got %x, want %x", back, p)
	}
}

func TestBase58ToPubkey_BadInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"invalid characters", "0OIl"},
		{"wrong length", "3mJr7AoUXx2Wqd"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Base58ToPubkey(tt.in); err == nil {
				t.Errorf("Base58ToPubkey(%q) succeeded, want error", tt.in)
			}
		})
	}
}

func TestPubkeySetBytes(t *testing.T) {
	var p Pubkey
	p.SetBytes([]byte{0x01})
	if p[PubkeyLength-1] != 0x01 {
		t.Fatalf("SetBytes did not right-align: got %x", p)
	}
	if !BytesToPubkey(nil).IsZero() {
		t.Error("BytesToPubkey(nil) should be zero")
	}
}
