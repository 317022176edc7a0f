package groth16

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

var (
	errNotOnCurve = errors.New("point not on curve")
	errSubGroup   = errors.New("point not in subgroup")
	errCoordinate = errors.New("coordinate out of field range")
)

// DecodeProof parses a 256-byte proof blob laid out as
// A (64) || B (128) || C (64). Coordinates are 32-byte big-endian
// field elements; G2 coordinates carry the imaginary part first.
// All-zero segments decode as the point at infinity; anything else
// must be on the curve and in the correct subgroup.
func DecodeProof(blob []byte) (*Proof, error) {
	if len(blob) != ProofSize {
		return nil, fmt.Errorf("%w: got %d", ErrProofSize, len(blob))
	}
	var p Proof
	var err error
	if p.A, err = decodeG1(blob[0:g1Size]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidA, err)
	}
	if p.B, err = decodeG2(blob[g1Size : g1Size+g2Size]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidB, err)
	}
	if p.C, err = decodeG1(blob[g1Size+g2Size:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidC, err)
	}
	return &p, nil
}

// EncodeProof serializes a proof into the 256-byte blob layout.
func EncodeProof(p *Proof) []byte {
	out := make([]byte, ProofSize)
	encodeG1(out[0:g1Size], &p.A)
	encodeG2(out[g1Size:g1Size+g2Size], &p.B)
	encodeG1(out[g1Size+g2Size:], &p.C)
	return out
}

// PackInputs splits a packed public-input byte stream into 32-byte
// big-endian words, zero-padding the final word, and reduces each word
// into the BN254 scalar field. Callers that care about exact byte
// values (not their reductions) must compare the raw bytes separately.
func PackInputs(data []byte) []fr.Element {
	n := (len(data) + WordSize - 1) / WordSize
	out := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		var word [WordSize]byte
		copy(word[:], data[i*WordSize:])
		out[i].SetBytes(word[:])
	}
	return out
}

func decodeG1(data []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if allZero(data) {
		return p, nil
	}
	if err := p.X.SetBytesCanonical(data[:WordSize]); err != nil {
		return p, errCoordinate
	}
	if err := p.Y.SetBytesCanonical(data[WordSize:]); err != nil {
		return p, errCoordinate
	}
	if !p.IsOnCurve() {
		return p, errNotOnCurve
	}
	if !p.IsInSubGroup() {
		return p, errSubGroup
	}
	return p, nil
}

func decodeG2(data []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	if allZero(data) {
		return p, nil
	}
	if err := p.X.A1.SetBytesCanonical(data[0:32]); err != nil {
		return p, errCoordinate
	}
	if err := p.X.A0.SetBytesCanonical(data[32:64]); err != nil {
		return p, errCoordinate
	}
	if err := p.Y.A1.SetBytesCanonical(data[64:96]); err != nil {
		return p, errCoordinate
	}
	if err := p.Y.A0.SetBytesCanonical(data[96:128]); err != nil {
		return p, errCoordinate
	}
	if !p.IsOnCurve() {
		return p, errNotOnCurve
	}
	if !p.IsInSubGroup() {
		return p, errSubGroup
	}
	return p, nil
}

func encodeG1(dst []byte, p *bn254.G1Affine) {
	if p.IsInfinity() {
		return
	}
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(dst[0:32], x[:])
	copy(dst[32:64], y[:])
}

func encodeG2(dst []byte, p *bn254.G2Affine) {
	if p.IsInfinity() {
		return
	}
	xi := p.X.A1.Bytes()
	xr := p.X.A0.Bytes()
	yi := p.Y.A1.Bytes()
	yr := p.Y.A0.Bytes()
	copy(dst[0:32], xi[:])
	copy(dst[32:64], xr[:])
	copy(dst[64:96], yi[:])
	copy(dst[96:128], yr[:])
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// vkJSON is the on-disk verifying key layout.
type vkJSON struct {
	Protocol string   `json:"protocol"`
	Curve    string   `json:"curve"`
	Alpha    string   `json:"alpha"`
	Beta     string   `json:"beta"`
	Gamma    string   `json:"gamma"`
	Delta    string   `json:"delta"`
	IC       []string `json:"ic"`
}

// MarshalJSON encodes the key with hex-encoded uncompressed points.
func (vk *VerifyingKey) MarshalJSON() ([]byte, error) {
	out := vkJSON{
		Protocol: "groth16",
		Curve:    "bn254",
		Alpha:    hexG1(&vk.Alpha),
		Beta:     hexG2(&vk.Beta),
		Gamma:    hexG2(&vk.Gamma),
		Delta:    hexG2(&vk.Delta),
		IC:       make([]string, len(vk.IC)),
	}
	for i := range vk.IC {
		out.IC[i] = hexG1(&vk.IC[i])
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates a verifying key. Every point
// must be on-curve and in-subgroup; the protocol and curve fields must
// match this verifier.
func (vk *VerifyingKey) UnmarshalJSON(data []byte) error {
	var in vkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("groth16: parse verifying key: %w", err)
	}
	if in.Protocol != "groth16" {
		return fmt.Errorf("%w: protocol %q", ErrInvalidVKPoint, in.Protocol)
	}
	if in.Curve != "bn254" {
		return fmt.Errorf("%w: curve %q", ErrInvalidVKPoint, in.Curve)
	}
	var err error
	if vk.Alpha, err = parseHexG1(in.Alpha); err != nil {
		return fmt.Errorf("%w: alpha: %v", ErrInvalidVKPoint, err)
	}
	if vk.Beta, err = parseHexG2(in.Beta); err != nil {
		return fmt.Errorf("%w: beta: %v", ErrInvalidVKPoint, err)
	}
	if vk.Gamma, err = parseHexG2(in.Gamma); err != nil {
		return fmt.Errorf("%w: gamma: %v", ErrInvalidVKPoint, err)
	}
	if vk.Delta, err = parseHexG2(in.Delta); err != nil {
		return fmt.Errorf("%w: delta: %v", ErrInvalidVKPoint, err)
	}
	vk.IC = make([]bn254.G1Affine, len(in.IC))
	for i, s := range in.IC {
		if vk.IC[i], err = parseHexG1(s); err != nil {
			return fmt.Errorf("%w: ic[%d]: %v", ErrInvalidVKPoint, i, err)
		}
	}
	return nil
}

// Fingerprint returns the SHA-256 hash of the key's canonical binary
// encoding. Operators compare fingerprints to confirm two deployments
// verify against the same circuit.
func (vk *VerifyingKey) Fingerprint() types.Hash {
	buf := make([]byte, 0, g1Size+3*g2Size+len(vk.IC)*g1Size)
	var seg [g2Size]byte
	encodeG1(seg[:g1Size], &vk.Alpha)
	buf = append(buf, seg[:g1Size]...)
	for _, p := range []*bn254.G2Affine{&vk.Beta, &vk.Gamma, &vk.Delta} {
		seg = [g2Size]byte{}
		encodeG2(seg[:], p)
		buf = append(buf, seg[:]...)
	}
	for i := range vk.IC {
		seg = [g2Size]byte{}
		encodeG1(seg[:g1Size], &vk.IC[i])
		buf = append(buf, seg[:g1Size]...)
	}
	return crypto.Sha256Hash(buf)
}

func hexG1(p *bn254.G1Affine) string {
	var buf [g1Size]byte
	encodeG1(buf[:], p)
	return "0x" + hex.EncodeToString(buf[:])
}

func hexG2(p *bn254.G2Affine) string {
	var buf [g2Size]byte
	encodeG2(buf[:], p)
	return "0x" + hex.EncodeToString(buf[:])
}

func parseHexG1(s string) (bn254.G1Affine, error) {
	raw, err := parseHex(s, g1Size)
	if err != nil {
		return bn254.G1Affine{}, err
	}
	return decodeG1(raw)
}

func parseHexG2(s string) (bn254.G2Affine, error) {
	raw, err := parseHex(s, g2Size)
	if err != nil {
		return bn254.G2Affine{}, err
	}
	return decodeG2(raw)
}

func parseHex(s string, size int) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != size {
		return nil, fmt.Errorf("got %d bytes, want %d", len(raw), size)
	}
	return raw, nil
}
