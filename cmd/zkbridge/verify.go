package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/zkbridge/zkbridge/groth16"
	"github.com/zkbridge/zkbridge/trie"
)

// loadVerifyingKey reads a verifying key from a JSON file and checks
// that its points are on-curve before handing it to a caller.
func loadVerifyingKey(path string) (*groth16.VerifyingKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vk groth16.VerifyingKey
	if err := json.Unmarshal(data, &vk); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := vk.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &vk, nil
}

// cmdVerifyProof checks a standalone Groth16 proof blob against a
// verifying key and a packed public-input stream.
func cmdVerifyProof(args []string) int {
	fs := flag.NewFlagSet("zkbridge verify-proof", flag.ContinueOnError)
	vkPath := fs.String("vk", "", "verifying key JSON file")
	proofPath := fs.String("proof", "", "proof blob file (256 raw bytes)")
	inputsPath := fs.String("inputs", "", "packed public inputs file (hex text)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *vkPath == "" || *proofPath == "" || *inputsPath == "" {
		fmt.Fprintln(os.Stderr, "zkbridge verify-proof: -vk, -proof and -inputs are required")
		fs.Usage()
		return 2
	}

	vk, err := loadVerifyingKey(*vkPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-proof: %v\n", err)
		return 1
	}
	blob, err := os.ReadFile(*proofPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-proof: %v\n", err)
		return 1
	}
	raw, err := readHexFile(*inputsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-proof: inputs: %v\n", err)
		return 1
	}

	ok, err := groth16.Verify(vk, blob, groth16.PackInputs(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-proof: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Println("proof rejected")
		return 1
	}
	fmt.Printf("proof valid (%d public inputs, vk %s)\n", vk.NumInputs(), vk.Fingerprint())
	return 0
}

// cmdVerifyTrie replays a serialized Merkle-Patricia proof against a
// root and checks that the key resolves to the expected value.
func cmdVerifyTrie(args []string) int {
	fs := flag.NewFlagSet("zkbridge verify-trie", flag.ContinueOnError)
	rootHex := fs.String("root", "", "trie root (32-byte hex)")
	keyHex := fs.String("key", "", "trie key (hex)")
	valueHex := fs.String("value", "", "expected value (hex)")
	proofPath := fs.String("proof", "", "serialized proof file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *rootHex == "" || *keyHex == "" || *valueHex == "" || *proofPath == "" {
		fmt.Fprintln(os.Stderr, "zkbridge verify-trie: -root, -key, -value and -proof are required")
		fs.Usage()
		return 2
	}

	root, err := parseHash(*rootHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-trie: root: %v\n", err)
		return 1
	}
	key, err := parseHexBytes(*keyHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-trie: key: %v\n", err)
		return 1
	}
	value, err := parseHexBytes(*valueHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-trie: value: %v\n", err)
		return 1
	}
	blob, err := os.ReadFile(*proofPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-trie: %v\n", err)
		return 1
	}
	nodes, err := trie.DecodeProofNodes(blob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-trie: %v\n", err)
		return 1
	}

	if err := trie.VerifyValue(root, key, value, nodes); err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge verify-trie: %v\n", err)
		return 1
	}
	fmt.Printf("proof valid (%d nodes)\n", len(nodes))
	return 0
}

// cmdFingerprintVK prints the canonical fingerprint of a verifying
// key, for pinning the key a deployment trusts.
func cmdFingerprintVK(args []string) int {
	fs := flag.NewFlagSet("zkbridge fingerprint-vk", flag.ContinueOnError)
	vkPath := fs.String("vk", "", "verifying key JSON file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *vkPath == "" {
		fmt.Fprintln(os.Stderr, "zkbridge fingerprint-vk: -vk is required")
		fs.Usage()
		return 2
	}
	vk, err := loadVerifyingKey(*vkPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge fingerprint-vk: %v\n", err)
		return 1
	}
	fmt.Println(vk.Fingerprint().Hex())
	return 0
}
