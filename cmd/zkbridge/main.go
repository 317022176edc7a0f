// Command zkbridge is the operator tool for the zkbridge settlement
// core. It verifies proofs offline and runs the built-in end-to-end
// scenario without touching any chain.
//
// Usage:
//
//	zkbridge <command> [flags]
//
// Commands:
//
//	verify-proof     Check a Groth16 proof against a verifying key
//	verify-trie      Check a Merkle-Patricia proof against a root
//	fingerprint-vk   Print the fingerprint of a verifying key
//	selfcheck        Run the end-to-end settlement scenario in memory
//	version          Print version and exit
//
// Exit codes: 0 on success, 1 on a failed check or runtime error, 2 on
// bad usage.
package main

import (
	"fmt"
	"io"
	"os"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "verify-proof":
		return cmdVerifyProof(rest)
	case "verify-trie":
		return cmdVerifyTrie(rest)
	case "fingerprint-vk":
		return cmdFingerprintVK(rest)
	case "selfcheck":
		return cmdSelfcheck(rest)
	case "version", "--version":
		fmt.Printf("zkbridge %s (commit %s)\n", version, commit)
		return 0
	case "help", "--help", "-h":
		usage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "zkbridge: unknown command %q\n", cmd)
		usage(os.Stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: zkbridge <command> [flags]

Commands:
  verify-proof     check a Groth16 proof against a verifying key
  verify-trie      check a Merkle-Patricia proof against a root
  fingerprint-vk   print the fingerprint of a verifying key
  selfcheck        run the end-to-end settlement scenario in memory
  version          print version and exit

Run "zkbridge <command> -h" for the flags of a command.
`)
}
