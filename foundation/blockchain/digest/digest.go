// Package digest provides the hashing used for blocks and merkle trees. Every
// digest is a 256-bit value rendered as lowercase hex.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
)

// Strategy constructs the hash function used to produce a digest.
type Strategy func() hash.Hash

// SHA256 is the default strategy.
var SHA256 Strategy = sha256.New

// Blake3 produces 256-bit BLAKE3 digests.
var Blake3 Strategy = func() hash.Hash {
	return blake3.New()
}

// Lookup returns the strategy registered under the specified name.
func Lookup(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "sha256":
		return SHA256, nil
	case "blake3":
		return Blake3, nil
	}

	return nil, fmt.Errorf("unknown hash strategy %q", name)
}

// =============================================================================

// Hash returns the SHA-256 digest of the string as lowercase hex.
func Hash(s string) string {
	return Sum(SHA256, s)
}

// Sum returns the digest of the string as lowercase hex using the strategy.
func Sum(strategy Strategy, s string) string {
	return hex.EncodeToString(Bytes(strategy, s))
}

// Bytes returns the raw digest of the string using the strategy.
func Bytes(strategy Strategy, s string) []byte {
	if strategy == nil {
		strategy = SHA256
	}

	h := strategy()
	h.Write([]byte(s))

	return h.Sum(nil)
}
