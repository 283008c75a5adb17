package hash

import (
	"crypto/sha256"
	"encoding/hex"
	stdhash "hash"

	"github.com/cespare/xxhash/v2"
)

// DigestSize is the length in characters of a hex-encoded Digest.
const DigestSize = sha256.Size * 2

// Digest returns the hex-encoded SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewDigest returns a streaming SHA-256 hasher; finish it with HexSum.
func NewDigest() stdhash.Hash {
	return sha256.New()
}

// HexSum returns the hex-encoded sum of h.
func HexSum(h stdhash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// Sum64 returns the xxhash of data. It is fast and stable across processes,
// but offers no protection against deliberate collisions.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Sum64String returns the xxhash of s without copying it.
func Sum64String(s string) uint64 {
	return xxhash.Sum64String(s)
}
