package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// hashKey builds a key of the form prefix:graphHash:digest(parts...).
// The parts are joined with a separator that cannot appear in them, so
// ("a", "bc") and ("ab", "c") produce different keys.
func hashKey(prefix, graphHash string, parts ...string) string {
	d := xxhash.New()
	_, _ = d.WriteString(strings.Join(parts, "\x00"))
	return prefix + ":" + graphHash + ":" + hex.EncodeToString(d.Sum(nil))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
