package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes the SHA-256 hash of the input as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ArtifactKey builds the cache key for a rendered artifact: the hash of the
// harness source combined with the output format, so one source caches each
// format independently.
func ArtifactKey(source []byte, format string) string {
	return fmt.Sprintf("artifact:%s:%s", format, Hash(source))
}
