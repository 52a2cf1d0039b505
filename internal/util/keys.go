package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// CompactKey returns key unchanged when it fits within max bytes; otherwise a
// fixed-width digest form ("#" + first 16 bytes of SHA-256, hex). Page-key
// descriptors may serialize to arbitrarily long canonical strings; storage
// backends expect bounded keys.
func CompactKey(key string, max int) string {
	if max <= 0 || len(key) <= max {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return "#" + hex.EncodeToString(sum[:16])
}
