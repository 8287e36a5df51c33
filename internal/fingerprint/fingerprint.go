// Package fingerprint computes content fingerprints for tracked artifacts.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the SHA-256 hex digest of content. The empty string hashes
// to a valid fingerprint, which is how artifact creation and deletion are
// represented in history entries.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
