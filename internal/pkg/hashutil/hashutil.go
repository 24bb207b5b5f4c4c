package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash fingerprints document text for change detection. Case,
// surrounding whitespace and line-ending style never affect the digest.
func ContentHash(text string) string {
	normalized := strings.TrimSpace(text)
	normalized = strings.ToLower(normalized)
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
