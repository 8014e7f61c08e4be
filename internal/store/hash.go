package store

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// SpecHash returns the SHA-256 hex digest of the NFC-normalized spec
// text. Normalizing first keeps the hash stable across visually
// identical specs with different Unicode compositions.
func SpecHash(text string) string {
	sum := sha256.Sum256([]byte(norm.NFC.String(text)))
	return hex.EncodeToString(sum[:])
}
