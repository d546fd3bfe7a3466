package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// ContentHash returns the hex SHA-256 digest of data. Proof documents are
// stored content-addressed under this digest, and the digest is the only
// thing the engine ever persists about them.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ParseInt64 parses a string to int64 with a fallback default value
func ParseInt64(s string, defaultVal int64) int64 {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return defaultVal
	}
	return val
}
