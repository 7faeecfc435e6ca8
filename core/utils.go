package core

import "crypto/sha256"

// GetHash calculates the SHA-256 hash of data
func GetHash(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}
