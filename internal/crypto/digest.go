package crypto

import (
	"crypto/sha512"

	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Sha512Half returns the first 32 bytes of a SHA-512 hash of msg.
func Sha512Half(msg []byte) types.Hash {
	h := sha512.Sum512(msg)
	var result types.Hash
	copy(result[:], h[:32])
	return result
}
