package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// AccountID computes the address of a public key as
// RIPEMD160(SHA256(publicKey)). The double hash with two different
// functions avoids length-extension attacks; RIPEMD160 is the only hash
// generally considered safe at 160 bits.
func AccountID(publicKey []byte) types.Address {
	sha := sha256.Sum256(publicKey)

	hasher := ripemd160.New()
	hasher.Write(sha[:])
	digest := hasher.Sum(nil)

	var addr types.Address
	copy(addr[:], digest)
	return addr
}
