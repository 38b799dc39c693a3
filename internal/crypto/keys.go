package crypto

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// SignatureSize is the size of a compact recoverable signature:
// one recovery byte followed by r and s.
const SignatureSize = 65

// ErrBadSignature is returned when a signature cannot be decoded or
// does not recover a public key.
var ErrBadSignature = errors.New("invalid signature")

// GenerateKey creates a new secp256k1 private key.
func GenerateKey() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// AddressOf returns the account address of a private key's public key.
// The compressed public key encoding is hashed.
func AddressOf(priv *secp256k1.PrivateKey) types.Address {
	return AccountID(priv.PubKey().SerializeCompressed())
}

// SignDigest produces a 65-byte compact recoverable signature over a
// 32-byte digest.
func SignDigest(priv *secp256k1.PrivateKey, digest types.Hash) []byte {
	return ecdsa.SignCompact(priv, digest[:], true)
}

// RecoverAddress recovers the signer's account address from a compact
// recoverable signature over digest.
func RecoverAddress(digest types.Hash, signature []byte) (types.Address, error) {
	if len(signature) != SignatureSize {
		return types.ZeroAddress, ErrBadSignature
	}
	pub, compressed, err := ecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return types.ZeroAddress, ErrBadSignature
	}
	if !compressed {
		return types.ZeroAddress, ErrBadSignature
	}
	return AccountID(pub.SerializeCompressed()), nil
}
