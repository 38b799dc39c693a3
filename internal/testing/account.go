package testing

import (
	"crypto/sha512"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

// Account is a test account with a deterministic keypair. The same name
// always produces the same account, making tests reproducible.
type Account struct {
	Name    string
	Address types.Address

	priv *secp256k1.PrivateKey
}

// NewAccount derives a test account from a name.
func NewAccount(name string) *Account {
	hash := sha512.Sum512([]byte("gomarketd:test:" + name))
	priv := secp256k1.PrivKeyFromBytes(hash[:32])
	return &Account{
		Name:    name,
		Address: crypto.AddressOf(priv),
		priv:    priv,
	}
}

// Sign produces a compact recoverable signature over a digest.
func (a *Account) Sign(digest types.Hash) []byte {
	return crypto.SignDigest(a.priv, digest)
}
