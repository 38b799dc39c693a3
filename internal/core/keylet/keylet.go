// Package keylet derives the state keys of every record the engine
// owns. A keylet pairs a record type with a 256-bit key computed from
// the fields that identify the record, so unrelated records can never
// collide even if their identifying fields do.
package keylet

import (
	"encoding/binary"

	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

// Type identifies the kind of record behind a key.
type Type uint8

const (
	TypeListing Type = iota + 1
	TypeBid
	TypeToken
	TypeCollection
	TypeBalance
	TypeNonce
	TypeMerkleRoot
	TypeConsumedLeaf
	TypeTreasury
	TypeAllowedCollection
	TypeAllowedPayment
	TypeSaleCounter
)

// Keylet locates one record in the state store.
type Keylet struct {
	Type Type
	Key  types.Hash
}

func derive(t Type, fields ...[]byte) Keylet {
	buf := []byte{byte(t)}
	for _, f := range fields {
		buf = append(buf, f...)
	}
	return Keylet{Type: t, Key: crypto.Sha512Half(buf)}
}

func u64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Listing returns the key of a sale record.
func Listing(saleID uint64) Keylet {
	return derive(TypeListing, u64(saleID))
}

// Bid returns the key of the live bid record of an auction sale.
func Bid(saleID uint64) Keylet {
	return derive(TypeBid, u64(saleID))
}

// Token returns the key of an asset-ownership record.
func Token(collection types.Address, tokenID uint64) Keylet {
	return derive(TypeToken, collection[:], u64(tokenID))
}

// Collection returns the key of a collection's metadata record.
func Collection(collection types.Address) Keylet {
	return derive(TypeCollection, collection[:])
}

// Balance returns the key of a holder's balance in one payment asset.
// The native asset uses the zero token address; fungible balances are
// keyed by their token address.
func Balance(holder types.Address, token types.Address) Keylet {
	return derive(TypeBalance, holder[:], token[:])
}

// Nonce returns the key of a signer's counter for one signing context.
func Nonce(signer types.Address, context types.Hash) Keylet {
	return derive(TypeNonce, signer[:], context[:])
}

// MerkleRoot returns the key of a registered allow-set root.
func MerkleRoot(root types.Hash) Keylet {
	return derive(TypeMerkleRoot, root[:])
}

// ConsumedLeaf returns the key marking an issuance leaf as spent.
func ConsumedLeaf(leaf types.Hash) Keylet {
	return derive(TypeConsumedLeaf, leaf[:])
}

// Treasury returns the key of the singleton treasury configuration.
func Treasury() Keylet {
	return derive(TypeTreasury)
}

// AllowedCollection returns the key of a collection allow-list entry.
func AllowedCollection(collection types.Address) Keylet {
	return derive(TypeAllowedCollection, collection[:])
}

// AllowedPayment returns the key of a payment-asset allow-list entry.
func AllowedPayment(token types.Address) Keylet {
	return derive(TypeAllowedPayment, token[:])
}

// SaleCounter returns the key of the singleton sale-ID counter.
func SaleCounter() Keylet {
	return derive(TypeSaleCounter)
}
