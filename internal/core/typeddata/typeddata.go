// Package typeddata produces domain-separated digests for off-ledger
// trade authorizations. A digest is a pure function of (domain, message
// schema, field values); signing and transport live elsewhere. Each
// message kind hashes a type string first, so two schemas with the same
// field layout can never collide.
package typeddata

import (
	"encoding/binary"

	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

// Domain binds signatures to one engine deployment. Signatures made
// for a different name, version, chain or engine address never verify.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract types.Address
}

var (
	domainTypeHash = crypto.Sha512Half([]byte(
		"MarketDomain(string name,string version,uint64 chainId,address verifyingContract)"))

	bidTypeHash = crypto.Sha512Half([]byte(
		"BidAuthorization(address bidder,uint64 saleId,uint64 price,uint64 nonce)"))

	saleTypeHash = crypto.Sha512Half([]byte(
		"SaleAuthorization(address buyer,address collection,uint64 tokenId,address paymentToken,uint64 price,uint64 nonce)"))
)

// digestPrefix marks a byte string as a typed-data digest, preventing
// cross-protocol reuse of raw signed hashes.
var digestPrefix = []byte{0x19, 0x01}

// Separator returns the hash that commits to the domain record.
func (d Domain) Separator() types.Hash {
	buf := make([]byte, 0, 4*types.HashSize)
	buf = append(buf, domainTypeHash[:]...)
	name := crypto.Sha512Half([]byte(d.Name))
	buf = append(buf, name[:]...)
	version := crypto.Sha512Half([]byte(d.Version))
	buf = append(buf, version[:]...)
	buf = binary.BigEndian.AppendUint64(buf, d.ChainID)
	buf = append(buf, d.VerifyingContract[:]...)
	return crypto.Sha512Half(buf)
}

func (d Domain) digest(structHash types.Hash) types.Hash {
	buf := make([]byte, 0, 2+2*types.HashSize)
	buf = append(buf, digestPrefix...)
	sep := d.Separator()
	buf = append(buf, sep[:]...)
	buf = append(buf, structHash[:]...)
	return crypto.Sha512Half(buf)
}

// BidDigest is the digest a bidder signs to authorize settlement of an
// auction at the given price.
func (d Domain) BidDigest(bidder types.Address, saleID uint64, price, nonce uint64) types.Hash {
	buf := make([]byte, 0, types.HashSize+types.AddressSize+24)
	buf = append(buf, bidTypeHash[:]...)
	buf = append(buf, bidder[:]...)
	buf = binary.BigEndian.AppendUint64(buf, saleID)
	buf = binary.BigEndian.AppendUint64(buf, price)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return d.digest(crypto.Sha512Half(buf))
}

// SaleDigest is the digest a buyer signs to authorize a direct sale of
// one token at the given price, with no prior listing.
func (d Domain) SaleDigest(buyer, collection types.Address, tokenID uint64, payment asset.Asset, price, nonce uint64) types.Hash {
	paymentAddr := types.ZeroAddress
	if !payment.IsNative() {
		paymentAddr = payment.Token
	}
	buf := make([]byte, 0, types.HashSize+3*types.AddressSize+24)
	buf = append(buf, saleTypeHash[:]...)
	buf = append(buf, buyer[:]...)
	buf = append(buf, collection[:]...)
	buf = binary.BigEndian.AppendUint64(buf, tokenID)
	buf = append(buf, paymentAddr[:]...)
	buf = binary.BigEndian.AppendUint64(buf, price)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return d.digest(crypto.Sha512Half(buf))
}

// BidContext is the nonce-ledger context key for auction settlement
// authorizations over one sale.
func BidContext(saleID uint64) types.Hash {
	buf := make([]byte, 0, 11+8)
	buf = append(buf, []byte("market:bid:")...)
	buf = binary.BigEndian.AppendUint64(buf, saleID)
	return crypto.Sha512Half(buf)
}

// SaleContext is the nonce-ledger context key for direct-sale
// authorizations over one token.
func SaleContext(collection types.Address, tokenID uint64) types.Hash {
	buf := make([]byte, 0, 12+types.AddressSize+8)
	buf = append(buf, []byte("market:sale:")...)
	buf = append(buf, collection[:]...)
	buf = binary.BigEndian.AppendUint64(buf, tokenID)
	return crypto.Sha512Half(buf)
}
