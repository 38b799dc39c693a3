package market

import (
	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/merkle"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// EscrowAccount holds assets and bid funds while a listing is open.
// It is a reserved address with no corresponding key.
var EscrowAccount = types.Address{'m', 'a', 'r', 'k', 'e', 't', 'd', ':', 'e', 's', 'c', 'r', 'o', 'w'}

// MintClaim authorizes lazy issuance of one asset that exists only in
// a published allow-set. The leaf binds the recipient (the seller's
// allocation), the allocation slot and the asset's attributes.
type MintClaim struct {
	Recipient types.Address `json:"recipient" codec:"recipient"`
	AssetID   uint64        `json:"asset_id" codec:"asset_id"`
	Category  uint8         `json:"category" codec:"category"`
	Tier      uint8         `json:"tier" codec:"tier"`
	Proof     []types.Hash  `json:"proof" codec:"proof"`
	Root      types.Hash    `json:"root" codec:"root"`
}

// LeafHash returns the allow-set leaf this claim spends.
func (c *MintClaim) LeafHash() types.Hash {
	return merkle.LeafHash(c.Recipient, c.AssetID, c.Category, c.Tier)
}

// Listing is a sale record. EndTime zero means fixed price; non-zero
// means timed auction with Price as the floor.
type Listing struct {
	ID         uint64        `codec:"id" json:"id"`
	Seller     types.Address `codec:"seller" json:"seller"`
	Collection types.Address `codec:"collection" json:"collection"`
	TokenIDs   []uint64      `codec:"token_ids" json:"token_ids"`
	Mints      []MintClaim   `codec:"mints,omitempty" json:"mints,omitempty"`
	Payment    asset.Asset   `codec:"payment" json:"payment"`
	Price      amount.Amount `codec:"price" json:"price"`
	EndTime    int64         `codec:"end_time" json:"end_time,omitempty"`
}

// IsAuction reports whether the listing settles by competitive bidding.
func (l *Listing) IsAuction() bool {
	return l.EndTime != 0
}

// BidState is the single live bid of an auction listing.
type BidState struct {
	SaleID uint64        `codec:"sale_id" json:"sale_id"`
	Bidder types.Address `codec:"bidder" json:"bidder"`
	Amount amount.Amount `codec:"amount" json:"amount"`
}

func readListing(v state.View, saleID uint64) (*Listing, error) {
	data, err := v.Read(keylet.Listing(saleID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var l Listing
	if err := state.DecodeRecord(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func insertListing(v state.View, l *Listing) error {
	data, err := state.EncodeRecord(l)
	if err != nil {
		return err
	}
	return v.Insert(keylet.Listing(l.ID), data)
}

func updateListing(v state.View, l *Listing) error {
	data, err := state.EncodeRecord(l)
	if err != nil {
		return err
	}
	return v.Update(keylet.Listing(l.ID), data)
}

func eraseListing(v state.View, saleID uint64) error {
	return v.Erase(keylet.Listing(saleID))
}

func readBid(v state.View, saleID uint64) (*BidState, error) {
	data, err := v.Read(keylet.Bid(saleID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var b BidState
	if err := state.DecodeRecord(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func insertBid(v state.View, b *BidState) error {
	data, err := state.EncodeRecord(b)
	if err != nil {
		return err
	}
	return v.Insert(keylet.Bid(b.SaleID), data)
}

func eraseBid(v state.View, saleID uint64) error {
	return v.Erase(keylet.Bid(saleID))
}

// counterRecord allocates sale IDs, starting at 1.
type counterRecord struct {
	Next uint64 `codec:"next"`
}

func nextSaleID(v state.View) (uint64, error) {
	k := keylet.SaleCounter()
	data, err := v.Read(k)
	if err != nil {
		return 0, err
	}
	counter := counterRecord{Next: 1}
	fresh := data == nil
	if !fresh {
		if err := state.DecodeRecord(data, &counter); err != nil {
			return 0, err
		}
	}
	id := counter.Next
	counter.Next++
	out, err := state.EncodeRecord(&counter)
	if err != nil {
		return 0, err
	}
	if fresh {
		err = v.Insert(k, out)
	} else {
		err = v.Update(k, out)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
