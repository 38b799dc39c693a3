package market

import (
	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// EventType names an engine event.
type EventType string

const (
	EventSaleRequested           EventType = "SaleRequested"
	EventSaleUpdated             EventType = "SaleUpdated"
	EventSaleCancelled           EventType = "SaleCancelled"
	EventBid                     EventType = "Bid"
	EventBidCancelled            EventType = "BidCancelled"
	EventPurchased               EventType = "Purchased"
	EventPurchasedWithSignature  EventType = "PurchasedWithSignature"
	EventTreasuryUpdated         EventType = "TreasuryUpdated"
)

// Event is emitted on commit for every externally visible transition.
// Only the fields meaningful for the event type are set.
type Event struct {
	Type       EventType     `json:"type"`
	SaleID     uint64        `json:"sale_id,omitempty"`
	Seller     types.Address `json:"seller,omitzero"`
	Buyer      types.Address `json:"buyer,omitzero"`
	Bidder     types.Address `json:"bidder,omitzero"`
	Collection types.Address `json:"collection,omitzero"`
	TokenIDs   []uint64      `json:"token_ids,omitempty"`
	MintLeaves []types.Hash  `json:"mint_leaves,omitempty"`
	Payment    asset.Asset   `json:"payment,omitzero"`
	Amount     amount.Amount `json:"amount,omitempty"`
	Fee        amount.Amount `json:"fee,omitempty"`
	FeeBps     uint32        `json:"fee_bps,omitempty"`
	EndTime    int64         `json:"end_time,omitempty"`

	// Treasury is the primary fee target on TreasuryUpdated.
	Treasury types.Address `json:"treasury,omitzero"`
}
