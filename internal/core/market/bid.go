package market

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
)

func init() {
	Register("bid", func() Operation { return &Bid{} })
	Register("bid_cancel", func() Operation { return &BidCancel{} })
}

// Bid escrows funds against an auction listing. A new bid must
// strictly exceed both the floor price and the current high bid; the
// superseded bidder is refunded in the same apply, so the escrowed
// balance for a listing always equals exactly the live bid.
type Bid struct {
	BaseOp
	SaleID uint64        `json:"sale_id"`
	Amount amount.Amount `json:"amount"`
}

func (op *Bid) OpName() string { return "bid" }

func (op *Bid) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	if op.Amount.IsZero() {
		return errors.New("bid amount is required")
	}
	return nil
}

func (op *Bid) Apply(ctx *ApplyContext) Result {
	listing, err := readListing(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if listing == nil {
		return ResNoSale
	}
	if !listing.IsAuction() {
		return ResNotAuction
	}
	if ctx.Now >= listing.EndTime {
		return ResAuctionEnded
	}
	if op.Amount <= listing.Price {
		return ResBidTooLow
	}

	prior, err := readBid(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if prior != nil {
		if op.Amount <= prior.Amount {
			return ResBidTooLow
		}
		if err := eraseBid(ctx.View, op.SaleID); err != nil {
			return ResInternal
		}
		if err := ledger.Move(ctx.View, EscrowAccount, prior.Bidder, listing.Payment, prior.Amount); err != nil {
			return transferResult(err)
		}
	}

	if err := ledger.Move(ctx.View, ctx.Caller, EscrowAccount, listing.Payment, op.Amount); err != nil {
		return transferResult(err)
	}
	if err := insertBid(ctx.View, &BidState{SaleID: op.SaleID, Bidder: ctx.Caller, Amount: op.Amount}); err != nil {
		return ResInternal
	}

	ctx.Emit(Event{
		Type:       EventBid,
		SaleID:     op.SaleID,
		Bidder:     ctx.Caller,
		Collection: listing.Collection,
		Payment:    listing.Payment,
		Amount:     op.Amount,
	})
	return ResSuccess
}

// BidCancel withdraws the live bid and refunds it in full. The listing
// stays open.
type BidCancel struct {
	BaseOp
	SaleID uint64 `json:"sale_id"`
}

func (op *BidCancel) OpName() string { return "bid_cancel" }

func (op *BidCancel) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	return nil
}

func (op *BidCancel) Apply(ctx *ApplyContext) Result {
	bid, err := readBid(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if bid == nil {
		return ResNoBid
	}
	if bid.Bidder != ctx.Caller {
		return ResNotBidder
	}
	listing, err := readListing(ctx.View, op.SaleID)
	if err != nil || listing == nil {
		return ResInternal
	}

	if err := eraseBid(ctx.View, op.SaleID); err != nil {
		return ResInternal
	}
	if err := ledger.Move(ctx.View, EscrowAccount, bid.Bidder, listing.Payment, bid.Amount); err != nil {
		return transferResult(err)
	}

	ctx.Emit(Event{
		Type:       EventBidCancelled,
		SaleID:     op.SaleID,
		Bidder:     bid.Bidder,
		Collection: listing.Collection,
		Payment:    listing.Payment,
		Amount:     bid.Amount,
	})
	return ResSuccess
}
