package market

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
)

func init() {
	Register("sale_update", func() Operation { return &SaleUpdate{} })
	Register("sale_cancel", func() Operation { return &SaleCancel{} })
}

// SaleUpdate replaces the terms of a listing. Auction terms are frozen
// once a bid exists, and a listing cannot change kind: an auction stays
// an auction, a fixed-price sale stays fixed price.
type SaleUpdate struct {
	BaseOp
	SaleID  uint64        `json:"sale_id"`
	Payment asset.Asset   `json:"payment"`
	Price   amount.Amount `json:"price"`
	EndTime int64         `json:"end_time,omitempty"`
}

func (op *SaleUpdate) OpName() string { return "sale_update" }

func (op *SaleUpdate) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	if op.EndTime < 0 {
		return errors.New("end time must not be negative")
	}
	return nil
}

func (op *SaleUpdate) Apply(ctx *ApplyContext) Result {
	listing, err := readListing(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if listing == nil {
		return ResNoSale
	}
	if listing.Seller != ctx.Caller {
		return ResNotSeller
	}
	if op.Price.IsZero() {
		return ResZeroPrice
	}
	allowed, err := isAllowedPayment(ctx.View, op.Payment)
	if err != nil {
		return ResInternal
	}
	if !allowed {
		return ResNotAllowed
	}
	if (op.EndTime == 0) != (listing.EndTime == 0) {
		return ResInvalidTime
	}
	if listing.IsAuction() {
		bid, err := readBid(ctx.View, op.SaleID)
		if err != nil {
			return ResInternal
		}
		if bid != nil {
			return ResHasBid
		}
		if op.EndTime <= ctx.Now {
			return ResInvalidTime
		}
	}

	listing.Payment = op.Payment
	listing.Price = op.Price
	listing.EndTime = op.EndTime
	if err := updateListing(ctx.View, listing); err != nil {
		return ResInternal
	}

	ctx.Emit(Event{
		Type:       EventSaleUpdated,
		SaleID:     listing.ID,
		Seller:     listing.Seller,
		Collection: listing.Collection,
		Payment:    listing.Payment,
		Amount:     listing.Price,
		EndTime:    listing.EndTime,
	})
	return ResSuccess
}

// SaleCancel closes a listing and returns custody to the seller.
// Blocked for auctions once a bid exists: the bidder's funds are
// escrowed and only bid cancellation or settlement may release them.
type SaleCancel struct {
	BaseOp
	SaleID uint64 `json:"sale_id"`
}

func (op *SaleCancel) OpName() string { return "sale_cancel" }

func (op *SaleCancel) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	return nil
}

func (op *SaleCancel) Apply(ctx *ApplyContext) Result {
	listing, err := readListing(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if listing == nil {
		return ResNoSale
	}
	if listing.Seller != ctx.Caller {
		return ResNotSeller
	}
	if listing.IsAuction() {
		bid, err := readBid(ctx.View, op.SaleID)
		if err != nil {
			return ResInternal
		}
		if bid != nil {
			return ResHasBid
		}
	}

	if err := eraseListing(ctx.View, op.SaleID); err != nil {
		return ResInternal
	}
	if res := returnEscrowedTokens(ctx, listing); !res.OK() {
		return res
	}

	ctx.Emit(Event{
		Type:       EventSaleCancelled,
		SaleID:     listing.ID,
		Seller:     listing.Seller,
		Collection: listing.Collection,
		TokenIDs:   listing.TokenIDs,
	})
	return ResSuccess
}
