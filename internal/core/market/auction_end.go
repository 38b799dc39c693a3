package market

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

func init() {
	Register("auction_end", func() Operation { return &AuctionEnd{} })
	Register("auction_end_with_sig", func() Operation { return &AuctionEndWithSig{} })
}

// AuctionEnd finalizes an expired auction: the asset goes to the high
// bidder, the escrowed bid is split between seller and treasury, and
// both the listing and the bid are cleared. Callable by anyone once
// the deadline has passed.
type AuctionEnd struct {
	BaseOp
	SaleID uint64 `json:"sale_id"`
}

func (op *AuctionEnd) OpName() string { return "auction_end" }

func (op *AuctionEnd) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	return nil
}

func (op *AuctionEnd) Apply(ctx *ApplyContext) Result {
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
	if ctx.Now < listing.EndTime {
		return ResAuctionLive
	}
	bid, err := readBid(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if bid == nil {
		return ResNoBid
	}

	if err := eraseBid(ctx.View, op.SaleID); err != nil {
		return ResInternal
	}
	if err := eraseListing(ctx.View, op.SaleID); err != nil {
		return ResInternal
	}
	return settle(ctx, listing, bid.Bidder, EscrowAccount, bid.Amount, EventPurchased)
}

// AuctionEndWithSig settles an auction from a bidder's off-ledger
// authorization: the seller submits the bidder's signed commitment and
// the engine performs the same transfer, split and clear as AuctionEnd
// without any on-ledger bid. The nonce is consumed before funds move,
// so a failed settlement cannot be retried with the same signature and
// a successful one cannot replay.
type AuctionEndWithSig struct {
	BaseOp
	SaleID    uint64        `json:"sale_id"`
	Bidder    types.Address `json:"bidder"`
	Price     amount.Amount `json:"price"`
	Nonce     uint64        `json:"nonce"`
	Signature []byte        `json:"signature"`
}

func (op *AuctionEndWithSig) OpName() string { return "auction_end_with_sig" }

func (op *AuctionEndWithSig) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	if op.Bidder.IsZero() {
		return errors.New("bidder is required")
	}
	if len(op.Signature) != crypto.SignatureSize {
		return errors.New("signature must be 65 bytes")
	}
	return nil
}

func (op *AuctionEndWithSig) Apply(ctx *ApplyContext) Result {
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
	if listing.Seller != ctx.Caller {
		return ResNotSeller
	}
	if op.Price <= listing.Price {
		return ResBidTooLow
	}

	digest := ctx.Domain.BidDigest(op.Bidder, op.SaleID, uint64(op.Price), op.Nonce)
	signer, err := crypto.RecoverAddress(digest, op.Signature)
	if err != nil || signer != op.Bidder {
		return ResBadSignature
	}
	res, err := consumeNonce(ctx.View, op.Bidder, typeddata.BidContext(op.SaleID), op.Nonce)
	if err != nil {
		return ResInternal
	}
	if !res.OK() {
		return res
	}

	// A live on-ledger bid is superseded by the signed settlement and
	// refunded before the sale completes.
	bid, err := readBid(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if bid != nil {
		if err := eraseBid(ctx.View, op.SaleID); err != nil {
			return ResInternal
		}
		if err := ledger.Move(ctx.View, EscrowAccount, bid.Bidder, listing.Payment, bid.Amount); err != nil {
			return transferResult(err)
		}
	}

	if err := eraseListing(ctx.View, op.SaleID); err != nil {
		return ResInternal
	}
	return settle(ctx, listing, op.Bidder, op.Bidder, op.Price, EventPurchasedWithSignature)
}
