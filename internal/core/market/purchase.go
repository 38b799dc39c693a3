package market

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

func init() {
	Register("purchase", func() Operation { return &Purchase{} })
	Register("sell_with_sig", func() Operation { return &SellWithSig{} })
}

// Purchase buys a fixed-price listing at its listed price. The exact
// price is pulled from the buyer, split, and custody of every token
// in the listing moves to the buyer.
type Purchase struct {
	BaseOp
	SaleID uint64 `json:"sale_id"`
}

func (op *Purchase) OpName() string { return "purchase" }

func (op *Purchase) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.SaleID == 0 {
		return errors.New("sale id is required")
	}
	return nil
}

func (op *Purchase) Apply(ctx *ApplyContext) Result {
	listing, err := readListing(ctx.View, op.SaleID)
	if err != nil {
		return ResInternal
	}
	if listing == nil {
		return ResNoSale
	}
	if listing.IsAuction() {
		return ResNotFixedPrice
	}

	if err := eraseListing(ctx.View, op.SaleID); err != nil {
		return ResInternal
	}
	return settle(ctx, listing, ctx.Caller, ctx.Caller, listing.Price, EventPurchased)
}

// SellWithSig executes a one-shot trade with no prior listing: the
// seller supplies the asset at call time and the buyer's pre-signed
// commitment authorizes pulling the price. The nonce is scoped to
// (buyer, collection, token), consumed before any transfer.
type SellWithSig struct {
	BaseOp
	Buyer      types.Address `json:"buyer"`
	Collection types.Address `json:"collection"`
	TokenID    uint64        `json:"token_id"`
	Payment    asset.Asset   `json:"payment"`
	Price      amount.Amount `json:"price"`
	Nonce      uint64        `json:"nonce"`
	Signature  []byte        `json:"signature"`
}

func (op *SellWithSig) OpName() string { return "sell_with_sig" }

func (op *SellWithSig) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.Buyer.IsZero() {
		return errors.New("buyer is required")
	}
	if op.Collection.IsZero() {
		return errors.New("collection is required")
	}
	if len(op.Signature) != crypto.SignatureSize {
		return errors.New("signature must be 65 bytes")
	}
	return nil
}

func (op *SellWithSig) Apply(ctx *ApplyContext) Result {
	if op.Price.IsZero() {
		return ResZeroPrice
	}
	allowed, err := isAllowedCollection(ctx.View, op.Collection)
	if err != nil {
		return ResInternal
	}
	if !allowed {
		return ResNotAllowed
	}
	allowed, err = isAllowedPayment(ctx.View, op.Payment)
	if err != nil {
		return ResInternal
	}
	if !allowed {
		return ResNotAllowed
	}
	approved, err := ledger.IsApproved(ctx.View, ctx.Caller, op.Collection, op.TokenID)
	if err != nil || !approved {
		return ResNotOwner
	}

	digest := ctx.Domain.SaleDigest(op.Buyer, op.Collection, op.TokenID, op.Payment, uint64(op.Price), op.Nonce)
	signer, err := crypto.RecoverAddress(digest, op.Signature)
	if err != nil || signer != op.Buyer {
		return ResBadSignature
	}
	res, err := consumeNonce(ctx.View, op.Buyer, typeddata.SaleContext(op.Collection, op.TokenID), op.Nonce)
	if err != nil {
		return ResInternal
	}
	if !res.OK() {
		return res
	}

	split, res := payout(ctx.View, op.Buyer, ctx.Caller, op.Payment, op.Price)
	if !res.OK() {
		return res
	}
	owner, err := ledger.OwnerOf(ctx.View, op.Collection, op.TokenID)
	if err != nil {
		return ResNotOwner
	}
	if err := ledger.TransferToken(ctx.View, op.Collection, op.TokenID, owner, op.Buyer); err != nil {
		return ResTransferFailed
	}

	ctx.Emit(Event{
		Type:       EventPurchasedWithSignature,
		Seller:     ctx.Caller,
		Buyer:      op.Buyer,
		Collection: op.Collection,
		TokenIDs:   []uint64{op.TokenID},
		Payment:    op.Payment,
		Amount:     op.Price,
		Fee:        split.TotalFee(),
	})
	return ResSuccess
}
