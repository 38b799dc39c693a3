package market

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

func init() {
	Register("sale_request", func() Operation { return &SaleRequest{} })
}

// SaleRequest creates a listing: custody of every named token moves
// into escrow and the sale becomes active. A zero EndTime makes a
// fixed-price listing; otherwise Price is the auction floor and
// EndTime the deadline. Mints name allow-set assets that will be
// materialized at settlement.
type SaleRequest struct {
	BaseOp
	Collection types.Address `json:"collection"`
	TokenIDs   []uint64      `json:"token_ids,omitempty"`
	Mints      []MintClaim   `json:"mints,omitempty"`
	Payment    asset.Asset   `json:"payment"`
	Price      amount.Amount `json:"price"`
	EndTime    int64         `json:"end_time,omitempty"`
}

func (op *SaleRequest) OpName() string { return "sale_request" }

func (op *SaleRequest) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.Collection.IsZero() {
		return errors.New("collection is required")
	}
	if op.EndTime < 0 {
		return errors.New("end time must not be negative")
	}
	seen := make(map[uint64]struct{}, len(op.TokenIDs))
	for _, id := range op.TokenIDs {
		if _, dup := seen[id]; dup {
			return errors.New("duplicate token id")
		}
		seen[id] = struct{}{}
	}
	for i := range op.Mints {
		if op.Mints[i].Recipient.IsZero() {
			return errors.New("mint claim recipient is required")
		}
		if op.Mints[i].Root.IsZero() {
			return errors.New("mint claim root is required")
		}
	}
	return nil
}

func (op *SaleRequest) Apply(ctx *ApplyContext) Result {
	if op.Price.IsZero() {
		return ResZeroPrice
	}
	if len(op.TokenIDs)+len(op.Mints) == 0 {
		return ResEmptyTokenSet
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
	if op.EndTime != 0 && op.EndTime <= ctx.Now {
		return ResInvalidTime
	}

	// Claims are checked up front so a seller learns about a bad proof
	// at listing time, and checked again before issuance at settlement.
	for i := range op.Mints {
		if op.Mints[i].Recipient != ctx.Caller {
			return ResNotOwner
		}
		res, err := checkClaim(ctx.View, &op.Mints[i])
		if err != nil {
			return ResInternal
		}
		if !res.OK() {
			return res
		}
	}

	for _, tokenID := range op.TokenIDs {
		approved, err := ledger.IsApproved(ctx.View, ctx.Caller, op.Collection, tokenID)
		if err != nil || !approved {
			return ResNotOwner
		}
		owner, err := ledger.OwnerOf(ctx.View, op.Collection, tokenID)
		if err != nil {
			return ResNotOwner
		}
		if err := ledger.TransferToken(ctx.View, op.Collection, tokenID, owner, EscrowAccount); err != nil {
			return ResTransferFailed
		}
	}

	saleID, err := nextSaleID(ctx.View)
	if err != nil {
		return ResInternal
	}
	listing := &Listing{
		ID:         saleID,
		Seller:     ctx.Caller,
		Collection: op.Collection,
		TokenIDs:   append([]uint64(nil), op.TokenIDs...),
		Mints:      append([]MintClaim(nil), op.Mints...),
		Payment:    op.Payment,
		Price:      op.Price,
		EndTime:    op.EndTime,
	}
	if err := insertListing(ctx.View, listing); err != nil {
		return ResInternal
	}

	var leaves []types.Hash
	for i := range listing.Mints {
		leaves = append(leaves, listing.Mints[i].LeafHash())
	}

	ctx.meta.SaleID = saleID
	ctx.Emit(Event{
		Type:       EventSaleRequested,
		SaleID:     saleID,
		Seller:     listing.Seller,
		Collection: listing.Collection,
		TokenIDs:   listing.TokenIDs,
		MintLeaves: leaves,
		Payment:    listing.Payment,
		Amount:     listing.Price,
		EndTime:    listing.EndTime,
	})
	return ResSuccess
}
