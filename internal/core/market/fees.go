package market

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
	"github.com/pixelmesh/gomarketd/internal/core/merkle"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Split is the value breakdown of one completed sale.
// SellerAmount + PrimaryFee + SecondaryFee == gross, always.
type Split struct {
	SellerAmount amount.Amount
	PrimaryFee   amount.Amount
	SecondaryFee amount.Amount
}

// TotalFee returns the fee portion of the gross price.
func (s Split) TotalFee() amount.Amount {
	return s.PrimaryFee + s.SecondaryFee
}

// ComputeSplit divides a gross price between seller and treasury
// targets. The secondary share is carved out of the fee, so rounding
// dust always stays with the primary target and value conservation
// holds exactly.
func ComputeSplit(t *Treasury, gross amount.Amount) Split {
	fee := amount.MulBps(gross, t.PrimaryBps)
	split := Split{SellerAmount: gross - fee, PrimaryFee: fee}
	if t.UseSecondary {
		split.SecondaryFee = amount.MulBps(fee, t.SecondaryBps)
		split.PrimaryFee = fee - split.SecondaryFee
	}
	return split
}

// transferResult maps a ledger failure onto the transfer category.
func transferResult(err error) Result {
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		return ResInsufficientFunds
	}
	return ResTransferFailed
}

// payout moves the gross price from payer to the seller and treasury
// targets per the configured split. Zero shares skip their transfer.
// Returns the applied split for event reporting.
func payout(v state.View, payer, seller types.Address, a asset.Asset, gross amount.Amount) (Split, Result) {
	treasury, err := readTreasury(v)
	if err != nil {
		return Split{}, ResInternal
	}
	split := ComputeSplit(treasury, gross)
	if err := ledger.Move(v, payer, seller, a, split.SellerAmount); err != nil {
		return split, transferResult(err)
	}
	if err := ledger.Move(v, payer, treasury.Primary, a, split.PrimaryFee); err != nil {
		return split, transferResult(err)
	}
	if err := ledger.Move(v, payer, treasury.Secondary, a, split.SecondaryFee); err != nil {
		return split, transferResult(err)
	}
	return split, ResSuccess
}

// checkClaim validates a mint claim without consuming it: the root
// must be registered, the leaf unspent and the proof sound.
func checkClaim(v state.View, claim *MintClaim) (Result, error) {
	registered, err := rootRegistered(v, claim.Root)
	if err != nil {
		return ResInternal, err
	}
	if !registered {
		return ResUnknownRoot, nil
	}
	leaf := claim.LeafHash()
	consumed, err := leafConsumed(v, leaf)
	if err != nil {
		return ResInternal, err
	}
	if consumed {
		return ResLeafConsumed, nil
	}
	if !merkle.Verify(leaf, claim.Proof, claim.Root) {
		return ResBadProof, nil
	}
	return ResSuccess, nil
}

// verifyAndMint re-validates a claim at settlement time, marks its
// leaf spent and issues the asset to the recipient. Consumption
// precedes issuance so a failing mint cannot leave a reusable leaf.
func verifyAndMint(v state.View, collection types.Address, claim *MintClaim, to types.Address) (uint64, Result) {
	if res, err := checkClaim(v, claim); err != nil || !res.OK() {
		if err != nil {
			return 0, ResInternal
		}
		return 0, res
	}
	if err := consumeLeaf(v, claim.LeafHash()); err != nil {
		return 0, ResInternal
	}
	tokenID, err := ledger.Mint(v, collection, to, claim.Category, claim.Tier)
	if err != nil {
		return 0, ResTransferFailed
	}
	return tokenID, ResSuccess
}

// returnEscrowedTokens hands escrowed custody back to the seller when
// a listing is cancelled. Pending mint claims were never consumed and
// need no return.
func returnEscrowedTokens(ctx *ApplyContext, l *Listing) Result {
	for _, tokenID := range l.TokenIDs {
		if err := ledger.TransferToken(ctx.View, l.Collection, tokenID, EscrowAccount, l.Seller); err != nil {
			return ResTransferFailed
		}
	}
	return ResSuccess
}

// settle completes a sale whose listing record has already been
// removed: pending claims are materialized into escrow, the payment is
// split from payer, and every token moves from escrow to the buyer.
func settle(ctx *ApplyContext, l *Listing, buyer, payer types.Address, gross amount.Amount, eventType EventType) Result {
	tokenIDs := append([]uint64(nil), l.TokenIDs...)
	for i := range l.Mints {
		tokenID, res := verifyAndMint(ctx.View, l.Collection, &l.Mints[i], EscrowAccount)
		if !res.OK() {
			return res
		}
		tokenIDs = append(tokenIDs, tokenID)
		ctx.meta.MintedTokenIDs = append(ctx.meta.MintedTokenIDs, tokenID)
	}

	split, res := payout(ctx.View, payer, l.Seller, l.Payment, gross)
	if !res.OK() {
		return res
	}

	for _, tokenID := range tokenIDs {
		if err := ledger.TransferToken(ctx.View, l.Collection, tokenID, EscrowAccount, buyer); err != nil {
			return ResTransferFailed
		}
	}

	ctx.Emit(Event{
		Type:       eventType,
		SaleID:     l.ID,
		Seller:     l.Seller,
		Buyer:      buyer,
		Collection: l.Collection,
		TokenIDs:   tokenIDs,
		Payment:    l.Payment,
		Amount:     gross,
		Fee:        split.TotalFee(),
	})
	return ResSuccess
}
