package market

import (
	"errors"
	"fmt"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

func init() {
	Register("set_treasury", func() Operation { return &SetTreasury{} })
	Register("set_allow_list", func() Operation { return &SetAllowList{} })
	Register("set_merkle_root", func() Operation { return &SetMerkleRoot{} })
}

// SetTreasury replaces the fee configuration. Admin only. Listings made
// under the old configuration settle under the new one.
type SetTreasury struct {
	BaseOp
	Primary      types.Address `json:"primary"`
	PrimaryBps   uint32        `json:"primary_bps"`
	Secondary    types.Address `json:"secondary,omitzero"`
	SecondaryBps uint32        `json:"secondary_bps,omitempty"`
	UseSecondary bool          `json:"use_secondary,omitempty"`
}

func (op *SetTreasury) OpName() string { return "set_treasury" }

func (op *SetTreasury) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.Primary.IsZero() {
		return errors.New("primary treasury is required")
	}
	if op.UseSecondary && op.Secondary.IsZero() {
		return errors.New("secondary treasury is required")
	}
	return nil
}

func (op *SetTreasury) Apply(ctx *ApplyContext) Result {
	if ctx.Caller != ctx.Admin {
		return ResNotAdmin
	}
	if op.PrimaryBps > amount.FeeDenominator {
		return ResFeeOverflow
	}
	if op.UseSecondary && op.SecondaryBps > amount.FeeDenominator {
		return ResFeeOverflow
	}

	t := &Treasury{
		Primary:      op.Primary,
		PrimaryBps:   op.PrimaryBps,
		Secondary:    op.Secondary,
		SecondaryBps: op.SecondaryBps,
		UseSecondary: op.UseSecondary,
	}
	if err := writeTreasury(ctx.View, t); err != nil {
		return ResInternal
	}

	ctx.Emit(Event{
		Type:     EventTreasuryUpdated,
		Treasury: op.Primary,
		FeeBps:   op.PrimaryBps,
	})
	return ResSuccess
}

// Allow-list target kinds.
const (
	AllowCollection = "collection"
	AllowPayment    = "payment"
)

// SetAllowList adds or removes a collection or payment token from the
// corresponding allow-list. Admin only. The native payment asset is
// addressed by the zero target.
type SetAllowList struct {
	BaseOp
	Kind    string        `json:"kind"`
	Target  types.Address `json:"target,omitzero"`
	Allowed bool          `json:"allowed"`
}

func (op *SetAllowList) OpName() string { return "set_allow_list" }

func (op *SetAllowList) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	switch op.Kind {
	case AllowCollection:
		if op.Target.IsZero() {
			return errors.New("collection target is required")
		}
	case AllowPayment:
	default:
		return fmt.Errorf("unknown allow-list kind %q", op.Kind)
	}
	return nil
}

func (op *SetAllowList) Apply(ctx *ApplyContext) Result {
	if ctx.Caller != ctx.Admin {
		return ResNotAdmin
	}

	var k keylet.Keylet
	switch op.Kind {
	case AllowCollection:
		k = keylet.AllowedCollection(op.Target)
	case AllowPayment:
		k = keylet.AllowedPayment(op.Target)
	default:
		return ResMalformed
	}
	if err := setAllowed(ctx.View, k, op.Allowed); err != nil {
		return ResInternal
	}
	return ResSuccess
}

// SetMerkleRoot registers or revokes a mint allow-set root. Admin only.
// Registration is idempotent; revoking a root does not unspend leaves
// already consumed under it.
type SetMerkleRoot struct {
	BaseOp
	Root  types.Hash `json:"root"`
	Valid bool       `json:"valid"`
}

func (op *SetMerkleRoot) OpName() string { return "set_merkle_root" }

func (op *SetMerkleRoot) Validate() error {
	if err := op.validateBase(); err != nil {
		return err
	}
	if op.Root == (types.Hash{}) {
		return errors.New("root is required")
	}
	return nil
}

func (op *SetMerkleRoot) Apply(ctx *ApplyContext) Result {
	if ctx.Caller != ctx.Admin {
		return ResNotAdmin
	}
	if err := setRoot(ctx.View, op.Root, op.Valid); err != nil {
		return ResInternal
	}
	return ResSuccess
}
