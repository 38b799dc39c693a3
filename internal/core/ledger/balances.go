package ledger

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// ErrInsufficientFunds is returned when a debit exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// balanceRecord holds one holder's balance in one payment asset.
type balanceRecord struct {
	Amount uint64 `codec:"amount"`
}

// Native balances are keyed under the zero token address.
func balanceKey(holder types.Address, a asset.Asset) keylet.Keylet {
	if a.IsNative() {
		return keylet.Balance(holder, types.ZeroAddress)
	}
	return keylet.Balance(holder, a.Token)
}

// Balance returns the holder's balance in the given payment asset.
// Absent records read as zero.
func Balance(v state.View, holder types.Address, a asset.Asset) (amount.Amount, error) {
	data, err := v.Read(balanceKey(holder, a))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	var rec balanceRecord
	if err := state.DecodeRecord(data, &rec); err != nil {
		return 0, err
	}
	return amount.Amount(rec.Amount), nil
}

func writeBalance(v state.View, k keylet.Keylet, amt amount.Amount, existed bool) error {
	data, err := state.EncodeRecord(&balanceRecord{Amount: uint64(amt)})
	if err != nil {
		return err
	}
	if existed {
		return v.Update(k, data)
	}
	return v.Insert(k, data)
}

// Credit adds funds to a holder's balance.
func Credit(v state.View, holder types.Address, a asset.Asset, amt amount.Amount) error {
	if amt.IsZero() {
		return nil
	}
	k := balanceKey(holder, a)
	data, err := v.Read(k)
	if err != nil {
		return err
	}
	var rec balanceRecord
	existed := data != nil
	if existed {
		if err := state.DecodeRecord(data, &rec); err != nil {
			return err
		}
	}
	sum, err := amount.Amount(rec.Amount).Add(amt)
	if err != nil {
		return err
	}
	return writeBalance(v, k, sum, existed)
}

// Debit removes funds from a holder's balance.
func Debit(v state.View, holder types.Address, a asset.Asset, amt amount.Amount) error {
	if amt.IsZero() {
		return nil
	}
	k := balanceKey(holder, a)
	data, err := v.Read(k)
	if err != nil {
		return err
	}
	if data == nil {
		return ErrInsufficientFunds
	}
	var rec balanceRecord
	if err := state.DecodeRecord(data, &rec); err != nil {
		return err
	}
	rest, err := amount.Amount(rec.Amount).Sub(amt)
	if err != nil {
		return ErrInsufficientFunds
	}
	return writeBalance(v, k, rest, true)
}

// Move transfers funds between two holders in one payment asset.
// A zero amount is a no-op.
func Move(v state.View, from, to types.Address, a asset.Asset, amt amount.Amount) error {
	if amt.IsZero() {
		return nil
	}
	if err := Debit(v, from, a, amt); err != nil {
		return err
	}
	return Credit(v, to, a, amt)
}
