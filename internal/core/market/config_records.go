package market

import (
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Treasury is the fee configuration. PrimaryBps is a fraction of the
// gross price; SecondaryBps, when enabled, is a fraction of the fee,
// not of the gross.
type Treasury struct {
	Primary      types.Address `codec:"primary" json:"primary"`
	PrimaryBps   uint32        `codec:"primary_bps" json:"primary_bps"`
	Secondary    types.Address `codec:"secondary" json:"secondary,omitzero"`
	SecondaryBps uint32        `codec:"secondary_bps" json:"secondary_bps,omitempty"`
	UseSecondary bool          `codec:"use_secondary" json:"use_secondary,omitempty"`
}

// readTreasury returns the configured treasury, or a zero-fee default
// when none has been set.
func readTreasury(v state.View) (*Treasury, error) {
	data, err := v.Read(keylet.Treasury())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &Treasury{}, nil
	}
	var t Treasury
	if err := state.DecodeRecord(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func writeTreasury(v state.View, t *Treasury) error {
	data, err := state.EncodeRecord(t)
	if err != nil {
		return err
	}
	k := keylet.Treasury()
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return v.Update(k, data)
	}
	return v.Insert(k, data)
}

// Allow-list entries are presence records: existing means allowed.
var allowMarker = []byte{1}

func isAllowedCollection(v state.View, collection types.Address) (bool, error) {
	return v.Exists(keylet.AllowedCollection(collection))
}

// isAllowedPayment checks the payment allow-list; the native asset is
// listed under the zero token address.
func isAllowedPayment(v state.View, a asset.Asset) (bool, error) {
	addr := types.ZeroAddress
	if !a.IsNative() {
		addr = a.Token
	}
	return v.Exists(keylet.AllowedPayment(addr))
}

func setAllowed(v state.View, k keylet.Keylet, allowed bool) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	switch {
	case allowed && !exists:
		return v.Insert(k, allowMarker)
	case !allowed && exists:
		return v.Erase(k)
	}
	return nil
}

// Merkle roots accumulate: several may be valid at once so allow-sets
// can be published incrementally.
func rootRegistered(v state.View, root types.Hash) (bool, error) {
	return v.Exists(keylet.MerkleRoot(root))
}

func setRoot(v state.View, root types.Hash, valid bool) error {
	return setAllowed(v, keylet.MerkleRoot(root), valid)
}

// Leaf consumption is global: once spent, a leaf is rejected under
// every registered root.
func leafConsumed(v state.View, leaf types.Hash) (bool, error) {
	return v.Exists(keylet.ConsumedLeaf(leaf))
}

func consumeLeaf(v state.View, leaf types.Hash) error {
	return v.Insert(keylet.ConsumedLeaf(leaf), allowMarker)
}
