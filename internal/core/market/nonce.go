package market

import (
	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// nonceRecord is a per-(signer, context) counter. A signed message is
// valid only when it carries the current counter value; consuming it
// increments the counter so the same message can never apply twice.
type nonceRecord struct {
	Next uint64 `codec:"next"`
}

// peekNonce returns the counter a signer must use next for a context.
func peekNonce(v state.View, signer types.Address, context types.Hash) (uint64, error) {
	data, err := v.Read(keylet.Nonce(signer, context))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	var rec nonceRecord
	if err := state.DecodeRecord(data, &rec); err != nil {
		return 0, err
	}
	return rec.Next, nil
}

// consumeNonce accepts the given counter value iff it is current, then
// advances the counter. Runs before any value transfer so a replayed
// or stale authorization fails without moving anything.
func consumeNonce(v state.View, signer types.Address, context types.Hash, given uint64) (Result, error) {
	k := keylet.Nonce(signer, context)
	data, err := v.Read(k)
	if err != nil {
		return ResInternal, err
	}
	var rec nonceRecord
	fresh := data == nil
	if !fresh {
		if err := state.DecodeRecord(data, &rec); err != nil {
			return ResInternal, err
		}
	}
	if given != rec.Next {
		return ResBadNonce, nil
	}
	rec.Next++
	out, err := state.EncodeRecord(&rec)
	if err != nil {
		return ResInternal, err
	}
	if fresh {
		err = v.Insert(k, out)
	} else {
		err = v.Update(k, out)
	}
	if err != nil {
		return ResInternal, err
	}
	return ResSuccess, nil
}
