// Package ledger implements the custody and payment collaborators of
// the marketplace engine. Both are backed by the same record store the
// engine runs on, so a discarded apply table rolls back asset and fund
// movements together with the engine's own state.
package ledger

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

var (
	ErrNoToken     = errors.New("token does not exist")
	ErrNotOwner    = errors.New("account does not own token")
	ErrTokenExists = errors.New("token already exists")
)

// tokenRecord is the ownership record of one unique asset.
type tokenRecord struct {
	Owner    types.Address `codec:"owner"`
	Approved types.Address `codec:"approved"`
	Category uint8         `codec:"category"`
	Tier     uint8         `codec:"tier"`
}

// collectionRecord tracks per-collection issuance state.
type collectionRecord struct {
	NextTokenID uint64 `codec:"next_token_id"`
}

func readToken(v state.View, collection types.Address, tokenID uint64) (*tokenRecord, error) {
	data, err := v.Read(keylet.Token(collection, tokenID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoToken
	}
	var rec tokenRecord
	if err := state.DecodeRecord(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// OwnerOf returns the owner of a token.
func OwnerOf(v state.View, collection types.Address, tokenID uint64) (types.Address, error) {
	rec, err := readToken(v, collection, tokenID)
	if err != nil {
		return types.ZeroAddress, err
	}
	return rec.Owner, nil
}

// IsApproved reports whether operator may move the token: either the
// owner itself or the account the owner approved.
func IsApproved(v state.View, operator, collection types.Address, tokenID uint64) (bool, error) {
	rec, err := readToken(v, collection, tokenID)
	if err != nil {
		return false, err
	}
	return rec.Owner == operator || rec.Approved == operator, nil
}

// Approve lets owner designate an operator for one token. Passing the
// zero address clears the approval.
func Approve(v state.View, owner, operator, collection types.Address, tokenID uint64) error {
	rec, err := readToken(v, collection, tokenID)
	if err != nil {
		return err
	}
	if rec.Owner != owner {
		return ErrNotOwner
	}
	rec.Approved = operator
	data, err := state.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return v.Update(keylet.Token(collection, tokenID), data)
}

// TransferToken moves custody of a token from its current owner.
// Any approval is cleared by the transfer.
func TransferToken(v state.View, collection types.Address, tokenID uint64, from, to types.Address) error {
	rec, err := readToken(v, collection, tokenID)
	if err != nil {
		return err
	}
	if rec.Owner != from {
		return ErrNotOwner
	}
	rec.Owner = to
	rec.Approved = types.ZeroAddress
	data, err := state.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return v.Update(keylet.Token(collection, tokenID), data)
}

// Mint issues a new token in a collection and returns its ID. IDs are
// allocated sequentially starting at 1.
func Mint(v state.View, collection, to types.Address, category, tier uint8) (uint64, error) {
	collKey := keylet.Collection(collection)
	var coll collectionRecord
	data, err := v.Read(collKey)
	if err != nil {
		return 0, err
	}
	fresh := data == nil
	if !fresh {
		if err := state.DecodeRecord(data, &coll); err != nil {
			return 0, err
		}
	} else {
		coll.NextTokenID = 1
	}

	tokenID := coll.NextTokenID
	coll.NextTokenID++

	collData, err := state.EncodeRecord(&coll)
	if err != nil {
		return 0, err
	}
	if fresh {
		err = v.Insert(collKey, collData)
	} else {
		err = v.Update(collKey, collData)
	}
	if err != nil {
		return 0, err
	}

	tokData, err := state.EncodeRecord(&tokenRecord{Owner: to, Category: category, Tier: tier})
	if err != nil {
		return 0, err
	}
	if err := v.Insert(keylet.Token(collection, tokenID), tokData); err != nil {
		return 0, err
	}
	return tokenID, nil
}
