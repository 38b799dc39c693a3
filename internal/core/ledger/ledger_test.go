package ledger

import (
	"errors"
	"testing"

	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

var (
	alice      = types.Address{1}
	bob        = types.Address{2}
	carol      = types.Address{3}
	collection = types.Address{0xc0}
)

func TestMintAssignsSequentialIDs(t *testing.T) {
	v := state.NewMemoryView()
	for want := uint64(1); want <= 3; want++ {
		id, err := Mint(v, collection, alice, 1, 2)
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		if id != want {
			t.Fatalf("token id = %d, want %d", id, want)
		}
	}
	owner, err := OwnerOf(v, collection, 2)
	if err != nil || owner != alice {
		t.Fatalf("OwnerOf = %v, %v", owner, err)
	}
}

func TestTransferToken(t *testing.T) {
	v := state.NewMemoryView()
	id, _ := Mint(v, collection, alice, 0, 0)

	if err := TransferToken(v, collection, id, bob, carol); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("transfer by non-owner: %v", err)
	}
	if err := TransferToken(v, collection, id, alice, bob); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	owner, _ := OwnerOf(v, collection, id)
	if owner != bob {
		t.Fatalf("owner = %v, want %v", owner, bob)
	}
}

func TestApprovalClearsOnTransfer(t *testing.T) {
	v := state.NewMemoryView()
	id, _ := Mint(v, collection, alice, 0, 0)

	if err := Approve(v, alice, carol, collection, id); err != nil {
		t.Fatalf("approve: %v", err)
	}
	ok, _ := IsApproved(v, carol, collection, id)
	if !ok {
		t.Fatal("carol not approved after approve")
	}
	if err := TransferToken(v, collection, id, alice, bob); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	ok, _ = IsApproved(v, carol, collection, id)
	if ok {
		t.Fatal("approval survived the transfer")
	}
}

func TestMoveConservesValue(t *testing.T) {
	v := state.NewMemoryView()
	native := asset.Native()

	if err := Credit(v, alice, native, 1000); err != nil {
		t.Fatal(err)
	}
	if err := Move(v, alice, bob, native, 400); err != nil {
		t.Fatalf("move: %v", err)
	}
	a, _ := Balance(v, alice, native)
	b, _ := Balance(v, bob, native)
	if a != 600 || b != 400 {
		t.Fatalf("balances = %d, %d", a, b)
	}
	if a+b != 1000 {
		t.Fatalf("value not conserved: %d", a+b)
	}
}

func TestMoveInsufficientFunds(t *testing.T) {
	v := state.NewMemoryView()
	native := asset.Native()
	if err := Credit(v, alice, native, 10); err != nil {
		t.Fatal(err)
	}
	if err := Move(v, alice, bob, native, 11); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	// Failed moves must not touch either side.
	a, _ := Balance(v, alice, native)
	b, _ := Balance(v, bob, native)
	if a != 10 || b != 0 {
		t.Fatalf("balances changed on failure: %d, %d", a, b)
	}
}

func TestMoveZeroIsNoop(t *testing.T) {
	v := state.NewMemoryView()
	if err := Move(v, alice, bob, asset.Native(), 0); err != nil {
		t.Fatalf("zero move: %v", err)
	}
}

func TestTokenBalancesAreSeparate(t *testing.T) {
	v := state.NewMemoryView()
	tok := asset.Token(types.Address{0xee})

	if err := Credit(v, alice, asset.Native(), 5); err != nil {
		t.Fatal(err)
	}
	if err := Credit(v, alice, tok, 7); err != nil {
		t.Fatal(err)
	}
	n, _ := Balance(v, alice, asset.Native())
	tk, _ := Balance(v, alice, tok)
	if n != 5 || tk != 7 {
		t.Fatalf("balances = %d, %d", n, tk)
	}
}
