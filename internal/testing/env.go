// Package testing provides the marketplace test environment: a market
// engine over an in-memory store, deterministic accounts, a manual
// clock, and helpers for the setup every scenario needs.
package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
	"github.com/pixelmesh/gomarketd/internal/core/market"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// TestEnv manages a test engine for operation testing.
type TestEnv struct {
	T      *testing.T
	Engine *market.Engine
	Clock  *ManualClock
	Admin  *Account

	view     *state.MemoryView
	accounts map[string]*Account
	events   []market.Event
}

// NewTestEnv creates an environment with a fresh engine, an admin
// account and a manual clock.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	clock := NewManualClock()
	admin := NewAccount("admin")
	view := state.NewMemoryView()

	engine := market.New(view, market.Config{
		Admin: admin.Address,
		Domain: typeddata.Domain{
			Name:    "gomarketd-test",
			Version: "1",
			ChainID: 7245,
		},
	}, market.WithClock(clock.Now))

	env := &TestEnv{
		T:        t,
		Engine:   engine,
		Clock:    clock,
		Admin:    admin,
		view:     view,
		accounts: map[string]*Account{"admin": admin},
	}
	engine.Subscribe(func(ev market.Event) {
		env.events = append(env.events, ev)
	})
	return env
}

// Account returns the named test account, creating it on first use.
func (e *TestEnv) Account(name string) *Account {
	if acc, ok := e.accounts[name]; ok {
		return acc
	}
	acc := NewAccount(name)
	e.accounts[name] = acc
	return acc
}

// Fund credits an account directly in the backing store.
func (e *TestEnv) Fund(acc *Account, a asset.Asset, amt amount.Amount) {
	e.T.Helper()
	require.NoError(e.T, ledger.Credit(e.view, acc.Address, a, amt))
}

// MintToken issues a token directly in the backing store and returns
// its ID.
func (e *TestEnv) MintToken(collection types.Address, owner *Account) uint64 {
	e.T.Helper()
	id, err := ledger.Mint(e.view, collection, owner.Address, 0, 0)
	require.NoError(e.T, err)
	return id
}

// Approve designates an operator for a token directly in the backing
// store.
func (e *TestEnv) Approve(owner, operator *Account, collection types.Address, tokenID uint64) {
	e.T.Helper()
	require.NoError(e.T, ledger.Approve(e.view, owner.Address, operator.Address, collection, tokenID))
}

// Balance returns an account's committed balance.
func (e *TestEnv) Balance(acc *Account, a asset.Asset) amount.Amount {
	e.T.Helper()
	bal, err := e.Engine.Balance(acc.Address, a)
	require.NoError(e.T, err)
	return bal
}

// OwnerOf returns the committed owner of a token.
func (e *TestEnv) OwnerOf(collection types.Address, tokenID uint64) types.Address {
	e.T.Helper()
	owner, err := ledger.OwnerOf(e.view, collection, tokenID)
	require.NoError(e.T, err)
	return owner
}

// Events returns every event committed so far, in order.
func (e *TestEnv) Events() []market.Event {
	return e.events
}

// LastEvent returns the most recent committed event.
func (e *TestEnv) LastEvent() market.Event {
	e.T.Helper()
	require.NotEmpty(e.T, e.events, "no events committed")
	return e.events[len(e.events)-1]
}

// Submit applies an operation and returns its result and metadata.
// A Validate rejection fails the test; use SubmitRaw when malformed
// input is the point.
func (e *TestEnv) Submit(op market.Operation) (market.Result, *market.Metadata) {
	e.T.Helper()
	res, meta, err := e.Engine.Apply(op)
	if res == market.ResMalformed {
		e.T.Fatalf("operation %s rejected as malformed: %v", op.OpName(), err)
	}
	require.NoError(e.T, err)
	return res, meta
}

// SubmitRaw applies an operation without failing on validation errors.
func (e *TestEnv) SubmitRaw(op market.Operation) (market.Result, *market.Metadata, error) {
	return e.Engine.Apply(op)
}

// RequireSuccess applies an operation and asserts it committed.
func (e *TestEnv) RequireSuccess(op market.Operation) *market.Metadata {
	e.T.Helper()
	res, meta := e.Submit(op)
	require.True(e.T, res.OK(),
		"expected %s to succeed, got %s (%s)", op.OpName(), res, res.Category())
	return meta
}

// RequireResult applies an operation and asserts the exact result code.
func (e *TestEnv) RequireResult(op market.Operation, want market.Result) {
	e.T.Helper()
	res, _ := e.Submit(op)
	require.Equal(e.T, want, res,
		"expected %s from %s, got %s", want, op.OpName(), res)
}

// AllowCollection allow-lists a collection via the admin account.
func (e *TestEnv) AllowCollection(collection types.Address) {
	e.T.Helper()
	e.RequireSuccess(&market.SetAllowList{
		BaseOp:  market.BaseOp{Account: e.Admin.Address},
		Kind:    market.AllowCollection,
		Target:  collection,
		Allowed: true,
	})
}

// AllowPayment allow-lists a payment asset via the admin account.
func (e *TestEnv) AllowPayment(a asset.Asset) {
	e.T.Helper()
	target := types.ZeroAddress
	if !a.IsNative() {
		target = a.Token
	}
	e.RequireSuccess(&market.SetAllowList{
		BaseOp:  market.BaseOp{Account: e.Admin.Address},
		Kind:    market.AllowPayment,
		Target:  target,
		Allowed: true,
	})
}

// SetTreasury configures fees via the admin account.
func (e *TestEnv) SetTreasury(t market.Treasury) {
	e.T.Helper()
	e.RequireSuccess(&market.SetTreasury{
		BaseOp:       market.BaseOp{Account: e.Admin.Address},
		Primary:      t.Primary,
		PrimaryBps:   t.PrimaryBps,
		Secondary:    t.Secondary,
		SecondaryBps: t.SecondaryBps,
		UseSecondary: t.UseSecondary,
	})
}

// RegisterRoot registers a mint allow-set root via the admin account.
func (e *TestEnv) RegisterRoot(root types.Hash) {
	e.T.Helper()
	e.RequireSuccess(&market.SetMerkleRoot{
		BaseOp: market.BaseOp{Account: e.Admin.Address},
		Root:   root,
		Valid:  true,
	})
}

// SignBid signs an auction settlement authorization for the account.
func (e *TestEnv) SignBid(acc *Account, saleID uint64, price amount.Amount, nonce uint64) []byte {
	digest := e.Engine.Domain().BidDigest(acc.Address, saleID, uint64(price), nonce)
	return acc.Sign(digest)
}

// SignSale signs a direct-sale authorization for the account.
func (e *TestEnv) SignSale(acc *Account, collection types.Address, tokenID uint64, payment asset.Asset, price amount.Amount, nonce uint64) []byte {
	digest := e.Engine.Domain().SaleDigest(acc.Address, collection, tokenID, payment, uint64(price), nonce)
	return acc.Sign(digest)
}
