package market

import (
	"sync"
	"time"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/ledger"
	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Config carries the engine's fixed parameters.
type Config struct {
	// Admin is the only account allowed to run configuration ops.
	Admin types.Address

	// Domain is the typed-data domain bound into every signed
	// authorization the engine accepts.
	Domain typeddata.Domain
}

// Engine serializes operations over a backing view. Each operation runs
// against a fresh apply table; only a fully successful apply is
// committed, so the backing view always holds a consistent market.
type Engine struct {
	mu      sync.Mutex
	base    state.View
	cfg     Config
	clock   func() time.Time
	hooks   []func(Event)
	applied uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock. Used by tests to control
// auction deadlines.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New creates an engine over the given backing view.
func New(base state.View, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		base:  base,
		cfg:   cfg,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a hook invoked for every event of every committed
// operation, in emission order, while the engine lock is held.
func (e *Engine) Subscribe(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Apply runs one operation to completion. A non-nil error means the
// request never reached the state machine; otherwise the result code
// reports the outcome and the metadata what a success produced.
func (e *Engine) Apply(op Operation) (Result, *Metadata, error) {
	if err := op.Validate(); err != nil {
		return ResMalformed, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	table := state.NewApplyTable(e.base)
	meta := &Metadata{}
	ctx := &ApplyContext{
		View:   table,
		Caller: op.Caller(),
		Now:    e.clock().Unix(),
		Domain: e.cfg.Domain,
		Admin:  e.cfg.Admin,
		meta:   meta,
	}

	res := op.Apply(ctx)
	if !res.OK() {
		return res, nil, nil
	}
	if err := table.Commit(); err != nil {
		return ResInternal, nil, err
	}
	e.applied++

	for _, ev := range meta.Events {
		for _, fn := range e.hooks {
			fn(ev)
		}
	}
	return ResSuccess, meta, nil
}

// Listing returns the committed listing and its live bid, if any.
// Nil listing means no such sale.
func (e *Engine) Listing(saleID uint64) (*Listing, *BidState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	listing, err := readListing(e.base, saleID)
	if err != nil || listing == nil {
		return nil, nil, err
	}
	bid, err := readBid(e.base, saleID)
	if err != nil {
		return nil, nil, err
	}
	return listing, bid, nil
}

// Treasury returns the committed fee configuration.
func (e *Engine) Treasury() (*Treasury, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return readTreasury(e.base)
}

// NextNonce returns the counter a signer must place in its next signed
// authorization for the given context.
func (e *Engine) NextNonce(signer types.Address, context types.Hash) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return peekNonce(e.base, signer, context)
}

// Domain returns the engine's typed-data domain.
func (e *Engine) Domain() typeddata.Domain {
	return e.cfg.Domain
}

// Admin returns the configured admin account.
func (e *Engine) Admin() types.Address {
	return e.cfg.Admin
}

// Balance returns a holder's committed balance of an asset.
func (e *Engine) Balance(holder types.Address, a asset.Asset) (amount.Amount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ledger.Balance(e.base, holder, a)
}

// AppliedOps returns the number of operations committed since start.
func (e *Engine) AppliedOps() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applied
}
