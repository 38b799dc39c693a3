package market

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixelmesh/gomarketd/internal/core/state"
	"github.com/pixelmesh/gomarketd/internal/core/typeddata"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Operation is one public entry point of the engine. Validate rejects
// requests that are malformed regardless of state; Apply re-validates
// everything against current state and either succeeds completely or
// leaves the apply table untouched.
type Operation interface {
	OpName() string
	Caller() types.Address
	Validate() error
	Apply(ctx *ApplyContext) Result
}

// BaseOp carries the fields common to every operation.
type BaseOp struct {
	// Account is the calling party. Ownership and role checks run
	// against it at apply time.
	Account types.Address `json:"account"`
}

// Caller returns the calling account.
func (b *BaseOp) Caller() types.Address {
	return b.Account
}

func (b *BaseOp) validateBase() error {
	if b.Account.IsZero() {
		return errors.New("account is required")
	}
	return nil
}

// ApplyContext provides the state and environment one Apply runs in.
type ApplyContext struct {
	// View is the apply table the operation mutates.
	View state.View

	// Caller is the operation's calling account.
	Caller types.Address

	// Now is the engine clock at apply time, unix seconds.
	Now int64

	// Domain is the typed-data domain for signature verification.
	Domain typeddata.Domain

	// Admin may change treasury, allow-list and root configuration.
	Admin types.Address

	meta *Metadata
}

// Metadata reports what a successful apply produced.
type Metadata struct {
	// SaleID is set by SaleRequest.
	SaleID uint64 `json:"sale_id,omitempty"`

	// MintedTokenIDs lists tokens materialized by the merkle gate.
	MintedTokenIDs []uint64 `json:"minted_token_ids,omitempty"`

	// Events in emission order.
	Events []Event `json:"events,omitempty"`
}

// Emit records an event for publication after commit.
func (ctx *ApplyContext) Emit(ev Event) {
	ctx.meta.Events = append(ctx.meta.Events, ev)
}

// ErrUnknownOperation is returned for an unregistered op name.
var ErrUnknownOperation = errors.New("unknown operation")

var opRegistry = make(map[string]func() Operation)

// Register binds an op name to its factory. Called from init.
func Register(name string, factory func() Operation) {
	if _, dup := opRegistry[name]; dup {
		panic(fmt.Sprintf("market: duplicate operation %q", name))
	}
	opRegistry[name] = factory
}

// FromJSON decodes an operation envelope of the form
// {"op": "...", ...fields}.
func FromJSON(data []byte) (Operation, error) {
	var envelope struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	factory, ok := opRegistry[envelope.Op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, envelope.Op)
	}
	op := factory()
	if err := json.Unmarshal(data, op); err != nil {
		return nil, err
	}
	return op, nil
}
