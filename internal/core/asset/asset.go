// Package asset models the payment asset of a listing as a closed
// variant: either the native unit of account or a fungible token
// identified by its ledger address.
package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Kind discriminates the payment-asset variant.
type Kind uint8

const (
	// KindNative is the native unit of account.
	KindNative Kind = iota
	// KindToken is a fungible token held in the payment ledger.
	KindToken
)

// Asset selects how a sale settles. The zero value is the native asset.
type Asset struct {
	Kind  Kind          `json:"kind"`
	Token types.Address `json:"token,omitempty"`
}

// ErrBadAsset is returned when parsing a malformed asset string.
var ErrBadAsset = errors.New("malformed payment asset")

// Native returns the native payment asset.
func Native() Asset {
	return Asset{Kind: KindNative}
}

// Token returns a fungible-token payment asset.
func Token(addr types.Address) Asset {
	return Asset{Kind: KindToken, Token: addr}
}

// IsNative reports whether the asset is the native unit of account.
func (a Asset) IsNative() bool {
	return a.Kind == KindNative
}

func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return "token:" + a.Token.String()
}

// Parse decodes the String form.
func Parse(s string) (Asset, error) {
	if s == "" || s == "native" {
		return Native(), nil
	}
	rest, ok := strings.CutPrefix(s, "token:")
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrBadAsset, s)
	}
	addr, err := types.ParseAddress(rest)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %q", ErrBadAsset, s)
	}
	return Token(addr), nil
}
