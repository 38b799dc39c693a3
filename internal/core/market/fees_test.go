package market

import (
	"testing"

	"github.com/pixelmesh/gomarketd/internal/core/amount"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name     string
		treasury Treasury
		gross    amount.Amount
		seller   amount.Amount
		primary  amount.Amount
		second   amount.Amount
	}{
		{
			name:     "no fee configured",
			treasury: Treasury{},
			gross:    1_000_000,
			seller:   1_000_000,
		},
		{
			name:     "one percent to primary",
			treasury: Treasury{Primary: types.Address{1}, PrimaryBps: 100},
			gross:    1_000_000,
			seller:   990_000,
			primary:  10_000,
		},
		{
			name: "secondary takes half the fee",
			treasury: Treasury{
				Primary: types.Address{1}, PrimaryBps: 100,
				Secondary: types.Address{2}, SecondaryBps: 5000,
				UseSecondary: true,
			},
			gross:   1_000_000,
			seller:  990_000,
			primary: 5_000,
			second:  5_000,
		},
		{
			name: "secondary rounding dust stays with primary",
			treasury: Treasury{
				Primary: types.Address{1}, PrimaryBps: 100,
				Secondary: types.Address{2}, SecondaryBps: 3333,
				UseSecondary: true,
			},
			gross:   1_000_000,
			seller:  990_000,
			primary: 6_667,
			second:  3_333,
		},
		{
			name:     "fee rounds down on tiny gross",
			treasury: Treasury{Primary: types.Address{1}, PrimaryBps: 100},
			gross:    99,
			seller:   99,
		},
		{
			name:     "full fee",
			treasury: Treasury{Primary: types.Address{1}, PrimaryBps: 10000},
			gross:    12_345,
			primary:  12_345,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := ComputeSplit(&tt.treasury, tt.gross)
			if split.SellerAmount != tt.seller || split.PrimaryFee != tt.primary || split.SecondaryFee != tt.second {
				t.Fatalf("split = %+v, want seller %d primary %d secondary %d",
					split, tt.seller, tt.primary, tt.second)
			}
			if split.SellerAmount+split.PrimaryFee+split.SecondaryFee != tt.gross {
				t.Fatalf("split does not conserve gross: %+v", split)
			}
		})
	}
}

func TestComputeSplitAlwaysConserves(t *testing.T) {
	treasuries := []Treasury{
		{Primary: types.Address{1}, PrimaryBps: 1},
		{Primary: types.Address{1}, PrimaryBps: 250},
		{Primary: types.Address{1}, PrimaryBps: 9999},
		{Primary: types.Address{1}, PrimaryBps: 100, Secondary: types.Address{2}, SecondaryBps: 1, UseSecondary: true},
		{Primary: types.Address{1}, PrimaryBps: 777, Secondary: types.Address{2}, SecondaryBps: 9999, UseSecondary: true},
	}
	grosses := []amount.Amount{1, 3, 9999, 10000, 10001, 123_456_789, 1 << 40}
	for _, tr := range treasuries {
		for _, gross := range grosses {
			split := ComputeSplit(&tr, gross)
			if split.SellerAmount+split.PrimaryFee+split.SecondaryFee != gross {
				t.Fatalf("bps=%d/%d gross=%d: split %+v loses value",
					tr.PrimaryBps, tr.SecondaryBps, gross, split)
			}
		}
	}
}

func TestResultCategories(t *testing.T) {
	tests := []struct {
		res Result
		cat Category
	}{
		{ResSuccess, CategorySuccess},
		{ResZeroPrice, CategoryValidation},
		{ResBidTooLow, CategoryValidation},
		{ResNotSeller, CategoryAuthorization},
		{ResBadNonce, CategoryAuthorization},
		{ResNoSale, CategoryState},
		{ResHasBid, CategoryState},
		{ResInsufficientFunds, CategoryTransfer},
		{ResInternal, CategoryInternal},
	}
	for _, tt := range tests {
		if got := tt.res.Category(); got != tt.cat {
			t.Errorf("%s.Category() = %s, want %s", tt.res, got, tt.cat)
		}
	}
}
