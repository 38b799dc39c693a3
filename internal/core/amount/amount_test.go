package amount

import (
	"math"
	"testing"
)

func TestMulBps(t *testing.T) {
	tests := []struct {
		name string
		a    Amount
		bps  uint32
		want Amount
	}{
		{"zero amount", 0, 500, 0},
		{"zero bps", 1_000_000, 0, 0},
		{"one percent", 1_000_000, 100, 10_000},
		{"full denominator", 123_456, 10000, 123_456},
		{"rounds down", 999, 100, 9},
		{"tiny amount rounds to zero", 99, 100, 0},
		{"half", 7, 5000, 3},
		{"large amount no overflow", math.MaxUint64, 10000, math.MaxUint64},
		{"large amount one bps", math.MaxUint64, 1, math.MaxUint64 / 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MulBps(tt.a, tt.bps); got != tt.want {
				t.Errorf("MulBps(%d, %d) = %d, want %d", tt.a, tt.bps, got, tt.want)
			}
		})
	}
}

func TestMulBpsNeverExceedsGross(t *testing.T) {
	values := []Amount{1, 9999, 10000, 10001, 1 << 32, math.MaxUint64 - 1, math.MaxUint64}
	for _, a := range values {
		for _, bps := range []uint32{1, 250, 5000, 9999, 10000} {
			fee := MulBps(a, bps)
			if fee > a {
				t.Fatalf("MulBps(%d, %d) = %d exceeds the amount", a, bps, fee)
			}
		}
	}
}

func TestAdd(t *testing.T) {
	if _, err := Amount(math.MaxUint64).Add(1); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	sum, err := Amount(40).Add(2)
	if err != nil || sum != 42 {
		t.Fatalf("Add = %d, %v", sum, err)
	}
}

func TestSub(t *testing.T) {
	if _, err := Amount(1).Sub(2); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	rest, err := Amount(44).Sub(2)
	if err != nil || rest != 42 {
		t.Fatalf("Sub = %d, %v", rest, err)
	}
}
