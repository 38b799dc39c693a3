package types

import (
	"encoding/json"
	"testing"
)

func TestParseAddressRoundtrip(t *testing.T) {
	a := Address{0xde, 0xad, 0xbe, 0xef}
	parsed, err := ParseAddress(a.String())
	if err != nil || parsed != a {
		t.Fatalf("roundtrip = %v, %v", parsed, err)
	}

	// Accepts the bare hex form too.
	parsed, err = ParseAddress(a.String()[2:])
	if err != nil || parsed != a {
		t.Fatalf("bare hex roundtrip = %v, %v", parsed, err)
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "0x", "0xzz", "0x0101", a40 + "01"} {
		if _, err := ParseAddress(s); err == nil {
			t.Errorf("ParseAddress(%q) accepted", s)
		}
	}
}

const a40 = "0x0101010101010101010101010101010101010101"

func TestHashJSON(t *testing.T) {
	h := Hash{1, 2, 3}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	var back Hash
	if err := json.Unmarshal(data, &back); err != nil || back != h {
		t.Fatalf("roundtrip = %v, %v", back, err)
	}
}

func TestAddressJSON(t *testing.T) {
	a := Address{9, 8, 7}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var back Address
	if err := json.Unmarshal(data, &back); err != nil || back != a {
		t.Fatalf("roundtrip = %v, %v", back, err)
	}
}

func TestIsZero(t *testing.T) {
	if !ZeroAddress.IsZero() || !(Hash{}).IsZero() {
		t.Fatal("zero values not reported as zero")
	}
	if (Address{1}).IsZero() || (Hash{1}).IsZero() {
		t.Fatal("non-zero values reported as zero")
	}
}
