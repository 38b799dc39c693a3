package crypto

import (
	"testing"

	"github.com/pixelmesh/gomarketd/internal/core/types"
)

func TestSha512HalfDeterministic(t *testing.T) {
	a := Sha512Half([]byte("marketd"))
	b := Sha512Half([]byte("marketd"))
	if a != b {
		t.Fatal("digest not deterministic")
	}
	if a == Sha512Half([]byte("marketD")) {
		t.Fatal("distinct inputs collide")
	}
	if a.IsZero() {
		t.Fatal("zero digest")
	}
}

func TestAddressDerivation(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := AddressOf(priv)
	if addr.IsZero() {
		t.Fatal("derived zero address")
	}
	if addr != AccountID(priv.PubKey().SerializeCompressed()) {
		t.Fatal("AddressOf disagrees with AccountID")
	}
}

func TestSignatureTampering(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	digest := Sha512Half([]byte("message"))
	sig := SignDigest(priv, digest)
	if len(sig) != SignatureSize {
		t.Fatalf("signature length = %d", len(sig))
	}

	recovered, err := RecoverAddress(digest, sig)
	if err != nil || recovered != AddressOf(priv) {
		t.Fatalf("recover = %v, %v", recovered, err)
	}

	// A flipped digest bit recovers a different key or nothing.
	other := digest
	other[0] ^= 1
	recovered, err = RecoverAddress(other, sig)
	if err == nil && recovered == AddressOf(priv) {
		t.Fatal("tampered digest recovered the same signer")
	}

	// Truncated signatures are rejected outright.
	if _, err := RecoverAddress(digest, sig[:64]); err == nil {
		t.Fatal("short signature accepted")
	}
	var zero types.Hash
	if _, err := RecoverAddress(zero, nil); err == nil {
		t.Fatal("nil signature accepted")
	}
}
