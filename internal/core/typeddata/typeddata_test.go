package typeddata

import (
	"testing"

	"github.com/pixelmesh/gomarketd/internal/core/asset"
	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

var testDomain = Domain{
	Name:    "gomarketd-test",
	Version: "1",
	ChainID: 7245,
}

func TestSignRecoverRoundtrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	signer := crypto.AddressOf(priv)

	digest := testDomain.BidDigest(signer, 42, 1_000_000, 0)
	sig := crypto.SignDigest(priv, digest)

	got, err := crypto.RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != signer {
		t.Fatalf("recovered %v, want %v", got, signer)
	}
}

func TestDomainSeparation(t *testing.T) {
	signer := types.Address{1}
	other := testDomain
	other.ChainID = 7246

	if testDomain.BidDigest(signer, 1, 100, 0) == other.BidDigest(signer, 1, 100, 0) {
		t.Fatal("digests collide across chain ids")
	}

	named := testDomain
	named.Name = "someone-else"
	if testDomain.BidDigest(signer, 1, 100, 0) == named.BidDigest(signer, 1, 100, 0) {
		t.Fatal("digests collide across domain names")
	}
}

func TestDigestBindsEveryField(t *testing.T) {
	signer := types.Address{1}
	base := testDomain.BidDigest(signer, 1, 100, 0)
	variants := []types.Hash{
		testDomain.BidDigest(types.Address{2}, 1, 100, 0),
		testDomain.BidDigest(signer, 2, 100, 0),
		testDomain.BidDigest(signer, 1, 101, 0),
		testDomain.BidDigest(signer, 1, 100, 1),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base digest", i)
		}
	}
}

func TestBidAndSaleDigestsDisjoint(t *testing.T) {
	signer := types.Address{1}
	bid := testDomain.BidDigest(signer, 1, 100, 0)
	sale := testDomain.SaleDigest(signer, types.Address{2}, 1, asset.Native(), 100, 0)
	if bid == sale {
		t.Fatal("bid and sale digests collide")
	}
}

func TestSaleDigestBindsPaymentAsset(t *testing.T) {
	buyer := types.Address{1}
	coll := types.Address{2}
	native := testDomain.SaleDigest(buyer, coll, 1, asset.Native(), 100, 0)
	token := testDomain.SaleDigest(buyer, coll, 1, asset.Token(types.Address{9}), 100, 0)
	if native == token {
		t.Fatal("payment asset not bound into digest")
	}
}

func TestContextKeysDisjoint(t *testing.T) {
	if BidContext(1) == BidContext(2) {
		t.Fatal("bid contexts collide across sales")
	}
	if SaleContext(types.Address{1}, 5) == SaleContext(types.Address{1}, 6) {
		t.Fatal("sale contexts collide across tokens")
	}
	if BidContext(1) == SaleContext(types.Address{}, 1) {
		t.Fatal("bid and sale context spaces overlap")
	}
}

func TestWrongSignerDetected(t *testing.T) {
	privA, _ := crypto.GenerateKey()
	privB, _ := crypto.GenerateKey()

	digest := testDomain.BidDigest(crypto.AddressOf(privA), 1, 100, 0)
	sig := crypto.SignDigest(privB, digest)

	got, err := crypto.RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got == crypto.AddressOf(privA) {
		t.Fatal("signature by B recovered as A")
	}
}
