package merkle

import (
	"fmt"
	"testing"

	"github.com/pixelmesh/gomarketd/internal/core/types"
)

func testLeaves(n int) []types.Hash {
	leaves := make([]types.Hash, n)
	for i := range leaves {
		recipient := types.Address{byte(i + 1)}
		leaves[i] = LeafHash(recipient, uint64(i+100), uint8(i%4), uint8(i%3))
	}
	return leaves
}

func TestTreeProofsVerify(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			leaves := testLeaves(n)
			tree := NewTree(leaves)
			root := tree.Root()
			for i, leaf := range leaves {
				if !Verify(leaf, tree.Proof(i), root) {
					t.Errorf("proof for leaf %d/%d rejected", i, n)
				}
			}
		})
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	leaves := testLeaves(8)
	tree := NewTree(leaves)
	root := tree.Root()

	proof := tree.Proof(3)
	proof[1][0] ^= 0xff
	if Verify(leaves[3], proof, root) {
		t.Fatal("tampered proof verified")
	}
}

func TestVerifyRejectsWrongLeaf(t *testing.T) {
	leaves := testLeaves(4)
	tree := NewTree(leaves)
	root := tree.Root()

	// A valid proof for leaf 0 must not verify leaf 1.
	if Verify(leaves[1], tree.Proof(0), root) {
		t.Fatal("proof accepted for the wrong leaf")
	}
}

func TestVerifyRejectsWrongRoot(t *testing.T) {
	leaves := testLeaves(4)
	tree := NewTree(leaves)
	other := NewTree(testLeaves(5))

	if Verify(leaves[2], tree.Proof(2), other.Root()) {
		t.Fatal("proof verified against a foreign root")
	}
}

func TestLeafHashBindsEveryField(t *testing.T) {
	base := LeafHash(types.Address{1}, 7, 2, 3)
	variants := []types.Hash{
		LeafHash(types.Address{2}, 7, 2, 3),
		LeafHash(types.Address{1}, 8, 2, 3),
		LeafHash(types.Address{1}, 7, 1, 3),
		LeafHash(types.Address{1}, 7, 2, 4),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base leaf", i)
		}
	}
}

func TestCombineIsOrderIndependent(t *testing.T) {
	leaves := testLeaves(2)
	if combine(leaves[0], leaves[1]) != combine(leaves[1], leaves[0]) {
		t.Fatal("combine depends on argument order")
	}
}
