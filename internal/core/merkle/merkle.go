// Package merkle verifies membership proofs against published
// allow-set roots. Leaves commit to the fields of a lazy issuance
// claim; interior nodes hash their children in sorted order so a proof
// does not need direction bits.
package merkle

import (
	"bytes"
	"encoding/binary"

	"github.com/pixelmesh/gomarketd/internal/core/types"
	"github.com/pixelmesh/gomarketd/internal/crypto"
)

// Domain prefixes keep leaf hashes and node hashes disjoint, so an
// interior node can never be replayed as a leaf.
const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

// LeafHash commits to one issuance claim: who may receive the asset,
// which allocation slot it occupies and its attributes.
func LeafHash(recipient types.Address, assetID uint64, category, tier uint8) types.Hash {
	buf := make([]byte, 0, 1+types.AddressSize+8+2)
	buf = append(buf, leafPrefix)
	buf = append(buf, recipient[:]...)
	buf = binary.BigEndian.AppendUint64(buf, assetID)
	buf = append(buf, category, tier)
	return crypto.Sha512Half(buf)
}

// Verify reconstructs the root from a leaf hash and its sibling path.
// Siblings are combined smallest-first, matching how the roots are
// built by the allow-set publisher.
func Verify(leaf types.Hash, proof []types.Hash, root types.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = combine(node, sibling)
	}
	return node == root
}

func combine(a, b types.Hash) types.Hash {
	buf := make([]byte, 0, 1+2*types.HashSize)
	buf = append(buf, nodePrefix)
	if bytes.Compare(a[:], b[:]) <= 0 {
		buf = append(buf, a[:]...)
		buf = append(buf, b[:]...)
	} else {
		buf = append(buf, b[:]...)
		buf = append(buf, a[:]...)
	}
	return crypto.Sha512Half(buf)
}
