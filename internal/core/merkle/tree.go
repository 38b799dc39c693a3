package merkle

import "github.com/pixelmesh/gomarketd/internal/core/types"

// Tree is a complete merkle tree over a fixed set of leaf hashes,
// used by allow-set publishers and by tests to produce proofs that
// Verify accepts. Odd nodes at any level are promoted unchanged.
type Tree struct {
	levels [][]types.Hash
}

// NewTree builds a tree over the given leaf hashes.
func NewTree(leaves []types.Hash) *Tree {
	t := &Tree{}
	level := make([]types.Hash, len(leaves))
	copy(level, leaves)
	t.levels = append(t.levels, level)
	for len(level) > 1 {
		var next []types.Hash
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, combine(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

// Root returns the tree root. An empty tree has a zero root.
func (t *Tree) Root() types.Hash {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return types.Hash{}
	}
	return top[0]
}

// Proof returns the sibling path for the leaf at index i.
func (t *Tree) Proof(i int) []types.Hash {
	var proof []types.Hash
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := i ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		i /= 2
	}
	return proof
}
