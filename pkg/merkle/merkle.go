// Package merkle builds and proves membership in Expand's per-batch
// commitment tree: a dense, fixed-depth binary tree whose n = 2^d leaves are
// the client's n pre-committed randomness commitments, compressed with the
// same Poseidon2 two-to-one hash the in-circuit path gadget uses (spec §4.3,
// §5 "Merkle Path").
package merkle

import (
	"fmt"
	"math/big"

	"github.com/PlasmaXD/VLDP/pkg/crypto"
)

// Node is a node in the batch tree.
type Node struct {
	Hash   *big.Int
	Left   *Node
	Right  *Node
	Parent *Node
	IsLeaf bool
}

// BatchTree is a complete Merkle tree over a single batch's leaf
// commitments. Depth is fixed at construction (the P.MerkleDepth parameter);
// a tree always has exactly 2^Depth leaves, even if the client committed
// fewer real records, padding on the right with a repeat of the last leaf
// so every path has uniform depth.
type BatchTree struct {
	Root   *Node
	Leaves []*Node
	Depth  int
}

// NewNode builds a tree node and wires up parent pointers.
func NewNode(hash *big.Int, left, right *Node) *Node {
	n := &Node{Hash: hash, Left: left, Right: right, IsLeaf: left == nil && right == nil}
	if left != nil {
		left.Parent = n
	}
	if right != nil {
		right.Parent = n
	}
	return n
}

// BuildBatchTree constructs the dense tree for a batch of leaf fingerprints
// (typically crypto.Encode of each per-record commitment). len(leaves) must
// be <= 2^depth; fewer leaves are padded by repeating the last one. depth ==
// 0 degenerates to a single-leaf "tree" whose root is the leaf itself,
// matching Base-like single-commitment behavior (spec §8, boundary
// behaviors).
func BuildBatchTree(leaves []*big.Int, depth int) (*BatchTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("merkle: batch tree requires at least one leaf")
	}
	n := 1 << uint(depth)
	if len(leaves) > n {
		return nil, fmt.Errorf("merkle: %d leaves exceeds capacity %d for depth %d", len(leaves), n, depth)
	}
	padded := make([]*big.Int, n)
	copy(padded, leaves)
	for i := len(leaves); i < n; i++ {
		padded[i] = leaves[len(leaves)-1]
	}

	nodes := make([]*Node, n)
	for i, h := range padded {
		nodes[i] = NewNode(h, nil, nil)
	}

	level := nodes
	for len(level) > 1 {
		next := make([]*Node, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i+1]
			next = append(next, NewNode(crypto.HashNodes(left.Hash, right.Hash), left, right))
		}
		level = next
	}

	return &BatchTree{Root: level[0], Leaves: nodes, Depth: depth}, nil
}

// RootValue returns the tree's root fingerprint, the C_root submitted in
// Phase 1.
func (t *BatchTree) RootValue() *big.Int {
	return t.Root.Hash
}

// Path is the authentication path for one leaf: the sibling hash at each
// level from leaf to root, and the corresponding index bits (false = leaf is
// the left child, true = leaf is the right child), matching the gadget's
// expected witness shape.
type Path struct {
	Siblings []*big.Int
	Bits     []bool
}

// PathFor returns the authentication path for leafIndex.
func (t *BatchTree) PathFor(leafIndex int) (Path, error) {
	if leafIndex < 0 || leafIndex >= len(t.Leaves) {
		return Path{}, fmt.Errorf("merkle: leaf index %d out of range [0,%d)", leafIndex, len(t.Leaves))
	}
	var path Path
	current := t.Leaves[leafIndex]
	for current.Parent != nil {
		parent := current.Parent
		if parent.Left == current {
			path.Siblings = append(path.Siblings, parent.Right.Hash)
			path.Bits = append(path.Bits, false)
		} else {
			path.Siblings = append(path.Siblings, parent.Left.Hash)
			path.Bits = append(path.Bits, true)
		}
		current = parent
	}
	return path, nil
}

// VerifyPath recomputes the root from a leaf and its authentication path
// natively, mirroring the in-circuit gadget bit-for-bit (spec §5, "Merkle
// path gadget recomputes the root from (leaf, path, index bits)").
func VerifyPath(leaf *big.Int, path Path, root *big.Int) bool {
	if len(path.Siblings) != len(path.Bits) {
		return false
	}
	current := leaf
	for i, sibling := range path.Siblings {
		if path.Bits[i] {
			// current is the right child
			current = crypto.HashNodes(sibling, current)
		} else {
			current = crypto.HashNodes(current, sibling)
		}
	}
	return current.Cmp(root) == 0
}
