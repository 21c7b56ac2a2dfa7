// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree for summarizing
// the transactions of a block.
//
// Node hashes are lowercase hex digests. A parent is the digest of the
// concatenated hex strings of its children. When a level has an odd number of
// nodes, the last node is promoted by hashing its hex string on its own, it is
// not duplicated. A tree over a single value hashes the value's String form
// instead of its leaf form.
package merkle

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	fmt.Stringer
	MerkleLeaf() string
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   string
	hashStrategy digest.Strategy
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy digest.Strategy) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface. A tree constructed
// with no values has no root.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: digest.SHA256,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Root is a convenience function that returns the merkle root for the
// specified values. The boolean is false when there are no values.
func Root[T Hashable[T]](values []T, options ...func(t *Tree[T])) (string, bool, error) {
	t, err := NewTree(values, options...)
	if err != nil {
		return "", false, err
	}

	root, ok := t.RootHash()
	return root, ok, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	t.Root = nil
	t.Leafs = nil
	t.MerkleRoot = ""

	switch len(values) {
	case 0:
		return nil

	case 1:
		leaf := &Node[T]{
			Hash:  t.sum(values[0].String()),
			Value: values[0],
			leaf:  true,
			Tree:  t,
		}

		t.Root = leaf
		t.Leafs = []*Node[T]{leaf}
		t.MerkleRoot = leaf.Hash

		return nil
	}

	leafs := make([]*Node[T], len(values))
	for i, value := range values {
		leafs[i] = &Node[T]{
			Hash:  t.sum(value.MerkleLeaf()),
			Value: value,
			leaf:  true,
			Tree:  t,
		}
	}

	t.Root = buildIntermediate(leafs, t)
	t.Leafs = leafs
	t.MerkleRoot = t.Root.Hash

	return nil
}

// Rebuild is a helper function that will rebuild the tree reusing only the
// data that it currently holds in the leaves.
func (t *Tree[T]) Rebuild() error {
	return t.Generate(t.Values())
}

// RootHash returns the merkle root as lowercase hex. The boolean is false
// when the tree holds no values.
func (t *Tree[T]) RootHash() (string, bool) {
	if t.Root == nil {
		return "", false
	}

	return t.MerkleRoot, true
}

// RootHex returns the merkle root as 0x prefixed hex, or an empty string when
// the tree holds no values.
func (t *Tree[T]) RootHex() string {
	if t.Root == nil {
		return ""
	}

	raw, err := hex.DecodeString(t.MerkleRoot)
	if err != nil {
		return ""
	}

	return hexutil.Encode(raw)
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree.
//
// Hash the leaf form of the value to get the starting hash, then walk the
// proof. An order of 0 says the proof hash comes first, an order of 1 says it
// comes second. An empty proof hash means the node was promoted alone and is
// hashed on its own.
//
//	h = digest(leaf)
//	h = digest(proof[0] + h)  -- order 0
//	h = digest(h + proof[1])  -- order 1
//
// The final h should match the merkle root. A tree holding a single value has
// an empty proof and its root is the digest of the value's String form.
func (t *Tree[T]) Proof(data T) ([]string, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof []string
		var order []int64
		nodeParent := node.Parent

		for nodeParent != nil {
			switch {
			case nodeParent.Right == nil:
				merkleProof = append(merkleProof, "")
				order = append(order, 1) // promoted alone.
			case nodeParent.Left == node:
				merkleProof = append(merkleProof, nodeParent.Right.Hash)
				order = append(order, 1) // right leaf, concat second.
			default:
				merkleProof = append(merkleProof, nodeParent.Left.Hash)
				order = append(order, 0) // left leaf, concat first.
			}
			node = nodeParent
			nodeParent = nodeParent.Parent
		}

		return merkleProof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// VerifyProof walks the proof for the leaf hash and reports whether it
// arrives at the specified root.
func VerifyProof(strategy digest.Strategy, leafHash string, proof []string, order []int64, root string) bool {
	if len(proof) != len(order) {
		return false
	}

	h := leafHash
	for i := range proof {
		if order[i] == 0 {
			h = digest.Sum(strategy, proof[i]+h)
			continue
		}
		h = digest.Sum(strategy, h+proof[i])
	}

	return h == root
}

// Verify validates the hashes at each level of the tree and returns an error
// if the resulting hash at the root of the tree does not match the root hash.
func (t *Tree[T]) Verify() error {
	if t.Root == nil {
		return nil
	}

	calculatedMerkleRoot := t.Root.verify()
	if t.MerkleRoot != calculatedMerkleRoot {
		return errors.New("root hash invalid")
	}

	return nil
}

// VerifyData indicates whether a given piece of data is in the tree and if the
// hashes are valid for that data. Returns nil if the expected merkle root is
// equivalent to the merkle root calculated on the critical path for a given
// piece of data.
func (t *Tree[T]) VerifyData(data T) error {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		if node.CalculateHash() != node.Hash {
			return errors.New("leaf hash does not match the data")
		}

		currentParent := node.Parent
		for currentParent != nil {
			if currentParent.CalculateHash() != currentParent.Hash {
				return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
			}

			currentParent = currentParent.Parent
		}

		return nil
	}

	return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
}

// Values returns a slice of the values stored in the tree.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, l := range t.Leafs {
		values[i] = l.Value
	}

	return values
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	s := ""

	for _, l := range t.Leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}

	return s
}

// MarshalText implements the TextMarshaler interface and produces a panic
// if anyone tries to marshal the Merkle tree. I don't want this to happen.
// Use the Values function to return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	panic("do not marshal the merkle tree, use Values")
}

// sum digests the string with the tree's hash strategy.
func (t *Tree[T]) sum(s string) string {
	return digest.Sum(t.hashStrategy, s)
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
// A node promoted alone has a nil Right.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   string
	Value  T
	leaf   bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() string {
	if n.leaf {
		return n.CalculateHash()
	}

	left := n.Left.verify()

	var right string
	if n.Right != nil {
		right = n.Right.verify()
	}

	return n.Tree.sum(left + right)
}

// CalculateHash is a helper function that calculates the hash of the node.
func (n *Node[T]) CalculateHash() string {
	if n.leaf {
		if n.Parent == nil && len(n.Tree.Leafs) == 1 {
			return n.Tree.sum(n.Value.String())
		}
		return n.Tree.sum(n.Value.MerkleLeaf())
	}

	var right string
	if n.Right != nil {
		right = n.Right.Hash
	}

	return n.Tree.sum(n.Left.Hash + right)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %s %v", n.leaf, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of nodes,
// constructs the next level of the tree until a single node remains. Returns
// the resulting root node of the tree.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) *Node[T] {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		n := Node[T]{
			Left: nl[i],
			Tree: t,
		}

		var right string
		if i+1 < len(nl) {
			n.Right = nl[i+1]
			right = nl[i+1].Hash
			nl[i+1].Parent = &n
		}

		n.Hash = t.sum(nl[i].Hash + right)
		nl[i].Parent = &n

		nodes = append(nodes, &n)
	}

	if len(nodes) == 1 {
		return nodes[0]
	}

	return buildIntermediate(nodes, t)
}
