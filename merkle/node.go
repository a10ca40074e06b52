package merkle

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/common/amount"
	geth "github.com/ethereum/go-ethereum/common"
)

// ErrInvalidBalance is returned for balances that can not be encoded as an
// uint256, i.e. negative balances and balances of more than 256 bits.
const ErrInvalidBalance = common.ConstError("invalid balance")

// HolderBalance is the balance of a single token holder; it is the data
// carried by a leaf of the tree.
type HolderBalance struct {
	Address geth.Address
	Balance *big.Int
}

func (b HolderBalance) String() string {
	return fmt.Sprintf("%s:%v", common.LowerHex(b.Address), b.Balance)
}

// encodeLeaf produces abi.encode(address, uint256) of the holder's data as
// 0x-prefixed hex.
func encodeLeaf(b HolderBalance) (string, error) {
	value, err := amount.NewFromBigInt(b.Balance)
	if err != nil {
		return "", fmt.Errorf("%w for %s; %v", ErrInvalidBalance, common.LowerHex(b.Address), err)
	}
	word := value.Bytes32()
	encoded := make([]byte, 0, 64)
	encoded = append(encoded, geth.LeftPadBytes(b.Address.Bytes(), 32)...)
	encoded = append(encoded, word[:]...)
	return "0x" + hex.EncodeToString(encoded), nil
}

// NodeKind distinguishes the three kinds of nodes of a tree.
type NodeKind uint8

const (
	// NilNode is a padding node without data.
	NilNode NodeKind = iota
	// LeafNode carries the balance of one holder.
	LeafNode
	// PathNode is an inner node with two children.
	PathNode
)

func (k NodeKind) String() string {
	switch k {
	case NilNode:
		return "nil"
	case LeafNode:
		return "leaf"
	case PathNode:
		return "path"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a node of a Merkle tree. Nodes are immutable and can only be
// created through the constructors below, which derive the hash of a node
// from its data or its children.
type Node struct {
	kind   NodeKind
	hash   Hash
	holder HolderBalance // only for leaves
	left   *Node         // only for path nodes
	right  *Node         // only for path nodes
}

func (n *Node) Kind() NodeKind {
	return n.kind
}

func (n *Node) Hash() Hash {
	return n.hash
}

// Holder returns the data of a leaf node.
func (n *Node) Holder() (HolderBalance, bool) {
	return n.holder, n.kind == LeafNode
}

// Left returns the left child of a path node, nil otherwise.
func (n *Node) Left() *Node {
	return n.left
}

// Right returns the right child of a path node, nil otherwise.
func (n *Node) Right() *Node {
	return n.right
}

var nilNode = &Node{kind: NilNode, hash: NilHash}

func newNil() *Node {
	return nilNode
}

func newLeaf(fn HashFunction, holder HolderBalance) (*Node, error) {
	hash, err := LeafHash(fn, holder)
	if err != nil {
		return nil, err
	}
	return &Node{kind: LeafNode, hash: hash, holder: holder}, nil
}

func newPath(fn HashFunction, left, right *Node) *Node {
	return &Node{kind: PathNode, hash: combine(fn, left.hash, right.hash), left: left, right: right}
}

// LeafHash computes the hash of the leaf holding the given balance.
func LeafHash(fn HashFunction, holder HolderBalance) (Hash, error) {
	encoded, err := encodeLeaf(holder)
	if err != nil {
		return Hash{}, err
	}
	return fn.Apply(encoded), nil
}

// combine computes the hash of a parent node; left always precedes right.
func combine(fn HashFunction, left, right Hash) Hash {
	return fn.Apply(concat(left, right))
}
