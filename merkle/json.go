package merkle

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/dev3-labs/assetsnap/common"
	geth "github.com/ethereum/go-ethereum/common"
)

// ErrTreeMismatch is returned when a tree does not recompute to the hashes
// recorded for it.
const ErrTreeMismatch = common.ConstError("merkle tree does not match its recorded hashes")

// jsonNode is the published form of a node. The root additionally carries
// the depth and the hash function of the tree.
type jsonNode struct {
	Depth  *int          `json:"depth,omitempty"`
	Hash   Hash          `json:"hash"`
	HashFn *HashFunction `json:"hash_fn,omitempty"`
	Data   *jsonLeafData `json:"data,omitempty"`
	Left   *jsonNode     `json:"left,omitempty"`
	Right  *jsonNode     `json:"right,omitempty"`
}

type jsonLeafData struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

func toJsonNode(n *Node) *jsonNode {
	res := &jsonNode{Hash: n.hash}
	switch n.kind {
	case LeafNode:
		res.Data = &jsonLeafData{
			Address: common.LowerHex(n.holder.Address),
			Balance: n.holder.Balance.String(),
		}
	case PathNode:
		res.Left = toJsonNode(n.left)
		res.Right = toJsonNode(n.right)
	}
	return res
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	root := toJsonNode(t.root)
	depth, hashFn := t.depth, t.hashFn
	root.Depth = &depth
	root.HashFn = &hashFn
	return json.Marshal(root)
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	tree, err := ParseTreeJSON(data)
	if err != nil {
		return err
	}
	*t = *tree
	return nil
}

// ParseTreeJSON restores a tree from its published JSON form. The tree is
// rebuilt from its leaves and every recorded hash is checked against the
// recomputed one.
func ParseTreeJSON(data []byte) (*Tree, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode merkle tree; %w", err)
	}
	if root.HashFn == nil {
		return nil, fmt.Errorf("%w: missing hash_fn", ErrUnknownHashFunction)
	}
	if root.Depth == nil {
		return nil, fmt.Errorf("%w: missing depth", ErrTreeMismatch)
	}

	var holders []HolderBalance
	if err := collectHolders(&root, &holders); err != nil {
		return nil, err
	}
	tree, err := NewTree(holders, *root.HashFn)
	if err != nil {
		return nil, err
	}
	if tree.depth != *root.Depth {
		return nil, fmt.Errorf("%w: depth %d recorded, %d computed", ErrTreeMismatch, *root.Depth, tree.depth)
	}
	if err := compareHashes(tree.root, &root); err != nil {
		return nil, err
	}
	return tree, nil
}

// collectHolders lists the leaf data of the given subtree from left to right.
func collectHolders(n *jsonNode, holders *[]HolderBalance) error {
	if n.Data != nil {
		if n.Left != nil || n.Right != nil {
			return fmt.Errorf("%w: leaf %v has children", ErrTreeMismatch, n.Hash)
		}
		if !geth.IsHexAddress(n.Data.Address) {
			return fmt.Errorf("%w: leaf %v; %v", ErrTreeMismatch, n.Hash, common.ErrInvalidAddress)
		}
		balance, ok := new(big.Int).SetString(n.Data.Balance, 10)
		if !ok {
			return fmt.Errorf("%w: leaf %v has invalid balance %q", ErrTreeMismatch, n.Hash, n.Data.Balance)
		}
		*holders = append(*holders, HolderBalance{Address: geth.HexToAddress(n.Data.Address), Balance: balance})
		return nil
	}
	if (n.Left == nil) != (n.Right == nil) {
		return fmt.Errorf("%w: node %v has a single child", ErrTreeMismatch, n.Hash)
	}
	if n.Left == nil {
		return nil // nil node
	}
	if err := collectHolders(n.Left, holders); err != nil {
		return err
	}
	return collectHolders(n.Right, holders)
}

func compareHashes(want *Node, got *jsonNode) error {
	if want.hash != got.Hash {
		return fmt.Errorf("%w: recorded %v, computed %v", ErrTreeMismatch, got.Hash, want.hash)
	}
	if want.kind != PathNode {
		if got.Left != nil {
			return fmt.Errorf("%w: unexpected children below %v", ErrTreeMismatch, got.Hash)
		}
		return nil
	}
	if got.Left == nil || got.Right == nil {
		return fmt.Errorf("%w: missing children below %v", ErrTreeMismatch, got.Hash)
	}
	if err := compareHashes(want.left, got.Left); err != nil {
		return err
	}
	return compareHashes(want.right, got.Right)
}
