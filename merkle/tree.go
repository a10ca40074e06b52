package merkle

import (
	"fmt"
	"math/big"
	"math/bits"

	geth "github.com/ethereum/go-ethereum/common"
)

// Tree is a binary Merkle tree over holder balances. Leaves keep the order
// in which the balances were provided and are right-padded with nil nodes up
// to the next power of two. A tree over a single balance consists of that
// leaf only; a tree over no balances consists of a single nil node.
type Tree struct {
	root   *Node
	depth  int
	hashFn HashFunction

	// levels[0] are the padded leaves, levels[depth] holds the root only.
	levels  [][]*Node
	holders []HolderBalance
	// index of the first leaf of each address
	byAddress map[geth.Address]int
}

// NewTree builds the tree over the given balances. Duplicate addresses are
// not merged; ProofFor resolves an address to its first occurrence.
func NewTree(balances []HolderBalance, hashFn HashFunction) (*Tree, error) {
	if !hashFn.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHashFunction, uint8(hashFn))
	}

	size := nextPowerOfTwo(len(balances))
	level := make([]*Node, 0, size)
	holders := make([]HolderBalance, 0, len(balances))
	byAddress := make(map[geth.Address]int, len(balances))
	for i, balance := range balances {
		holder := HolderBalance{Address: balance.Address, Balance: copyBalance(balance.Balance)}
		leaf, err := newLeaf(hashFn, holder)
		if err != nil {
			return nil, fmt.Errorf("failed to create leaf %d; %w", i, err)
		}
		level = append(level, leaf)
		holders = append(holders, holder)
		if _, found := byAddress[holder.Address]; !found {
			byAddress[holder.Address] = i
		}
	}
	for len(level) < size {
		level = append(level, newNil())
	}

	levels := [][]*Node{level}
	for len(level) > 1 {
		parents := make([]*Node, len(level)/2)
		for i := range parents {
			parents[i] = newPath(hashFn, level[2*i], level[2*i+1])
		}
		levels = append(levels, parents)
		level = parents
	}

	return &Tree{
		root:      level[0],
		depth:     len(levels) - 1,
		hashFn:    hashFn,
		levels:    levels,
		holders:   holders,
		byAddress: byAddress,
	}, nil
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) RootHash() Hash {
	return t.root.hash
}

// Depth is the number of levels between the root and the leaves.
func (t *Tree) Depth() int {
	return t.depth
}

func (t *Tree) HashFunction() HashFunction {
	return t.hashFn
}

// LeafCount is the number of holder leaves, excluding padding.
func (t *Tree) LeafCount() int {
	return len(t.holders)
}

// Holders returns the balances of the tree in leaf order.
func (t *Tree) Holders() []HolderBalance {
	res := make([]HolderBalance, len(t.holders))
	for i, holder := range t.holders {
		res[i] = HolderBalance{Address: holder.Address, Balance: copyBalance(holder.Balance)}
	}
	return res
}

// Leaf returns the leaf node at the given index.
func (t *Tree) Leaf(index int) (*Node, error) {
	if index < 0 || index >= len(t.holders) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrLeafIndexOutOfRange, index, len(t.holders))
	}
	return t.levels[0][index], nil
}

// IndexOf returns the index of the first leaf of the given address.
func (t *Tree) IndexOf(address geth.Address) (int, bool) {
	index, found := t.byAddress[address]
	return index, found
}

func (t *Tree) ContainsAddress(address geth.Address) bool {
	_, found := t.byAddress[address]
	return found
}

// TotalBalance sums up the balances of all leaves.
func (t *Tree) TotalBalance() *big.Int {
	total := new(big.Int)
	for _, holder := range t.holders {
		total.Add(total, holder.Balance)
	}
	return total
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func copyBalance(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b)
}
