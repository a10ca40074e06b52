package merkle

import (
	"github.com/dev3-labs/assetsnap/common"
	geth "github.com/ethereum/go-ethereum/common"
)

// ErrLeafIndexOutOfRange is returned when a proof is requested for a leaf
// that does not exist.
const ErrLeafIndexOutOfRange = common.ConstError("leaf index out of range")

// PathSegment is one step of a proof from a leaf to the root: the hash of
// the sibling of the current node, and whether that sibling is the left
// child of their common parent.
type PathSegment struct {
	SiblingHash Hash `json:"sibling_hash"`
	IsLeft      bool `json:"is_left"`
}

// Proof is the inclusion proof of a single holder.
type Proof struct {
	Holder   HolderBalance
	Index    int
	LeafHash Hash
	Path     []PathSegment // ordered leaf to root
}

// SiblingHashes lists the sibling hashes of the proof path.
func (p *Proof) SiblingHashes() []Hash {
	res := make([]Hash, len(p.Path))
	for i, segment := range p.Path {
		res[i] = segment.SiblingHash
	}
	return res
}

// PathTo produces the proof path of the leaf at the given index.
func (t *Tree) PathTo(index int) ([]PathSegment, error) {
	if _, err := t.Leaf(index); err != nil {
		return nil, err
	}
	path := make([]PathSegment, 0, t.depth)
	for _, level := range t.levels[:t.depth] {
		sibling := index ^ 1
		path = append(path, PathSegment{
			SiblingHash: level[sibling].hash,
			IsLeft:      sibling < index,
		})
		index /= 2
	}
	return path, nil
}

// ProofFor produces the proof of the first leaf of the given address.
func (t *Tree) ProofFor(address geth.Address) (*Proof, bool) {
	index, found := t.byAddress[address]
	if !found {
		return nil, false
	}
	path, err := t.PathTo(index)
	if err != nil {
		return nil, false
	}
	holder := t.holders[index]
	return &Proof{
		Holder:   HolderBalance{Address: holder.Address, Balance: copyBalance(holder.Balance)},
		Index:    index,
		LeafHash: t.levels[0][index].hash,
		Path:     path,
	}, true
}

// Verify checks the given path against the root of this tree.
func (t *Tree) Verify(leafHash Hash, path []PathSegment) bool {
	return Verify(t.hashFn, leafHash, path, t.root.hash)
}

// Verify recomputes the root from a leaf hash and its path and compares it
// with the expected root.
func Verify(fn HashFunction, leafHash Hash, path []PathSegment, root Hash) bool {
	if !fn.Valid() {
		return false
	}
	current := leafHash
	for _, segment := range path {
		if segment.IsLeft {
			current = combine(fn, segment.SiblingHash, current)
		} else {
			current = combine(fn, current, segment.SiblingHash)
		}
	}
	return current == root
}

// VerifyHolder is like Verify, but derives the leaf hash from the holder's
// balance first.
func VerifyHolder(fn HashFunction, holder HolderBalance, path []PathSegment, root Hash) (bool, error) {
	if !fn.Valid() {
		return false, ErrUnknownHashFunction
	}
	leafHash, err := LeafHash(fn, holder)
	if err != nil {
		return false, err
	}
	return Verify(fn, leafHash, path, root), nil
}
