package memory

import (
	"context"
	"sync"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type treeKey struct {
	chainID  common.ChainID
	contract geth.Address
	root     merkle.Hash
}

// Trees is an in-memory snapshot.TreeRepository. Trees are immutable once
// built, so stored trees are shared with callers.
type Trees struct {
	mu    sync.Mutex
	byKey map[treeKey]uuid.UUID
	byID  map[uuid.UUID]snapshot.StoredTree
}

func NewTrees() *Trees {
	return &Trees{
		byKey: map[treeKey]uuid.UUID{},
		byID:  map[uuid.UUID]snapshot.StoredTree{},
	}
}

func (t *Trees) FetchTree(_ context.Context, params snapshot.FetchTreeParams) (*snapshot.StoredTree, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, found := t.byKey[treeKey{params.ChainID, params.AssetContractAddress, params.RootHash}]
	if !found {
		return nil, false, nil
	}
	stored := t.byID[id]
	return &stored, true, nil
}

func (t *Trees) StoreTree(_ context.Context, tree *merkle.Tree, chainID common.ChainID, contract geth.Address, block common.BlockNumber) (uuid.UUID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := treeKey{chainID, contract, tree.RootHash()}
	if id, found := t.byKey[key]; found {
		return id, nil
	}
	id := uuid.New()
	t.byKey[key] = id
	t.byID[id] = snapshot.StoredTree{
		ID:                   id,
		ChainID:              chainID,
		AssetContractAddress: contract,
		BlockNumber:          block,
		Tree:                 tree,
	}
	return id, nil
}

func (t *Trees) GetByID(_ context.Context, id uuid.UUID) (*snapshot.StoredTree, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stored, found := t.byID[id]
	if !found {
		return nil, false, nil
	}
	return &stored, true, nil
}

func (t *Trees) ContainsAddress(ctx context.Context, params snapshot.FetchTreeParams, wallet geth.Address) (bool, error) {
	stored, found, err := t.FetchTree(ctx, params)
	if err != nil || !found {
		return false, err
	}
	return stored.Tree.ContainsAddress(wallet), nil
}
