// Package cache provides a read-through cache in front of a tree repository.
// Stored trees never change, so cached entries are never invalidated.
package cache

import (
	"context"
	"sync"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// DefaultCapacity is the number of trees kept by default.
const DefaultCapacity = 64

// Trees caches the trees of a TreeRepository. Rebuilding a persisted tree
// and checking it against its root is the expensive part of serving proofs,
// which this cache avoids for frequently requested trees.
type Trees struct {
	trees snapshot.TreeRepository

	mu     sync.Mutex
	byKey  *common.LruCache[snapshot.FetchTreeParams, snapshot.StoredTree]
	keyOfs map[uuid.UUID]snapshot.FetchTreeParams
}

func NewTrees(trees snapshot.TreeRepository, capacity int) *Trees {
	return &Trees{
		trees:  trees,
		byKey:  common.NewLruCache[snapshot.FetchTreeParams, snapshot.StoredTree](capacity),
		keyOfs: map[uuid.UUID]snapshot.FetchTreeParams{},
	}
}

func keyOf(stored *snapshot.StoredTree) snapshot.FetchTreeParams {
	return snapshot.FetchTreeParams{
		RootHash:             stored.Tree.RootHash(),
		ChainID:              stored.ChainID,
		AssetContractAddress: stored.AssetContractAddress,
	}
}

func (t *Trees) get(key snapshot.FetchTreeParams) (*snapshot.StoredTree, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stored, found := t.byKey.Get(key)
	return &stored, found
}

func (t *Trees) add(stored *snapshot.StoredTree) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if evicted, found := t.byKey.Set(keyOf(stored), *stored); found {
		for id, key := range t.keyOfs {
			if key == evicted {
				delete(t.keyOfs, id)
				break
			}
		}
	}
	t.keyOfs[stored.ID] = keyOf(stored)
}

func (t *Trees) FetchTree(ctx context.Context, params snapshot.FetchTreeParams) (*snapshot.StoredTree, bool, error) {
	if stored, found := t.get(params); found {
		return stored, true, nil
	}
	stored, found, err := t.trees.FetchTree(ctx, params)
	if err != nil || !found {
		return nil, found, err
	}
	t.add(stored)
	return stored, true, nil
}

func (t *Trees) GetByID(ctx context.Context, id uuid.UUID) (*snapshot.StoredTree, bool, error) {
	t.mu.Lock()
	key, known := t.keyOfs[id]
	t.mu.Unlock()
	if known {
		if stored, found := t.get(key); found {
			return stored, true, nil
		}
	}
	stored, found, err := t.trees.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	t.add(stored)
	return stored, true, nil
}

// StoreTree is not cached; the stored tree is picked up by the next fetch.
func (t *Trees) StoreTree(ctx context.Context, tree *merkle.Tree, chainID common.ChainID, contract geth.Address, block common.BlockNumber) (uuid.UUID, error) {
	return t.trees.StoreTree(ctx, tree, chainID, contract, block)
}

func (t *Trees) ContainsAddress(ctx context.Context, params snapshot.FetchTreeParams, wallet geth.Address) (bool, error) {
	if stored, found := t.get(params); found {
		return stored.Tree.ContainsAddress(wallet), nil
	}
	return t.trees.ContainsAddress(ctx, params, wallet)
}
