package ldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
)

type treeRecord struct {
	ChainID              common.ChainID     `json:"chain_id"`
	AssetContractAddress geth.Address       `json:"asset_contract_address"`
	BlockNumber          common.BlockNumber `json:"block_number"`
	Tree                 json.RawMessage    `json:"tree"`
}

// Trees is a snapshot.TreeRepository backed by LevelDB. A tree is stored
// within a LevelDB transaction, which excludes concurrent writers, so a
// root is mapped to one tree id only.
type Trees struct {
	db *leveldb.DB
}

// OpenTrees opens or creates the repository in the given directory.
func OpenTrees(path string) (*Trees, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s; %w", path, err)
	}
	return NewTrees(db), nil
}

func NewTrees(db *leveldb.DB) *Trees {
	return &Trees{db: db}
}

func (t *Trees) StoreTree(_ context.Context, tree *merkle.Tree, chainID common.ChainID, contract geth.Address, block common.BlockNumber) (uuid.UUID, error) {
	document, err := json.Marshal(tree)
	if err != nil {
		return uuid.UUID{}, err
	}
	record, err := json.Marshal(treeRecord{
		ChainID:              chainID,
		AssetContractAddress: contract,
		BlockNumber:          block,
		Tree:                 document,
	})
	if err != nil {
		return uuid.UUID{}, err
	}

	tx, err := t.db.OpenTransaction()
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to open transaction; %w", err)
	}
	key := rootKey(chainID, contract, tree.RootHash().String())
	existing, err := tx.Get(key, nil)
	if err == nil {
		tx.Discard()
		return uuid.FromBytes(existing)
	}
	if !errors.Is(err, leveldb.ErrNotFound) {
		tx.Discard()
		return uuid.UUID{}, err
	}

	id := uuid.New()
	if err := tx.Put(key, id[:], nil); err != nil {
		tx.Discard()
		return uuid.UUID{}, err
	}
	if err := tx.Put(treeKey(id), record, nil); err != nil {
		tx.Discard()
		return uuid.UUID{}, err
	}
	if err := tx.Commit(); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to commit tree; %w", err)
	}
	return id, nil
}

func (t *Trees) FetchTree(ctx context.Context, params snapshot.FetchTreeParams) (*snapshot.StoredTree, bool, error) {
	value, err := t.db.Get(rootKey(params.ChainID, params.AssetContractAddress, params.RootHash.String()), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	id, err := uuid.FromBytes(value)
	if err != nil {
		return nil, false, fmt.Errorf("invalid tree id of root %v; %w", params.RootHash, err)
	}
	return t.GetByID(ctx, id)
}

func (t *Trees) GetByID(_ context.Context, id uuid.UUID) (*snapshot.StoredTree, bool, error) {
	value, err := t.db.Get(treeKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record treeRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, false, fmt.Errorf("invalid record of tree %v; %w", id, err)
	}
	tree, err := merkle.ParseTreeJSON(record.Tree)
	if err != nil {
		return nil, false, fmt.Errorf("tree %v is corrupted; %w", id, err)
	}
	return &snapshot.StoredTree{
		ID:                   id,
		ChainID:              record.ChainID,
		AssetContractAddress: record.AssetContractAddress,
		BlockNumber:          record.BlockNumber,
		Tree:                 tree,
	}, true, nil
}

func (t *Trees) ContainsAddress(ctx context.Context, params snapshot.FetchTreeParams, wallet geth.Address) (bool, error) {
	stored, found, err := t.FetchTree(ctx, params)
	if err != nil || !found {
		return false, err
	}
	return stored.Tree.ContainsAddress(wallet), nil
}

func (t *Trees) Close() error {
	return t.db.Close()
}
