package ldb

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
)

func TestLevelDbTrees(t *testing.T) {
	snapshot.RunTreeRepositoryTests(t, snapshot.NamedTreeRepositoryFactory{
		ImplementationName: "leveldb",
		Open: func(t *testing.T, directory string) snapshot.TreeRepository {
			trees, err := OpenTrees(directory)
			if err != nil {
				t.Fatalf("failed to open trees: %v", err)
			}
			t.Cleanup(func() { _ = trees.Close() })
			return trees
		},
	})
}

func TestLevelDbTrees_CanBeClosedAndReopened(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	trees, err := OpenTrees(dir)
	if err != nil {
		t.Fatalf("failed to open trees: %v", err)
	}
	tree, err := merkle.NewTree([]merkle.HolderBalance{
		{Address: geth.HexToAddress("0x0a"), Balance: big.NewInt(10)},
		{Address: geth.HexToAddress("0x0b"), Balance: big.NewInt(20)},
		{Address: geth.HexToAddress("0x0c"), Balance: big.NewInt(5)},
	}, merkle.Keccak256)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	id, err := trees.StoreTree(ctx, tree, 10, geth.HexToAddress("0x02"), 99)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	if err := trees.Close(); err != nil {
		t.Fatalf("failed to close trees: %v", err)
	}

	trees, err = OpenTrees(dir)
	if err != nil {
		t.Fatalf("failed to reopen trees: %v", err)
	}
	defer trees.Close()
	stored, found, err := trees.FetchTree(ctx, snapshot.FetchTreeParams{RootHash: tree.RootHash(), ChainID: 10, AssetContractAddress: geth.HexToAddress("0x02")})
	if err != nil || !found {
		t.Fatalf("failed to fetch tree: %t, %v", found, err)
	}
	if stored.ID != id || stored.BlockNumber != 99 || stored.Tree.RootHash() != tree.RootHash() {
		t.Errorf("unexpected stored tree: %+v", stored)
	}
}

func TestLevelDbTrees_CorruptedRecordsAreReported(t *testing.T) {
	ctx := context.Background()
	trees, err := OpenTrees(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open trees: %v", err)
	}
	defer trees.Close()
	tree, err := merkle.NewTree([]merkle.HolderBalance{{Address: geth.HexToAddress("0x0a"), Balance: big.NewInt(10)}}, merkle.Keccak256)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	id, err := trees.StoreTree(ctx, tree, 1, geth.HexToAddress("0x02"), 1)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	record := `{"chain_id":1,"asset_contract_address":"0x0000000000000000000000000000000000000002","block_number":1,"tree":{"depth":0,"hash":"0x00","hash_fn":"KECCAK_256","data":{"address":"0x000000000000000000000000000000000000000a","balance":"11"}}}`
	if err := trees.db.Put(treeKey(id), []byte(record), nil); err != nil {
		t.Fatalf("failed to overwrite record: %v", err)
	}

	if _, _, err := trees.GetByID(ctx, id); !errors.Is(err, merkle.ErrTreeMismatch) {
		t.Errorf("wanted ErrTreeMismatch, got %v", err)
	}
}
