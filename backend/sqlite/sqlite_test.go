package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

func openDB(t *testing.T, directory string) *sql.DB {
	db, err := Open(filepath.Join(directory, "assetsnap.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSqliteSnapshots(t *testing.T) {
	snapshot.RunRepositoryTests(t, snapshot.NamedRepositoryFactory{
		ImplementationName: "sqlite",
		Open: func(t *testing.T, directory string) snapshot.Repository {
			return NewSnapshots(openDB(t, directory))
		},
	})
}

func TestSqliteTrees(t *testing.T) {
	snapshot.RunTreeRepositoryTests(t, snapshot.NamedTreeRepositoryFactory{
		ImplementationName: "sqlite",
		Open: func(t *testing.T, directory string) snapshot.TreeRepository {
			return NewTrees(openDB(t, directory))
		},
	})
}

func TestSqlite_DataSourceNameEscapesPath(t *testing.T) {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	tests := map[string]string{
		"assetsnap.db":       "file:assetsnap.db?_foreign_keys=on",
		"/data/assetsnap.db": "file:/data/assetsnap.db?_foreign_keys=on",
		"/data/a?b#c%d.db":   "file:/data/a%3Fb%23c%25d.db?_foreign_keys=on",
		"/data/with space":   "file:/data/with%20space?_foreign_keys=on",
	}
	for file, want := range tests {
		if got := dataSourceName(file, params); got != want {
			t.Errorf("wrong data source name for %q: wanted %q, got %q", file, want, got)
		}
	}
}

func TestSqlite_OpenKeepsSpecialCharactersInFileName(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "snap?shots#1.db")
	db, err := Open(file)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("database not created at %s: %v", file, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "snap")); !os.IsNotExist(err) {
		t.Errorf("database created at a truncated path: %v", err)
	}
}

func TestSqlite_DataSurvivesReopening(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "assetsnap.db")
	db, err := Open(file)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	tree, err := merkle.NewTree([]merkle.HolderBalance{{Address: geth.HexToAddress("0x01"), Balance: big.NewInt(3)}}, merkle.Keccak256)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	treeID, err := NewTrees(db).StoreTree(ctx, tree, 1, geth.HexToAddress("0x02"), 10)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	jobID, err := NewSnapshots(db).CreatePending(ctx, snapshot.CreateParams{Name: "job", ProjectID: uuid.New(), ChainID: 1})
	if err != nil {
		t.Fatalf("failed to create snapshot: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	db = openDB(t, filepath.Dir(file))
	if _, found, err := NewTrees(db).GetByID(ctx, treeID); err != nil || !found {
		t.Errorf("tree lost: %t, %v", found, err)
	}
	if got, found, err := NewSnapshots(db).GetByID(ctx, jobID); err != nil || !found || got.Status != snapshot.Pending {
		t.Errorf("snapshot lost: %v, %t, %v", got, found, err)
	}
}

func TestSqliteTrees_UnknownHashFunctionIsFatal(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())
	trees := NewTrees(db)
	tree, err := merkle.NewTree(nil, merkle.Keccak256)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	id, err := trees.StoreTree(ctx, tree, 1, geth.HexToAddress("0x02"), 10)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	if _, err := db.Exec("UPDATE merkle_tree SET hash_fn = 'SHA_256' WHERE id = ?", id.String()); err != nil {
		t.Fatalf("failed to corrupt tree: %v", err)
	}

	if _, _, err := trees.GetByID(ctx, id); !errors.Is(err, merkle.ErrUnknownHashFunction) {
		t.Errorf("wanted ErrUnknownHashFunction, got %v", err)
	}
}

func TestSqliteTrees_TamperedLeavesAreDetected(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, t.TempDir())
	trees := NewTrees(db)
	tree, err := merkle.NewTree([]merkle.HolderBalance{
		{Address: geth.HexToAddress("0x0a"), Balance: big.NewInt(10)},
		{Address: geth.HexToAddress("0x0b"), Balance: big.NewInt(20)},
	}, merkle.Keccak256)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	id, err := trees.StoreTree(ctx, tree, 1, geth.HexToAddress("0x02"), 10)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	if _, err := db.Exec("UPDATE merkle_tree_leaf SET balance = '21' WHERE tree_id = ? AND leaf_index = 1", id.String()); err != nil {
		t.Fatalf("failed to tamper with leaf: %v", err)
	}

	if _, _, err := trees.GetByID(ctx, id); !errors.Is(err, merkle.ErrTreeMismatch) {
		t.Errorf("wanted ErrTreeMismatch, got %v", err)
	}
}
