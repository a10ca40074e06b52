package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	kInsertTreeStmt = `INSERT INTO merkle_tree(id, chain_id, asset_contract_address, root_hash, hash_fn, depth, block_number)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT (chain_id, asset_contract_address, root_hash) DO NOTHING`
	kInsertLeafStmt   = "INSERT INTO merkle_tree_leaf(tree_id, leaf_index, address, balance) VALUES (?,?,?,?)"
	kTreeColumns      = "id, chain_id, asset_contract_address, root_hash, hash_fn, depth, block_number"
	kGetTreeByKeyStmt = "SELECT " + kTreeColumns + " FROM merkle_tree WHERE chain_id = ? AND asset_contract_address = ? AND root_hash = ?"
	kGetTreeIDStmt    = "SELECT id FROM merkle_tree WHERE chain_id = ? AND asset_contract_address = ? AND root_hash = ?"
	kGetTreeByIDStmt  = "SELECT " + kTreeColumns + " FROM merkle_tree WHERE id = ?"
	kGetLeavesStmt    = "SELECT address, balance FROM merkle_tree_leaf WHERE tree_id = ? ORDER BY leaf_index"
	kHasLeafStmt      = `SELECT COUNT(*) FROM merkle_tree_leaf l JOIN merkle_tree t ON t.id = l.tree_id
		WHERE t.chain_id = ? AND t.asset_contract_address = ? AND t.root_hash = ? AND l.address = ?`
)

// Trees is a snapshot.TreeRepository backed by SQLite. Trees are unique per
// chain, contract and root hash; the uniqueness is enforced by the database,
// so concurrent stores of the same tree yield the same id. Trees are rebuilt
// from their leaves when loaded and checked against the stored root.
type Trees struct {
	db *sql.DB
}

func NewTrees(db *sql.DB) *Trees {
	return &Trees{db: db}
}

func (t *Trees) StoreTree(ctx context.Context, tree *merkle.Tree, chainID common.ChainID, contract geth.Address, block common.BlockNumber) (uuid.UUID, error) {
	key := snapshot.FetchTreeParams{RootHash: tree.RootHash(), ChainID: chainID, AssetContractAddress: contract}
	id := uuid.New()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.UUID{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, kInsertTreeStmt,
		id.String(),
		int64(chainID),
		common.LowerHex(contract),
		tree.RootHash().String(),
		tree.HashFunction().String(),
		tree.Depth(),
		int64(block),
	)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to insert tree; %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return uuid.UUID{}, err
	}
	if inserted == 0 {
		var existing string
		if err := tx.QueryRowContext(ctx, kGetTreeIDStmt,
			int64(key.ChainID), common.LowerHex(key.AssetContractAddress), key.RootHash.String()).Scan(&existing); err != nil {
			return uuid.UUID{}, fmt.Errorf("failed to read existing tree; %w", err)
		}
		return uuid.Parse(existing)
	}

	stmt, err := tx.PrepareContext(ctx, kInsertLeafStmt)
	if err != nil {
		return uuid.UUID{}, err
	}
	defer stmt.Close()
	for i, holder := range tree.Holders() {
		if _, err := stmt.ExecContext(ctx, id.String(), i, common.LowerHex(holder.Address), holder.Balance.String()); err != nil {
			return uuid.UUID{}, fmt.Errorf("failed to insert leaf %d; %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to commit tree; %w", err)
	}
	return id, nil
}

func (t *Trees) FetchTree(ctx context.Context, params snapshot.FetchTreeParams) (*snapshot.StoredTree, bool, error) {
	row := t.db.QueryRowContext(ctx, kGetTreeByKeyStmt, int64(params.ChainID), common.LowerHex(params.AssetContractAddress), params.RootHash.String())
	return t.load(ctx, row)
}

func (t *Trees) GetByID(ctx context.Context, id uuid.UUID) (*snapshot.StoredTree, bool, error) {
	return t.load(ctx, t.db.QueryRowContext(ctx, kGetTreeByIDStmt, id.String()))
}

func (t *Trees) ContainsAddress(ctx context.Context, params snapshot.FetchTreeParams, wallet geth.Address) (bool, error) {
	var count int
	err := t.db.QueryRowContext(ctx, kHasLeafStmt,
		int64(params.ChainID),
		common.LowerHex(params.AssetContractAddress),
		params.RootHash.String(),
		common.LowerHex(wallet),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *Trees) load(ctx context.Context, row *sql.Row) (*snapshot.StoredTree, bool, error) {
	var (
		id, contract, root, hashFn string
		chainID, block             int64
		depth                      int
	)
	err := row.Scan(&id, &chainID, &contract, &root, &hashFn, &depth, &block)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	res := &snapshot.StoredTree{
		ChainID:     common.ChainID(chainID),
		BlockNumber: common.BlockNumber(block),
	}
	if res.ID, err = uuid.Parse(id); err != nil {
		return nil, false, fmt.Errorf("invalid tree id %q; %w", id, err)
	}
	if res.AssetContractAddress, err = common.ParseAddress(contract); err != nil {
		return nil, false, err
	}
	fn, err := merkle.ParseHashFunction(hashFn)
	if err != nil {
		return nil, false, fmt.Errorf("tree %s is corrupted; %w", id, err)
	}

	balances, err := t.leaves(ctx, id)
	if err != nil {
		return nil, false, err
	}
	tree, err := merkle.NewTree(balances, fn)
	if err != nil {
		return nil, false, fmt.Errorf("failed to rebuild tree %s; %w", id, err)
	}
	if tree.RootHash() != merkle.NewHash(root) || tree.Depth() != depth {
		return nil, false, fmt.Errorf("%w: tree %s recomputes to %v with depth %d, stored %s with depth %d", merkle.ErrTreeMismatch, id, tree.RootHash(), tree.Depth(), root, depth)
	}
	res.Tree = tree
	return res, true, nil
}

func (t *Trees) leaves(ctx context.Context, treeID string) ([]merkle.HolderBalance, error) {
	rows, err := t.db.QueryContext(ctx, kGetLeavesStmt, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []merkle.HolderBalance{}
	for rows.Next() {
		var address, balance string
		if err := rows.Scan(&address, &balance); err != nil {
			return nil, err
		}
		a, err := common.ParseAddress(address)
		if err != nil {
			return nil, err
		}
		b, ok := new(big.Int).SetString(balance, 10)
		if !ok {
			return nil, fmt.Errorf("invalid balance %q in tree %s", balance, treeID)
		}
		res = append(res, merkle.HolderBalance{Address: a, Balance: b})
	}
	return res, rows.Err()
}
