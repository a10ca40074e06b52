package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	kSnapshotColumns = "id, name, project_id, chain_id, asset_contract_address, target_block, ignored_holder_addresses, status, failure_cause, total_asset_amount, tree_id, ipfs_hash"

	kInsertSnapshotStmt = `INSERT INTO asset_snapshot(id, name, project_id, chain_id, asset_contract_address, target_block, ignored_holder_addresses, status)
		VALUES (?,?,?,?,?,?,?,'PENDING')`
	kClaimSnapshotStmt = `UPDATE asset_snapshot SET claimed = 1
		WHERE rowid = (SELECT rowid FROM asset_snapshot WHERE status = 'PENDING' AND claimed = 0 ORDER BY rowid LIMIT 1)
		RETURNING ` + kSnapshotColumns
	kReleaseClaimsStmt  = "UPDATE asset_snapshot SET claimed = 0 WHERE status = 'PENDING' AND claimed = 1"
	kCompleteStmt       = "UPDATE asset_snapshot SET status = 'SUCCESS', claimed = 0, total_asset_amount = ?, tree_id = ?, ipfs_hash = ? WHERE id = ? AND status = 'PENDING'"
	kFailStmt           = "UPDATE asset_snapshot SET status = 'FAILED', claimed = 0, failure_cause = ? WHERE id = ? AND status = 'PENDING'"
	kGetSnapshotStmt    = "SELECT " + kSnapshotColumns + " FROM asset_snapshot WHERE id = ?"
	kGetByProjectStmt   = "SELECT " + kSnapshotColumns + " FROM asset_snapshot WHERE project_id = ? ORDER BY rowid"
	kSnapshotExistsStmt = "SELECT COUNT(*) FROM asset_snapshot WHERE id = ?"
)

// Snapshots is a snapshot.Repository backed by SQLite. Pending snapshots are
// claimed with a single UPDATE statement, so several workers sharing the
// database never claim the same snapshot.
type Snapshots struct {
	db *sql.DB
}

func NewSnapshots(db *sql.DB) *Snapshots {
	return &Snapshots{db: db}
}

func (s *Snapshots) CreatePending(ctx context.Context, params snapshot.CreateParams) (uuid.UUID, error) {
	ignored, err := encodeAddresses(params.IgnoredHolderAddresses)
	if err != nil {
		return uuid.UUID{}, err
	}
	id := uuid.New()
	_, err = s.db.ExecContext(ctx, kInsertSnapshotStmt,
		id.String(),
		params.Name,
		params.ProjectID.String(),
		int64(params.ChainID),
		common.LowerHex(params.AssetContractAddress),
		int64(params.TargetBlock),
		ignored,
	)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to insert snapshot; %w", err)
	}
	return id, nil
}

func (s *Snapshots) GetPending(ctx context.Context) (*snapshot.PendingSnapshot, bool, error) {
	res, err := scanSnapshot(s.db.QueryRowContext(ctx, kClaimSnapshotStmt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim snapshot; %w", err)
	}
	return &snapshot.PendingSnapshot{ID: res.ID, CreateParams: res.CreateParams}, true, nil
}

func (s *Snapshots) ReleaseClaims(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, kReleaseClaimsStmt)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Snapshots) Complete(ctx context.Context, id uuid.UUID, result snapshot.Result) error {
	total := "0"
	if result.TotalAssetAmount != nil {
		total = result.TotalAssetAmount.String()
	}
	res, err := s.db.ExecContext(ctx, kCompleteStmt, total, result.TreeID.String(), result.IpfsHash, id.String())
	if err != nil {
		return fmt.Errorf("failed to complete snapshot; %w", err)
	}
	return s.checkUpdated(ctx, id, res)
}

func (s *Snapshots) Fail(ctx context.Context, id uuid.UUID, cause snapshot.FailureCause) error {
	res, err := s.db.ExecContext(ctx, kFailStmt, string(cause), id.String())
	if err != nil {
		return fmt.Errorf("failed to fail snapshot; %w", err)
	}
	return s.checkUpdated(ctx, id, res)
}

// checkUpdated distinguishes unknown snapshots from finished ones if an
// update of a pending snapshot matched no row.
func (s *Snapshots) checkUpdated(ctx context.Context, id uuid.UUID, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, kSnapshotExistsStmt, id.String()).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return snapshot.ErrNotFound
	}
	return snapshot.ErrNotPending
}

func (s *Snapshots) GetByID(ctx context.Context, id uuid.UUID) (*snapshot.Snapshot, bool, error) {
	res, err := scanSnapshot(s.db.QueryRowContext(ctx, kGetSnapshotStmt, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (s *Snapshots) GetAllByProjectAndStatuses(ctx context.Context, projectID uuid.UUID, statuses []snapshot.Status) ([]snapshot.Snapshot, error) {
	query := kGetByProjectStmt
	args := []any{projectID.String()}
	if len(statuses) > 0 {
		query = "SELECT " + kSnapshotColumns + " FROM asset_snapshot WHERE project_id = ? AND status IN (?" + strings.Repeat(",?", len(statuses)-1) + ") ORDER BY rowid"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []snapshot.Snapshot{}
	for rows.Next() {
		cur, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *cur)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*snapshot.Snapshot, error) {
	var (
		id, name, projectID, contract, ignored, status string
		chainID, targetBlock                           int64
		cause, total, treeID, ipfsHash                 sql.NullString
	)
	if err := row.Scan(&id, &name, &projectID, &chainID, &contract, &targetBlock, &ignored, &status, &cause, &total, &treeID, &ipfsHash); err != nil {
		return nil, err
	}

	res := &snapshot.Snapshot{}
	var err error
	if res.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q; %w", id, err)
	}
	if res.ProjectID, err = uuid.Parse(projectID); err != nil {
		return nil, fmt.Errorf("invalid project id %q; %w", projectID, err)
	}
	if res.AssetContractAddress, err = common.ParseAddress(contract); err != nil {
		return nil, err
	}
	if res.IgnoredHolderAddresses, err = decodeAddresses(ignored); err != nil {
		return nil, err
	}
	if res.Status, err = snapshot.ParseStatus(status); err != nil {
		return nil, err
	}
	res.Name = name
	res.ChainID = common.ChainID(chainID)
	res.TargetBlock = common.BlockNumber(targetBlock)

	if cause.Valid {
		c, err := snapshot.ParseFailureCause(cause.String)
		if err != nil {
			return nil, err
		}
		res.FailureCause = &c
	}
	if res.Status == snapshot.Success {
		amount, ok := new(big.Int).SetString(total.String, 10)
		if !ok {
			return nil, fmt.Errorf("invalid total asset amount %q of snapshot %s", total.String, id)
		}
		tree, err := uuid.Parse(treeID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid tree id %q of snapshot %s; %w", treeID.String, id, err)
		}
		res.Result = &snapshot.Result{TotalAssetAmount: amount, TreeID: tree, IpfsHash: ipfsHash.String}
	}
	return res, nil
}

func encodeAddresses(addresses []geth.Address) (string, error) {
	list := make([]string, 0, len(addresses))
	for _, a := range addresses {
		list = append(list, common.LowerHex(a))
	}
	data, err := json.Marshal(list)
	return string(data), err
}

func decodeAddresses(data string) ([]geth.Address, error) {
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("invalid address list %q; %w", data, err)
	}
	res := make([]geth.Address, 0, len(list))
	for _, s := range list {
		a, err := common.ParseAddress(s)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}
