package api

import (
	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	"github.com/google/uuid"
)

type createSnapshotRequest struct {
	Name                   string   `json:"name"`
	ProjectID              string   `json:"project_id"`
	ChainID                int64    `json:"chain_id"`
	AssetAddress           string   `json:"asset_address"`
	PayoutBlockNumber      *uint64  `json:"payout_block_number"`
	IgnoredHolderAddresses []string `json:"ignored_holder_addresses"`
}

type createSnapshotResponse struct {
	ID uuid.UUID `json:"id"`
}

type snapshotResponse struct {
	ID                     uuid.UUID              `json:"id"`
	ProjectID              uuid.UUID              `json:"project_id"`
	Name                   string                 `json:"name"`
	ChainID                common.ChainID         `json:"chain_id"`
	Status                 snapshot.Status        `json:"status"`
	FailureCause           *snapshot.FailureCause `json:"failure_cause"`
	Asset                  string                 `json:"asset"`
	TotalAssetAmount       *string                `json:"total_asset_amount"`
	IgnoredHolderAddresses []string               `json:"ignored_holder_addresses"`
	MerkleRoot             *merkle.Hash           `json:"asset_snapshot_merkle_root"`
	MerkleDepth            *int                   `json:"asset_snapshot_merkle_depth"`
	MerkleHashFunction     *merkle.HashFunction   `json:"asset_snapshot_merkle_hash_fn"`
	BlockNumber            common.BlockNumber     `json:"asset_snapshot_block_number"`
	MerkleIpfsHash         *string                `json:"asset_snapshot_merkle_ipfs_hash"`
}

func toSnapshotResponse(s snapshot.FullSnapshot) snapshotResponse {
	ignored := make([]string, 0, len(s.IgnoredHolderAddresses))
	for _, a := range s.IgnoredHolderAddresses {
		ignored = append(ignored, common.LowerHex(a))
	}
	res := snapshotResponse{
		ID:                     s.ID,
		ProjectID:              s.ProjectID,
		Name:                   s.Name,
		ChainID:                s.ChainID,
		Status:                 s.Status,
		FailureCause:           s.FailureCause,
		Asset:                  common.LowerHex(s.AssetContractAddress),
		IgnoredHolderAddresses: ignored,
		BlockNumber:            s.TargetBlock,
	}
	if s.Result != nil {
		total := s.Result.TotalAssetAmount.String()
		ipfsHash := s.Result.IpfsHash
		res.TotalAssetAmount = &total
		res.MerkleIpfsHash = &ipfsHash
	}
	if s.Tree != nil {
		root, depth, fn := s.Tree.RootHash(), s.Tree.Depth(), s.Tree.HashFunction()
		res.MerkleRoot = &root
		res.MerkleDepth = &depth
		res.MerkleHashFunction = &fn
	}
	return res
}

type snapshotsResponse struct {
	AssetSnapshots []snapshotResponse `json:"asset_snapshots"`
}

type pathResponse struct {
	WalletAddress string               `json:"wallet_address"`
	WalletBalance string               `json:"wallet_balance"`
	Path          []merkle.PathSegment `json:"path"`
	Proof         []merkle.Hash        `json:"proof"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
