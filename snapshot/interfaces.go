package snapshot

import (
	"context"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

//go:generate mockgen -source interfaces.go -destination interfaces_mocks.go -package snapshot

// ErrLogResponseLimit is reported by a HolderOracle when the node refused
// to return the logs of the requested block range because of their size.
const ErrLogResponseLimit = common.ConstError("log response size limit exceeded")

// Repository stores snapshot jobs and their state.
type Repository interface {
	// CreatePending stores a new snapshot in the PENDING state.
	CreatePending(ctx context.Context, params CreateParams) (uuid.UUID, error)

	// GetPending claims one pending snapshot for processing. Claiming is
	// atomic; a claimed snapshot is not returned again unless released.
	GetPending(ctx context.Context) (*PendingSnapshot, bool, error)

	// ReleaseClaims makes claimed but unfinished snapshots available again.
	// It returns the number of released snapshots.
	ReleaseClaims(ctx context.Context) (int, error)

	// Complete moves a pending snapshot to SUCCESS.
	Complete(ctx context.Context, id uuid.UUID, result Result) error

	// Fail moves a pending snapshot to FAILED.
	Fail(ctx context.Context, id uuid.UUID, cause FailureCause) error

	GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, bool, error)

	// GetAllByProjectAndStatuses lists the snapshots of a project in one of
	// the given states; no states means all states.
	GetAllByProjectAndStatuses(ctx context.Context, projectID uuid.UUID, statuses []Status) ([]Snapshot, error)
}

// TreeRepository persists Merkle trees content addressed by their root
// hash per chain and asset contract.
type TreeRepository interface {
	// FetchTree looks up the tree with the given content address.
	FetchTree(ctx context.Context, params FetchTreeParams) (*StoredTree, bool, error)

	// StoreTree persists the tree unless a tree with the same root already
	// exists for the chain and contract, in which case the id of the
	// existing tree is returned. Concurrent calls for the same root yield
	// the same id.
	StoreTree(ctx context.Context, tree *merkle.Tree, chainID common.ChainID, assetContractAddress geth.Address, blockNumber common.BlockNumber) (uuid.UUID, error)

	GetByID(ctx context.Context, id uuid.UUID) (*StoredTree, bool, error)

	// ContainsAddress checks whether the addressed tree has a leaf of the
	// given wallet.
	ContainsAddress(ctx context.Context, params FetchTreeParams, wallet geth.Address) (bool, error)
}

// HolderOracle provides token holder balances from a blockchain.
type HolderOracle interface {
	// FetchHolderBalances lists the non-zero balances at endBlock of all
	// holders that received tokens in [startBlock, endBlock], except the
	// ignored ones. A refusal of the node to serve the logs of the range is
	// reported as ErrLogResponseLimit.
	FetchHolderBalances(ctx context.Context, chainID common.ChainID, contract geth.Address, ignored []geth.Address, startBlock, endBlock common.BlockNumber) ([]merkle.HolderBalance, error)

	// FindDeploymentBlock locates the block the contract was deployed in.
	FindDeploymentBlock(ctx context.Context, chainID common.ChainID, contract geth.Address) (common.BlockNumber, bool, error)
}

// Pinner publishes JSON documents to IPFS.
type Pinner interface {
	// PinJSON pins the document and returns its content hash.
	PinJSON(ctx context.Context, document []byte) (string, error)
}
