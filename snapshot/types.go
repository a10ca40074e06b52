package snapshot

import (
	"fmt"
	"math/big"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	// ErrNotFound is returned for unknown snapshots or trees.
	ErrNotFound = common.ConstError("not found")
	// ErrNotPending is returned when completing or failing a snapshot that
	// already reached a terminal state.
	ErrNotPending = common.ConstError("snapshot is not pending")
	// ErrUnknownStatus is returned for unknown persisted status values.
	ErrUnknownStatus = common.ConstError("unknown snapshot status")
	// ErrUnknownFailureCause is returned for unknown persisted failure causes.
	ErrUnknownFailureCause = common.ConstError("unknown failure cause")
)

// Status is the processing state of an asset snapshot.
type Status string

const (
	Pending Status = "PENDING"
	Success Status = "SUCCESS"
	Failed  Status = "FAILED"
)

func ParseStatus(s string) (Status, error) {
	switch status := Status(s); status {
	case Pending, Success, Failed:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// FailureCause classifies why a snapshot failed.
type FailureCause string

const (
	// LogResponseLimit means the blockchain node refused to return the
	// holder logs of the requested block range.
	LogResponseLimit FailureCause = "LOG_RESPONSE_LIMIT"
	Other            FailureCause = "OTHER"
)

func ParseFailureCause(s string) (FailureCause, error) {
	switch cause := FailureCause(s); cause {
	case LogResponseLimit, Other:
		return cause, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFailureCause, s)
}

// CreateParams are the parameters of a new snapshot request.
type CreateParams struct {
	Name                   string
	ProjectID              uuid.UUID
	ChainID                common.ChainID
	AssetContractAddress   geth.Address
	TargetBlock            common.BlockNumber
	IgnoredHolderAddresses []geth.Address
}

// PendingSnapshot is a snapshot job claimed for processing.
type PendingSnapshot struct {
	ID uuid.UUID
	CreateParams
}

// Result is the outcome of a successfully processed snapshot.
type Result struct {
	TotalAssetAmount *big.Int
	TreeID           uuid.UUID
	IpfsHash         string
}

// Snapshot is a snapshot job in any state. Result is set for successful
// snapshots, FailureCause for failed ones.
type Snapshot struct {
	ID uuid.UUID
	CreateParams
	Status       Status
	FailureCause *FailureCause
	Result       *Result
}

// FetchTreeParams is the content address of a stored tree.
type FetchTreeParams struct {
	RootHash             merkle.Hash
	ChainID              common.ChainID
	AssetContractAddress geth.Address
}

// StoredTree is a tree persisted for a chain and asset contract.
type StoredTree struct {
	ID                   uuid.UUID
	ChainID              common.ChainID
	AssetContractAddress geth.Address
	BlockNumber          common.BlockNumber
	Tree                 *merkle.Tree
}

// FullSnapshot is a snapshot together with the tree it produced, if any.
type FullSnapshot struct {
	Snapshot
	Tree *merkle.Tree
}
