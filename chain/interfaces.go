package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:generate mockgen -source interfaces.go -destination interfaces_mocks.go -package chain

// ChainReader is the part of a blockchain node's RPC interface used by the
// Oracle. It is implemented by *ethclient.Client.
type ChainReader interface {
	// FilterLogs returns the logs matching the query.
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// CallContract executes a read-only call at the given block.
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

	// NonceAt returns the nonce of the account at the given block.
	NonceAt(ctx context.Context, account geth.Address, blockNumber *big.Int) (uint64, error)

	// BlockNumber returns the number of the latest block.
	BlockNumber(ctx context.Context) (uint64, error)
}
