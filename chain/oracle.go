// Package chain provides the blockchain side of asset snapshots: discovery
// of token holders and their balances, and of contract deployment blocks.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/common/interrupt"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/dev3-labs/assetsnap/snapshot"
	"github.com/ethereum/go-ethereum"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/exp/maps"
)

// limitExceededCode is the JSON-RPC error code nodes use for responses
// exceeding their size limits.
const limitExceededCode = -32005

// logLimitMessages are returned by providers that do not set the error code.
var logLimitMessages = []string{
	"Log response size exceeded",
	"query returned more than 10000 results",
}

// Config configures the access to one chain.
type Config struct {
	// URL is the RPC endpoint of the node.
	URL string
	// LogBlockRange limits the number of blocks covered by a single log
	// query; 0 queries the whole range at once.
	LogBlockRange uint64
}

// Oracle reads token holders of one chain.
type Oracle struct {
	reader ChainReader
	config Config
	log    log.Logger
}

func NewOracle(reader ChainReader, config Config) *Oracle {
	return &Oracle{
		reader: reader,
		config: config,
		log:    log.New("module", "chain"),
	}
}

// Dial connects to the node of the given configuration.
func Dial(ctx context.Context, config Config) (*Oracle, error) {
	client, err := ethclient.DialContext(ctx, config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s; %w", config.URL, err)
	}
	return NewOracle(client, config), nil
}

// HolderBalances lists the non-zero balances at block end of all accounts
// that sent or received tokens in [start, end], in the order of their first
// transfer. Ignored accounts are left out.
func (o *Oracle) HolderBalances(ctx context.Context, contract geth.Address, ignored []geth.Address, start, end common.BlockNumber) ([]merkle.HolderBalance, error) {
	accounts, err := o.accounts(ctx, contract, start, end)
	if err != nil {
		return nil, err
	}
	skip := make(map[geth.Address]struct{}, len(ignored))
	for _, a := range ignored {
		skip[a] = struct{}{}
	}

	res := make([]merkle.HolderBalance, 0, len(accounts))
	for _, account := range accounts {
		if interrupt.IsCancelled(ctx) {
			return nil, ctx.Err()
		}
		if _, found := skip[account]; found {
			continue
		}
		balance, err := o.balanceOf(ctx, contract, account, end)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch balance of %v; %w", account, err)
		}
		if balance.Sign() > 0 {
			res = append(res, merkle.HolderBalance{Address: account, Balance: balance})
		}
	}
	o.log.Debug("Fetched holder balances", "contract", contract, "accounts", len(accounts), "holders", len(res))
	return res, nil
}

// accounts lists the senders and receivers of transfers in [start, end].
func (o *Oracle) accounts(ctx context.Context, contract geth.Address, start, end common.BlockNumber) ([]geth.Address, error) {
	seen := map[geth.Address]struct{}{}
	res := []geth.Address{}
	add := func(topic geth.Hash) {
		account := geth.BytesToAddress(topic.Bytes())
		if _, found := seen[account]; !found {
			seen[account] = struct{}{}
			res = append(res, account)
		}
	}

	for from := start; from <= end; {
		if interrupt.IsCancelled(ctx) {
			return nil, ctx.Err()
		}
		to := end
		if r := o.config.LogBlockRange; r > 0 && uint64(end-from) >= r {
			to = from + common.BlockNumber(r-1)
		}
		logs, err := o.reader.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: from.Big(),
			ToBlock:   to.Big(),
			Addresses: []geth.Address{contract},
			Topics:    [][]geth.Hash{{TransferTopic}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch transfer logs of blocks [%d, %d]; %w", from, to, classify(err))
		}
		for _, l := range logs {
			if l.Removed || len(l.Topics) < 3 {
				continue
			}
			add(l.Topics[1])
			add(l.Topics[2])
		}
		if to == end {
			break
		}
		from = to + 1
	}
	return res, nil
}

func (o *Oracle) balanceOf(ctx context.Context, contract, account geth.Address, block common.BlockNumber) (*big.Int, error) {
	data, err := erc20.Pack("balanceOf", account)
	if err != nil {
		return nil, err
	}
	out, err := o.reader.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, block.Big())
	if err != nil {
		return nil, err
	}
	values, err := erc20.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("invalid balanceOf result %x; %w", out, err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid balanceOf result %x", out)
	}
	return balance, nil
}

// DeploymentBlock finds the block in which the contract was deployed. A
// deployed contract has a nonce of at least one, so the block is located by
// a binary search for the first block with a non-zero nonce.
func (o *Oracle) DeploymentBlock(ctx context.Context, contract geth.Address) (common.BlockNumber, bool, error) {
	latest, err := o.reader.BlockNumber(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch latest block; %w", err)
	}
	deployed := func(block uint64) (bool, error) {
		nonce, err := o.reader.NonceAt(ctx, contract, new(big.Int).SetUint64(block))
		if err != nil {
			return false, fmt.Errorf("failed to fetch nonce of %v at block %d; %w", contract, block, err)
		}
		return nonce > 0, nil
	}

	if found, err := deployed(latest); err != nil || !found {
		return 0, false, err
	}
	low, high := uint64(0), latest
	for low < high {
		mid := low + (high-low)/2
		found, err := deployed(mid)
		if err != nil {
			return 0, false, err
		}
		if found {
			high = mid
		} else {
			low = mid + 1
		}
	}
	o.log.Debug("Found deployment block", "contract", contract, "block", low)
	return common.BlockNumber(low), true, nil
}

// classify marks errors of nodes refusing to serve a log query because of
// the size of the response.
func classify(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == limitExceededCode {
		return fmt.Errorf("%w; %w", snapshot.ErrLogResponseLimit, err)
	}
	for _, msg := range logLimitMessages {
		if strings.Contains(err.Error(), msg) {
			return fmt.Errorf("%w; %w", snapshot.ErrLogResponseLimit, err)
		}
	}
	return err
}

// ErrUnknownChain is returned for chains without a registered oracle.
const ErrUnknownChain = common.ConstError("unknown chain")

// Registry is a snapshot.HolderOracle serving several chains.
type Registry struct {
	oracles map[common.ChainID]*Oracle
}

func NewRegistry() *Registry {
	return &Registry{oracles: map[common.ChainID]*Oracle{}}
}

func (r *Registry) Register(chainID common.ChainID, oracle *Oracle) {
	r.oracles[chainID] = oracle
}

// Chains lists the registered chains in no particular order.
func (r *Registry) Chains() []common.ChainID {
	return maps.Keys(r.oracles)
}

func (r *Registry) get(chainID common.ChainID) (*Oracle, error) {
	oracle, found := r.oracles[chainID]
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}
	return oracle, nil
}

func (r *Registry) FetchHolderBalances(ctx context.Context, chainID common.ChainID, contract geth.Address, ignored []geth.Address, start, end common.BlockNumber) ([]merkle.HolderBalance, error) {
	oracle, err := r.get(chainID)
	if err != nil {
		return nil, err
	}
	return oracle.HolderBalances(ctx, contract, ignored, start, end)
}

func (r *Registry) FindDeploymentBlock(ctx context.Context, chainID common.ChainID, contract geth.Address) (common.BlockNumber, bool, error) {
	oracle, err := r.get(chainID)
	if err != nil {
		return 0, false, err
	}
	return oracle.DeploymentBlock(ctx, contract)
}
