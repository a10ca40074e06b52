package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/common/ticker"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/google/uuid"
)

const (
	// ErrQueueRunning is returned when starting a queue twice.
	ErrQueueRunning = common.ConstError("queue is already running")
	// ErrQueueNotRunning is returned when stopping a queue that was not started.
	ErrQueueNotRunning = common.ConstError("queue is not running")
)

// TreeHashFunction is the hash function of all trees built by the queue.
const TreeHashFunction = merkle.Keccak256

// QueueConfig configures the polling of the queue.
type QueueConfig struct {
	// InitialDelay is the time between starting the queue and the first poll.
	InitialDelay time.Duration
	// Polling is the period of the polls after the first one.
	Polling time.Duration
	// Metrics is the registry of the queue metrics; nil selects the default
	// registry.
	Metrics metrics.Registry
}

func (c QueueConfig) defaults() QueueConfig {
	if c.InitialDelay <= 0 {
		c.InitialDelay = 15 * time.Second
	}
	if c.Polling <= 0 {
		c.Polling = 5 * time.Second
	}
	if c.Metrics == nil {
		c.Metrics = metrics.DefaultRegistry
	}
	return c
}

// Queue accepts snapshot requests and processes them one at a time in the
// background. A job is claimed from the Repository, the balances of the
// holders are fetched from the HolderOracle, the resulting tree is stored in
// the TreeRepository and published through the Pinner. Each job ends in
// SUCCESS or FAILED and is never retried.
type Queue struct {
	repo   Repository
	trees  TreeRepository
	oracle HolderOracle
	pinner Pinner
	config QueueConfig

	log     log.Logger
	metrics queueMetrics

	mu     sync.Mutex
	ticker ticker.Ticker
	stop   chan struct{}
	done   chan struct{}
}

func NewQueue(repo Repository, trees TreeRepository, oracle HolderOracle, pinner Pinner, config QueueConfig) *Queue {
	config = config.defaults()
	return &Queue{
		repo:    repo,
		trees:   trees,
		oracle:  oracle,
		pinner:  pinner,
		config:  config,
		log:     log.New("module", "snapshot-queue"),
		metrics: registerQueueMetrics(config.Metrics),
	}
}

// NewTicker creates the ticker polling with the configured delays.
func (q *Queue) NewTicker() ticker.Ticker {
	return ticker.NewTimeTicker(q.config.InitialDelay, q.config.Polling)
}

// Submit stores a new pending snapshot. It is picked up by a later poll.
func (q *Queue) Submit(ctx context.Context, params CreateParams) (uuid.UUID, error) {
	id, err := q.repo.CreatePending(ctx, params)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create snapshot; %w", err)
	}
	q.log.Info("Snapshot submitted", "id", id, "chain", params.ChainID, "contract", params.AssetContractAddress, "block", params.TargetBlock)
	return id, nil
}

// GetByID returns the snapshot together with its tree, if it has one.
func (q *Queue) GetByID(ctx context.Context, id uuid.UUID) (*FullSnapshot, bool, error) {
	s, found, err := q.repo.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	full, err := q.resolveTree(ctx, *s)
	if err != nil {
		return nil, false, err
	}
	return &full, true, nil
}

// GetAllByProjectAndStatuses lists the snapshots of a project together
// with their trees.
func (q *Queue) GetAllByProjectAndStatuses(ctx context.Context, projectID uuid.UUID, statuses []Status) ([]FullSnapshot, error) {
	snapshots, err := q.repo.GetAllByProjectAndStatuses(ctx, projectID, statuses)
	if err != nil {
		return nil, err
	}
	res := make([]FullSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		full, err := q.resolveTree(ctx, s)
		if err != nil {
			return nil, err
		}
		res = append(res, full)
	}
	return res, nil
}

func (q *Queue) resolveTree(ctx context.Context, s Snapshot) (FullSnapshot, error) {
	if s.Result == nil {
		return FullSnapshot{Snapshot: s}, nil
	}
	stored, found, err := q.trees.GetByID(ctx, s.Result.TreeID)
	if err != nil {
		return FullSnapshot{}, fmt.Errorf("failed to load tree %v of snapshot %v; %w", s.Result.TreeID, s.ID, err)
	}
	if !found {
		return FullSnapshot{}, fmt.Errorf("%w: tree %v of snapshot %v", ErrNotFound, s.Result.TreeID, s.ID)
	}
	return FullSnapshot{Snapshot: s, Tree: stored.Tree}, nil
}

// ProcessNext claims and processes at most one pending snapshot. It
// reports whether a snapshot was processed. Failures of the job itself are
// recorded on the job; the returned error covers failures of the
// repository only.
func (q *Queue) ProcessNext(ctx context.Context) (bool, error) {
	job, found, err := q.repo.GetPending(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim pending snapshot; %w", err)
	}
	if !found {
		return false, nil
	}

	start := time.Now()
	defer q.metrics.duration.UpdateSince(start)
	q.metrics.processed.Inc(1)

	logger := q.log.New("id", job.ID)
	logger.Info("Processing snapshot", "chain", job.ChainID, "contract", job.AssetContractAddress, "block", job.TargetBlock)

	result, err := q.process(ctx, job, logger)
	if err != nil {
		cause := Classify(err)
		logger.Error("Snapshot failed", "cause", cause, "err", err)
		q.metrics.failed[cause].Inc(1)
		if err := q.repo.Fail(ctx, job.ID, cause); err != nil {
			return true, fmt.Errorf("failed to mark snapshot %v as failed; %w", job.ID, err)
		}
		return true, nil
	}

	if err := q.repo.Complete(ctx, job.ID, result); err != nil {
		return true, fmt.Errorf("failed to complete snapshot %v; %w", job.ID, err)
	}
	q.metrics.succeeded.Inc(1)
	logger.Info("Snapshot completed", "total", result.TotalAssetAmount, "tree", result.TreeID, "ipfs", result.IpfsHash, "elapsed", time.Since(start))
	return true, nil
}

func (q *Queue) process(ctx context.Context, job *PendingSnapshot, logger log.Logger) (Result, error) {
	startBlock, found, err := q.oracle.FindDeploymentBlock(ctx, job.ChainID, job.AssetContractAddress)
	if err != nil {
		return Result{}, fmt.Errorf("failed to find deployment block; %w", err)
	}
	if !found {
		logger.Debug("Deployment block not found, starting from genesis")
		startBlock = 0
	}

	balances, err := q.oracle.FetchHolderBalances(ctx, job.ChainID, job.AssetContractAddress, job.IgnoredHolderAddresses, startBlock, job.TargetBlock)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch holder balances in [%d, %d]; %w", startBlock, job.TargetBlock, err)
	}
	logger.Debug("Fetched holder balances", "from", startBlock, "to", job.TargetBlock, "holders", len(balances))

	total := new(big.Int)
	for _, b := range balances {
		if b.Balance != nil {
			total.Add(total, b.Balance)
		}
	}

	tree, err := merkle.NewTree(balances, TreeHashFunction)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build tree; %w", err)
	}

	treeID, err := q.storeTree(ctx, job, tree)
	if err != nil {
		return Result{}, err
	}

	document, err := json.Marshal(tree)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode tree; %w", err)
	}
	ipfsHash, err := q.pinner.PinJSON(ctx, document)
	if err != nil {
		return Result{}, fmt.Errorf("failed to pin tree; %w", err)
	}

	return Result{TotalAssetAmount: total, TreeID: treeID, IpfsHash: ipfsHash}, nil
}

func (q *Queue) storeTree(ctx context.Context, job *PendingSnapshot, tree *merkle.Tree) (uuid.UUID, error) {
	params := FetchTreeParams{
		RootHash:             tree.RootHash(),
		ChainID:              job.ChainID,
		AssetContractAddress: job.AssetContractAddress,
	}
	existing, found, err := q.trees.FetchTree(ctx, params)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to look up tree %v; %w", params.RootHash, err)
	}
	if found {
		return existing.ID, nil
	}
	// a concurrent store of the same root returns the id of the first one
	id, err := q.trees.StoreTree(ctx, tree, job.ChainID, job.AssetContractAddress, job.TargetBlock)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to store tree %v; %w", params.RootHash, err)
	}
	return id, nil
}

// Classify maps the error of a failed job to its failure cause.
func Classify(err error) FailureCause {
	if errors.Is(err, ErrLogResponseLimit) {
		return LogResponseLimit
	}
	return Other
}

// Start releases the claims left over by a previous run and starts polling
// for pending snapshots on every tick of the given ticker. At most one
// snapshot is processed per tick. Start fails with ErrQueueRunning while a
// snapshot abandoned by Stop is still being processed.
func (q *Queue) Start(ctx context.Context, t ticker.Ticker) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stop != nil {
		return ErrQueueRunning
	}
	if q.done != nil {
		// a snapshot abandoned by Stop still holds its claim
		select {
		case <-q.done:
		default:
			return ErrQueueRunning
		}
	}

	released, err := q.repo.ReleaseClaims(ctx)
	if err != nil {
		return fmt.Errorf("failed to release claimed snapshots; %w", err)
	}
	if released > 0 {
		q.log.Info("Released snapshots claimed by a previous run", "count", released)
	}

	q.ticker = t
	q.stop = make(chan struct{})
	q.done = make(chan struct{})
	go q.run(t, q.stop, q.done)
	return nil
}

func (q *Queue) run(t ticker.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-t.C():
		}
		select {
		case <-stop:
			return
		default:
		}
		// the job is not interrupted by Stop
		if _, err := q.ProcessNext(context.Background()); err != nil {
			q.log.Error("Failed to process snapshot", "err", err)
		}
	}
}

// Stop ends the polling. A snapshot being processed is allowed to finish
// until the context expires; after that it is abandoned and Stop returns
// the context's error. An abandoned snapshot keeps running in the
// background and the queue can not be started again before it finished.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stop == nil {
		q.mu.Unlock()
		return ErrQueueNotRunning
	}
	close(q.stop)
	q.ticker.Stop()
	done := q.done
	q.stop, q.ticker = nil, nil
	q.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.log.Warn("Abandoning snapshot in progress")
		return ctx.Err()
	}
}
