package memory

import (
	"context"
	"math/big"
	"sync"

	"github.com/dev3-labs/assetsnap/snapshot"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

type snapshotRecord struct {
	snapshot snapshot.Snapshot
	claimed  bool
}

// Snapshots is an in-memory snapshot.Repository. Snapshots are claimed in
// the order of their creation.
type Snapshots struct {
	mu      sync.Mutex
	records map[uuid.UUID]*snapshotRecord
	order   []uuid.UUID
}

func NewSnapshots() *Snapshots {
	return &Snapshots{records: map[uuid.UUID]*snapshotRecord{}}
}

func (s *Snapshots) CreatePending(_ context.Context, params snapshot.CreateParams) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	params.IgnoredHolderAddresses = slices.Clone(params.IgnoredHolderAddresses)
	s.records[id] = &snapshotRecord{snapshot: snapshot.Snapshot{
		ID:           id,
		CreateParams: params,
		Status:       snapshot.Pending,
	}}
	s.order = append(s.order, id)
	return id, nil
}

func (s *Snapshots) GetPending(_ context.Context) (*snapshot.PendingSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		r := s.records[id]
		if r.snapshot.Status != snapshot.Pending || r.claimed {
			continue
		}
		r.claimed = true
		params := r.snapshot.CreateParams
		params.IgnoredHolderAddresses = slices.Clone(params.IgnoredHolderAddresses)
		return &snapshot.PendingSnapshot{ID: id, CreateParams: params}, true, nil
	}
	return nil, false, nil
}

func (s *Snapshots) ReleaseClaims(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	released := 0
	for _, r := range s.records {
		if r.claimed && r.snapshot.Status == snapshot.Pending {
			r.claimed = false
			released++
		}
	}
	return released, nil
}

func (s *Snapshots) Complete(_ context.Context, id uuid.UUID, result snapshot.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.pending(id)
	if err != nil {
		return err
	}
	total := new(big.Int)
	if result.TotalAssetAmount != nil {
		total.Set(result.TotalAssetAmount)
	}
	result.TotalAssetAmount = total
	r.snapshot.Status = snapshot.Success
	r.snapshot.Result = &result
	return nil
}

func (s *Snapshots) Fail(_ context.Context, id uuid.UUID, cause snapshot.FailureCause) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.pending(id)
	if err != nil {
		return err
	}
	r.snapshot.Status = snapshot.Failed
	r.snapshot.FailureCause = &cause
	return nil
}

func (s *Snapshots) pending(id uuid.UUID) (*snapshotRecord, error) {
	r, found := s.records[id]
	if !found {
		return nil, snapshot.ErrNotFound
	}
	if r.snapshot.Status != snapshot.Pending {
		return nil, snapshot.ErrNotPending
	}
	return r, nil
}

func (s *Snapshots) GetByID(_ context.Context, id uuid.UUID) (*snapshot.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, found := s.records[id]
	if !found {
		return nil, false, nil
	}
	res := copySnapshot(r.snapshot)
	return &res, true, nil
}

func (s *Snapshots) GetAllByProjectAndStatuses(_ context.Context, projectID uuid.UUID, statuses []snapshot.Status) ([]snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []snapshot.Snapshot{}
	for _, id := range s.order {
		r := s.records[id]
		if r.snapshot.ProjectID != projectID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, r.snapshot.Status) {
			continue
		}
		res = append(res, copySnapshot(r.snapshot))
	}
	return res, nil
}

func copySnapshot(s snapshot.Snapshot) snapshot.Snapshot {
	s.IgnoredHolderAddresses = slices.Clone(s.IgnoredHolderAddresses)
	if s.IgnoredHolderAddresses == nil {
		s.IgnoredHolderAddresses = []geth.Address{}
	}
	if s.FailureCause != nil {
		cause := *s.FailureCause
		s.FailureCause = &cause
	}
	if s.Result != nil {
		result := *s.Result
		result.TotalAssetAmount = new(big.Int).Set(result.TotalAssetAmount)
		s.Result = &result
	}
	return s
}
