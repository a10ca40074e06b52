package snapshot

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type NamedRepositoryFactory struct {
	ImplementationName string
	Open               func(t *testing.T, directory string) Repository
}

type NamedTreeRepositoryFactory struct {
	ImplementationName string
	Open               func(t *testing.T, directory string) TreeRepository
}

// RunRepositoryTests runs a set of black-box unit tests against a
// Repository implementation defined by the given factory.
func RunRepositoryTests(t *testing.T, factory NamedRepositoryFactory) {
	wrap := func(test func(*testing.T, Repository)) func(*testing.T) {
		return func(t *testing.T) {
			t.Parallel()
			test(t, factory.Open(t, t.TempDir()))
		}
	}
	t.Run("CreatedSnapshotsArePending", wrap(testCreatedSnapshotsArePending))
	t.Run("PendingSnapshotsAreClaimedInCreationOrder", wrap(testPendingSnapshotsAreClaimedInCreationOrder))
	t.Run("ClaimedSnapshotsAreNotClaimedAgain", wrap(testClaimedSnapshotsAreNotClaimedAgain))
	t.Run("ConcurrentClaimsNeverShareASnapshot", wrap(testConcurrentClaimsNeverShareASnapshot))
	t.Run("ReleasedClaimsCanBeClaimedAgain", wrap(testReleasedClaimsCanBeClaimedAgain))
	t.Run("CompletedSnapshotsCarryTheirResult", wrap(testCompletedSnapshotsCarryTheirResult))
	t.Run("FailedSnapshotsCarryTheirCause", wrap(testFailedSnapshotsCarryTheirCause))
	t.Run("TerminalStatesAreFinal", wrap(testTerminalStatesAreFinal))
	t.Run("UnknownSnapshotsAreReported", wrap(testUnknownSnapshotsAreReported))
	t.Run("SnapshotsCanBeListedByProjectAndStatus", wrap(testSnapshotsCanBeListedByProjectAndStatus))
}

var (
	testContract = geth.HexToAddress("0x2aD2b5e1B43C6dF1C9dC3e3e14c5e3B0E6F5a1c2")
	testIgnored  = []geth.Address{
		geth.HexToAddress("0x0000000000000000000000000000000000000001"),
		geth.HexToAddress("0x00000000000000000000000000000000000000ff"),
	}
)

func testParams(projectID uuid.UUID, name string) CreateParams {
	return CreateParams{
		Name:                   name,
		ProjectID:              projectID,
		ChainID:                137,
		AssetContractAddress:   testContract,
		TargetBlock:            12345678,
		IgnoredHolderAddresses: testIgnored,
	}
}

func mustCreate(t *testing.T, repo Repository, params CreateParams) uuid.UUID {
	t.Helper()
	id, err := repo.CreatePending(context.Background(), params)
	if err != nil {
		t.Fatalf("failed to create snapshot: %v", err)
	}
	return id
}

func mustClaim(t *testing.T, repo Repository) *PendingSnapshot {
	t.Helper()
	job, found, err := repo.GetPending(context.Background())
	if err != nil {
		t.Fatalf("failed to claim snapshot: %v", err)
	}
	if !found {
		t.Fatalf("no pending snapshot found")
	}
	return job
}

func testCreatedSnapshotsArePending(t *testing.T, repo Repository) {
	params := testParams(uuid.New(), "first")
	id := mustCreate(t, repo, params)

	got, found, err := repo.GetByID(context.Background(), id)
	if err != nil || !found {
		t.Fatalf("failed to get snapshot: %t, %v", found, err)
	}
	if got.ID != id || got.Status != Pending {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if got.Name != params.Name || got.ProjectID != params.ProjectID || got.ChainID != params.ChainID ||
		got.AssetContractAddress != params.AssetContractAddress || got.TargetBlock != params.TargetBlock {
		t.Errorf("parameters not preserved, wanted %+v, got %+v", params, got.CreateParams)
	}
	if len(got.IgnoredHolderAddresses) != len(testIgnored) {
		t.Fatalf("ignored addresses not preserved: %v", got.IgnoredHolderAddresses)
	}
	for i, a := range testIgnored {
		if got.IgnoredHolderAddresses[i] != a {
			t.Errorf("ignored address %d: wanted %v, got %v", i, a, got.IgnoredHolderAddresses[i])
		}
	}
	if got.FailureCause != nil || got.Result != nil {
		t.Errorf("pending snapshot must not have an outcome: %+v", got)
	}
}

func testPendingSnapshotsAreClaimedInCreationOrder(t *testing.T, repo Repository) {
	project := uuid.New()
	first := mustCreate(t, repo, testParams(project, "first"))
	second := mustCreate(t, repo, testParams(project, "second"))

	if got := mustClaim(t, repo); got.ID != first || got.Name != "first" {
		t.Errorf("wanted first snapshot, got %+v", got)
	}
	if got := mustClaim(t, repo); got.ID != second || got.Name != "second" {
		t.Errorf("wanted second snapshot, got %+v", got)
	}
}

func testClaimedSnapshotsAreNotClaimedAgain(t *testing.T, repo Repository) {
	mustCreate(t, repo, testParams(uuid.New(), "only"))
	mustClaim(t, repo)
	if _, found, err := repo.GetPending(context.Background()); err != nil || found {
		t.Errorf("snapshot claimed twice: %t, %v", found, err)
	}
}

func testConcurrentClaimsNeverShareASnapshot(t *testing.T, repo Repository) {
	const N = 10
	for i := 0; i < N; i++ {
		mustCreate(t, repo, testParams(uuid.New(), "job"))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = map[uuid.UUID]int{}
	)
	for i := 0; i < 2*N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, found, err := repo.GetPending(context.Background())
			if err != nil {
				t.Errorf("failed to claim: %v", err)
				return
			}
			if found {
				mu.Lock()
				claimed[job.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claimed) != N {
		t.Errorf("wanted %d claimed snapshots, got %d", N, len(claimed))
	}
	for id, count := range claimed {
		if count != 1 {
			t.Errorf("snapshot %v claimed %d times", id, count)
		}
	}
}

func testReleasedClaimsCanBeClaimedAgain(t *testing.T, repo Repository) {
	ctx := context.Background()
	open := mustCreate(t, repo, testParams(uuid.New(), "open"))
	done := mustCreate(t, repo, testParams(uuid.New(), "done"))
	mustClaim(t, repo)
	mustClaim(t, repo)
	if err := repo.Fail(ctx, done, Other); err != nil {
		t.Fatalf("failed to fail snapshot: %v", err)
	}

	released, err := repo.ReleaseClaims(ctx)
	if err != nil {
		t.Fatalf("failed to release claims: %v", err)
	}
	if released != 1 {
		t.Errorf("wanted 1 released snapshot, got %d", released)
	}
	if got := mustClaim(t, repo); got.ID != open {
		t.Errorf("wanted snapshot %v, got %v", open, got.ID)
	}
}

func testCompletedSnapshotsCarryTheirResult(t *testing.T, repo Repository) {
	ctx := context.Background()
	id := mustCreate(t, repo, testParams(uuid.New(), "ok"))
	mustClaim(t, repo)

	total, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	result := Result{TotalAssetAmount: total, TreeID: uuid.New(), IpfsHash: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"}
	if err := repo.Complete(ctx, id, result); err != nil {
		t.Fatalf("failed to complete snapshot: %v", err)
	}

	got, found, err := repo.GetByID(ctx, id)
	if err != nil || !found {
		t.Fatalf("failed to get snapshot: %t, %v", found, err)
	}
	if got.Status != Success || got.Result == nil || got.FailureCause != nil {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if got.Result.TotalAssetAmount.Cmp(total) != 0 || got.Result.TreeID != result.TreeID || got.Result.IpfsHash != result.IpfsHash {
		t.Errorf("wanted result %+v, got %+v", result, got.Result)
	}
	if _, found, _ := repo.GetPending(ctx); found {
		t.Errorf("completed snapshot must not be pending")
	}
}

func testFailedSnapshotsCarryTheirCause(t *testing.T, repo Repository) {
	ctx := context.Background()
	for _, cause := range []FailureCause{LogResponseLimit, Other} {
		id := mustCreate(t, repo, testParams(uuid.New(), string(cause)))
		mustClaim(t, repo)
		if err := repo.Fail(ctx, id, cause); err != nil {
			t.Fatalf("failed to fail snapshot: %v", err)
		}
		got, found, err := repo.GetByID(ctx, id)
		if err != nil || !found {
			t.Fatalf("failed to get snapshot: %t, %v", found, err)
		}
		if got.Status != Failed || got.FailureCause == nil || *got.FailureCause != cause || got.Result != nil {
			t.Errorf("unexpected snapshot: %+v", got)
		}
	}
}

func testTerminalStatesAreFinal(t *testing.T, repo Repository) {
	ctx := context.Background()
	succeeded := mustCreate(t, repo, testParams(uuid.New(), "ok"))
	failed := mustCreate(t, repo, testParams(uuid.New(), "ko"))
	result := Result{TotalAssetAmount: big.NewInt(1), TreeID: uuid.New(), IpfsHash: "hash"}
	if err := repo.Complete(ctx, succeeded, result); err != nil {
		t.Fatalf("failed to complete snapshot: %v", err)
	}
	if err := repo.Fail(ctx, failed, Other); err != nil {
		t.Fatalf("failed to fail snapshot: %v", err)
	}

	for _, id := range []uuid.UUID{succeeded, failed} {
		if err := repo.Complete(ctx, id, result); !errors.Is(err, ErrNotPending) {
			t.Errorf("completing a finished snapshot should fail with ErrNotPending, got %v", err)
		}
		if err := repo.Fail(ctx, id, LogResponseLimit); !errors.Is(err, ErrNotPending) {
			t.Errorf("failing a finished snapshot should fail with ErrNotPending, got %v", err)
		}
	}

	got, _, _ := repo.GetByID(ctx, failed)
	if got == nil || got.Status != Failed || *got.FailureCause != Other {
		t.Errorf("failed snapshot was modified: %+v", got)
	}
}

func testUnknownSnapshotsAreReported(t *testing.T, repo Repository) {
	ctx := context.Background()
	id := uuid.New()
	if _, found, err := repo.GetByID(ctx, id); err != nil || found {
		t.Errorf("unknown snapshot found: %t, %v", found, err)
	}
	if err := repo.Complete(ctx, id, Result{TotalAssetAmount: big.NewInt(0)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("wanted ErrNotFound, got %v", err)
	}
	if err := repo.Fail(ctx, id, Other); !errors.Is(err, ErrNotFound) {
		t.Errorf("wanted ErrNotFound, got %v", err)
	}
}

func testSnapshotsCanBeListedByProjectAndStatus(t *testing.T, repo Repository) {
	ctx := context.Background()
	project := uuid.New()
	pending := mustCreate(t, repo, testParams(project, "pending"))
	failed := mustCreate(t, repo, testParams(project, "failed"))
	mustCreate(t, repo, testParams(uuid.New(), "other project"))
	if err := repo.Fail(ctx, failed, Other); err != nil {
		t.Fatalf("failed to fail snapshot: %v", err)
	}

	tests := []struct {
		statuses []Status
		want     []uuid.UUID
	}{
		{nil, []uuid.UUID{pending, failed}},
		{[]Status{Pending}, []uuid.UUID{pending}},
		{[]Status{Failed}, []uuid.UUID{failed}},
		{[]Status{Pending, Failed}, []uuid.UUID{pending, failed}},
		{[]Status{Success}, []uuid.UUID{}},
	}
	for _, test := range tests {
		got, err := repo.GetAllByProjectAndStatuses(ctx, project, test.statuses)
		if err != nil {
			t.Fatalf("failed to list snapshots: %v", err)
		}
		if len(got) != len(test.want) {
			t.Errorf("statuses %v: wanted %d snapshots, got %d", test.statuses, len(test.want), len(got))
			continue
		}
		for i, id := range test.want {
			if got[i].ID != id {
				t.Errorf("statuses %v: wanted snapshot %v at position %d, got %v", test.statuses, id, i, got[i].ID)
			}
		}
	}
}

// RunTreeRepositoryTests runs a set of black-box unit tests against a
// TreeRepository implementation defined by the given factory.
func RunTreeRepositoryTests(t *testing.T, factory NamedTreeRepositoryFactory) {
	wrap := func(test func(*testing.T, TreeRepository)) func(*testing.T) {
		return func(t *testing.T) {
			t.Parallel()
			test(t, factory.Open(t, t.TempDir()))
		}
	}
	t.Run("StoredTreesCanBeFetched", wrap(testStoredTreesCanBeFetched))
	t.Run("EmptyTreesCanBeStored", wrap(testEmptyTreesCanBeStored))
	t.Run("IdenticalRootsAreStoredOnce", wrap(testIdenticalRootsAreStoredOnce))
	t.Run("ConcurrentStoresOfTheSameRootYieldOneID", wrap(testConcurrentStoresOfTheSameRootYieldOneID))
	t.Run("TreesAreKeyedByChainAndContract", wrap(testTreesAreKeyedByChainAndContract))
	t.Run("UnknownTreesAreNotFound", wrap(testUnknownTreesAreNotFound))
	t.Run("ContainsAddress", wrap(testContainsAddress))
}

func testTree(t *testing.T, balances ...int64) *merkle.Tree {
	t.Helper()
	holders := make([]merkle.HolderBalance, 0, len(balances))
	for i, b := range balances {
		holders = append(holders, merkle.HolderBalance{
			Address: geth.BigToAddress(big.NewInt(int64(0x1000 + i))),
			Balance: big.NewInt(b),
		})
	}
	tree, err := merkle.NewTree(holders, merkle.Keccak256)
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	return tree
}

func keyOf(tree *merkle.Tree, chainID common.ChainID, contract geth.Address) FetchTreeParams {
	return FetchTreeParams{RootHash: tree.RootHash(), ChainID: chainID, AssetContractAddress: contract}
}

func checkSameTree(t *testing.T, want, got *merkle.Tree) {
	t.Helper()
	if got.RootHash() != want.RootHash() || got.Depth() != want.Depth() || got.HashFunction() != want.HashFunction() {
		t.Errorf("wanted tree %v/%d/%v, got %v/%d/%v", want.RootHash(), want.Depth(), want.HashFunction(), got.RootHash(), got.Depth(), got.HashFunction())
	}
	wantHolders, gotHolders := want.Holders(), got.Holders()
	if len(wantHolders) != len(gotHolders) {
		t.Fatalf("wanted %d holders, got %d", len(wantHolders), len(gotHolders))
	}
	for i := range wantHolders {
		if wantHolders[i].Address != gotHolders[i].Address || wantHolders[i].Balance.Cmp(gotHolders[i].Balance) != 0 {
			t.Errorf("holder %d: wanted %v, got %v", i, wantHolders[i], gotHolders[i])
		}
	}
}

func testStoredTreesCanBeFetched(t *testing.T, repo TreeRepository) {
	ctx := context.Background()
	tree := testTree(t, 10, 20, 5)
	id, err := repo.StoreTree(ctx, tree, 1, testContract, 17000000)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}

	stored, found, err := repo.FetchTree(ctx, keyOf(tree, 1, testContract))
	if err != nil || !found {
		t.Fatalf("failed to fetch tree: %t, %v", found, err)
	}
	if stored.ID != id || stored.ChainID != 1 || stored.AssetContractAddress != testContract || stored.BlockNumber != 17000000 {
		t.Errorf("unexpected stored tree: %+v", stored)
	}
	checkSameTree(t, tree, stored.Tree)

	byID, found, err := repo.GetByID(ctx, id)
	if err != nil || !found {
		t.Fatalf("failed to get tree by id: %t, %v", found, err)
	}
	checkSameTree(t, tree, byID.Tree)
}

func testEmptyTreesCanBeStored(t *testing.T, repo TreeRepository) {
	ctx := context.Background()
	tree := testTree(t)
	if _, err := repo.StoreTree(ctx, tree, 1, testContract, 1); err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	stored, found, err := repo.FetchTree(ctx, keyOf(tree, 1, testContract))
	if err != nil || !found {
		t.Fatalf("failed to fetch tree: %t, %v", found, err)
	}
	if stored.Tree.RootHash() != merkle.NilHash || stored.Tree.Depth() != 0 || stored.Tree.LeafCount() != 0 {
		t.Errorf("unexpected empty tree: %v/%d", stored.Tree.RootHash(), stored.Tree.Depth())
	}
}

func testIdenticalRootsAreStoredOnce(t *testing.T, repo TreeRepository) {
	ctx := context.Background()
	first, err := repo.StoreTree(ctx, testTree(t, 1, 2, 3), 1, testContract, 100)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	second, err := repo.StoreTree(ctx, testTree(t, 1, 2, 3), 1, testContract, 200)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	if first != second {
		t.Errorf("identical trees got different ids: %v != %v", first, second)
	}
	stored, _, err := repo.GetByID(ctx, first)
	if err != nil || stored == nil {
		t.Fatalf("failed to get tree: %v", err)
	}
	if stored.BlockNumber != 100 {
		t.Errorf("the first stored tree must be kept, got block %d", stored.BlockNumber)
	}
}

func testConcurrentStoresOfTheSameRootYieldOneID(t *testing.T, repo TreeRepository) {
	const N = 8
	ids := make([]uuid.UUID, N)
	var wg sync.WaitGroup
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := repo.StoreTree(context.Background(), testTree(t, 7, 8, 9, 10, 11), 5, testContract, 1)
			if err != nil {
				t.Errorf("failed to store tree: %v", err)
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()
	for i := 1; i < N; i++ {
		if ids[i] != ids[0] {
			t.Errorf("concurrent stores produced different ids: %v != %v", ids[i], ids[0])
		}
	}
}

func testTreesAreKeyedByChainAndContract(t *testing.T, repo TreeRepository) {
	ctx := context.Background()
	other := geth.HexToAddress("0x00000000000000000000000000000000000000aa")
	a, err := repo.StoreTree(ctx, testTree(t, 1), 1, testContract, 1)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	b, err := repo.StoreTree(ctx, testTree(t, 1), 2, testContract, 1)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	c, err := repo.StoreTree(ctx, testTree(t, 1), 1, other, 1)
	if err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	if a == b || a == c || b == c {
		t.Errorf("trees of different chains or contracts must not share ids: %v, %v, %v", a, b, c)
	}
}

func testUnknownTreesAreNotFound(t *testing.T, repo TreeRepository) {
	ctx := context.Background()
	tree := testTree(t, 1, 2)
	if _, err := repo.StoreTree(ctx, tree, 1, testContract, 1); err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	if _, found, err := repo.FetchTree(ctx, keyOf(testTree(t, 2, 1), 1, testContract)); err != nil || found {
		t.Errorf("unknown root found: %t, %v", found, err)
	}
	if _, found, err := repo.FetchTree(ctx, keyOf(tree, 2, testContract)); err != nil || found {
		t.Errorf("tree of other chain found: %t, %v", found, err)
	}
	if _, found, err := repo.GetByID(ctx, uuid.New()); err != nil || found {
		t.Errorf("unknown id found: %t, %v", found, err)
	}
}

func testContainsAddress(t *testing.T, repo TreeRepository) {
	ctx := context.Background()
	tree := testTree(t, 4, 5)
	if _, err := repo.StoreTree(ctx, tree, 1, testContract, 1); err != nil {
		t.Fatalf("failed to store tree: %v", err)
	}
	key := keyOf(tree, 1, testContract)
	for _, holder := range tree.Holders() {
		if found, err := repo.ContainsAddress(ctx, key, holder.Address); err != nil || !found {
			t.Errorf("holder %v not found: %t, %v", holder.Address, found, err)
		}
	}
	if found, err := repo.ContainsAddress(ctx, key, testContract); err != nil || found {
		t.Errorf("non-holder found: %t, %v", found, err)
	}
	if found, err := repo.ContainsAddress(ctx, keyOf(tree, 3, testContract), tree.Holders()[0].Address); err != nil || found {
		t.Errorf("holder found in unknown tree: %t, %v", found, err)
	}
}
