package merkle

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	geth "github.com/ethereum/go-ethereum/common"
)

func balance(address string, value int64) HolderBalance {
	return HolderBalance{Address: geth.HexToAddress(address), Balance: big.NewInt(value)}
}

func randomBalances(r *rand.Rand, n int) []HolderBalance {
	res := make([]HolderBalance, n)
	for i := range res {
		var address geth.Address
		r.Read(address[:])
		res[i] = HolderBalance{Address: address, Balance: new(big.Int).Rand(r, new(big.Int).Lsh(big.NewInt(1), 200))}
	}
	return res
}

func TestEncodeLeaf_MatchesAbiEncoding(t *testing.T) {
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	arguments := abi.Arguments{{Type: addressType}, {Type: uint256Type}}

	holders := []HolderBalance{
		balance("0x0", 0),
		balance("0xA", 10),
		{Address: geth.HexToAddress("0x000000000000000000000000000000000000dEaD"), Balance: new(big.Int).Lsh(big.NewInt(1), 255)},
	}
	for _, holder := range holders {
		packed, err := arguments.Pack(holder.Address, holder.Balance)
		if err != nil {
			t.Fatalf("failed to pack %v: %v", holder, err)
		}
		encoded, err := encodeLeaf(holder)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", holder, err)
		}
		if want := fmt.Sprintf("0x%x", packed); encoded != want {
			t.Errorf("wrong encoding of %v, wanted %s, got %s", holder, want, encoded)
		}
	}
}

func TestNewTree_RejectsUnencodableBalances(t *testing.T) {
	tooLarge := HolderBalance{Address: geth.HexToAddress("0x1"), Balance: new(big.Int).Lsh(big.NewInt(1), 256)}
	for _, holder := range []HolderBalance{balance("0x1", -1), tooLarge} {
		if _, err := NewTree([]HolderBalance{holder}, Keccak256); !errors.Is(err, ErrInvalidBalance) {
			t.Errorf("expected ErrInvalidBalance for %v, got %v", holder, err)
		}
	}
}

func TestNewTree_RejectsInvalidHashFunction(t *testing.T) {
	if _, err := NewTree(nil, HashFunction(0)); !errors.Is(err, ErrUnknownHashFunction) {
		t.Errorf("expected ErrUnknownHashFunction, got %v", err)
	}
}

func TestNewTree_EmptyTreeIsSingleNilNode(t *testing.T) {
	tree, err := NewTree(nil, Keccak256)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if got := tree.Depth(); got != 0 {
		t.Errorf("wrong depth, wanted 0, got %d", got)
	}
	if got := tree.Root().Kind(); got != NilNode {
		t.Errorf("root should be a nil node, got %v", got)
	}
	if got := tree.RootHash(); got != NilHash {
		t.Errorf("wrong root hash, wanted %v, got %v", NilHash, got)
	}
	if got := tree.TotalBalance(); got.Sign() != 0 {
		t.Errorf("total balance of empty tree should be zero, got %v", got)
	}
	if _, err := tree.PathTo(0); !errors.Is(err, ErrLeafIndexOutOfRange) {
		t.Errorf("expected ErrLeafIndexOutOfRange, got %v", err)
	}
}

func TestNewTree_SingleLeafIsRoot(t *testing.T) {
	holder := balance("0x1", 5)
	tree, err := NewTree([]HolderBalance{holder}, Keccak256)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if got := tree.Depth(); got != 0 {
		t.Errorf("wrong depth, wanted 0, got %d", got)
	}
	if got := tree.Root().Kind(); got != LeafNode {
		t.Errorf("root should be the leaf, got %v", got)
	}
	leafHash, _ := LeafHash(Keccak256, holder)
	if got := tree.RootHash(); got != leafHash {
		t.Errorf("wrong root hash, wanted %v, got %v", leafHash, got)
	}
	path, err := tree.PathTo(0)
	if err != nil {
		t.Fatalf("failed to get path: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("path of a single leaf tree should be empty, got %v", path)
	}
	if !tree.Verify(leafHash, path) {
		t.Errorf("empty path should verify against a single leaf root")
	}
}

func TestNewTree_ThreeLeavesWithIdentityHash(t *testing.T) {
	holders := []HolderBalance{balance("0xA", 10), balance("0xB", 20), balance("0xC", 5)}
	tree, err := NewTree(holders, Identity)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	var encoded []string
	for _, holder := range holders {
		e, err := encodeLeaf(holder)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", holder, err)
		}
		encoded = append(encoded, e)
	}
	digits := func(s string) string { return strings.TrimPrefix(s, "0x") }

	if got := tree.Depth(); got != 2 {
		t.Errorf("wrong depth, wanted 2, got %d", got)
	}

	root := tree.Root()
	left, right := root.Left(), root.Right()
	if left.Kind() != PathNode || right.Kind() != PathNode {
		t.Fatalf("root children should be path nodes, got %v and %v", left.Kind(), right.Kind())
	}
	if got := right.Right().Kind(); got != NilNode {
		t.Errorf("last leaf should be padding, got %v", got)
	}
	if got, want := left.Hash(), NewHash(encoded[0]+digits(encoded[1])); got != want {
		t.Errorf("wrong left hash, wanted %v, got %v", want, got)
	}
	if got, want := right.Hash(), NewHash(encoded[2]+digits(NilHash.String())); got != want {
		t.Errorf("wrong right hash, wanted %v, got %v", want, got)
	}
	want := NewHash(encoded[0] + digits(encoded[1]) + digits(encoded[2]) + digits(NilHash.String()))
	if got := tree.RootHash(); got != want {
		t.Errorf("wrong root hash, wanted %v, got %v", want, got)
	}

	path, err := tree.PathTo(0)
	if err != nil {
		t.Fatalf("failed to get path: %v", err)
	}
	wantPath := []PathSegment{
		{SiblingHash: NewHash(encoded[1]), IsLeft: false},
		{SiblingHash: right.Hash(), IsLeft: false},
	}
	if fmt.Sprint(path) != fmt.Sprint(wantPath) {
		t.Errorf("wrong path, wanted %v, got %v", wantPath, path)
	}

	// recombine the path by hand, left before right
	current := NewHash(encoded[0])
	for _, segment := range path {
		if segment.IsLeft {
			current = Identity.Apply(concat(segment.SiblingHash, current))
		} else {
			current = Identity.Apply(concat(current, segment.SiblingHash))
		}
	}
	if current != tree.RootHash() {
		t.Errorf("recombined path does not produce root, wanted %v, got %v", tree.RootHash(), current)
	}

	path, err = tree.PathTo(2)
	if err != nil {
		t.Fatalf("failed to get path: %v", err)
	}
	wantPath = []PathSegment{
		{SiblingHash: NilHash, IsLeft: false},
		{SiblingHash: left.Hash(), IsLeft: true},
	}
	if fmt.Sprint(path) != fmt.Sprint(wantPath) {
		t.Errorf("wrong path, wanted %v, got %v", wantPath, path)
	}
}

func TestNewTree_DepthIsLogOfPaddedLeafCount(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	tests := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 16: 4, 17: 5, 100: 7}
	for n, depth := range tests {
		tree, err := NewTree(randomBalances(r, n), Keccak256)
		if err != nil {
			t.Fatalf("failed to create tree of %d leaves: %v", n, err)
		}
		if got := tree.Depth(); got != depth {
			t.Errorf("wrong depth for %d leaves, wanted %d, got %d", n, depth, got)
		}
		if got := tree.LeafCount(); got != n {
			t.Errorf("wrong leaf count, wanted %d, got %d", n, got)
		}
	}
}

func TestNewTree_IsDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, n := range []int{1, 2, 3, 7, 33} {
		balances := randomBalances(r, n)
		a, err := NewTree(balances, Keccak256)
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		b, err := NewTree(balances, Keccak256)
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if a.RootHash() != b.RootHash() {
			t.Errorf("trees over the same input differ: %v vs %v", a.RootHash(), b.RootHash())
		}
	}
}

func TestNewTree_IsNotCommutative(t *testing.T) {
	a, _ := NewTree([]HolderBalance{balance("0x1", 1), balance("0x2", 2)}, Keccak256)
	b, _ := NewTree([]HolderBalance{balance("0x2", 2), balance("0x1", 1)}, Keccak256)
	if a.RootHash() == b.RootHash() {
		t.Errorf("swapping leaves should change the root")
	}
}

func TestNewTree_DoesNotAliasInputBalances(t *testing.T) {
	holders := []HolderBalance{balance("0x1", 1)}
	tree, _ := NewTree(holders, Keccak256)
	holders[0].Balance.SetInt64(1000)
	if got := tree.Holders()[0].Balance; got.Int64() != 1 {
		t.Errorf("tree balance changed with its input, got %v", got)
	}
}

func TestTree_AllPathsVerify(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, fn := range []HashFunction{Identity, Keccak256} {
		for _, n := range []int{1, 2, 3, 4, 5, 13, 32} {
			tree, err := NewTree(randomBalances(r, n), fn)
			if err != nil {
				t.Fatalf("failed to create tree: %v", err)
			}
			for i := 0; i < n; i++ {
				leaf, err := tree.Leaf(i)
				if err != nil {
					t.Fatalf("failed to get leaf %d: %v", i, err)
				}
				path, err := tree.PathTo(i)
				if err != nil {
					t.Fatalf("failed to get path %d: %v", i, err)
				}
				if len(path) != tree.Depth() {
					t.Errorf("path length %d does not match depth %d", len(path), tree.Depth())
				}
				if !Verify(fn, leaf.Hash(), path, tree.RootHash()) {
					t.Errorf("path of leaf %d/%d does not verify with %v", i, n, fn)
				}
			}
		}
	}
}

func TestTree_TamperedBalanceChangesRoot(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	balances := randomBalances(r, 6)
	tree, _ := NewTree(balances, Keccak256)

	for i := range balances {
		tampered := make([]HolderBalance, len(balances))
		copy(tampered, balances)
		tampered[i] = HolderBalance{Address: balances[i].Address, Balance: new(big.Int).Add(balances[i].Balance, big.NewInt(1))}

		other, err := NewTree(tampered, Keccak256)
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if other.RootHash() == tree.RootHash() {
			t.Errorf("tampering with leaf %d did not change the root", i)
		}

		path, _ := tree.PathTo(i)
		ok, err := VerifyHolder(Keccak256, tampered[i], path, tree.RootHash())
		if err != nil {
			t.Fatalf("failed to verify: %v", err)
		}
		if ok {
			t.Errorf("old proof verified the tampered balance of leaf %d", i)
		}
	}
}

func TestTree_WrongHashFunctionIsDetected(t *testing.T) {
	balances := []HolderBalance{balance("0x1", 1), balance("0x2", 2), balance("0x3", 3)}
	tree, _ := NewTree(balances, Keccak256)
	path, _ := tree.PathTo(1)

	ok, err := VerifyHolder(Keccak256, balances[1], path, tree.RootHash())
	if err != nil || !ok {
		t.Fatalf("proof should verify with the tree's hash function, ok=%v err=%v", ok, err)
	}
	ok, err = VerifyHolder(Identity, balances[1], path, tree.RootHash())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("proof should not verify with a different hash function")
	}
	if _, err := VerifyHolder(HashFunction(9), balances[1], path, tree.RootHash()); !errors.Is(err, ErrUnknownHashFunction) {
		t.Errorf("expected ErrUnknownHashFunction, got %v", err)
	}
}

func TestTree_ProofForAddress(t *testing.T) {
	balances := []HolderBalance{balance("0x1", 1), balance("0x2", 2), balance("0x3", 3), balance("0x2", 7)}
	tree, _ := NewTree(balances, Keccak256)

	proof, found := tree.ProofFor(geth.HexToAddress("0x2"))
	if !found {
		t.Fatalf("proof for contained address not found")
	}
	if proof.Index != 1 {
		t.Errorf("duplicated address should resolve to its first leaf, got %d", proof.Index)
	}
	if proof.Holder.Balance.Int64() != 2 {
		t.Errorf("wrong balance in proof, got %v", proof.Holder.Balance)
	}
	if !tree.Verify(proof.LeafHash, proof.Path) {
		t.Errorf("proof does not verify")
	}
	hashes := proof.SiblingHashes()
	if len(hashes) != len(proof.Path) {
		t.Fatalf("wrong number of sibling hashes")
	}
	for i, segment := range proof.Path {
		if hashes[i] != segment.SiblingHash {
			t.Errorf("sibling hash %d does not match path", i)
		}
	}

	if _, found := tree.ProofFor(geth.HexToAddress("0xffff")); found {
		t.Errorf("proof for unknown address should not be found")
	}
	if !tree.ContainsAddress(geth.HexToAddress("0x3")) || tree.ContainsAddress(geth.HexToAddress("0x4")) {
		t.Errorf("wrong address membership")
	}
}

func TestTree_TotalBalance(t *testing.T) {
	tree, _ := NewTree([]HolderBalance{balance("0xA", 10), balance("0xB", 20), balance("0xC", 5)}, Keccak256)
	if got := tree.TotalBalance(); got.Int64() != 35 {
		t.Errorf("wrong total balance, wanted 35, got %v", got)
	}
}

func TestTree_PathToRejectsInvalidIndex(t *testing.T) {
	tree, _ := NewTree([]HolderBalance{balance("0xA", 10), balance("0xB", 20), balance("0xC", 5)}, Keccak256)
	for _, index := range []int{-1, 3, 4} {
		if _, err := tree.PathTo(index); !errors.Is(err, ErrLeafIndexOutOfRange) {
			t.Errorf("expected ErrLeafIndexOutOfRange for %d, got %v", index, err)
		}
	}
}
