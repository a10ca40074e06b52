package ipfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/crypto/sha3"
)

// ErrNotPinned is returned for unknown content hashes.
const ErrNotPinned = common.ConstError("document not pinned")

// LocalPinner keeps pinned documents in a LevelDB database, addressed by
// the keccak-256 hash of their content. It replaces a pinning service in
// development setups.
type LocalPinner struct {
	db *leveldb.DB
}

func OpenLocalPinner(path string) (*LocalPinner, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s; %w", path, err)
	}
	return &LocalPinner{db: db}, nil
}

func (p *LocalPinner) PinJSON(_ context.Context, document []byte) (string, error) {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(document)
	hash := hasher.Sum(nil)
	if err := p.db.Put(hash, document, nil); err != nil {
		return "", fmt.Errorf("%w; %w", ErrPinFailed, err)
	}
	return hexutil.Encode(hash), nil
}

// Get returns the document pinned under the given hash.
func (p *LocalPinner) Get(hash string) ([]byte, error) {
	key, err := hexutil.Decode(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotPinned, hash)
	}
	document, err := p.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotPinned, hash)
	}
	return document, err
}

func (p *LocalPinner) Close() error {
	return p.db.Close()
}
