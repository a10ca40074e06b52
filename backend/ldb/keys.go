// Package ldb provides a LevelDB backed snapshot.TreeRepository.
package ldb

import (
	"encoding/binary"

	"github.com/dev3-labs/assetsnap/common"
	geth "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// TableSpace divides the key-value storage into spaces by adding a prefix
// to the key.
type TableSpace byte

const (
	// TreeRootKey maps chain, contract and root hash to a tree id
	TreeRootKey TableSpace = 'r'
	// TreeKey maps a tree id to the stored tree
	TreeKey TableSpace = 't'
)

func rootKey(chainID common.ChainID, contract geth.Address, root string) []byte {
	key := make([]byte, 0, 1+8+geth.AddressLength+len(root))
	key = append(key, byte(TreeRootKey))
	key = binary.BigEndian.AppendUint64(key, uint64(chainID))
	key = append(key, contract[:]...)
	return append(key, root...)
}

func treeKey(id uuid.UUID) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, byte(TreeKey))
	return append(key, id[:]...)
}
