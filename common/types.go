package common

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	geth "github.com/ethereum/go-ethereum/common"
)

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// ErrInvalidAddress is returned when a string is not a 20-byte hex address.
const ErrInvalidAddress = ConstError("invalid address")

// ChainID identifies an EVM network, e.g. 1 for Ethereum main-net.
type ChainID int64

// ParseChainID parses a decimal chain id.
func ParseChainID(s string) (ChainID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q; %w", s, err)
	}
	return ChainID(id), nil
}

func (c ChainID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// BlockNumber is the height of a block.
type BlockNumber uint64

// Big converts the block number to the representation used by the RPC client.
func (b BlockNumber) Big() *big.Int {
	return new(big.Int).SetUint64(uint64(b))
}

// ParseAddress parses a 0x-prefixed, 40 digit hex address. The checksum
// (mixed case) is not enforced.
func ParseAddress(s string) (geth.Address, error) {
	if !geth.IsHexAddress(s) {
		return geth.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return geth.HexToAddress(s), nil
}

// LowerHex renders an address the way it is stored and published:
// lower case with 0x prefix.
func LowerHex(a geth.Address) string {
	return strings.ToLower(a.Hex())
}
