package amount

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// BytesLength is the length of the byte representation of an amount.
const BytesLength = 32

// Amount is a 256-bit unsigned integer used for token balances that need to
// be ABI encoded, i.e. fit into a single uint256 word.
type Amount struct {
	internal uint256.Int
}

// NewFromBigInt creates a new Amount instance from a big.Int. Negative values
// and values exceeding 256 bits are rejected.
func NewFromBigInt(b *big.Int) (Amount, error) {
	if b == nil {
		return Amount{}, nil
	}
	if b.Sign() < 0 {
		return Amount{}, fmt.Errorf("cannot construct Amount from negative value %v", b)
	}
	result := uint256.Int{}
	if overflow := result.SetFromBig(b); overflow {
		return Amount{}, fmt.Errorf("value %v has more than 256 bits", b)
	}
	return Amount{internal: result}, nil
}

// Bytes32 returns the amount as a big-endian 32 byte word.
func (a Amount) Bytes32() [BytesLength]byte {
	return a.internal.Bytes32()
}
