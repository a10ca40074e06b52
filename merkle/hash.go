package merkle

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dev3-labs/assetsnap/common"
	"golang.org/x/crypto/sha3"
)

// ErrUnknownHashFunction is returned when a hash function identifier can not
// be resolved. It is never substituted by a default, since verifying a tree
// with the wrong function silently yields wrong results.
const ErrUnknownHashFunction = common.ConstError("unknown hash function")

// Hash is the value of a node in a Merkle tree. It wraps a lower case hex
// string, so that two hashes are equal iff their textual forms are equal
// ignoring case.
type Hash struct {
	value string
}

// NilHash is the hash of padding nodes, a 32 byte zero word.
var NilHash = Hash{"0x" + strings.Repeat("00", 32)}

// NewHash creates a hash from its textual form.
func NewHash(s string) Hash {
	return Hash{strings.ToLower(s)}
}

func (h Hash) String() string {
	return h.value
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.value), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	*h = NewHash(string(text))
	return nil
}

// concat joins two hashes into the input of a parent node: the digits of
// right are appended to left, keeping a single 0x prefix.
func concat(left, right Hash) string {
	return left.value + strings.TrimPrefix(right.value, "0x")
}

// HashFunction identifies the function used to derive node hashes. A tree
// records the function it was built with, so that proofs can be recomputed
// independently.
type HashFunction uint8

const (
	// Identity echoes its input; the hash of a node becomes the
	// concatenation of its leaves, which makes trees easy to inspect.
	Identity HashFunction = iota + 1
	// Fixed maps every input to NilHash.
	Fixed
	// Keccak256 hashes the bytes represented by the hex input, matching
	// Solidity's keccak256(abi.encodePacked(...)).
	Keccak256
)

var hashFunctionNames = map[HashFunction]string{
	Identity:  "IDENTITY",
	Fixed:     "FIXED",
	Keccak256: "KECCAK_256",
}

// ParseHashFunction resolves the name of a hash function as produced by String.
func ParseHashFunction(name string) (HashFunction, error) {
	for fn, n := range hashFunctionNames {
		if n == name {
			return fn, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHashFunction, name)
}

func (f HashFunction) Valid() bool {
	_, found := hashFunctionNames[f]
	return found
}

func (f HashFunction) String() string {
	if name, found := hashFunctionNames[f]; found {
		return name
	}
	return fmt.Sprintf("HashFunction(%d)", uint8(f))
}

func (f HashFunction) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHashFunction, uint8(f))
	}
	return []byte(f.String()), nil
}

func (f *HashFunction) UnmarshalText(text []byte) error {
	fn, err := ParseHashFunction(string(text))
	if err != nil {
		return err
	}
	*f = fn
	return nil
}

// Apply computes the hash of the given input. It panics for values not
// obtained from the declared constants or ParseHashFunction.
func (f HashFunction) Apply(input string) Hash {
	switch f {
	case Identity:
		return NewHash(input)
	case Fixed:
		return NilHash
	case Keccak256:
		return keccak256(input)
	}
	panic(fmt.Sprintf("%v: %d", ErrUnknownHashFunction, uint8(f)))
}

func keccak256(input string) Hash {
	data, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(input), "0x"))
	if err != nil {
		// not a hex string, hash its characters instead
		data = []byte(input)
	}
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return Hash{"0x" + hex.EncodeToString(hasher.Sum(nil))}
}
