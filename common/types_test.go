package common

import (
	"errors"
	"testing"

	geth "github.com/ethereum/go-ethereum/common"
)

func TestParseChainID(t *testing.T) {
	id, err := ParseChainID("137")
	if err != nil {
		t.Fatalf("failed to parse chain id: %v", err)
	}
	if id != 137 {
		t.Errorf("wrong chain id, wanted 137, got %v", id)
	}
	if got, want := id.String(), "137"; got != want {
		t.Errorf("wrong string form, wanted %s, got %s", want, got)
	}
	if _, err := ParseChainID("main-net"); err == nil {
		t.Errorf("parsing a non-numeric chain id should fail")
	}
}

func TestBlockNumber_Big(t *testing.T) {
	if got := BlockNumber(1234).Big(); got.Uint64() != 1234 {
		t.Errorf("wrong big representation, got %v", got)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"0x000000000000000000000000000000000000dEaD", true},
		{"0x000000000000000000000000000000000000dead", true},
		{"000000000000000000000000000000000000dead", true},
		{"0xdead", false},
		{"", false},
		{"0xzz0000000000000000000000000000000000dead", false},
	}
	for _, test := range tests {
		addr, err := ParseAddress(test.in)
		if test.valid && err != nil {
			t.Errorf("failed to parse %q: %v", test.in, err)
		}
		if !test.valid && !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress for %q, got %v", test.in, err)
		}
		if test.valid && addr != geth.HexToAddress("0xdead") {
			t.Errorf("wrong address parsed from %q: %v", test.in, addr)
		}
	}
}

func TestLowerHex(t *testing.T) {
	addr := geth.HexToAddress("0x000000000000000000000000000000000000dEaD")
	if got, want := LowerHex(addr), "0x000000000000000000000000000000000000dead"; got != want {
		t.Errorf("wrong rendering, wanted %s, got %s", want, got)
	}
}
