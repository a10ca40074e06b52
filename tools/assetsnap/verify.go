package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/merkle"
	"github.com/urfave/cli/v2"
)

const ErrNotVerified = common.ConstError("verification failed")

var (
	treeFileFlag = cli.StringFlag{
		Name:     "tree",
		Usage:    "JSON file of a published Merkle tree",
		Required: true,
	}
	rootFlag = cli.StringFlag{
		Name:  "root",
		Usage: "expected root hash of the tree",
	}
	walletFlag = cli.StringFlag{
		Name:  "wallet",
		Usage: "prints and verifies the proof of the given holder",
	}
)

var verifyCommand = cli.Command{
	Action: verify,
	Name:   "verify",
	Usage:  "checks the integrity of a published Merkle tree",
	Flags: []cli.Flag{
		&treeFileFlag,
		&rootFlag,
		&walletFlag,
	},
}

type proofOutput struct {
	WalletAddress string               `json:"wallet_address"`
	WalletBalance string               `json:"wallet_balance"`
	LeafHash      merkle.Hash          `json:"leaf_hash"`
	Path          []merkle.PathSegment `json:"path"`
}

func verify(ctx *cli.Context) error {
	file := ctx.String(treeFileFlag.Name)
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	tree, err := merkle.ParseTreeJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %s; %w", ErrNotVerified, file, err)
	}
	out := ctx.App.Writer
	fmt.Fprintf(out, "Root:      %v\n", tree.RootHash())
	fmt.Fprintf(out, "Depth:     %d\n", tree.Depth())
	fmt.Fprintf(out, "Hash:      %v\n", tree.HashFunction())
	fmt.Fprintf(out, "Holders:   %d\n", tree.LeafCount())
	fmt.Fprintf(out, "Total:     %v\n", tree.TotalBalance())

	if ctx.IsSet(rootFlag.Name) {
		if want := merkle.NewHash(ctx.String(rootFlag.Name)); want != tree.RootHash() {
			return fmt.Errorf("%w: root is %v, expected %v", ErrNotVerified, tree.RootHash(), want)
		}
	}

	if !ctx.IsSet(walletFlag.Name) {
		return nil
	}
	wallet, err := common.ParseAddress(ctx.String(walletFlag.Name))
	if err != nil {
		return err
	}
	proof, found := tree.ProofFor(wallet)
	if !found {
		return fmt.Errorf("%w: %v is not a holder", ErrNotVerified, common.LowerHex(wallet))
	}
	ok, err := merkle.VerifyHolder(tree.HashFunction(), proof.Holder, proof.Path, tree.RootHash())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: proof of %v does not lead to the root", ErrNotVerified, common.LowerHex(wallet))
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(proofOutput{
		WalletAddress: common.LowerHex(proof.Holder.Address),
		WalletBalance: proof.Holder.Balance.String(),
		LeafHash:      proof.LeafHash,
		Path:          proof.Path,
	})
}
