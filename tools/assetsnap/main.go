package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run with `go run ./tools/assetsnap`

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "Asset Snapshot Toolbox",
		HelpName: "assetsnap",
		Usage:    "Serves asset snapshots and verifies published Merkle trees",
		Flags:    []cli.Flag{},
		Commands: []*cli.Command{
			&serveCommand,
			&verifyCommand,
		},
	}
}
