package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dev3-labs/assetsnap/api"
	"github.com/dev3-labs/assetsnap/backend/cache"
	"github.com/dev3-labs/assetsnap/backend/ldb"
	"github.com/dev3-labs/assetsnap/backend/sqlite"
	"github.com/dev3-labs/assetsnap/chain"
	"github.com/dev3-labs/assetsnap/common"
	"github.com/dev3-labs/assetsnap/common/interrupt"
	"github.com/dev3-labs/assetsnap/ipfs"
	"github.com/dev3-labs/assetsnap/snapshot"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	configFlag = cli.StringFlag{
		Name:    "config",
		Usage:   "YAML configuration file",
		EnvVars: []string{"ASSETSNAP_CONFIG"},
	}
	listenFlag = cli.StringFlag{
		Name:    "listen",
		Usage:   "address of the HTTP API",
		EnvVars: []string{"ASSETSNAP_LISTEN"},
	}
	dbFlag = cli.StringFlag{
		Name:    "db",
		Usage:   "SQLite database file of the snapshots",
		EnvVars: []string{"ASSETSNAP_DB"},
	}
	treeDirFlag = cli.StringFlag{
		Name:    "tree-dir",
		Usage:   "keep the Merkle trees in a LevelDB directory instead of the database",
		EnvVars: []string{"ASSETSNAP_TREE_DIR"},
	}
	rpcFlag = cli.StringSliceFlag{
		Name:    "rpc",
		Usage:   "RPC endpoint of a chain as <chain id>=<url>, may be repeated",
		EnvVars: []string{"ASSETSNAP_RPC"},
	}
	localIpfsFlag = cli.StringFlag{
		Name:    "local-ipfs",
		Usage:   "pin trees into a local LevelDB directory instead of Pinata",
		EnvVars: []string{"ASSETSNAP_LOCAL_IPFS"},
	}
	pinataJWTFlag = cli.StringFlag{
		Name:    "pinata-jwt",
		Usage:   "JWT of the Pinata API",
		EnvVars: []string{"ASSETSNAP_PINATA_JWT"},
	}
	pinataKeyFlag = cli.StringFlag{
		Name:    "pinata-api-key",
		Usage:   "key of the Pinata API",
		EnvVars: []string{"ASSETSNAP_PINATA_API_KEY"},
	}
	pinataSecretFlag = cli.StringFlag{
		Name:    "pinata-api-secret",
		Usage:   "secret of the Pinata API key",
		EnvVars: []string{"ASSETSNAP_PINATA_API_SECRET"},
	}
	verbosityFlag = cli.IntFlag{
		Name:    "verbosity",
		Usage:   "log level, 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		EnvVars: []string{"ASSETSNAP_VERBOSITY"},
	}
)

var serveCommand = cli.Command{
	Action: serve,
	Name:   "serve",
	Usage:  "processes snapshot requests and serves the HTTP API",
	Flags: []cli.Flag{
		&configFlag,
		&listenFlag,
		&dbFlag,
		&treeDirFlag,
		&rpcFlag,
		&localIpfsFlag,
		&pinataJWTFlag,
		&pinataKeyFlag,
		&pinataSecretFlag,
		&verbosityFlag,
	},
}

// loadConfig merges the config file, if any, with the command line flags.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(listenFlag.Name) {
		cfg.Listen = ctx.String(listenFlag.Name)
	}
	if ctx.IsSet(dbFlag.Name) {
		cfg.DBPath = ctx.String(dbFlag.Name)
	}
	if ctx.IsSet(treeDirFlag.Name) {
		cfg.TreeDir = ctx.String(treeDirFlag.Name)
	}
	if ctx.IsSet(localIpfsFlag.Name) {
		cfg.IPFS.LocalDir = ctx.String(localIpfsFlag.Name)
	}
	if ctx.IsSet(pinataJWTFlag.Name) {
		cfg.IPFS.JWT = ctx.String(pinataJWTFlag.Name)
	}
	if ctx.IsSet(pinataKeyFlag.Name) {
		cfg.IPFS.APIKey = ctx.String(pinataKeyFlag.Name)
	}
	if ctx.IsSet(pinataSecretFlag.Name) {
		cfg.IPFS.APISecret = ctx.String(pinataSecretFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	for _, s := range ctx.StringSlice(rpcFlag.Name) {
		c, err := parseChain(s)
		if err != nil {
			return nil, err
		}
		cfg.Chains = append(cfg.Chains, c)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration; %w", err)
	}
	return cfg, nil
}

func serve(ctx *cli.Context) (err error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(cfg.Verbosity), log.StreamHandler(os.Stderr, log.TerminalFormat(false))))

	runCtx, cancel := interrupt.Register(ctx.Context)
	defer cancel()

	// snapshots are processed by a single worker per database
	lock, err := common.CreateLockFile(cfg.DBPath + ".lock")
	if err != nil {
		return err
	}
	defer func() {
		if releaseError := lock.Release(); releaseError != nil {
			err = errors.Join(err, releaseError)
		}
	}()

	log.Info("Opening database", "file", cfg.DBPath)
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeError := db.Close(); closeError != nil {
			err = errors.Join(err, closeError)
		}
	}()
	repo := sqlite.NewSnapshots(db)

	var trees snapshot.TreeRepository = sqlite.NewTrees(db)
	if cfg.TreeDir != "" {
		log.Info("Opening tree store", "dir", cfg.TreeDir)
		ldbTrees, err := ldb.OpenTrees(cfg.TreeDir)
		if err != nil {
			return err
		}
		defer func() {
			if closeError := ldbTrees.Close(); closeError != nil {
				err = errors.Join(err, closeError)
			}
		}()
		trees = ldbTrees
	}
	trees = cache.NewTrees(trees, cfg.TreeCacheSize)

	oracles := chain.NewRegistry()
	for _, c := range cfg.Chains {
		log.Info("Connecting to chain", "chain", c.ChainID, "url", c.RPCURL)
		oracle, err := chain.Dial(runCtx, chain.Config{URL: c.RPCURL, LogBlockRange: c.LogBlockRange})
		if err != nil {
			return fmt.Errorf("failed to connect to chain %d; %w", c.ChainID, err)
		}
		oracles.Register(c.ChainID, oracle)
	}

	var pinner snapshot.Pinner
	if cfg.IPFS.LocalDir != "" {
		local, err := ipfs.OpenLocalPinner(cfg.IPFS.LocalDir)
		if err != nil {
			return err
		}
		defer func() {
			if closeError := local.Close(); closeError != nil {
				err = errors.Join(err, closeError)
			}
		}()
		pinner = local
	} else {
		pinner = ipfs.NewPinataPinner(ipfs.PinataConfig{
			URL:       cfg.IPFS.PinataURL,
			APIKey:    cfg.IPFS.APIKey,
			APISecret: cfg.IPFS.APISecret,
			JWT:       cfg.IPFS.JWT,
			Timeout:   cfg.IPFS.Timeout,
		})
	}

	queue := snapshot.NewQueue(repo, trees, oracles, pinner, snapshot.QueueConfig{
		InitialDelay: cfg.Queue.InitialDelay,
		Polling:      cfg.Queue.Polling,
	})
	if err := queue.Start(runCtx, queue.NewTicker()); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ShutdownTimeout)
		defer cancel()
		if stopError := queue.Stop(stopCtx); stopError != nil {
			log.Warn("Snapshot queue did not stop in time", "err", stopError)
		}
	}()

	server := api.NewServer(queue, trees, oracles.Chains())
	if err := server.ListenAndServe(runCtx, cfg.Listen); err != nil {
		return fmt.Errorf("API server failed; %w", err)
	}
	log.Info("Shut down")
	return nil
}
