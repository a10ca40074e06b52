package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dev3-labs/assetsnap/backend/cache"
	"github.com/dev3-labs/assetsnap/common"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration of the serve command.
type Config struct {
	Listen string `yaml:"listen"`
	DBPath string `yaml:"db_path"`
	// TreeDir selects a LevelDB tree store; trees are kept in the SQLite
	// database if empty.
	TreeDir string `yaml:"tree_dir"`
	// TreeCacheSize is the number of trees kept in memory for serving proofs.
	TreeCacheSize int           `yaml:"tree_cache_size"`
	Verbosity     int           `yaml:"verbosity"`
	Chains        []ChainConfig `yaml:"chains"`
	IPFS          IPFSConfig    `yaml:"ipfs"`
	Queue         QueueConfig   `yaml:"queue"`
}

// ChainConfig configures the RPC endpoint of one chain.
type ChainConfig struct {
	ChainID       common.ChainID `yaml:"chain_id"`
	RPCURL        string         `yaml:"rpc_url"`
	LogBlockRange uint64         `yaml:"log_block_range"`
}

// IPFSConfig selects the pinning service. LocalDir takes precedence over
// Pinata.
type IPFSConfig struct {
	PinataURL string        `yaml:"pinata_url"`
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	JWT       string        `yaml:"jwt"`
	Timeout   time.Duration `yaml:"timeout"`
	LocalDir  string        `yaml:"local_dir"`
}

type QueueConfig struct {
	InitialDelay    time.Duration `yaml:"initial_delay"`
	Polling         time.Duration `yaml:"polling"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:        ":8080",
		DBPath:        "assetsnap.db",
		TreeCacheSize: cache.DefaultCapacity,
		Verbosity:     3,
		IPFS: IPFSConfig{
			Timeout: 30 * time.Second,
		},
		Queue: QueueConfig{
			InitialDelay:    15 * time.Second,
			Polling:         5 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s; %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s; %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain is required")
	}
	seen := map[common.ChainID]bool{}
	for i, chain := range c.Chains {
		if chain.ChainID <= 0 {
			return fmt.Errorf("chains[%d]: chain_id must be > 0", i)
		}
		if chain.RPCURL == "" {
			return fmt.Errorf("chains[%d]: rpc_url is required", i)
		}
		if seen[chain.ChainID] {
			return fmt.Errorf("chains[%d]: chain %d is configured twice", i, chain.ChainID)
		}
		seen[chain.ChainID] = true
	}
	if c.IPFS.LocalDir == "" && c.IPFS.JWT == "" && (c.IPFS.APIKey == "" || c.IPFS.APISecret == "") {
		return fmt.Errorf("ipfs: either local_dir, jwt or api_key and api_secret are required")
	}
	if c.TreeCacheSize < 1 {
		return fmt.Errorf("tree_cache_size must be > 0")
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("verbosity must be in [0, 5]")
	}
	return nil
}

// parseChain parses the `<chain id>=<rpc url>` form of the --rpc flag.
func parseChain(s string) (ChainConfig, error) {
	id, url, found := strings.Cut(s, "=")
	if !found || url == "" {
		return ChainConfig{}, fmt.Errorf("invalid chain %q, expected <chain id>=<rpc url>", s)
	}
	chainID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ChainConfig{}, fmt.Errorf("invalid chain id in %q; %w", s, err)
	}
	return ChainConfig{ChainID: common.ChainID(chainID), RPCURL: url}, nil
}
