package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dev3-labs/assetsnap/common"
	"github.com/urfave/cli/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return file
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Chains = []ChainConfig{{ChainID: 1, RPCURL: "http://localhost:8545"}}
	cfg.IPFS.LocalDir = "pins"
	return cfg
}

func TestLoadConfig_MergesWithDefaults(t *testing.T) {
	file := writeConfig(t, `
listen: ":9000"
chains:
  - chain_id: 137
    rpc_url: https://polygon-rpc.com
    log_block_range: 3000
ipfs:
  jwt: secret
queue:
  polling: 1m
`)
	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config should be valid: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.DBPath != "assetsnap.db" {
		t.Errorf("unexpected listen %q and db %q", cfg.Listen, cfg.DBPath)
	}
	want := ChainConfig{ChainID: 137, RPCURL: "https://polygon-rpc.com", LogBlockRange: 3000}
	if len(cfg.Chains) != 1 || cfg.Chains[0] != want {
		t.Errorf("unexpected chains %+v", cfg.Chains)
	}
	if cfg.Queue.Polling != time.Minute || cfg.Queue.InitialDelay != 15*time.Second {
		t.Errorf("unexpected queue config %+v", cfg.Queue)
	}
	if cfg.IPFS.JWT != "secret" || cfg.IPFS.Timeout != 30*time.Second {
		t.Errorf("unexpected ipfs config %+v", cfg.IPFS)
	}
}

func TestLoadConfig_Failures(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("loading a missing file should fail")
	}
	if _, err := LoadConfig(writeConfig(t, "chains: [")); err == nil {
		t.Errorf("loading malformed YAML should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]func(*Config){
		"missing db":         func(c *Config) { c.DBPath = "" },
		"missing listen":     func(c *Config) { c.Listen = "" },
		"no chains":          func(c *Config) { c.Chains = nil },
		"invalid chain id":   func(c *Config) { c.Chains[0].ChainID = 0 },
		"missing rpc url":    func(c *Config) { c.Chains[0].RPCURL = "" },
		"duplicated chain":   func(c *Config) { c.Chains = append(c.Chains, c.Chains[0]) },
		"no pinning":         func(c *Config) { c.IPFS.LocalDir = "" },
		"key without secret": func(c *Config) { c.IPFS.LocalDir, c.IPFS.APIKey = "", "key" },
		"no tree cache":      func(c *Config) { c.TreeCacheSize = 0 },
		"invalid verbosity":  func(c *Config) { c.Verbosity = 7 },
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("config should be valid: %v", err)
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("config should be invalid")
			}
		})
	}
}

func TestParseChain(t *testing.T) {
	chain, err := parseChain("1=http://localhost:8545?key=a=b")
	if err != nil {
		t.Fatalf("failed to parse chain: %v", err)
	}
	if want := (ChainConfig{ChainID: 1, RPCURL: "http://localhost:8545?key=a=b"}); chain != want {
		t.Errorf("wanted %+v, got %+v", want, chain)
	}
	for _, s := range []string{"", "1", "1=", "one=http://localhost", "=http://localhost"} {
		if _, err := parseChain(s); err == nil {
			t.Errorf("parsing %q should fail", s)
		}
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	file := writeConfig(t, `
db_path: from-file.db
listen: ":9000"
chains:
  - chain_id: 1
    rpc_url: http://mainnet
ipfs:
  api_key: key
  api_secret: secret
`)
	var got *Config
	app := &cli.App{
		Name: "test",
		Commands: []*cli.Command{{
			Name:  "serve",
			Flags: serveCommand.Flags,
			Action: func(ctx *cli.Context) (err error) {
				got, err = loadConfig(ctx)
				return err
			},
		}},
	}
	err := app.Run([]string{"test", "serve", "--config", file, "--db", "from-flag.db", "--rpc", "137=http://polygon", "--verbosity", "5"})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if got.DBPath != "from-flag.db" || got.Listen != ":9000" || got.Verbosity != 5 {
		t.Errorf("unexpected config %+v", got)
	}
	if len(got.Chains) != 2 || got.Chains[1].ChainID != common.ChainID(137) || !strings.HasSuffix(got.Chains[1].RPCURL, "polygon") {
		t.Errorf("unexpected chains %+v", got.Chains)
	}
}
