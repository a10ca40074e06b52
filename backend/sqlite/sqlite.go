// Package sqlite provides the SQLite backed snapshot and tree repositories.
// Both share one database opened with Open.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

const (
	kCreateSnapshotTable = `CREATE TABLE IF NOT EXISTS asset_snapshot (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		project_id TEXT NOT NULL,
		chain_id INT NOT NULL,
		asset_contract_address TEXT NOT NULL,
		target_block INT NOT NULL,
		ignored_holder_addresses TEXT NOT NULL,
		status TEXT NOT NULL,
		claimed INT NOT NULL DEFAULT 0,
		failure_cause TEXT,
		total_asset_amount TEXT,
		tree_id TEXT,
		ipfs_hash TEXT
	)`
	kCreateSnapshotProjectIndex = "CREATE INDEX IF NOT EXISTS asset_snapshot_project ON asset_snapshot(project_id, status)"

	kCreateTreeTable = `CREATE TABLE IF NOT EXISTS merkle_tree (
		id TEXT PRIMARY KEY,
		chain_id INT NOT NULL,
		asset_contract_address TEXT NOT NULL,
		root_hash TEXT NOT NULL,
		hash_fn TEXT NOT NULL,
		depth INT NOT NULL,
		block_number INT NOT NULL,
		UNIQUE (chain_id, asset_contract_address, root_hash)
	)`
	kCreateLeafTable = `CREATE TABLE IF NOT EXISTS merkle_tree_leaf (
		tree_id TEXT NOT NULL REFERENCES merkle_tree(id) ON DELETE CASCADE,
		leaf_index INT NOT NULL,
		address TEXT NOT NULL,
		balance TEXT NOT NULL,
		PRIMARY KEY (tree_id, leaf_index)
	)`
)

// Open opens or creates the database in the given file. Write transactions
// are started immediately and wait for concurrent writers up to the busy
// timeout.
func Open(file string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_busy_timeout", "10000")
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", "WAL")
	params.Set("_txlock", "immediate")
	db, err := sql.Open("sqlite3", dataSourceName(file, params))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite; %w", err)
	}
	// SQLite allows a single writer; more connections only add busy errors
	db.SetMaxOpenConns(1)
	for _, cmd := range []string{kCreateSnapshotTable, kCreateSnapshotProjectIndex, kCreateTreeTable, kCreateLeafTable} {
		if _, err := db.Exec(cmd); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema; %w", err)
		}
	}
	return db, nil
}

// dataSourceName builds the URI of the database file. The path is escaped
// so that '?', '#' and '%' in file names are not read as URI syntax.
func dataSourceName(file string, params url.Values) string {
	return "file:" + (&url.URL{Path: file}).EscapedPath() + "?" + params.Encode()
}
