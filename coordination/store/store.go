package store

import (
	"context"
	"database/sql"
	"errors"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS deployment_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    explorer_name TEXT NOT NULL,
    chain_name TEXT NOT NULL,
    chain_id INTEGER NOT NULL,
    rpc_url TEXT NOT NULL,
    currency_symbol TEXT NOT NULL,
    is_testnet INTEGER NOT NULL,
    logo_url TEXT NOT NULL,
    brand_color TEXT NOT NULL,
    deployer TEXT NOT NULL,
    deployed_at INTEGER NOT NULL,
    status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ai_service_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    endpoint TEXT NOT NULL,
    api_key TEXT NOT NULL,
    analytics_enabled INTEGER NOT NULL,
    response_slicing_enabled INTEGER NOT NULL,
    context_optimization_enabled INTEGER NOT NULL,
    max_page_size INTEGER NOT NULL,
    cache_timeout_seconds INTEGER NOT NULL,
    active INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS queries (
    id TEXT PRIMARY KEY,
    requester TEXT NOT NULL,
    query_type TEXT NOT NULL,
    params BLOB,
    fee_paid TEXT NOT NULL,
    status TEXT NOT NULL,
    submitted_at INTEGER NOT NULL,
    completed_at INTEGER NOT NULL DEFAULT 0,
    result_pointer TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_queries_status_submitted ON queries (status, submitted_at);

CREATE TABLE IF NOT EXISTS fee_schedule (
    query_type TEXT PRIMARY KEY,
    fee TEXT NOT NULL,
    supported INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS insights (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    pool_id TEXT NOT NULL,
    extracted_amount TEXT NOT NULL,
    prevented_amount TEXT NOT NULL,
    opportunity_count INTEGER NOT NULL,
    sandwich_attacks INTEGER NOT NULL,
    front_run_attempts INTEGER NOT NULL,
    liquidation_events INTEGER NOT NULL,
    period_start INTEGER NOT NULL,
    period_end INTEGER NOT NULL,
    report_pointer TEXT NOT NULL,
    recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_insights_pool ON insights (pool_id, seq);

CREATE TABLE IF NOT EXISTS integration_stats (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    total_deployments INTEGER NOT NULL,
    active_deployments INTEGER NOT NULL,
    total_queries INTEGER NOT NULL,
    completed_queries INTEGER NOT NULL,
    total_insights INTEGER NOT NULL,
    cumulative_fees TEXT NOT NULL,
    cumulative_latency_ms INTEGER NOT NULL,
    query_seq INTEGER NOT NULL
);
INSERT INTO integration_stats (id, total_deployments, active_deployments, total_queries,
    completed_queries, total_insights, cumulative_fees, cumulative_latency_ms, query_seq)
    VALUES (1, 0, 0, 0, 0, 0, '0', 0, 0)
    ON CONFLICT (id) DO NOTHING;
`

// Store is the durable coordination ledger. A single connection is used: the
// keeper serializes every mutating operation anyway, and SQLite rewards the
// single-writer discipline.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the ledger at path and bootstraps the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, pkgerrors.Wrap(err, "bootstrap schema")
	}

	logging.Info("coordination ledger opened", types.Storage, "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Tx exposes typed record operations inside one transaction.
type Tx struct {
	tx *sql.Tx
}

// Update runs fn inside a writable transaction. The transaction commits only
// if fn returns nil; any error rolls every change back.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "begin tx")
	}
	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error("rollback failed", types.Storage, "error", rbErr)
		}
		return err
	}
	return pkgerrors.Wrap(tx.Commit(), "commit tx")
}

// View runs fn inside a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return pkgerrors.Wrap(err, "begin read tx")
	}
	defer tx.Rollback()
	return fn(&Tx{tx: tx})
}
