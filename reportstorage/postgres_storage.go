package reportstorage

import (
	"context"
	"errors"
	"fmt"

	"coordination-api/coordination/types"
	"coordination-api/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS mev_reports (
    pointer TEXT PRIMARY KEY,
    report BYTEA NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
)
`

type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects to PostgreSQL at connUrl. An empty connUrl
// falls back to the standard libpq env vars (PGHOST, PGPORT, PGDATABASE,
// PGUSER, PGPASSWORD).
func NewPostgresStorage(ctx context.Context, connUrl string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connUrl)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStorage{pool: pool}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logging.Info("PostgreSQL report storage initialized", types.Storage)
	return s, nil
}

func (s *PostgresStorage) Store(ctx context.Context, report []byte) (string, error) {
	pointer := ComputePointer(report)

	// Content addressing makes duplicate stores a no-op.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mev_reports (pointer, report) VALUES ($1, $2)
		ON CONFLICT (pointer) DO NOTHING`, pointer, report)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}

	logging.Debug("Stored report in PostgreSQL", types.Storage, "pointer", pointer)
	return pointer, nil
}

func (s *PostgresStorage) Retrieve(ctx context.Context, pointer string) ([]byte, error) {
	if _, err := parsePointer(pointer); err != nil {
		return nil, ErrNotFound
	}

	var report []byte
	err := s.pool.QueryRow(ctx, `SELECT report FROM mev_reports WHERE pointer = $1`, pointer).Scan(&report)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query report: %w", err)
	}
	return report, nil
}

func (s *PostgresStorage) Close() {
	s.pool.Close()
}

var _ ReportStorage = (*PostgresStorage)(nil)
