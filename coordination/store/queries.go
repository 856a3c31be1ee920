package store

import (
	"database/sql"
	"errors"
	"fmt"

	"coordination-api/coordination/types"

	"github.com/shopspring/decimal"
)

func (t *Tx) InsertQuery(q types.AnalyticsQuery) error {
	_, err := t.tx.Exec(`
		INSERT INTO queries (id, requester, query_type, params, fee_paid, status, submitted_at, completed_at, result_pointer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Id, q.Requester, q.QueryType, q.Params, q.FeePaid.String(), string(q.Status),
		q.SubmittedAt, q.CompletedAt, q.ResultPointer)
	if err != nil {
		return fmt.Errorf("insert query: %w", err)
	}
	return nil
}

// UpdateQueryStatus persists the one-shot terminal (or PROCESSING) mutation
// of a query record. Identifier, requester, type, params, fee and submission
// time are immutable after admission and deliberately not touched.
func (t *Tx) UpdateQueryStatus(q types.AnalyticsQuery) error {
	res, err := t.tx.Exec(`
		UPDATE queries SET status = ?, completed_at = ?, result_pointer = ? WHERE id = ?`,
		string(q.Status), q.CompletedAt, q.ResultPointer, q.Id)
	if err != nil {
		return fmt.Errorf("update query: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update query rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *Tx) GetQuery(id string) (types.AnalyticsQuery, error) {
	row := t.tx.QueryRow(`
		SELECT id, requester, query_type, params, fee_paid, status, submitted_at, completed_at, result_pointer
		FROM queries WHERE id = ?`, id)
	return scanQuery(row)
}

// ListQueries enumerates queries in submission order, paginated. This
// replaces the unbounded identifier array of the original design.
func (t *Tx) ListQueries(limit, offset int64) ([]types.AnalyticsQuery, error) {
	rows, err := t.tx.Query(`
		SELECT id, requester, query_type, params, fee_paid, status, submitted_at, completed_at, result_pointer
		FROM queries ORDER BY submitted_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var out []types.AnalyticsQuery
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListExpirable returns identifiers of SUBMITTED queries admitted at or
// before cutoff. Claimed (PROCESSING) queries are excluded: once a responder
// picks a query up, expiry no longer applies.
func (t *Tx) ListExpirable(cutoff int64, limit int64) ([]string, error) {
	rows, err := t.tx.Query(`
		SELECT id FROM queries
		WHERE status = ? AND submitted_at <= ?
		ORDER BY submitted_at LIMIT ?`,
		string(types.QueryStatusSubmitted), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list expirable: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuery(row rowScanner) (types.AnalyticsQuery, error) {
	var (
		q      types.AnalyticsQuery
		fee    string
		status string
	)
	err := row.Scan(&q.Id, &q.Requester, &q.QueryType, &q.Params, &fee, &status,
		&q.SubmittedAt, &q.CompletedAt, &q.ResultPointer)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AnalyticsQuery{}, ErrNotFound
	}
	if err != nil {
		return types.AnalyticsQuery{}, fmt.Errorf("scan query: %w", err)
	}
	q.Status = types.QueryStatus(status)
	q.FeePaid, err = decimal.NewFromString(fee)
	if err != nil {
		return types.AnalyticsQuery{}, fmt.Errorf("parse fee %q: %w", fee, err)
	}
	return q, nil
}
