package store

import (
	"database/sql"
	"errors"
	"fmt"

	"coordination-api/coordination/types"

	"github.com/shopspring/decimal"
)

func (t *Tx) GetDeployment() (types.DeploymentConfig, error) {
	var (
		d         types.DeploymentConfig
		isTestnet int64
		status    string
	)
	err := t.tx.QueryRow(`
		SELECT explorer_name, chain_name, chain_id, rpc_url, currency_symbol, is_testnet,
		       logo_url, brand_color, deployer, deployed_at, status
		FROM deployment_config WHERE id = 1`).Scan(
		&d.ExplorerName, &d.ChainName, &d.ChainId, &d.RpcUrl, &d.CurrencySymbol, &isTestnet,
		&d.LogoUrl, &d.BrandColor, &d.Deployer, &d.DeployedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DeploymentConfig{}, ErrNotFound
	}
	if err != nil {
		return types.DeploymentConfig{}, fmt.Errorf("get deployment: %w", err)
	}
	d.IsTestnet = isTestnet != 0
	d.Status = types.DeploymentStatus(status)
	return d, nil
}

// PutDeployment overwrites the singleton deployment record in place. The
// single-row model structurally forbids two concurrent deployments.
func (t *Tx) PutDeployment(d types.DeploymentConfig) error {
	_, err := t.tx.Exec(`
		INSERT INTO deployment_config (id, explorer_name, chain_name, chain_id, rpc_url,
		    currency_symbol, is_testnet, logo_url, brand_color, deployer, deployed_at, status)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		    explorer_name = excluded.explorer_name,
		    chain_name = excluded.chain_name,
		    chain_id = excluded.chain_id,
		    rpc_url = excluded.rpc_url,
		    currency_symbol = excluded.currency_symbol,
		    is_testnet = excluded.is_testnet,
		    logo_url = excluded.logo_url,
		    brand_color = excluded.brand_color,
		    deployer = excluded.deployer,
		    deployed_at = excluded.deployed_at,
		    status = excluded.status`,
		d.ExplorerName, d.ChainName, d.ChainId, d.RpcUrl, d.CurrencySymbol, boolToInt(d.IsTestnet),
		d.LogoUrl, d.BrandColor, d.Deployer, d.DeployedAt, string(d.Status))
	if err != nil {
		return fmt.Errorf("put deployment: %w", err)
	}
	return nil
}

func (t *Tx) GetAIServiceConfig() (types.AIServiceConfig, error) {
	var (
		c                                types.AIServiceConfig
		analytics, slicing, ctxOpt, live int64
	)
	err := t.tx.QueryRow(`
		SELECT endpoint, api_key, analytics_enabled, response_slicing_enabled,
		       context_optimization_enabled, max_page_size, cache_timeout_seconds, active
		FROM ai_service_config WHERE id = 1`).Scan(
		&c.Endpoint, &c.ApiKey, &analytics, &slicing, &ctxOpt,
		&c.MaxPageSize, &c.CacheTimeoutSeconds, &live)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AIServiceConfig{}, ErrNotFound
	}
	if err != nil {
		return types.AIServiceConfig{}, fmt.Errorf("get ai service config: %w", err)
	}
	c.AnalyticsEnabled = analytics != 0
	c.ResponseSlicingEnabled = slicing != 0
	c.ContextOptimizationEnabled = ctxOpt != 0
	c.Active = live != 0
	return c, nil
}

func (t *Tx) PutAIServiceConfig(c types.AIServiceConfig) error {
	_, err := t.tx.Exec(`
		INSERT INTO ai_service_config (id, endpoint, api_key, analytics_enabled,
		    response_slicing_enabled, context_optimization_enabled, max_page_size,
		    cache_timeout_seconds, active)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		    endpoint = excluded.endpoint,
		    api_key = excluded.api_key,
		    analytics_enabled = excluded.analytics_enabled,
		    response_slicing_enabled = excluded.response_slicing_enabled,
		    context_optimization_enabled = excluded.context_optimization_enabled,
		    max_page_size = excluded.max_page_size,
		    cache_timeout_seconds = excluded.cache_timeout_seconds,
		    active = excluded.active`,
		c.Endpoint, c.ApiKey, boolToInt(c.AnalyticsEnabled), boolToInt(c.ResponseSlicingEnabled),
		boolToInt(c.ContextOptimizationEnabled), c.MaxPageSize, c.CacheTimeoutSeconds, boolToInt(c.Active))
	if err != nil {
		return fmt.Errorf("put ai service config: %w", err)
	}
	return nil
}

func (t *Tx) GetFeeEntry(queryType string) (types.FeeScheduleEntry, error) {
	var (
		e         types.FeeScheduleEntry
		fee       string
		supported int64
	)
	err := t.tx.QueryRow(`SELECT query_type, fee, supported FROM fee_schedule WHERE query_type = ?`,
		queryType).Scan(&e.QueryType, &fee, &supported)
	if errors.Is(err, sql.ErrNoRows) {
		return types.FeeScheduleEntry{}, ErrNotFound
	}
	if err != nil {
		return types.FeeScheduleEntry{}, fmt.Errorf("get fee entry: %w", err)
	}
	e.Supported = supported != 0
	e.Fee, err = decimal.NewFromString(fee)
	if err != nil {
		return types.FeeScheduleEntry{}, fmt.Errorf("parse fee %q: %w", fee, err)
	}
	return e, nil
}

func (t *Tx) PutFeeEntry(e types.FeeScheduleEntry) error {
	_, err := t.tx.Exec(`
		INSERT INTO fee_schedule (query_type, fee, supported) VALUES (?, ?, ?)
		ON CONFLICT (query_type) DO UPDATE SET fee = excluded.fee, supported = excluded.supported`,
		e.QueryType, e.Fee.String(), boolToInt(e.Supported))
	if err != nil {
		return fmt.Errorf("put fee entry: %w", err)
	}
	return nil
}

func (t *Tx) ListFeeEntries() ([]types.FeeScheduleEntry, error) {
	rows, err := t.tx.Query(`SELECT query_type, fee, supported FROM fee_schedule ORDER BY query_type`)
	if err != nil {
		return nil, fmt.Errorf("list fee entries: %w", err)
	}
	defer rows.Close()

	var out []types.FeeScheduleEntry
	for rows.Next() {
		var (
			e         types.FeeScheduleEntry
			fee       string
			supported int64
		)
		if err := rows.Scan(&e.QueryType, &fee, &supported); err != nil {
			return nil, err
		}
		e.Supported = supported != 0
		e.Fee, err = decimal.NewFromString(fee)
		if err != nil {
			return nil, fmt.Errorf("parse fee %q: %w", fee, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendInsight inserts one insight and returns its insertion sequence.
// Insight rows are never updated or deleted.
func (t *Tx) AppendInsight(ins types.MEVInsight) (int64, error) {
	res, err := t.tx.Exec(`
		INSERT INTO insights (pool_id, extracted_amount, prevented_amount, opportunity_count,
		    sandwich_attacks, front_run_attempts, liquidation_events, period_start, period_end,
		    report_pointer, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ins.PoolId, ins.ExtractedAmount.String(), ins.PreventedAmount.String(), ins.OpportunityCount,
		ins.SandwichAttacks, ins.FrontRunAttempts, ins.LiquidationEvents, ins.PeriodStart,
		ins.PeriodEnd, ins.ReportPointer, ins.RecordedAt)
	if err != nil {
		return 0, fmt.Errorf("append insight: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insight seq: %w", err)
	}
	return seq, nil
}

// ListInsights returns insights for a pool in insertion order, filtered by
// period overlap with [from, to]. to == 0 means no upper bound.
func (t *Tx) ListInsights(poolId string, from, to, limit, offset int64) ([]types.MEVInsight, error) {
	rows, err := t.tx.Query(`
		SELECT seq, pool_id, extracted_amount, prevented_amount, opportunity_count,
		       sandwich_attacks, front_run_attempts, liquidation_events, period_start,
		       period_end, report_pointer, recorded_at
		FROM insights
		WHERE pool_id = ? AND period_end >= ? AND (? = 0 OR period_start <= ?)
		ORDER BY seq LIMIT ? OFFSET ?`,
		poolId, from, to, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []types.MEVInsight
	for rows.Next() {
		var (
			ins                  types.MEVInsight
			extracted, prevented string
		)
		if err := rows.Scan(&ins.Seq, &ins.PoolId, &extracted, &prevented, &ins.OpportunityCount,
			&ins.SandwichAttacks, &ins.FrontRunAttempts, &ins.LiquidationEvents, &ins.PeriodStart,
			&ins.PeriodEnd, &ins.ReportPointer, &ins.RecordedAt); err != nil {
			return nil, err
		}
		if ins.ExtractedAmount, err = decimal.NewFromString(extracted); err != nil {
			return nil, fmt.Errorf("parse extracted amount %q: %w", extracted, err)
		}
		if ins.PreventedAmount, err = decimal.NewFromString(prevented); err != nil {
			return nil, fmt.Errorf("parse prevented amount %q: %w", prevented, err)
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}

func (t *Tx) GetStats() (types.IntegrationStats, error) {
	var (
		st   types.IntegrationStats
		fees string
		seq  uint64
	)
	err := t.tx.QueryRow(`
		SELECT total_deployments, active_deployments, total_queries, completed_queries,
		       total_insights, cumulative_fees, cumulative_latency_ms, query_seq
		FROM integration_stats WHERE id = 1`).Scan(
		&st.TotalDeployments, &st.ActiveDeployments, &st.TotalQueries, &st.CompletedQueries,
		&st.TotalInsights, &fees, &st.CumulativeLatencyMs, &seq)
	if err != nil {
		return types.IntegrationStats{}, fmt.Errorf("get stats: %w", err)
	}
	st.CumulativeFees, err = decimal.NewFromString(fees)
	if err != nil {
		return types.IntegrationStats{}, fmt.Errorf("parse cumulative fees %q: %w", fees, err)
	}
	return st, nil
}

func (t *Tx) PutStats(st types.IntegrationStats) error {
	_, err := t.tx.Exec(`
		UPDATE integration_stats SET total_deployments = ?, active_deployments = ?,
		    total_queries = ?, completed_queries = ?, total_insights = ?,
		    cumulative_fees = ?, cumulative_latency_ms = ?
		WHERE id = 1`,
		st.TotalDeployments, st.ActiveDeployments, st.TotalQueries, st.CompletedQueries,
		st.TotalInsights, st.CumulativeFees.String(), st.CumulativeLatencyMs)
	if err != nil {
		return fmt.Errorf("put stats: %w", err)
	}
	return nil
}

// NextQuerySeq bumps and returns the persisted admission sequence used for
// deterministic query identifiers.
func (t *Tx) NextQuerySeq() (uint64, error) {
	var seq uint64
	err := t.tx.QueryRow(`
		UPDATE integration_stats SET query_seq = query_seq + 1 WHERE id = 1
		RETURNING query_seq`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next query seq: %w", err)
	}
	return seq, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
