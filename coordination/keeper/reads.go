package keeper

import (
	"context"
	"errors"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// GetQuery returns one query by identifier.
func (k *Keeper) GetQuery(ctx context.Context, queryId string) (types.AnalyticsQuery, error) {
	var q types.AnalyticsQuery
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		q, err = tx.GetQuery(queryId)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return types.AnalyticsQuery{}, types.ErrUnknownQuery.Wrap(queryId)
	}
	return q, err
}

// ListQueries enumerates queries in submission order, paginated.
func (k *Keeper) ListQueries(ctx context.Context, limit, offset int64) ([]types.AnalyticsQuery, error) {
	limit = clampLimit(limit)
	var out []types.AnalyticsQuery
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListQueries(limit, offset)
		return err
	})
	return out, err
}

// ListInsights returns a pool's insight reports in insertion order, filtered
// by period overlap with [from, to] (to == 0 means unbounded), paginated so
// the read is restartable from any offset.
func (k *Keeper) ListInsights(ctx context.Context, poolId string, from, to, limit, offset int64) ([]types.MEVInsight, error) {
	limit = clampLimit(limit)
	var out []types.MEVInsight
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListInsights(poolId, from, to, limit, offset)
		return err
	})
	return out, err
}

// GetStats returns the running integration statistics.
func (k *Keeper) GetStats(ctx context.Context) (types.IntegrationStats, error) {
	var st types.IntegrationStats
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		st, err = tx.GetStats()
		return err
	})
	return st, err
}

// GetDeployment returns the singleton deployment record.
func (k *Keeper) GetDeployment(ctx context.Context) (types.DeploymentConfig, error) {
	var d types.DeploymentConfig
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		d, err = tx.GetDeployment()
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return types.DeploymentConfig{}, types.ErrNoDeployment
	}
	return d, err
}

// GetAIServiceConfig returns the AI-service descriptor.
func (k *Keeper) GetAIServiceConfig(ctx context.Context) (types.AIServiceConfig, error) {
	var c types.AIServiceConfig
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		c, err = tx.GetAIServiceConfig()
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return types.AIServiceConfig{}, types.ErrMalformedConfig.Wrap("ai service not configured")
	}
	return c, err
}

// GetFeeSchedule returns all fee entries.
func (k *Keeper) GetFeeSchedule(ctx context.Context) ([]types.FeeScheduleEntry, error) {
	var out []types.FeeScheduleEntry
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListFeeEntries()
		return err
	})
	return out, err
}

func clampLimit(limit int64) int64 {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
