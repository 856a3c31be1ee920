package keeper

import (
	"context"
	"errors"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/logging"
)

// MarkQueryProcessing is the optional intermediate marker the responder sets
// when work on a query has begun. SUBMITTED -> PROCESSING only.
func (k *Keeper) MarkQueryProcessing(ctx context.Context, responder, queryId string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireResponder(responder); err != nil {
		return err
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		q, err := k.getQueryForTransition(tx, queryId, types.QueryStatusProcessing)
		if err != nil {
			return err
		}
		q.Status = types.QueryStatusProcessing
		if err := tx.UpdateQueryStatus(q); err != nil {
			return err
		}
		events = append(events, k.newEvent(types.EventQueryStatusChanged, types.QueryStatusPayload{
			QueryId: q.Id,
			Status:  q.Status,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("query processing", types.Queries, "queryId", queryId, "responder", responder)
	return nil
}

// CompleteQuery correlates a posted result with its query. The result pointer
// references off-chain content and must not be empty; it is the only way a
// query acquires a non-empty pointer.
func (k *Keeper) CompleteQuery(ctx context.Context, responder, queryId, resultPointer string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireResponder(responder); err != nil {
		return err
	}
	if resultPointer == "" {
		return types.ErrInvalidResult.Wrap(queryId)
	}

	var (
		events  []types.Event
		latency int64
	)
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		q, err := k.getQueryForTransition(tx, queryId, types.QueryStatusCompleted)
		if err != nil {
			return err
		}
		q.Status = types.QueryStatusCompleted
		q.CompletedAt = k.terminalTimestamp(q.SubmittedAt)
		q.ResultPointer = resultPointer
		latency = q.CompletedAt - q.SubmittedAt
		if err := tx.UpdateQueryStatus(q); err != nil {
			return err
		}

		st, err := tx.GetStats()
		if err != nil {
			return err
		}
		st.CompletedQueries++
		st.CumulativeLatencyMs += uint64(latency)
		if err := tx.PutStats(st); err != nil {
			return err
		}

		events = append(events, k.newEvent(types.EventAnalyticsQueryCompleted, types.QueryCompletedPayload{
			QueryId:       q.Id,
			ResultPointer: resultPointer,
			LatencyMs:     latency,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("query completed", types.Queries,
		"queryId", queryId, "responder", responder, "latencyMs", latency)
	return nil
}

// FailQuery marks a query FAILED. Indistinguishable at this layer from an
// off-chain service error; monitoring of that service is out of scope.
func (k *Keeper) FailQuery(ctx context.Context, responder, queryId string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireResponder(responder); err != nil {
		return err
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		q, err := k.getQueryForTransition(tx, queryId, types.QueryStatusFailed)
		if err != nil {
			return err
		}
		q.Status = types.QueryStatusFailed
		q.CompletedAt = k.terminalTimestamp(q.SubmittedAt)
		if err := tx.UpdateQueryStatus(q); err != nil {
			return err
		}
		events = append(events, k.newEvent(types.EventQueryStatusChanged, types.QueryStatusPayload{
			QueryId: q.Id,
			Status:  q.Status,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("query failed", types.Queries, "queryId", queryId, "responder", responder)
	return nil
}

// ExpireQuery is the permissionless garbage-collection transition: anyone may
// expire a query once its time-to-live has elapsed without completion.
func (k *Keeper) ExpireQuery(ctx context.Context, queryId string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		q, err := k.getQueryForTransition(tx, queryId, types.QueryStatusExpired)
		if err != nil {
			return err
		}
		if k.now().UnixMilli() < q.SubmittedAt+k.queryTTL.Milliseconds() {
			return types.ErrInvalidTransition.Wrapf("query %s not yet expirable", queryId)
		}
		q.Status = types.QueryStatusExpired
		q.CompletedAt = k.terminalTimestamp(q.SubmittedAt)
		if err := tx.UpdateQueryStatus(q); err != nil {
			return err
		}
		events = append(events, k.newEvent(types.EventQueryStatusChanged, types.QueryStatusPayload{
			QueryId: q.Id,
			Status:  q.Status,
		}))
		return nil
	})
	if err != nil {
		return err
	}

	k.emitAll(events)
	logging.Info("query expired", types.Queries, "queryId", queryId)
	return nil
}

// ListExpirableQueries returns identifiers of queries whose TTL has elapsed.
// Used by the expiry sweeper; the actual transition still goes through
// ExpireQuery.
func (k *Keeper) ListExpirableQueries(ctx context.Context, limit int64) ([]string, error) {
	cutoff := k.now().UnixMilli() - k.queryTTL.Milliseconds()
	var ids []string
	err := k.store.View(ctx, func(tx *store.Tx) error {
		var err error
		ids, err = tx.ListExpirable(cutoff, limit)
		return err
	})
	return ids, err
}

func (k *Keeper) getQueryForTransition(tx *store.Tx, queryId string, next types.QueryStatus) (types.AnalyticsQuery, error) {
	q, err := tx.GetQuery(queryId)
	if errors.Is(err, store.ErrNotFound) {
		return types.AnalyticsQuery{}, types.ErrUnknownQuery.Wrap(queryId)
	}
	if err != nil {
		return types.AnalyticsQuery{}, err
	}
	if !q.Status.CanTransitionTo(next) {
		return types.AnalyticsQuery{}, types.ErrInvalidTransition.Wrapf("query %s: %s -> %s", queryId, q.Status, next)
	}
	return q, nil
}

// terminalTimestamp stamps terminal transitions, clamped so the completion
// timestamp is strictly greater than the submission timestamp even when both
// land in the same millisecond.
func (k *Keeper) terminalTimestamp(submittedAt int64) int64 {
	ts := k.now().UnixMilli()
	if ts <= submittedAt {
		ts = submittedAt + 1
	}
	return ts
}
