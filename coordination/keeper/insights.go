package keeper

import (
	"context"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/logging"
)

// RecordInsight appends one MEV insight report to the pool's sequence.
// Responder capability only; the content itself is never validated beyond
// the period bounds. Appended entries are immutable.
func (k *Keeper) RecordInsight(ctx context.Context, responder string, ins types.MEVInsight) (types.MEVInsight, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.requireResponder(responder); err != nil {
		return types.MEVInsight{}, err
	}
	if ins.PoolId == "" {
		return types.MEVInsight{}, types.ErrMalformedConfig.Wrap("pool id is required")
	}
	if ins.PeriodEnd < ins.PeriodStart {
		return types.MEVInsight{}, types.ErrInvalidPeriod.Wrapf("start %d, end %d", ins.PeriodStart, ins.PeriodEnd)
	}

	var events []types.Event
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		ins.RecordedAt = k.now().UnixMilli()
		seq, err := tx.AppendInsight(ins)
		if err != nil {
			return err
		}
		ins.Seq = seq

		st, err := tx.GetStats()
		if err != nil {
			return err
		}
		st.TotalInsights++
		if err := tx.PutStats(st); err != nil {
			return err
		}

		events = append(events, k.newEvent(types.EventMEVInsightsGenerated, types.InsightRecordedPayload{
			PoolId:        ins.PoolId,
			Seq:           ins.Seq,
			ReportPointer: ins.ReportPointer,
		}))
		return nil
	})
	if err != nil {
		return types.MEVInsight{}, err
	}

	k.emitAll(events)
	logging.Info("insight recorded", types.Insights,
		"poolId", ins.PoolId, "seq", ins.Seq, "reportPointer", ins.ReportPointer)
	return ins, nil
}
