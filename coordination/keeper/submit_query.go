package keeper

import (
	"context"
	"errors"
	"fmt"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"
	"coordination-api/logging"
	"coordination-api/utils"

	"github.com/shopspring/decimal"
)

// SubmitQuery admits a fee-gated analytics request. The identifier is derived
// from the requester, the query type and a persisted admission sequence, so
// identifiers stay unique even for identical submissions within one instant.
// On rejection no record is stored and no counter moves.
func (k *Keeper) SubmitQuery(ctx context.Context, requester, queryType string, params []byte, payment decimal.Decimal) (types.AnalyticsQuery, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var (
		q      types.AnalyticsQuery
		events []types.Event
	)
	err := k.store.Update(ctx, func(tx *store.Tx) error {
		entry, err := tx.GetFeeEntry(queryType)
		if errors.Is(err, store.ErrNotFound) {
			return types.ErrRejectedQueryType.Wrap(queryType)
		}
		if err != nil {
			return err
		}
		if !entry.Supported {
			return types.ErrRejectedQueryType.Wrap(queryType)
		}
		if payment.LessThan(entry.Fee) {
			return types.ErrInsufficientPayment.Wrapf("type %s requires %s, got %s", queryType, entry.Fee, payment)
		}

		seq, err := tx.NextQuerySeq()
		if err != nil {
			return err
		}
		q = types.AnalyticsQuery{
			Id:          queryId(requester, queryType, seq),
			Requester:   requester,
			QueryType:   queryType,
			Params:      params,
			FeePaid:     payment,
			Status:      types.QueryStatusSubmitted,
			SubmittedAt: k.now().UnixMilli(),
		}
		if err := tx.InsertQuery(q); err != nil {
			return err
		}

		st, err := tx.GetStats()
		if err != nil {
			return err
		}
		st.TotalQueries++
		st.CumulativeFees = st.CumulativeFees.Add(payment)
		if err := tx.PutStats(st); err != nil {
			return err
		}

		events = append(events, k.newEvent(types.EventAnalyticsQuerySubmitted, types.QuerySubmittedPayload{
			QueryId:   q.Id,
			Requester: q.Requester,
			QueryType: q.QueryType,
			FeePaid:   q.FeePaid.String(),
		}))
		return nil
	})
	if err != nil {
		logging.Warn("query admission rejected", types.Queries,
			"requester", requester, "queryType", queryType, "error", err)
		return types.AnalyticsQuery{}, err
	}

	k.emitAll(events)
	logging.Info("query admitted", types.Queries,
		"queryId", q.Id, "requester", requester, "queryType", queryType, "fee", q.FeePaid.String())
	return q, nil
}

func queryId(requester, queryType string, seq uint64) string {
	return utils.GenerateSHA256Hash(fmt.Sprintf("%s|%s|%d", requester, queryType, seq))
}
