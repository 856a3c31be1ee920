package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"coordination-api/coordination/store"
	"coordination-api/coordination/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenBootstrapsStats(t *testing.T) {
	s := openStore(t)

	var st types.IntegrationStats
	err := s.View(context.Background(), func(tx *store.Tx) error {
		var err error
		st, err = tx.GetStats()
		return err
	})
	require.NoError(t, err)
	assert.Zero(t, st.TotalQueries)
	assert.True(t, st.CumulativeFees.IsZero())
}

func TestOpenIsIdempotentOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := store.Open(path)
	require.NoError(t, err)
	err = s.Update(ctx, func(tx *store.Tx) error {
		return tx.InsertQuery(types.AnalyticsQuery{
			Id: "q1", Requester: "r", QueryType: "whale_trades",
			FeePaid: decimal.NewFromInt(100), Status: types.QueryStatusSubmitted,
			SubmittedAt: 1000,
		})
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening must neither lose data nor re-seed the stats row.
	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	err = s.View(ctx, func(tx *store.Tx) error {
		q, err := tx.GetQuery("q1")
		if err != nil {
			return err
		}
		assert.Equal(t, "whale_trades", q.QueryType)
		return nil
	})
	require.NoError(t, err)
}

func TestQueryRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	in := types.AnalyticsQuery{
		Id:          "abc123",
		Requester:   "requester-addr",
		QueryType:   "mev_analysis",
		Params:      []byte(`{"pool":"eth-usdc"}`),
		FeePaid:     decimal.RequireFromString("250.5"),
		Status:      types.QueryStatusSubmitted,
		SubmittedAt: 1_700_000_000_000,
	}
	err := s.Update(ctx, func(tx *store.Tx) error { return tx.InsertQuery(in) })
	require.NoError(t, err)

	var out types.AnalyticsQuery
	err = s.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.GetQuery("abc123")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, in.Requester, out.Requester)
	assert.Equal(t, in.Params, out.Params)
	assert.True(t, out.FeePaid.Equal(in.FeePaid))
	assert.Equal(t, types.QueryStatusSubmitted, out.Status)
}

func TestUpdateQueryStatusImmutableFields(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	in := types.AnalyticsQuery{
		Id: "q1", Requester: "requester-addr", QueryType: "whale_trades",
		FeePaid: decimal.NewFromInt(100), Status: types.QueryStatusSubmitted,
		SubmittedAt: 1000,
	}
	err := s.Update(ctx, func(tx *store.Tx) error { return tx.InsertQuery(in) })
	require.NoError(t, err)

	// The update carries mutated admission fields; only status, completion
	// time and pointer may land.
	mutated := in
	mutated.Requester = "someone-else"
	mutated.FeePaid = decimal.NewFromInt(9999)
	mutated.Status = types.QueryStatusCompleted
	mutated.CompletedAt = 2000
	mutated.ResultPointer = "ipfs://r"
	err = s.Update(ctx, func(tx *store.Tx) error { return tx.UpdateQueryStatus(mutated) })
	require.NoError(t, err)

	var out types.AnalyticsQuery
	err = s.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.GetQuery("q1")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "requester-addr", out.Requester)
	assert.True(t, out.FeePaid.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, types.QueryStatusCompleted, out.Status)
	assert.Equal(t, int64(2000), out.CompletedAt)
	assert.Equal(t, "ipfs://r", out.ResultPointer)
}

func TestUpdateQueryStatusNotFound(t *testing.T) {
	s := openStore(t)
	err := s.Update(context.Background(), func(tx *store.Tx) error {
		return tx.UpdateQueryStatus(types.AnalyticsQuery{Id: "missing", Status: types.QueryStatusFailed})
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := s.Update(ctx, func(tx *store.Tx) error {
		if err := tx.InsertQuery(types.AnalyticsQuery{
			Id: "doomed", Requester: "r", QueryType: "t",
			FeePaid: decimal.Zero, Status: types.QueryStatusSubmitted,
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	err = s.View(ctx, func(tx *store.Tx) error {
		_, err := tx.GetQuery("doomed")
		return err
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestNextQuerySeqMonotonic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	var seqs []uint64
	for i := 0; i < 3; i++ {
		err := s.Update(ctx, func(tx *store.Tx) error {
			seq, err := tx.NextQuerySeq()
			seqs = append(seqs, seq)
			return err
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{1, 2, 3}, seqs)

	// The sequence lives outside the stats counters and survives PutStats.
	err := s.Update(ctx, func(tx *store.Tx) error {
		st, err := tx.GetStats()
		if err != nil {
			return err
		}
		return tx.PutStats(st)
	})
	require.NoError(t, err)
	err = s.Update(ctx, func(tx *store.Tx) error {
		seq, err := tx.NextQuerySeq()
		assert.Equal(t, uint64(4), seq)
		return err
	})
	require.NoError(t, err)
}

func TestListExpirable(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	insert := func(id string, status types.QueryStatus, submittedAt int64) {
		err := s.Update(ctx, func(tx *store.Tx) error {
			return tx.InsertQuery(types.AnalyticsQuery{
				Id: id, Requester: "r", QueryType: "t",
				FeePaid: decimal.Zero, Status: status, SubmittedAt: submittedAt,
			})
		})
		require.NoError(t, err)
	}
	insert("old-submitted", types.QueryStatusSubmitted, 100)
	insert("old-processing", types.QueryStatusProcessing, 100)
	insert("old-completed", types.QueryStatusCompleted, 100)
	insert("fresh", types.QueryStatusSubmitted, 5000)

	var ids []string
	err := s.View(ctx, func(tx *store.Tx) error {
		var err error
		ids, err = tx.ListExpirable(1000, 10)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"old-submitted"}, ids)
}

func TestListQueriesPagination(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *store.Tx) error {
		for i := int64(0); i < 5; i++ {
			q := types.AnalyticsQuery{
				Id: string(rune('a' + i)), Requester: "r", QueryType: "t",
				FeePaid: decimal.Zero, Status: types.QueryStatusSubmitted,
				SubmittedAt: 1000 + i,
			}
			if err := tx.InsertQuery(q); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var page []types.AnalyticsQuery
	err = s.View(ctx, func(tx *store.Tx) error {
		var err error
		page, err = tx.ListQueries(2, 3)
		return err
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].Id)
	assert.Equal(t, "e", page[1].Id)
}

func TestFeeEntryUpsert(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *store.Tx) error {
		return tx.PutFeeEntry(types.FeeScheduleEntry{
			QueryType: "whale_trades", Fee: decimal.NewFromInt(100), Supported: true,
		})
	})
	require.NoError(t, err)
	err = s.Update(ctx, func(tx *store.Tx) error {
		return tx.PutFeeEntry(types.FeeScheduleEntry{
			QueryType: "whale_trades", Fee: decimal.NewFromInt(150), Supported: false,
		})
	})
	require.NoError(t, err)

	var e types.FeeScheduleEntry
	err = s.View(ctx, func(tx *store.Tx) error {
		var err error
		e, err = tx.GetFeeEntry("whale_trades")
		return err
	})
	require.NoError(t, err)
	assert.True(t, e.Fee.Equal(decimal.NewFromInt(150)))
	assert.False(t, e.Supported)
}

func TestDeploymentSingleton(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.View(ctx, func(tx *store.Tx) error {
		_, err := tx.GetDeployment()
		return err
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	first := types.DeploymentConfig{
		ExplorerName: "scan-one", ChainName: "chain", ChainId: 1, RpcUrl: "https://rpc",
		CurrencySymbol: "GNK", IsTestnet: true, Deployer: "owner",
		DeployedAt: 1000, Status: types.DeploymentStatusPending,
	}
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error { return tx.PutDeployment(first) }))

	second := first
	second.ExplorerName = "scan-two"
	second.Status = types.DeploymentStatusDeploying
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error { return tx.PutDeployment(second) }))

	var d types.DeploymentConfig
	err = s.View(ctx, func(tx *store.Tx) error {
		var err error
		d, err = tx.GetDeployment()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "scan-two", d.ExplorerName)
	assert.True(t, d.IsTestnet)
}

func TestInsightSequenceAndDecimals(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	amount := decimal.RequireFromString("12500.000000000000000042")
	var seq1, seq2 int64
	err := s.Update(ctx, func(tx *store.Tx) error {
		var err error
		seq1, err = tx.AppendInsight(types.MEVInsight{
			PoolId: "pool-a", ExtractedAmount: amount, PreventedAmount: decimal.Zero,
			PeriodStart: 0, PeriodEnd: 100, ReportPointer: "p", RecordedAt: 1,
		})
		if err != nil {
			return err
		}
		seq2, err = tx.AppendInsight(types.MEVInsight{
			PoolId: "pool-a", ExtractedAmount: decimal.Zero, PreventedAmount: decimal.Zero,
			PeriodStart: 100, PeriodEnd: 200, ReportPointer: "p", RecordedAt: 2,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, seq1+1, seq2)

	var out []types.MEVInsight
	err = s.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListInsights("pool-a", 0, 0, 10, 0)
		return err
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	// TEXT storage keeps full decimal precision.
	assert.True(t, out[0].ExtractedAmount.Equal(amount))
}
