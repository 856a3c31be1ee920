package expiry

import (
	"context"
	"testing"
	"time"

	"coordination-api/coordination/keeper"
	"coordination-api/coordination/store"
	"coordination-api/coordination/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperExpiresStaleQueries(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	now := time.UnixMilli(1_700_000_000_000)
	k := keeper.NewKeeper(s, nil, "owner", []string{"responder"}, time.Hour,
		keeper.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, k.SeedFeeSchedule(ctx, []types.FeeScheduleEntry{
		{QueryType: "whale_trades", Fee: decimal.NewFromInt(100), Supported: true},
	}))

	stale, err := k.SubmitQuery(ctx, "requester", "whale_trades", nil, decimal.NewFromInt(100))
	require.NoError(t, err)
	claimed, err := k.SubmitQuery(ctx, "requester", "whale_trades", nil, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, k.MarkQueryProcessing(ctx, "responder", claimed.Id))

	now = now.Add(2 * time.Hour)

	sweeper := &Sweeper{keeper: k, batchSize: 100}
	sweeper.tick(ctx)

	got, err := k.GetQuery(ctx, stale.Id)
	require.NoError(t, err)
	assert.Equal(t, types.QueryStatusExpired, got.Status)

	got, err = k.GetQuery(ctx, claimed.Id)
	require.NoError(t, err)
	assert.Equal(t, types.QueryStatusProcessing, got.Status)
}

func TestSweeperNoopWhenNothingExpirable(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	k := keeper.NewKeeper(s, nil, "owner", nil, time.Hour)
	sweeper := &Sweeper{keeper: k, batchSize: 100}
	sweeper.tick(context.Background())
}

func TestSweeperCloseStops(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	k := keeper.NewKeeper(s, nil, "owner", nil, time.Hour)
	sweeper := NewSweeper(k, 10*time.Millisecond, 100)
	sweeper.Close()
}
