package keeper_test

import (
	"context"
	"testing"

	"coordination-api/coordination/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAIServiceConfig() types.AIServiceConfig {
	return types.AIServiceConfig{
		Endpoint:                   "https://ai.example/v1",
		ApiKey:                     "sk-test",
		AnalyticsEnabled:           true,
		ResponseSlicingEnabled:     true,
		ContextOptimizationEnabled: false,
		MaxPageSize:                500,
		CacheTimeoutSeconds:        300,
		Active:                     true,
	}
}

func TestConfigureAIService(t *testing.T) {
	k, emitter, _ := setupKeeper(t)
	ctx := context.Background()

	_, err := k.GetAIServiceConfig(ctx)
	require.ErrorIs(t, err, types.ErrMalformedConfig)

	cfg := testAIServiceConfig()
	require.NoError(t, k.ConfigureAIService(ctx, testAuthority, cfg))

	got, err := k.GetAIServiceConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	require.Len(t, emitter.byType(types.EventMCPServerConfigured), 1)
}

func TestConfigureAIServiceReplacesWholesale(t *testing.T) {
	k, _, _ := setupKeeper(t)
	ctx := context.Background()

	require.NoError(t, k.ConfigureAIService(ctx, testAuthority, testAIServiceConfig()))

	// The replacement omits the api key and flips the flags; nothing from the
	// previous record may survive.
	replacement := types.AIServiceConfig{
		Endpoint:            "https://ai2.example/v1",
		MaxPageSize:         100,
		CacheTimeoutSeconds: 60,
	}
	require.NoError(t, k.ConfigureAIService(ctx, testAuthority, replacement))

	got, err := k.GetAIServiceConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
	assert.Empty(t, got.ApiKey)
	assert.False(t, got.Active)
}

func TestConfigureAIServiceValidation(t *testing.T) {
	k, _, _ := setupKeeper(t)
	ctx := context.Background()

	for _, mutate := range []func(*types.AIServiceConfig){
		func(c *types.AIServiceConfig) { c.Endpoint = "" },
		func(c *types.AIServiceConfig) { c.MaxPageSize = 0 },
		func(c *types.AIServiceConfig) { c.MaxPageSize = -1 },
		func(c *types.AIServiceConfig) { c.CacheTimeoutSeconds = 0 },
	} {
		cfg := testAIServiceConfig()
		mutate(&cfg)
		require.ErrorIs(t, k.ConfigureAIService(ctx, testAuthority, cfg), types.ErrMalformedConfig)
	}

	// No partial write from the rejected attempts.
	_, err := k.GetAIServiceConfig(ctx)
	require.ErrorIs(t, err, types.ErrMalformedConfig)
}

func TestConfigureAIServiceAuthorization(t *testing.T) {
	k, _, _ := setupKeeper(t)
	err := k.ConfigureAIService(context.Background(), testResponder, testAIServiceConfig())
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestSetQueryTypeFee(t *testing.T) {
	k, _, _ := setupKeeper(t)
	ctx := context.Background()

	require.NoError(t, k.SetQueryTypeFee(ctx, testAuthority, "whale_trades", decimal.NewFromInt(175)))

	// Raising the fee does not touch the support flag.
	_, err := k.SubmitQuery(ctx, testRequester, "whale_trades", nil, decimal.NewFromInt(100))
	require.ErrorIs(t, err, types.ErrInsufficientPayment)
	_, err = k.SubmitQuery(ctx, testRequester, "whale_trades", nil, decimal.NewFromInt(175))
	require.NoError(t, err)
}

func TestSetQueryTypeFeeValidation(t *testing.T) {
	k, _, _ := setupKeeper(t)
	ctx := context.Background()

	require.ErrorIs(t, k.SetQueryTypeFee(ctx, testAuthority, "", decimal.NewFromInt(1)), types.ErrMalformedConfig)
	require.ErrorIs(t, k.SetQueryTypeFee(ctx, testAuthority, "whale_trades", decimal.NewFromInt(-1)), types.ErrMalformedConfig)
	require.ErrorIs(t, k.SetQueryTypeFee(ctx, testResponder, "whale_trades", decimal.NewFromInt(1)), types.ErrUnauthorized)
}

func TestSetQueryTypeSupported(t *testing.T) {
	k, _, _ := setupKeeper(t)
	ctx := context.Background()

	// Flip support off: admission stops, the fee survives.
	require.NoError(t, k.SetQueryTypeSupported(ctx, testAuthority, "whale_trades", false))
	_, err := k.SubmitQuery(ctx, testRequester, "whale_trades", nil, decimal.NewFromInt(100))
	require.ErrorIs(t, err, types.ErrRejectedQueryType)

	require.NoError(t, k.SetQueryTypeSupported(ctx, testAuthority, "whale_trades", true))
	_, err = k.SubmitQuery(ctx, testRequester, "whale_trades", nil, decimal.NewFromInt(100))
	require.NoError(t, err)

	// Enabling a brand-new type creates a zero-fee entry.
	require.NoError(t, k.SetQueryTypeSupported(ctx, testAuthority, "gas_profile", true))
	_, err = k.SubmitQuery(ctx, testRequester, "gas_profile", nil, decimal.Zero)
	require.NoError(t, err)
}

func TestGetFeeSchedule(t *testing.T) {
	k, _, _ := setupKeeper(t)

	entries, err := k.GetFeeSchedule(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byType := make(map[string]types.FeeScheduleEntry, len(entries))
	for _, e := range entries {
		byType[e.QueryType] = e
	}
	assert.True(t, byType["whale_trades"].Supported)
	assert.True(t, byType["whale_trades"].Fee.Equal(decimal.NewFromInt(100)))
	assert.False(t, byType["pool_analytics"].Supported)
}

func TestSeedFeeScheduleDoesNotOverwrite(t *testing.T) {
	k, _, _ := setupKeeper(t)
	ctx := context.Background()

	// Operator change, then a restart re-seeds the defaults.
	require.NoError(t, k.SetQueryTypeFee(ctx, testAuthority, "whale_trades", decimal.NewFromInt(999)))
	require.NoError(t, k.SeedFeeSchedule(ctx, []types.FeeScheduleEntry{
		{QueryType: "whale_trades", Fee: decimal.NewFromInt(100), Supported: true},
		{QueryType: "fresh_type", Fee: decimal.NewFromInt(10), Supported: true},
	}))

	entries, err := k.GetFeeSchedule(ctx)
	require.NoError(t, err)
	byType := make(map[string]types.FeeScheduleEntry, len(entries))
	for _, e := range entries {
		byType[e.QueryType] = e
	}
	assert.True(t, byType["whale_trades"].Fee.Equal(decimal.NewFromInt(999)))
	assert.True(t, byType["fresh_type"].Fee.Equal(decimal.NewFromInt(10)))
}
