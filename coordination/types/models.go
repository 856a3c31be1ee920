package types

import (
	"github.com/shopspring/decimal"
)

// AnalyticsQuery is a fee-gated request for off-chain computed analytics,
// correlated by its unique identifier. Records are retained for audit and
// never deleted.
type AnalyticsQuery struct {
	Id            string          `json:"id"`
	Requester     string          `json:"requester"`
	QueryType     string          `json:"query_type"`
	Params        []byte          `json:"params,omitempty"`
	FeePaid       decimal.Decimal `json:"fee_paid"`
	Status        QueryStatus     `json:"status"`
	SubmittedAt   int64           `json:"submitted_at"`
	CompletedAt   int64           `json:"completed_at"`
	ResultPointer string          `json:"result_pointer"`
}

// DeploymentConfig is the singleton descriptor of the externally provisioned
// explorer instance bound to a chain identity.
type DeploymentConfig struct {
	ExplorerName   string           `json:"explorer_name"`
	ChainName      string           `json:"chain_name"`
	ChainId        int64            `json:"chain_id"`
	RpcUrl         string           `json:"rpc_url"`
	CurrencySymbol string           `json:"currency_symbol"`
	IsTestnet      bool             `json:"is_testnet"`
	LogoUrl        string           `json:"logo_url"`
	BrandColor     string           `json:"brand_color"`
	Deployer       string           `json:"deployer"`
	DeployedAt     int64            `json:"deployed_at"`
	Status         DeploymentStatus `json:"status"`
}

// AIServiceConfig is the singleton descriptor of the off-chain analytics
// service. It is always replaced wholesale; partial updates are not supported.
type AIServiceConfig struct {
	Endpoint                   string `json:"endpoint"`
	ApiKey                     string `json:"api_key,omitempty"`
	AnalyticsEnabled           bool   `json:"analytics_enabled"`
	ResponseSlicingEnabled     bool   `json:"response_slicing_enabled"`
	ContextOptimizationEnabled bool   `json:"context_optimization_enabled"`
	MaxPageSize                int64  `json:"max_page_size"`
	CacheTimeoutSeconds        int64  `json:"cache_timeout_seconds"`
	Active                     bool   `json:"active"`
}

// Validate enforces the atomic-configuration rule: an enabled service must
// carry an endpoint and sane paging/caching bounds.
func (c AIServiceConfig) Validate() error {
	if c.Endpoint == "" {
		return ErrMalformedConfig.Wrap("endpoint is required")
	}
	if c.MaxPageSize <= 0 {
		return ErrMalformedConfig.Wrapf("max_page_size must be positive, got %d", c.MaxPageSize)
	}
	if c.CacheTimeoutSeconds <= 0 {
		return ErrMalformedConfig.Wrapf("cache_timeout_seconds must be positive, got %d", c.CacheTimeoutSeconds)
	}
	return nil
}

// MEVInsight is one append-only report summarizing adverse-extraction
// activity for a pool over a time period. Seq is the insertion order within
// the pool's sequence, assigned by the store.
type MEVInsight struct {
	Seq               int64           `json:"seq"`
	PoolId            string          `json:"pool_id"`
	ExtractedAmount   decimal.Decimal `json:"extracted_amount"`
	PreventedAmount   decimal.Decimal `json:"prevented_amount"`
	OpportunityCount  uint64          `json:"opportunity_count"`
	SandwichAttacks   uint64          `json:"sandwich_attacks"`
	FrontRunAttempts  uint64          `json:"front_run_attempts"`
	LiquidationEvents uint64          `json:"liquidation_events"`
	PeriodStart       int64           `json:"period_start"`
	PeriodEnd         int64           `json:"period_end"`
	ReportPointer     string          `json:"report_pointer"`
	RecordedAt        int64           `json:"recorded_at"`
}

// FeeScheduleEntry maps one query type to its required payment and whether
// the type is currently admitted.
type FeeScheduleEntry struct {
	QueryType string          `json:"query_type"`
	Fee       decimal.Decimal `json:"fee"`
	Supported bool            `json:"supported"`
}

// IntegrationStats are the running counters derived from coordination
// activity. Every counter is monotonically non-decreasing except
// ActiveDeployments.
type IntegrationStats struct {
	TotalDeployments    uint64          `json:"total_deployments"`
	ActiveDeployments   uint64          `json:"active_deployments"`
	TotalQueries        uint64          `json:"total_queries"`
	CompletedQueries    uint64          `json:"completed_queries"`
	TotalInsights       uint64          `json:"total_insights"`
	CumulativeFees      decimal.Decimal `json:"cumulative_fees"`
	CumulativeLatencyMs uint64          `json:"cumulative_latency_ms"`
}

// AverageLatencyMs is the arithmetic mean completion latency across all
// completed queries, zero when nothing has completed yet.
func (s IntegrationStats) AverageLatencyMs() decimal.Decimal {
	if s.CompletedQueries == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(s.CumulativeLatencyMs).
		Div(decimal.NewFromUint64(s.CompletedQueries)).
		Round(3)
}
